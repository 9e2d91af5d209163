// Package roundrobin generates the pairings of a round robin.
package roundrobin

import (
	"hash/fnv"
	"math/rand/v2"
)

// Pair is one scheduled contest. The order of A and B carries no meaning.
type Pair struct {
	A string
	B string
}

// Generate returns all n*(n-1)/2 pairs of bots in a shuffled order that is
// reproducible from the first and last bot. Fewer than two bots yield no pairs.
func Generate(bots []string) []Pair {
	n := len(bots)
	if n < 2 {
		return []Pair{}
	}
	pairs := make([]Pair, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pairs = append(pairs, Pair{A: bots[i], B: bots[j]})
		}
	}
	s1, s2 := Seed(bots)
	rng := rand.New(rand.NewPCG(s1, s2))
	rng.Shuffle(len(pairs), func(i, j int) { pairs[i], pairs[j] = pairs[j], pairs[i] })
	return pairs
}

// Seed derives the shuffle seed from the first and last bot.
func Seed(bots []string) (uint64, uint64) {
	if len(bots) == 0 {
		return 0, 0
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(bots[0]))
	first := h.Sum64()
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(bots[len(bots)-1]))
	return first, h.Sum64()
}
