package model

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// BuiltinVersion is the version marker of competitors bundled with the game.
const BuiltinVersion = "builtin"

const maxSuggestions = 3

// Competitor is a bot available for scheduling.
type Competitor struct {
	Name       string  // normalized identifier
	Version    string  // content hash, or BuiltinVersion
	ConfigPath string  // bot config file, empty for built-ins
	Skill      float64 // built-in difficulty in [0,1]; 1 for user bots
	Builtin    bool
}

// VersionedKey qualifies the identifier with the version marker so that a
// result recorded against an older build is not reused.
func (c Competitor) VersionedKey() string {
	if c.Version == "" {
		return c.Name
	}
	return c.Name + "-" + c.Version
}

// Normalize returns the canonical form of a competitor identifier.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Pool is the set of competitors discovered for one scheduling run.
type Pool struct {
	byName map[string]Competitor
}

// NewPool builds a pool; later duplicates of a name replace earlier ones.
func NewPool(competitors ...Competitor) *Pool {
	p := &Pool{byName: make(map[string]Competitor, len(competitors))}
	for _, c := range competitors {
		p.Add(c)
	}
	return p
}

// Add inserts or replaces a competitor.
func (p *Pool) Add(c Competitor) {
	c.Name = Normalize(c.Name)
	if c.Name == "" {
		return
	}
	p.byName[c.Name] = c
}

// Len returns the number of competitors.
func (p *Pool) Len() int { return len(p.byName) }

// Has reports whether name is in the pool.
func (p *Pool) Has(name string) bool {
	_, ok := p.byName[Normalize(name)]
	return ok
}

// Names returns every identifier in sorted order.
func (p *Pool) Names() []string {
	names := make([]string, 0, len(p.byName))
	for n := range p.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the competitor for name or an UnknownCompetitorError
// carrying the closest known names.
func (p *Pool) Lookup(name string) (Competitor, error) {
	key := Normalize(name)
	if c, ok := p.byName[key]; ok {
		return c, nil
	}
	return Competitor{}, &UnknownCompetitorError{Name: key, Suggestions: p.suggest(key)}
}

func (p *Pool) suggest(name string) []string {
	names := p.Names()
	seen := make(map[string]bool)
	var out []string

	ranks := fuzzy.RankFindFold(name, names)
	sort.Sort(ranks)
	for _, r := range ranks {
		if len(out) == maxSuggestions {
			return out
		}
		seen[r.Target] = true
		out = append(out, r.Target)
	}

	// Typos are not subsequences; fall back to edit distance.
	type candidate struct {
		name string
		dist int
	}
	var near []candidate
	for _, n := range names {
		if seen[n] {
			continue
		}
		if d := fuzzy.LevenshteinDistance(name, n); d <= 2 {
			near = append(near, candidate{n, d})
		}
	}
	sort.SliceStable(near, func(i, j int) bool { return near[i].dist < near[j].dist })
	for _, c := range near {
		if len(out) == maxSuggestions {
			break
		}
		out = append(out, c.name)
	}
	return out
}
