// Package ladder models the ordered ranking of competitors and its
// partition into overlapping divisions.
package ladder

import (
	"slices"
	"strconv"

	"github.com/okian/autoleague/internal/domain/model"
)

// Default partition sizes.
const (
	DefaultDivisionSize = 4
	DefaultOverlapSize  = 1
)

var divisionNames = [...]string{
	"quantum", "overclocked", "processor", "circuit", "transistor",
	"abacus", "babbage", "colossus", "eniac", "ferranti",
}

// DivisionName returns the display name of division i.
func DivisionName(i int) string {
	if i >= 0 && i < len(divisionNames) {
		return divisionNames[i]
	}
	return "division_" + strconv.Itoa(i)
}

// Ladder is an ordered sequence of competitor identifiers, rank 0 on top.
// Division i occupies [i*DivisionSize, (i+1)*DivisionSize).
type Ladder struct {
	bots         []string
	divisionSize int
	overlapSize  int
}

// Option configures a Ladder.
type Option func(*Ladder)

// WithDivisionSize sets the number of bots per division.
func WithDivisionSize(n int) Option {
	return func(l *Ladder) {
		if n > 0 {
			l.divisionSize = n
		}
	}
}

// WithOverlapSize sets how many bots of the next division join a round robin.
func WithOverlapSize(n int) Option {
	return func(l *Ladder) {
		if n >= 0 {
			l.overlapSize = n
		}
	}
}

// New creates a ladder holding a normalized copy of bots.
func New(bots []string, opts ...Option) *Ladder {
	l := &Ladder{
		bots:         make([]string, len(bots)),
		divisionSize: DefaultDivisionSize,
		overlapSize:  DefaultOverlapSize,
	}
	for i, b := range bots {
		l.bots[i] = model.Normalize(b)
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Bots returns a copy of the ranking.
func (l *Ladder) Bots() []string { return slices.Clone(l.bots) }

// Len returns the number of competitors.
func (l *Ladder) Len() int { return len(l.bots) }

// At returns the identifier at rank i.
func (l *Ladder) At(i int) string { return l.bots[i] }

// DivisionSize returns the number of bots per division.
func (l *Ladder) DivisionSize() int { return l.divisionSize }

// OverlapSize returns the number of buffer bots shared with the division below.
func (l *Ladder) OverlapSize() int { return l.overlapSize }

// DivisionCount returns ceil(len/DivisionSize).
func (l *Ladder) DivisionCount() int {
	return (len(l.bots) + l.divisionSize - 1) / l.divisionSize
}

// Division returns the bots of division i. Out of range yields an empty slice.
func (l *Ladder) Division(i int) []string {
	return l.span(i*l.divisionSize, (i+1)*l.divisionSize)
}

// RoundRobinParticipants returns division i followed by the first
// OverlapSize bots of division i+1, when present.
func (l *Ladder) RoundRobinParticipants(i int) []string {
	if i < 0 {
		return []string{}
	}
	return l.span(i*l.divisionSize, (i+1)*l.divisionSize+l.overlapSize)
}

func (l *Ladder) span(from, to int) []string {
	if from < 0 || from >= len(l.bots) {
		return []string{}
	}
	to = min(to, len(l.bots))
	return slices.Clone(l.bots[from:to])
}

// IndexOf returns the rank of bot, or -1.
func (l *Ladder) IndexOf(bot string) int {
	return slices.Index(l.bots, model.Normalize(bot))
}

// Contains reports whether bot is on the ladder.
func (l *Ladder) Contains(bot string) bool { return l.IndexOf(bot) >= 0 }

// Clone returns an independent copy with the same partition sizes.
func (l *Ladder) Clone() *Ladder {
	return &Ladder{bots: slices.Clone(l.bots), divisionSize: l.divisionSize, overlapSize: l.overlapSize}
}

// Swap exchanges the bots at ranks i and j.
func (l *Ladder) Swap(i, j int) {
	l.bots[i], l.bots[j] = l.bots[j], l.bots[i]
}

// Overwrite replaces the bots starting at rank from with order.
// Entries past the end of the ladder are dropped.
func (l *Ladder) Overwrite(from int, order []string) {
	for k, b := range order {
		if from+k >= len(l.bots) {
			return
		}
		l.bots[from+k] = b
	}
}

// Missing returns the pool members that are not on the ladder, in pool order.
func (l *Ladder) Missing(pool []string) []string {
	var out []string
	for _, b := range pool {
		n := model.Normalize(b)
		if !l.Contains(n) && !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	return out
}

// Append adds bots to the bottom of the ladder, skipping any already present.
func (l *Ladder) Append(bots ...string) {
	for _, b := range bots {
		n := model.Normalize(b)
		if n != "" && !l.Contains(n) {
			l.bots = append(l.bots, n)
		}
	}
}

// Equal reports whether both ladders hold the same order.
func (l *Ladder) Equal(o *Ladder) bool {
	return o != nil && slices.Equal(l.bots, o.bots)
}
