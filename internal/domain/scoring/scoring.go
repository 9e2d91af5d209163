// Package scoring folds match results into per-competitor combined scores
// and ranks round-robin participants by them.
package scoring

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/okian/autoleague/internal/domain/model"
)

// TieBreak selects how fully tied combined scores are ordered.
type TieBreak string

// Tie-break policies.
const (
	// TieBreakStable keeps the prior ladder order of tied competitors.
	TieBreakStable TieBreak = "stable"
	// TieBreakRandom orders tied competitors by coin flip.
	TieBreakRandom TieBreak = "random"
)

// CombinedScore is a competitor's statistics summed over a set of matches.
type CombinedScore struct {
	Bot      string `json:"bot"`
	GoalDiff int    `json:"goal_diff"`
	Goals    int    `json:"goals"`
	Shots    int    `json:"shots"`
	Saves    int    `json:"saves"`
	Points   int    `json:"points"`
}

func (s CombinedScore) String() string {
	return fmt.Sprintf("%s: goal_diff=%d, goals=%d, shots=%d, saves=%d, points=%d",
		s.Bot, s.GoalDiff, s.Goals, s.Shots, s.Saves, s.Points)
}

// Calc folds every result bot played in.
func Calc(bot string, results []model.MatchResult) CombinedScore {
	score := CombinedScore{Bot: bot}
	for _, r := range results {
		own, opp, ok := r.StatsFor(bot)
		if !ok {
			continue
		}
		score.GoalDiff += own.Goals - opp.Goals
		score.Goals += own.Goals
		score.Shots += own.Shots
		score.Saves += own.Saves
		score.Points += own.Points
	}
	return score
}

// Compare orders scores lexicographically by goal diff, goals, shots,
// saves and points. It returns a positive number when a ranks above b and
// 0 on a full tie.
func Compare(a, b CombinedScore) int {
	for _, d := range [...]int{
		a.GoalDiff - b.GoalDiff,
		a.Goals - b.Goals,
		a.Shots - b.Shots,
		a.Saves - b.Saves,
		a.Points - b.Points,
	} {
		if d != 0 {
			return d
		}
	}
	return 0
}

// Ranker sorts round-robin participants by combined score.
type Ranker struct {
	tieBreak TieBreak
	rng      *rand.Rand
}

// Option configures a Ranker.
type Option func(*Ranker)

// WithTieBreak sets the tie-break policy; unknown values are ignored.
func WithTieBreak(tb TieBreak) Option {
	return func(r *Ranker) {
		if tb == TieBreakStable || tb == TieBreakRandom {
			r.tieBreak = tb
		}
	}
}

// WithRand sets the source used by the random tie-break.
func WithRand(rng *rand.Rand) Option {
	return func(r *Ranker) {
		if rng != nil {
			r.rng = rng
		}
	}
}

// NewRanker creates a Ranker with the stable tie-break by default.
func NewRanker(opts ...Option) *Ranker {
	r := &Ranker{
		tieBreak: TieBreakStable,
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())), //nolint:gosec // tie-break, not security
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rank returns the combined scores of participants, best first.
// participants must be in prior ladder order for the stable tie-break.
func (r *Ranker) Rank(participants []string, results []model.MatchResult) []CombinedScore {
	scores := make([]CombinedScore, len(participants))
	for i, bot := range participants {
		scores[i] = Calc(bot, results)
	}
	if r.tieBreak == TieBreakRandom {
		// Shuffling first makes the stable sort below order ties at random.
		r.rng.Shuffle(len(scores), func(i, j int) { scores[i], scores[j] = scores[j], scores[i] })
	}
	slices.SortStableFunc(scores, func(a, b CombinedScore) int { return Compare(b, a) })
	return scores
}

// Bots extracts the ordered identifiers from ranked scores.
func Bots(scores []CombinedScore) []string {
	out := make([]string, len(scores))
	for i, s := range scores {
		out[i] = s.Bot
	}
	return out
}
