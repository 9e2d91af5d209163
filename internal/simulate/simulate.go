// Package simulate plays matches without a game client. A match is a
// sequence of synthetic one-second ticks fed to a grading.Grader, so the
// same state machine grades simulated and real matches.
package simulate

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"time"

	"github.com/okian/autoleague/internal/domain/grading"
	"github.com/okian/autoleague/internal/domain/match"
	"github.com/okian/autoleague/internal/domain/model"
)

const (
	regulationSeconds = 300
	overtimeCap       = 300
	replaySaveDelay   = 2

	baseShotChance = 0.06
	pointsPerGoal  = 100
	pointsPerShot  = 20
	pointsPerSave  = 50
)

// Executor is a deterministic, skill-weighted match simulator.
type Executor struct {
	seed       uint64
	recordRate float64
	grace      float64
	minLatency time.Duration
	maxLatency time.Duration
}

// Option configures the Executor.
type Option func(*Executor)

// WithSeed sets the seed every match derives its randomness from.
func WithSeed(seed uint64) Option {
	return func(e *Executor) {
		e.seed = seed
	}
}

// WithRecordingRate sets the chance that a replay is saved after a match.
func WithRecordingRate(p float64) Option {
	return func(e *Executor) {
		if p >= 0 && p <= 1 {
			e.recordRate = p
		}
	}
}

// WithReplayGrace is passed on to the grader.
func WithReplayGrace(seconds float64) Option {
	return func(e *Executor) {
		if seconds >= 0 {
			e.grace = seconds
		}
	}
}

// WithLatencyRange makes each match take wall time in [min, max).
func WithLatencyRange(minLatency, maxLatency time.Duration) Option {
	return func(e *Executor) {
		if minLatency >= 0 && maxLatency > minLatency {
			e.minLatency = minLatency
			e.maxLatency = maxLatency
		}
	}
}

// NewExecutor creates a simulator.
func NewExecutor(opts ...Option) *Executor {
	e := &Executor{recordRate: 1, grace: grading.DefaultReplayGrace}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Strength maps a competitor to its chance multiplier in (0, 1]. Built-ins
// use their configured skill; other bots get a stable rating derived from
// their name and version.
func Strength(c model.Competitor) float64 {
	if c.Builtin {
		return 0.2 + 0.6*c.Skill
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(c.VersionedKey()))
	return 0.3 + 0.7*float64(h.Sum64()%1000)/1000
}

// Execute implements match.Executor. The same request under the same seed
// always produces the same outcome.
func (e *Executor) Execute(ctx context.Context, req match.Request) (grading.Outcome, error) {
	rng := e.rand(req)
	if e.maxLatency > 0 {
		latency := e.minLatency + time.Duration(rng.Int64N(int64(e.maxLatency-e.minLatency)))
		select {
		case <-ctx.Done():
			return grading.Outcome{}, fmt.Errorf("context cancelled: %w", ctx.Err())
		case <-time.After(latency):
		}
	}

	g := grading.NewGrader(grading.WithReplayGrace(e.grace))
	score := model.MatchResult{Blue: req.Blue.Name, Orange: req.Orange.Name}
	blue, orange := Strength(req.Blue), Strength(req.Orange)

	second := 0.0
	for ; ; second++ {
		if err := ctx.Err(); err != nil {
			return grading.Outcome{}, err
		}
		ended := second >= regulationSeconds && (!score.IsDraw() || second >= regulationSeconds+overtimeCap)
		if ended {
			break
		}
		attack(rng, blue, orange, &score.BlueShots, &score.BlueGoals, &score.OrangeSaves)
		attack(rng, orange, blue, &score.OrangeShots, &score.OrangeGoals, &score.BlueSaves)
		score.BluePoints = points(score.BlueGoals, score.BlueShots, score.BlueSaves)
		score.OrangePoints = points(score.OrangeGoals, score.OrangeShots, score.OrangeSaves)
		g.Observe(grading.Tick{SecondsElapsed: second, Score: score})
	}

	recorded := rng.Float64() < e.recordRate
	for end := second; ; second++ {
		if err := ctx.Err(); err != nil {
			return grading.Outcome{}, err
		}
		tick := grading.Tick{SecondsElapsed: second, MatchEnded: true, Score: score}
		if recorded && second >= end+replaySaveDelay {
			tick.ReplayID = fmt.Sprintf("%016x", rng.Uint64())
		}
		if out := g.Observe(tick); out.Done() {
			return out, nil
		}
	}
}

func (e *Executor) rand(req match.Request) *rand.Rand {
	h := fnv.New64a()
	_, _ = fmt.Fprintf(h, "%s|%s|%s|%d", req.Blue.VersionedKey(), req.Orange.VersionedKey(), req.Map, req.TeamSize)
	return rand.New(rand.NewPCG(e.seed, h.Sum64())) //nolint:gosec // reproducible simulation
}

func attack(rng *rand.Rand, attacker, defender float64, shots, goals, saves *int) {
	if rng.Float64() >= baseShotChance*attacker {
		return
	}
	*shots++
	if rng.Float64() < attacker/(attacker+defender)*0.5 {
		*goals++
		return
	}
	*saves++
}

func points(goals, shots, saves int) int {
	return goals*pointsPerGoal + shots*pointsPerShot + saves*pointsPerSave
}
