// Package grading decides a match from discrete game-state ticks.
package grading

import (
	"github.com/okian/autoleague/internal/domain/model"
)

// DefaultReplayGrace is how long after the match ends the grader waits for
// a replay before giving up on the recording.
const DefaultReplayGrace = 15.0 // seconds of game time

// Status tags an Outcome.
type Status int

// Outcome states.
const (
	Pending Status = iota
	Decided
	FailedNoRecording
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Decided:
		return "decided"
	case FailedNoRecording:
		return "failed_no_recording"
	default:
		return "unknown"
	}
}

// Outcome is the grading state of one match. Result is meaningful for
// Decided and FailedNoRecording; the statistics are valid either way.
type Outcome struct {
	Status Status
	Result model.MatchResult
}

// Done reports whether grading has finished.
func (o Outcome) Done() bool { return o.Status != Pending }

// Warning returns model.ErrNoRecording for FailedNoRecording and nil otherwise.
func (o Outcome) Warning() error {
	if o.Status == FailedNoRecording {
		return model.ErrNoRecording
	}
	return nil
}

// Tick is one observation of the running game.
type Tick struct {
	SecondsElapsed float64
	MatchEnded     bool
	Score          model.MatchResult // scoreboard at this tick
	ReplayID       string            // set once a recording has been saved
}

// Grader is the per-match state machine. Feed it ticks until Observe
// returns a finished Outcome; later ticks leave that outcome unchanged.
type Grader struct {
	grace      float64
	lastInPlay float64
	outcome    Outcome
}

// Option configures a Grader.
type Option func(*Grader)

// WithReplayGrace overrides DefaultReplayGrace.
func WithReplayGrace(seconds float64) Option {
	return func(g *Grader) {
		if seconds >= 0 {
			g.grace = seconds
		}
	}
}

// NewGrader returns a Grader in the Pending state.
func NewGrader(opts ...Option) *Grader {
	g := &Grader{grace: DefaultReplayGrace}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Observe advances the state machine by one tick.
func (g *Grader) Observe(t Tick) Outcome {
	if g.outcome.Done() {
		return g.outcome
	}
	if !t.MatchEnded {
		g.lastInPlay = t.SecondsElapsed
		return g.outcome
	}
	g.outcome.Result = t.Score
	switch {
	case t.ReplayID != "":
		g.outcome.Status = Decided
	case t.SecondsElapsed-g.lastInPlay > g.grace:
		g.outcome.Status = FailedNoRecording
	}
	return g.outcome
}

// Outcome returns the current state.
func (g *Grader) Outcome() Outcome { return g.outcome }
