// Package matchtest provides a scripted executor for tests.
package matchtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/autoleague/internal/domain/grading"
	"github.com/okian/autoleague/internal/domain/match"
	"github.com/okian/autoleague/internal/domain/model"
)

// Executor plays scripted matches: the winner of each pairing is looked up
// in Winners, keyed by either order of "a|b". Unscripted pairings are won
// by blue. Every call is recorded.
type Executor struct {
	Winners     map[string]string
	NoRecording bool
	Err         error

	mu    sync.Mutex
	calls []match.Request
}

// New returns an Executor with the given winners.
func New(winners map[string]string) *Executor {
	return &Executor{Winners: winners}
}

// Beats scripts winner beating loser.
func (e *Executor) Beats(winner, loser string) *Executor {
	if e.Winners == nil {
		e.Winners = make(map[string]string)
	}
	e.Winners[winner+"|"+loser] = winner
	return e
}

// Execute implements match.Executor.
func (e *Executor) Execute(_ context.Context, req match.Request) (grading.Outcome, error) {
	e.mu.Lock()
	e.calls = append(e.calls, req)
	e.mu.Unlock()
	if e.Err != nil {
		return grading.Outcome{}, e.Err
	}

	blue, orange := req.Blue.Name, req.Orange.Name
	winner, ok := e.Winners[blue+"|"+orange]
	if !ok {
		winner, ok = e.Winners[orange+"|"+blue]
	}
	if !ok {
		winner = blue
	}
	res := model.MatchResult{Blue: blue, Orange: orange, BlueShots: 4, OrangeShots: 4}
	if winner == blue {
		res.BlueGoals, res.OrangeGoals = 2, 1
	} else {
		res.BlueGoals, res.OrangeGoals = 1, 2
	}
	status := grading.Decided
	if e.NoRecording {
		status = grading.FailedNoRecording
	}
	return grading.Outcome{Status: status, Result: res}, nil
}

// Calls returns how many matches were played.
func (e *Executor) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.calls)
}

// Played returns the pairings played, as "blue vs orange".
func (e *Executor) Played() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.calls))
	for i, c := range e.calls {
		out[i] = fmt.Sprintf("%s vs %s", c.Blue.Name, c.Orange.Name)
	}
	return out
}

// Pool returns a pool holding the named competitors at version "v1".
func Pool(names ...string) *model.Pool {
	p := model.NewPool()
	for _, n := range names {
		p.Add(model.Competitor{Name: n, Version: "v1"})
	}
	return p
}
