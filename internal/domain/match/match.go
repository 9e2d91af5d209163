// Package match defines the boundary to whatever actually plays a contest.
package match

import (
	"context"
	"math/rand/v2"
	"slices"

	"github.com/okian/autoleague/internal/domain/grading"
	"github.com/okian/autoleague/internal/domain/model"
)

// DefaultMapPool is the arena rotation used when none is configured.
var DefaultMapPool = []string{"ChampionsField", "Farmstead", "DFHStadium", "Wasteland", "BeckwithPark"}

// Request describes one contest to play.
type Request struct {
	Blue     model.Competitor
	Orange   model.Competitor
	Map      string
	TeamSize int
}

// Executor plays a contest and returns its graded outcome. A returned
// outcome with status FailedNoRecording still carries a valid result.
type Executor interface {
	Execute(ctx context.Context, req Request) (grading.Outcome, error)
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, req Request) (grading.Outcome, error)

// Execute calls f.
func (f ExecutorFunc) Execute(ctx context.Context, req Request) (grading.Outcome, error) {
	return f(ctx, req)
}

// Planner turns a pairing into a Request, picking the map at random.
type Planner struct {
	maps     []string
	teamSize int
	rng      *rand.Rand
}

// PlannerOption configures a Planner.
type PlannerOption func(*Planner)

// WithMapPool sets the maps to pick from.
func WithMapPool(maps []string) PlannerOption {
	return func(p *Planner) {
		if len(maps) > 0 {
			p.maps = slices.Clone(maps)
		}
	}
}

// WithTeamSize sets the number of copies of each bot per team.
func WithTeamSize(n int) PlannerOption {
	return func(p *Planner) {
		if n > 0 {
			p.teamSize = n
		}
	}
}

// WithPlannerRand sets the map picker's random source.
func WithPlannerRand(rng *rand.Rand) PlannerOption {
	return func(p *Planner) {
		if rng != nil {
			p.rng = rng
		}
	}
}

// NewPlanner creates a Planner for 1v1 matches on DefaultMapPool.
func NewPlanner(opts ...PlannerOption) *Planner {
	p := &Planner{
		maps:     DefaultMapPool,
		teamSize: 1,
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())), //nolint:gosec // map rotation
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Plan builds the request for blue against orange.
func (p *Planner) Plan(blue, orange model.Competitor) Request {
	return Request{
		Blue:     blue,
		Orange:   orange,
		Map:      p.maps[p.rng.IntN(len(p.maps))],
		TeamSize: p.teamSize,
	}
}
