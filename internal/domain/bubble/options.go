package bubble

import (
	"math/rand/v2"

	"github.com/okian/autoleague/internal/domain/match"
	"github.com/okian/autoleague/internal/domain/types"
	"github.com/okian/autoleague/pkg/logger"
)

// Option applies a configuration option to the Progressor.
type Option func(*Progressor)

// WithMaxPasses caps the number of full passes; 0 means twice the ladder size.
func WithMaxPasses(n int) Option {
	return func(p *Progressor) {
		if n >= 0 {
			p.maxPasses = n
		}
	}
}

// WithPlanner sets how pairings become match requests.
func WithPlanner(pl *match.Planner) Option {
	return func(p *Progressor) {
		if pl != nil {
			p.planner = pl
		}
	}
}

// WithObserver sets the live-state observer.
func WithObserver(o types.Observer) Option {
	return func(p *Progressor) {
		if o != nil {
			p.observer = o
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(p *Progressor) {
		if l != nil {
			p.log = l
		}
	}
}

// WithRand sets the source used to shuffle newcomers.
func WithRand(rng *rand.Rand) Option {
	return func(p *Progressor) {
		if rng != nil {
			p.rng = rng
		}
	}
}

// WithRunID overrides the generated run id.
func WithRunID(id func() string) Option {
	return func(p *Progressor) {
		if id != nil {
			p.runID = id
		}
	}
}
