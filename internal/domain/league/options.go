package league

import (
	"github.com/okian/autoleague/internal/domain/ladder"
	"github.com/okian/autoleague/internal/domain/match"
	"github.com/okian/autoleague/internal/domain/scoring"
	"github.com/okian/autoleague/internal/domain/types"
	"github.com/okian/autoleague/pkg/logger"
)

// Option applies a configuration option to the Progressor.
type Option func(*Progressor)

// WithLadderOptions sets the division and overlap sizes.
func WithLadderOptions(opts ...ladder.Option) Option {
	return func(p *Progressor) {
		p.ladderOpts = append(p.ladderOpts, opts...)
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

// WithRanker sets the combined-score ranker.
func WithRanker(r *scoring.Ranker) Option {
	return func(p *Progressor) {
		if r != nil {
			p.ranker = r
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

// WithRunID overrides the generated run id.
func WithRunID(id func() string) Option {
	return func(p *Progressor) {
		if id != nil {
			p.runID = id
		}
	}
}
