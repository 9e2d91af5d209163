// Package bubble converges a ladder toward sorted order one adjacent
// comparison at a time. Every step is persisted, so a session can stop
// between any two comparisons and resume from the stored ladder and
// results.
package bubble

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/okian/autoleague/internal/domain/dedupe"
	"github.com/okian/autoleague/internal/domain/ladder"
	"github.com/okian/autoleague/internal/domain/match"
	"github.com/okian/autoleague/internal/domain/model"
	"github.com/okian/autoleague/internal/domain/types"
	"github.com/okian/autoleague/pkg/logger"
	"github.com/okian/autoleague/pkg/metrics"
)

// LadderStore is the ladder storage the sorter rewrites in place.
type LadderStore interface {
	Latest(ctx context.Context) (int, error)
	Read(ctx context.Context, slot int) ([]string, error)
	Write(ctx context.Context, slot int, bots []string) error
}

// State is a snapshot of the sorter.
type State struct {
	RunID       string
	Slot        int
	Ladder      []string
	Cursor      int // upper index of the pair compared next; 0 means end of pass
	Comparisons int // comparisons in the current pass
	Swaps       int // swaps in the current pass
	Passes      int // full passes started
	Done        bool
}

// Step describes one comparison.
type Step struct {
	Upper   string // bot at the higher rank before the comparison
	Lower   string
	Result  model.MatchResult
	Cached  bool
	Swapped bool
	Done    bool // the ladder is sorted; no comparison was made
}

// Progressor is the resumable bubble sorter.
type Progressor struct {
	ladders   LadderStore
	resolver  *dedupe.Resolver
	pool      *model.Pool
	planner   *match.Planner
	observer  types.Observer
	log       logger.Logger
	rng       *rand.Rand
	runID     func() string
	maxPasses int

	started  bool
	state    State
	outcomes *outcomeGraph
}

// New creates a Progressor.
func New(ladders LadderStore, resolver *dedupe.Resolver, pool *model.Pool, opts ...Option) *Progressor {
	p := &Progressor{
		ladders:  ladders,
		resolver: resolver,
		pool:     pool,
		planner:  match.NewPlanner(),
		observer: types.NopObserver{},
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())), //nolint:gosec // newcomer order
		runID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = logger.Get().Named("bubble")
	}
	return p
}

// Begin loads the latest ladder, appends unseen competitors in random
// order and persists it before any comparison. The first comparison is
// the pair (n-3, n-2).
func (p *Progressor) Begin(ctx context.Context) error {
	if p.started {
		return ErrAlreadyStarted
	}
	slot, err := p.ladders.Latest(ctx)
	if err != nil {
		return err
	}
	bots, err := p.ladders.Read(ctx, slot)
	if err != nil {
		return err
	}
	l := ladder.New(bots)
	missing := l.Missing(p.pool.Names())
	if len(missing) > 0 {
		p.rng.Shuffle(len(missing), func(i, j int) { missing[i], missing[j] = missing[j], missing[i] })
		l.Append(missing...)
		if err := p.ladders.Write(ctx, slot, l.Bots()); err != nil {
			return fmt.Errorf("persist ladder with newcomers: %w", err)
		}
	}
	n := l.Len()
	if n < 2 {
		return &model.InsufficientCompetitorsError{Have: n}
	}
	for _, b := range l.Bots() {
		if _, err := p.pool.Lookup(b); err != nil {
			return err
		}
	}

	p.state = State{RunID: p.runID(), Slot: slot, Ladder: l.Bots(), Cursor: n - 2}
	p.outcomes = newOutcomeGraph()
	p.started = true
	p.log = p.log.With(logger.String("run_id", p.state.RunID))
	metrics.UpdateBubbleCursor(p.state.Cursor)
	p.log.Info(ctx, "bubble sort begun",
		logger.Int("bots", n),
		logger.Strings("newcomers", missing),
		logger.Int("max_passes", p.passCap()),
	)
	return nil
}

// State returns a copy of the current state.
func (p *Progressor) State() State {
	s := p.state
	s.Ladder = append([]string(nil), p.state.Ladder...)
	return s
}

func (p *Progressor) passCap() int {
	if p.maxPasses > 0 {
		return p.maxPasses
	}
	return 2 * len(p.state.Ladder)
}

// Step performs one comparison, or reports completion once a full pass
// made no swaps. It returns model.ErrUnsortable when the pass cap is hit.
func (p *Progressor) Step(ctx context.Context) (Step, error) {
	if !p.started {
		return Step{}, ErrNotStarted
	}
	s := &p.state
	if s.Done {
		return Step{Done: true}, nil
	}
	n := len(s.Ladder)

	if s.Cursor == 0 {
		if s.Comparisons == n-1 && s.Swaps == 0 {
			s.Done = true
			p.log.Info(ctx, "bubble sort is over", logger.Int("passes", s.Passes))
			p.observer.Publish(ctx, types.LiveState{
				RunID: s.RunID, Mode: types.ModeBubble, SortComplete: true, UpdatedAt: time.Now().UTC(),
			})
			return Step{Done: true}, nil
		}
		if s.Passes >= p.passCap() {
			return Step{}, p.unsortable(ctx)
		}
		s.Cursor = n - 1
		s.Comparisons = 0
		s.Swaps = 0
		s.Passes++
		metrics.RecordBubblePass()
		p.log.Debug(ctx, "starting pass", logger.Int("pass", s.Passes))
	}

	step, err := p.compare(ctx, s.Cursor-1, s.Cursor)
	if err != nil {
		return Step{}, err
	}
	s.Comparisons++
	s.Cursor--
	metrics.UpdateBubbleCursor(s.Cursor)
	return step, nil
}

// Run steps until the ladder is sorted or an error occurs.
func (p *Progressor) Run(ctx context.Context) (State, error) {
	start := time.Now()
	for {
		if err := ctx.Err(); err != nil {
			return p.State(), err
		}
		step, err := p.Step(ctx)
		if err != nil {
			return p.State(), err
		}
		if step.Done {
			metrics.RecordEventCompleted(types.ModeBubble, time.Since(start).Seconds())
			return p.State(), nil
		}
	}
}

func (p *Progressor) compare(ctx context.Context, upperIdx, lowerIdx int) (Step, error) {
	s := &p.state
	upper, lower := s.Ladder[upperIdx], s.Ladder[lowerIdx]
	blue, err := p.pool.Lookup(lower)
	if err != nil {
		return Step{}, err
	}
	orange, err := p.pool.Lookup(upper)
	if err != nil {
		return Step{}, err
	}
	key := types.NewPairKey(types.BubbleScope, blue.VersionedKey(), orange.VersionedKey())

	_, cached, err := p.resolver.Lookup(ctx, key)
	if err != nil {
		return Step{}, err
	}
	state := types.LiveState{
		RunID: s.RunID, Mode: types.ModeBubble, DivisionIndex: -1, Cursor: lowerIdx,
		Blue: blue.Name, BlueVersion: blue.Version,
		Orange: orange.Name, OrangeVersion: orange.Version,
		NeedsMatch: !cached, UpdatedAt: time.Now().UTC(),
	}
	p.observer.Publish(ctx, state)

	r, err := p.resolver.Resolve(ctx, key, p.planner.Plan(blue, orange))
	if err != nil {
		return Step{}, err
	}
	step := Step{Upper: upper, Lower: lower, Result: r.Result, Cached: r.Cached}

	if !r.Result.IsDraw() {
		p.outcomes.record(r.Result.Winner(), r.Result.Loser())
		if r.Result.Loser() == upper {
			s.Ladder[upperIdx], s.Ladder[lowerIdx] = lower, upper
			if err := p.ladders.Write(ctx, s.Slot, s.Ladder); err != nil {
				s.Ladder[upperIdx], s.Ladder[lowerIdx] = upper, lower
				return Step{}, fmt.Errorf("persist swap: %w", err)
			}
			s.Swaps++
			step.Swapped = true
			metrics.RecordBubbleSwap()
			p.log.Info(ctx, "swapped",
				logger.String("winner", lower),
				logger.String("loser", upper),
				logger.Int("rank", upperIdx),
			)
		}
	}

	state.Winner = r.Result.Winner()
	state.UpdatedAt = time.Now().UTC()
	p.observer.Publish(ctx, state)
	return step, nil
}

func (p *Progressor) unsortable(ctx context.Context) error {
	cycle := p.outcomes.cycle()
	p.log.Error(ctx, "pass cap reached without converging",
		logger.Int("passes", p.state.Passes),
		logger.Strings("cycle", cycle),
	)
	if len(cycle) == 0 {
		return fmt.Errorf("%w: no clean pass after %d passes", model.ErrUnsortable, p.state.Passes)
	}
	return fmt.Errorf("%w: %v", model.ErrUnsortable, cycle)
}
