// Package league runs round-based league play: each event plays one round
// robin per eligible division and reorders those divisions by combined
// score into a fresh ladder slot.
package league

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"slices"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/okian/autoleague/internal/domain/dedupe"
	"github.com/okian/autoleague/internal/domain/ladder"
	"github.com/okian/autoleague/internal/domain/match"
	"github.com/okian/autoleague/internal/domain/model"
	"github.com/okian/autoleague/internal/domain/roundrobin"
	"github.com/okian/autoleague/internal/domain/scoring"
	"github.com/okian/autoleague/internal/domain/types"
	"github.com/okian/autoleague/pkg/logger"
	"github.com/okian/autoleague/pkg/metrics"
)

// LadderStore is the numbered ladder storage the progressor reads from
// and writes to.
type LadderStore interface {
	Latest(ctx context.Context) (int, error)
	Read(ctx context.Context, slot int) ([]string, error)
	Write(ctx context.Context, slot int, bots []string) error
}

// Progressor runs league events.
type Progressor struct {
	ladders    LadderStore
	resolver   *dedupe.Resolver
	pool       *model.Pool
	planner    *match.Planner
	ranker     *scoring.Ranker
	observer   types.Observer
	log        logger.Logger
	ladderOpts []ladder.Option
	runID      func() string

	inRound atomic.Bool
}

// New creates a Progressor.
func New(ladders LadderStore, resolver *dedupe.Resolver, pool *model.Pool, opts ...Option) *Progressor {
	p := &Progressor{
		ladders:  ladders,
		resolver: resolver,
		pool:     pool,
		planner:  match.NewPlanner(),
		ranker:   scoring.NewRanker(),
		observer: types.NopObserver{},
		runID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = logger.Get().Named("league")
	}
	return p
}

// DivisionResult is the outcome of one division's round robin.
type DivisionResult struct {
	Index   int
	Name    string
	Scores  []scoring.CombinedScore // best first
	Played  int
	Cached  int
	Warned  int
	Results []model.MatchResult
}

// Report summarizes a finished event.
type Report struct {
	RunID     string
	Event     int // slot the new ladder was written to
	OddWeek   bool
	Newcomers []string
	Divisions []DivisionResult // in processing order, bottom first
	Ladder    []string
}

// EligibleDivisions returns the division indexes played this week in
// ascending order: every other division starting at 0 or 1, or division 0
// alone when there is only one.
func EligibleDivisions(count int, oddWeek bool) []int {
	if count <= 1 {
		return []int{0}
	}
	start := 0
	if oddWeek {
		start = 1
	}
	var out []int
	for i := start; i < count; i += 2 {
		out = append(out, i)
	}
	return out
}

// OddWeekFor returns the parity of event number n.
func OddWeekFor(n int) bool { return n%2 == 1 }

// AdmitNewcomers appends pool members missing from l in an order shuffled
// from the event number, so that a resumed event rebuilds the same ladder.
// It fails while a round is in progress.
func (p *Progressor) AdmitNewcomers(l *ladder.Ladder, event int) ([]string, error) {
	if p.inRound.Load() {
		return nil, ErrRoundInProgress
	}
	missing := l.Missing(p.pool.Names())
	if len(missing) == 0 {
		return nil, nil
	}
	h := fnv.New64a()
	for _, m := range missing {
		_, _ = h.Write([]byte(m))
		_, _ = h.Write([]byte{0})
	}
	rng := rand.New(rand.NewPCG(uint64(event), h.Sum64())) //nolint:gosec // reproducible order, not security
	rng.Shuffle(len(missing), func(i, j int) { missing[i], missing[j] = missing[j], missing[i] })
	l.Append(missing...)
	return missing, nil
}

// Current reads the latest ladder slot.
func (p *Progressor) Current(ctx context.Context) (int, *ladder.Ladder, error) {
	slot, err := p.ladders.Latest(ctx)
	if err != nil {
		return 0, nil, err
	}
	bots, err := p.ladders.Read(ctx, slot)
	if err != nil {
		return 0, nil, err
	}
	return slot, ladder.New(bots, p.ladderOpts...), nil
}

// RunNext plays the event following the latest ladder, deriving parity
// from its number.
func (p *Progressor) RunNext(ctx context.Context) (Report, error) {
	slot, err := p.ladders.Latest(ctx)
	if err != nil {
		return Report{}, err
	}
	return p.RunEvent(ctx, OddWeekFor(slot+1))
}

// RunEvent plays one event on the latest ladder and writes the result to
// the next slot. Any error aborts the event before a ladder is written.
func (p *Progressor) RunEvent(ctx context.Context, oddWeek bool) (Report, error) {
	start := time.Now()
	source, current, err := p.Current(ctx)
	if err != nil {
		return Report{}, err
	}
	event := source + 1
	report := Report{RunID: p.runID(), Event: event, OddWeek: oddWeek}
	log := p.log.With(logger.String("run_id", report.RunID), logger.Int("event", event))

	report.Newcomers, err = p.AdmitNewcomers(current, event)
	if err != nil {
		return Report{}, err
	}
	if len(report.Newcomers) > 0 {
		log.Info(ctx, "admitted new competitors", logger.Strings("bots", report.Newcomers))
	}
	if current.Len() < 2 {
		return Report{}, &model.InsufficientCompetitorsError{Have: current.Len()}
	}

	eligible := EligibleDivisions(current.DivisionCount(), oddWeek)
	if err := p.checkPool(current, eligible); err != nil {
		return Report{}, err
	}

	if !p.inRound.CompareAndSwap(false, true) {
		return Report{}, ErrRoundInProgress
	}
	defer p.inRound.Store(false)

	next := current.Clone()
	for _, div := range slices.Backward(eligible) {
		res, err := p.playDivision(ctx, log, report.RunID, event, current, div)
		if err != nil {
			return Report{}, err
		}
		next.Overwrite(div*current.DivisionSize(), scoring.Bots(res.Scores))
		report.Divisions = append(report.Divisions, res)
	}

	if err := p.ladders.Write(ctx, event, next.Bots()); err != nil {
		return Report{}, fmt.Errorf("write ladder slot %d: %w", event, err)
	}
	report.Ladder = next.Bots()
	metrics.RecordEventCompleted(types.ModeLeague, time.Since(start).Seconds())
	log.Info(ctx, "event done, saved new ladder", logger.Int("slot", event), logger.Duration("took", time.Since(start)))
	return report, nil
}

// checkPool fails before any contest when a participant of an eligible
// division is not in the pool.
func (p *Progressor) checkPool(l *ladder.Ladder, eligible []int) error {
	for _, div := range eligible {
		for _, bot := range l.RoundRobinParticipants(div) {
			if _, err := p.pool.Lookup(bot); err != nil {
				return fmt.Errorf("%s division: %w", ladder.DivisionName(div), err)
			}
		}
	}
	return nil
}

func (p *Progressor) playDivision(ctx context.Context, log logger.Logger, runID string, event int, l *ladder.Ladder, div int) (DivisionResult, error) {
	name := ladder.DivisionName(div)
	scope := types.LeagueScope(event, name)
	participants := l.RoundRobinParticipants(div)
	res := DivisionResult{Index: div, Name: name}
	log = log.With(logger.String("division", name))
	log.Info(ctx, "starting round robin", logger.Strings("bots", participants))

	for _, pair := range roundrobin.Generate(participants) {
		blue, err := p.pool.Lookup(pair.A)
		if err != nil {
			return DivisionResult{}, err
		}
		orange, err := p.pool.Lookup(pair.B)
		if err != nil {
			return DivisionResult{}, err
		}
		key := types.NewPairKey(scope, pair.A, pair.B)

		_, cached, err := p.resolver.Lookup(ctx, key)
		if err != nil {
			return DivisionResult{}, err
		}
		state := types.LiveState{
			RunID: runID, Mode: types.ModeLeague,
			Division: name, DivisionIndex: div, Cursor: -1,
			Blue: blue.Name, BlueVersion: blue.Version,
			Orange: orange.Name, OrangeVersion: orange.Version,
			NeedsMatch: !cached,
		}
		p.publish(ctx, state)

		r, err := p.resolver.Resolve(ctx, key, p.planner.Plan(blue, orange))
		if err != nil {
			return DivisionResult{}, err
		}
		if r.Cached {
			res.Cached++
		} else {
			res.Played++
		}
		if r.Warning != nil {
			res.Warned++
		}
		res.Results = append(res.Results, r.Result)

		state.Winner = r.Result.Winner()
		p.publish(ctx, state)
	}

	res.Scores = p.ranker.Rank(participants, res.Results)
	for _, s := range res.Scores {
		log.Info(ctx, "overall performance", logger.String("score", s.String()))
	}
	log.Info(ctx, "division done", logger.Int("played", res.Played), logger.Int("cached", res.Cached))
	return res, nil
}

func (p *Progressor) publish(ctx context.Context, s types.LiveState) {
	s.UpdatedAt = time.Now().UTC()
	p.observer.Publish(ctx, s)
}
