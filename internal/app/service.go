// Package service wires configuration, storage and match execution into
// the league and bubble-sort progressors, and serves their read side.
package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/okian/autoleague/internal/adapters/competitors"
	"github.com/okian/autoleague/internal/adapters/http/api"
	"github.com/okian/autoleague/internal/adapters/overlay"
	"github.com/okian/autoleague/internal/adapters/repository"
	"github.com/okian/autoleague/internal/adapters/runner"
	"github.com/okian/autoleague/internal/adapters/seed"
	"github.com/okian/autoleague/internal/config"
	"github.com/okian/autoleague/internal/domain/bubble"
	"github.com/okian/autoleague/internal/domain/dedupe"
	"github.com/okian/autoleague/internal/domain/ladder"
	"github.com/okian/autoleague/internal/domain/league"
	"github.com/okian/autoleague/internal/domain/match"
	"github.com/okian/autoleague/internal/domain/model"
	"github.com/okian/autoleague/internal/domain/scoring"
	"github.com/okian/autoleague/internal/domain/types"
	"github.com/okian/autoleague/internal/simulate"
	"github.com/okian/autoleague/pkg/logger"
)

// Parity selects which divisions a league event plays.
type Parity int

// Event parities.
const (
	// ParityNext derives parity from the event number.
	ParityNext Parity = iota
	ParityOdd
	ParityEven
)

// Service runs league events and bubble sorts for one working directory.
type Service struct {
	mu sync.RWMutex

	cfg *config.Config

	// Core components
	ladders   repository.LadderStore
	results   repository.ResultStore
	pool      *model.Pool
	overlay   *overlay.Writer
	observers []types.Observer
	executor  match.Executor
	resolver  *dedupe.Resolver
	planner   *match.Planner
	ranker    *scoring.Ranker

	// State
	started bool

	// Logging
	logger logger.Logger
}

// New constructs a Service for cfg. Nothing is opened until Start.
func New(cfg *config.Config, opts ...Option) *Service {
	s := &Service{cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start discovers competitors, opens the stores and builds the executor.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	cfg := s.cfg

	pool, err := competitors.NewScanner(cfg.Path(cfg.BotsDir),
		competitors.WithBuiltins(cfg.BuiltinBots),
		competitors.WithLogger(s.logger.Named("competitors")),
	).Scan(ctx)
	if err != nil {
		return fmt.Errorf("load competitors: %w", err)
	}
	s.pool = pool

	if s.results == nil {
		s.results, err = repository.OpenResultStore(ctx, cfg.ResultBackend,
			repository.WithResultsDir(cfg.Path(cfg.ResultsDir)),
			repository.WithMongo(cfg.MongoURI, cfg.MongoDatabase),
			repository.WithPostgres(cfg.PostgresDSN),
		)
		if err != nil {
			return fmt.Errorf("open result store: %w", err)
		}
	}

	if s.executor == nil {
		s.executor, err = s.newExecutor()
		if err != nil {
			return err
		}
	}

	if s.ladders == nil {
		s.ladders = repository.NewFileLadderStore(cfg.Path(cfg.LadderFile))
	}
	s.overlay = overlay.NewWriter(cfg.Path(cfg.OverlayFile))
	s.resolver = dedupe.NewResolver(s.results, s.executor, dedupe.WithLogger(s.logger.Named("dedupe")))
	s.planner = match.NewPlanner(match.WithMapPool(cfg.MapPool), match.WithTeamSize(cfg.TeamSize))
	s.ranker = scoring.NewRanker(scoring.WithTieBreak(scoring.TieBreak(cfg.TieBreak)))

	s.started = true
	s.logger.Info(ctx, "service started",
		logger.Int("competitors", pool.Len()),
		logger.String("ladder", s.ladders.Location(0)),
		logger.String("result_backend", cfg.ResultBackend),
		logger.String("executor", cfg.Executor),
	)
	return nil
}

func (s *Service) newExecutor() (match.Executor, error) {
	switch s.cfg.Executor {
	case config.ExecutorCommand:
		e, err := runner.NewCommandExecutor(s.cfg.MatchCommand)
		if err != nil {
			return nil, err
		}
		cooldown := time.Duration(s.cfg.MatchCooldownMS) * time.Millisecond
		return runner.NewThrottled(e, cooldown), nil
	default:
		return simulate.NewExecutor(simulate.WithSeed(s.cfg.SimulationSeed)), nil
	}
}

// Stop closes the result store.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.started = false
	if err := s.results.Close(ctx); err != nil {
		s.logger.Error(ctx, "closing result store failed", logger.Error(err))
		return err
	}
	s.logger.Info(ctx, "service stopped")
	return nil
}

func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

func (s *Service) ladderOptions() []ladder.Option {
	return []ladder.Option{
		ladder.WithDivisionSize(s.cfg.DivisionSize),
		ladder.WithOverlapSize(s.cfg.OverlapSize),
	}
}

func (s *Service) observer() types.Observer {
	return append(overlay.Multi{s.overlay}, s.observers...)
}

func (s *Service) league() *league.Progressor {
	return league.New(s.ladders, s.resolver, s.pool,
		league.WithLadderOptions(s.ladderOptions()...),
		league.WithPlanner(s.planner),
		league.WithRanker(s.ranker),
		league.WithObserver(s.observer()),
		league.WithLogger(s.logger.Named("league")),
	)
}

// oddWeek resolves p against the next event number.
func (s *Service) oddWeek(ctx context.Context, p Parity) (bool, error) {
	switch p {
	case ParityOdd:
		return true, nil
	case ParityEven:
		return false, nil
	}
	slot, err := s.ladders.Latest(ctx)
	if err != nil {
		return false, err
	}
	return league.OddWeekFor(slot + 1), nil
}

// RunLeague plays one league event.
func (s *Service) RunLeague(ctx context.Context, p Parity) (league.Report, error) {
	if err := s.ready(); err != nil {
		return league.Report{}, err
	}
	odd, err := s.oddWeek(ctx, p)
	if err != nil {
		return league.Report{}, err
	}
	return s.league().RunEvent(ctx, odd)
}

// Preview lists the pairings the next league event would play.
func (s *Service) Preview(ctx context.Context, p Parity, withResults bool) ([]league.DivisionSchedule, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	odd, err := s.oddWeek(ctx, p)
	if err != nil {
		return nil, err
	}
	return s.league().Preview(ctx, odd, withResults)
}

// RunBubble sorts the latest ladder slot in place until it converges.
func (s *Service) RunBubble(ctx context.Context) (bubble.State, error) {
	if err := s.ready(); err != nil {
		return bubble.State{}, err
	}
	sorter := bubble.New(s.ladders, s.resolver, s.pool,
		bubble.WithMaxPasses(s.cfg.MaxBubblePasses),
		bubble.WithPlanner(s.planner),
		bubble.WithObserver(s.observer()),
		bubble.WithLogger(s.logger.Named("bubble")),
	)
	if err := sorter.Begin(ctx); err != nil {
		return bubble.State{}, err
	}
	return sorter.Run(ctx)
}

// SeedSource names where the initial ladder comes from. An empty Workbook
// shuffles the competitor pool.
type SeedSource struct {
	Workbook string
	Range    seed.Range
}

// Seed writes slot 0. It never overwrites an existing seed ladder.
func (s *Service) Seed(ctx context.Context, src SeedSource) ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if s.ladders.Exists(ctx, 0) {
		return nil, fmt.Errorf("%w: %s", ErrLadderExists, s.ladders.Location(0))
	}
	var (
		bots []string
		err  error
	)
	if src.Workbook != "" {
		bots, err = seed.FromWorkbook(src.Workbook, src.Range)
		if err != nil {
			return nil, err
		}
	} else {
		bots = seed.Shuffled(s.pool, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))) //nolint:gosec // seeding order
	}
	if len(bots) == 0 {
		return nil, ErrEmptySeed
	}
	if err := s.ladders.Write(ctx, 0, bots); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "seed ladder written",
		logger.String("path", s.ladders.Location(0)),
		logger.Int("bots", len(bots)),
	)
	return bots, nil
}

// Standings returns the latest ladder as ranked entries.
func (s *Service) Standings(ctx context.Context) ([]types.Entry, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	_, l, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]types.Entry, l.Len())
	for i := range entries {
		entries[i] = types.Entry{
			Rank:     i + 1,
			Bot:      l.At(i),
			Division: ladder.DivisionName(i / l.DivisionSize()),
		}
	}
	return entries, nil
}

func (s *Service) current(ctx context.Context) (int, *ladder.Ladder, error) {
	return s.league().Current(ctx)
}

// Rank returns one bot's position on the latest ladder.
func (s *Service) Rank(ctx context.Context, bot string) (types.Entry, error) {
	entries, err := s.Standings(ctx)
	if err != nil {
		return types.Entry{}, err
	}
	name := model.Normalize(bot)
	for _, e := range entries {
		if e.Bot == name {
			return e, nil
		}
	}
	if _, err := s.pool.Lookup(name); err != nil {
		return types.Entry{}, err
	}
	return types.Entry{}, fmt.Errorf("%w: %s is not on the ladder yet", api.ErrNotFound, name)
}

// Live returns the most recently published live state.
func (s *Service) Live(context.Context) (types.LiveState, bool) {
	if s.ready() != nil {
		return types.LiveState{}, false
	}
	return s.overlay.Last()
}

// Stats summarizes the league for the status server.
func (s *Service) Stats(ctx context.Context) (api.Stats, error) {
	if err := s.ready(); err != nil {
		return api.Stats{}, err
	}
	st := api.Stats{Competitors: s.pool.Len(), ResultBackend: s.cfg.ResultBackend}
	slot, l, err := s.current(ctx)
	switch {
	case errors.Is(err, model.ErrLadderFormat):
		return st, nil
	case err != nil:
		return api.Stats{}, err
	}
	st.LatestSlot = slot
	st.Bots = l.Len()
	st.Divisions = l.DivisionCount()
	return st, nil
}

// Competitors returns the discovered pool.
func (s *Service) Competitors() *model.Pool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pool
}

// Serve runs the status server on the configured address until ctx ends.
// It returns immediately when no address is configured.
func (s *Service) Serve(ctx context.Context) error {
	if s.cfg.StatusAddr == "" {
		return nil
	}
	if err := s.ready(); err != nil {
		return err
	}
	return api.Serve(ctx, s.cfg.StatusAddr, s)
}
