// Package dedupe makes contest scheduling idempotent: a pairing with a
// stored result is never played again, and a fresh result is persisted
// before anyone sees it.
package dedupe

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/autoleague/internal/domain/match"
	"github.com/okian/autoleague/internal/domain/model"
	"github.com/okian/autoleague/internal/domain/types"
	"github.com/okian/autoleague/pkg/logger"
	"github.com/okian/autoleague/pkg/metrics"
)

// Store is the durable result cache. Get and List report a stored entry
// that cannot be parsed as a *model.CorruptResultError.
type Store interface {
	Get(ctx context.Context, key types.PairKey) (model.MatchResult, bool, error)
	Put(ctx context.Context, key types.PairKey, result model.MatchResult) error
	List(ctx context.Context, scope string) (map[types.PairKey]model.MatchResult, error)
}

// Resolution is the answer for one pairing.
type Resolution struct {
	Result  model.MatchResult
	Cached  bool  // answered from the store without playing
	Warning error // non-fatal, e.g. model.ErrNoRecording
}

// Resolver resolves pairings through the store, playing only on a miss.
type Resolver struct {
	store Store
	exec  match.Executor
	log   logger.Logger

	mu       sync.Mutex
	inFlight map[types.PairKey]struct{}
}

// NewResolver creates a Resolver.
func NewResolver(store Store, exec match.Executor, opts ...Option) *Resolver {
	r := &Resolver{
		store:    store,
		exec:     exec,
		inFlight: make(map[types.PairKey]struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = logger.Get().Named("dedupe")
	}
	return r
}

// Lookup returns the stored result for key without ever playing.
func (r *Resolver) Lookup(ctx context.Context, key types.PairKey) (model.MatchResult, bool, error) {
	res, ok, err := r.store.Get(ctx, key)
	if err != nil {
		r.noteCorrupt(ctx, key.String(), err)
		return model.MatchResult{}, false, err
	}
	return res.Normalized(), ok, nil
}

// List returns every stored result of scope in a single store read.
func (r *Resolver) List(ctx context.Context, scope string) (map[types.PairKey]model.MatchResult, error) {
	all, err := r.store.List(ctx, scope)
	if err != nil {
		r.noteCorrupt(ctx, scope, err)
		return nil, err
	}
	out := make(map[types.PairKey]model.MatchResult, len(all))
	for k, res := range all {
		out[k] = res.Normalized()
	}
	return out, nil
}

// Resolve returns the result for key, playing req on a cache miss.
// A corrupt stored entry is returned as an error and never replayed.
func (r *Resolver) Resolve(ctx context.Context, key types.PairKey, req match.Request) (Resolution, error) {
	if !r.enter(key) {
		return Resolution{}, fmt.Errorf("%w: %s", ErrInFlight, key)
	}
	defer r.leave(key)

	cached, ok, err := r.Lookup(ctx, key)
	if err != nil {
		return Resolution{}, err
	}
	if ok {
		metrics.RecordResultCached()
		r.log.Info(ctx, "found existing result",
			logger.String("key", key.String()),
			logger.String("score", cached.String()),
		)
		return Resolution{Result: cached, Cached: true}, nil
	}

	r.log.Info(ctx, "starting match",
		logger.String("key", key.String()),
		logger.String("blue", req.Blue.Name),
		logger.String("orange", req.Orange.Name),
		logger.String("map", req.Map),
	)
	start := time.Now()
	outcome, err := r.exec.Execute(ctx, req)
	if err != nil {
		metrics.RecordErrorByComponent("dedupe", "execute")
		return Resolution{}, fmt.Errorf("play %s: %w", key, err)
	}
	if !outcome.Done() {
		return Resolution{}, fmt.Errorf("play %s: %w", key, ErrUndecided)
	}
	result := outcome.Result.Normalized()
	if err := checkParticipants(result, req); err != nil {
		return Resolution{}, fmt.Errorf("play %s: %w", key, err)
	}

	if err := r.store.Put(ctx, key, result); err != nil {
		metrics.RecordErrorByComponent("dedupe", "persist")
		return Resolution{}, fmt.Errorf("persist %s: %w", key, err)
	}
	metrics.RecordMatchExecuted(time.Since(start).Seconds())

	res := Resolution{Result: result, Warning: outcome.Warning()}
	if res.Warning != nil {
		metrics.RecordNoRecording()
		r.log.Warn(ctx, "no recording was produced for the match",
			logger.String("key", key.String()),
			logger.Error(res.Warning),
		)
	}
	r.log.Info(ctx, "match finished",
		logger.String("key", key.String()),
		logger.String("score", result.String()),
		logger.Duration("took", time.Since(start)),
	)
	return res, nil
}

func (r *Resolver) noteCorrupt(ctx context.Context, key string, err error) {
	if !errors.Is(err, model.ErrCorruptResult) {
		return
	}
	metrics.RecordResultCorrupt()
	r.log.Error(ctx, "error loading result, fix or delete it and run again",
		logger.String("key", key),
		logger.Error(err),
	)
}

func (r *Resolver) enter(key types.PairKey) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, busy := r.inFlight[key]; busy {
		return false
	}
	r.inFlight[key] = struct{}{}
	return true
}

func (r *Resolver) leave(key types.PairKey) {
	r.mu.Lock()
	delete(r.inFlight, key)
	r.mu.Unlock()
}

func checkParticipants(res model.MatchResult, req match.Request) error {
	if err := res.Validate(); err != nil {
		return err
	}
	if res.Blue != req.Blue.Name || res.Orange != req.Orange.Name {
		return fmt.Errorf("%w: got %s vs %s, want %s vs %s",
			ErrMismatchedResult, res.Blue, res.Orange, req.Blue.Name, req.Orange.Name)
	}
	return nil
}
