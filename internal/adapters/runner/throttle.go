package runner

import (
	"context"
	"time"

	"github.com/okian/autoleague/internal/domain/grading"
	"github.com/okian/autoleague/internal/domain/match"
	"golang.org/x/time/rate"
)

// Throttled spaces out executions by at least the cooldown. Only played
// matches reach an executor, so cached results are never delayed.
type Throttled struct {
	next    match.Executor
	limiter *rate.Limiter
}

// NewThrottled wraps next. A zero cooldown disables throttling.
func NewThrottled(next match.Executor, cooldown time.Duration) *Throttled {
	limit := rate.Inf
	if cooldown > 0 {
		limit = rate.Every(cooldown)
	}
	return &Throttled{next: next, limiter: rate.NewLimiter(limit, 1)}
}

// Execute waits for the limiter, then plays the match.
func (t *Throttled) Execute(ctx context.Context, req match.Request) (grading.Outcome, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return grading.Outcome{}, err
	}
	return t.next.Execute(ctx, req)
}
