// Package overlay publishes the live state of the running contest for
// stream overlays and the status server.
package overlay

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/okian/autoleague/internal/adapters/repository"
	"github.com/okian/autoleague/internal/domain/types"
	"github.com/okian/autoleague/pkg/logger"
)

// Writer overwrites a JSON file with every published state and keeps the
// latest one in memory. Write failures are logged and otherwise ignored.
type Writer struct {
	path string
	log  logger.Logger

	mu   sync.RWMutex
	last *types.LiveState
}

// NewWriter creates a Writer. An empty path keeps the state in memory only.
func NewWriter(path string) *Writer {
	return &Writer{path: path, log: logger.Get().Named("overlay")}
}

// Publish implements types.Observer.
func (w *Writer) Publish(ctx context.Context, s types.LiveState) {
	w.mu.Lock()
	w.last = &s
	w.mu.Unlock()

	if w.path == "" {
		return
	}
	data, err := json.MarshalIndent(s, "", "    ")
	if err != nil {
		w.log.Warn(ctx, "encode live state", logger.Error(err))
		return
	}
	if err := repository.WriteFileAtomic(w.path, data); err != nil {
		w.log.Warn(ctx, "write live state", logger.String("path", w.path), logger.Error(err))
	}
}

// Last returns the most recent state, if any was published.
func (w *Writer) Last() (types.LiveState, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.last == nil {
		return types.LiveState{}, false
	}
	return *w.last, true
}

// Multi fans a state out to several observers in order.
type Multi []types.Observer

// Publish implements types.Observer.
func (m Multi) Publish(ctx context.Context, s types.LiveState) {
	for _, o := range m {
		o.Publish(ctx, s)
	}
}
