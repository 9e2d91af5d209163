package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/autoleague/internal/domain/model"
	"github.com/okian/autoleague/internal/domain/types"
)

// MemoryResultStore is an in-process ResultStore. It stores encoded bytes
// so that it parses entries exactly like the durable backends.
type MemoryResultStore struct {
	mu      sync.RWMutex
	entries map[types.PairKey][]byte
}

// NewMemoryResultStore creates an empty store.
func NewMemoryResultStore() *MemoryResultStore {
	return &MemoryResultStore{entries: make(map[types.PairKey][]byte)}
}

// Get parses the stored bytes.
func (s *MemoryResultStore) Get(_ context.Context, key types.PairKey) (model.MatchResult, bool, error) {
	s.mu.RLock()
	data, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return model.MatchResult{}, false, nil
	}
	r, err := decodeResult(data, "memory:"+key.String())
	if err != nil {
		return model.MatchResult{}, false, err
	}
	return r, true, nil
}

// Put stores result unless key already holds one.
func (s *MemoryResultStore) Put(_ context.Context, key types.PairKey, result model.MatchResult) error {
	data, err := encodeResult(result)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[key]; ok {
		return fmt.Errorf("%w: %s", ErrResultExists, key)
	}
	s.entries[key] = data
	return nil
}

// PutRaw stores arbitrary bytes under key, replacing any entry.
func (s *MemoryResultStore) PutRaw(key types.PairKey, data []byte) {
	s.mu.Lock()
	s.entries[key] = append([]byte(nil), data...)
	s.mu.Unlock()
}

// List returns the parsed entries of scope.
func (s *MemoryResultStore) List(ctx context.Context, scope string) (map[types.PairKey]model.MatchResult, error) {
	s.mu.RLock()
	keys := make([]types.PairKey, 0, len(s.entries))
	for k := range s.entries {
		if k.Scope == scope {
			keys = append(keys, k)
		}
	}
	s.mu.RUnlock()

	out := make(map[types.PairKey]model.MatchResult, len(keys))
	for _, k := range keys {
		r, _, err := s.Get(ctx, k)
		if err != nil {
			return nil, err
		}
		out[k] = r
	}
	return out, nil
}

// Len returns the number of entries.
func (s *MemoryResultStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Close is a no-op.
func (s *MemoryResultStore) Close(context.Context) error { return nil }
