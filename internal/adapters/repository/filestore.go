package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/okian/autoleague/internal/domain/model"
	"github.com/okian/autoleague/internal/domain/types"
)

const resultExt = ".json"

// FileResultStore keeps one human-readable JSON file per result at
// <dir>/<scope>/<a>_vs_<b>.json. Deleting a file forces a replay.
type FileResultStore struct {
	dir string
}

// NewFileResultStore creates a store under dir.
func NewFileResultStore(dir string) *FileResultStore {
	return &FileResultStore{dir: dir}
}

// Path returns the file that holds key.
func (s *FileResultStore) Path(key types.PairKey) string {
	return filepath.Join(s.dir, filepath.FromSlash(key.Scope), key.Name()+resultExt)
}

// Get reads and parses the result file.
func (s *FileResultStore) Get(_ context.Context, key types.PairKey) (model.MatchResult, bool, error) {
	path := s.Path(key)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return model.MatchResult{}, false, nil
	}
	if err != nil {
		return model.MatchResult{}, false, fmt.Errorf("read %s: %w", path, err)
	}
	r, err := decodeResult(data, path)
	if err != nil {
		return model.MatchResult{}, false, err
	}
	return r, true, nil
}

// Put writes the result file atomically. Existing results are never
// overwritten.
func (s *FileResultStore) Put(_ context.Context, key types.PairKey, result model.MatchResult) error {
	path := s.Path(key)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrResultExists, path)
	}
	data, err := encodeResult(result)
	if err != nil {
		return err
	}
	return WriteFileAtomic(path, data)
}

// List parses every result file of scope. A corrupt file fails the listing.
func (s *FileResultStore) List(ctx context.Context, scope string) (map[types.PairKey]model.MatchResult, error) {
	dir := filepath.Join(s.dir, filepath.FromSlash(scope))
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return map[types.PairKey]model.MatchResult{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	out := make(map[types.PairKey]model.MatchResult, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, resultExt) || strings.HasPrefix(name, ".") {
			continue
		}
		key, ok := parseKeyName(scope, strings.TrimSuffix(name, resultExt))
		if !ok {
			continue
		}
		r, found, err := s.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if found {
			out[key] = r
		}
	}
	return out, nil
}

// Close is a no-op.
func (s *FileResultStore) Close(context.Context) error { return nil }
