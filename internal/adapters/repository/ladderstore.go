package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/okian/autoleague/internal/domain/ladder"
	"github.com/okian/autoleague/internal/domain/model"
	"github.com/okian/autoleague/pkg/metrics"
)

// FileLadderStore keeps each slot in a text file next to the seed ladder:
// slot 0 is base, slot k is <stem>_<k><ext>.
type FileLadderStore struct {
	base string
}

var _ LadderStore = (*FileLadderStore)(nil)

// NewFileLadderStore creates a store rooted at the seed ladder path.
func NewFileLadderStore(base string) *FileLadderStore {
	return &FileLadderStore{base: base}
}

// Location returns the file path of slot.
func (s *FileLadderStore) Location(slot int) string {
	if slot == 0 {
		return s.base
	}
	ext := filepath.Ext(s.base)
	stem := strings.TrimSuffix(s.base, ext)
	return stem + "_" + strconv.Itoa(slot) + ext
}

// Exists reports whether the slot file exists.
func (s *FileLadderStore) Exists(_ context.Context, slot int) bool {
	if slot < 0 {
		return false
	}
	info, err := os.Stat(s.Location(slot))
	return err == nil && info.Mode().IsRegular()
}

// Latest returns the highest slot in the contiguous run starting at 0.
func (s *FileLadderStore) Latest(ctx context.Context) (int, error) {
	if !s.Exists(ctx, 0) {
		return 0, &model.LadderFormatError{Resource: s.base, Reason: "ladder file not found"}
	}
	slot := 0
	for s.Exists(ctx, slot+1) {
		slot++
	}
	return slot, nil
}

// Read decodes the slot file.
func (s *FileLadderStore) Read(_ context.Context, slot int) ([]string, error) {
	if slot < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
	}
	path := s.Location(slot)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &model.LadderFormatError{Resource: path, Reason: "ladder file not found"}
	}
	if err != nil {
		return nil, &model.LadderFormatError{Resource: path, Reason: err.Error()}
	}
	defer f.Close()
	return ladder.Decode(f, path)
}

// Write atomically replaces the slot file.
func (s *FileLadderStore) Write(_ context.Context, slot int, bots []string) error {
	if slot < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
	}
	var buf bytes.Buffer
	if err := ladder.Encode(&buf, bots); err != nil {
		return err
	}
	if err := WriteFileAtomic(s.Location(slot), buf.Bytes()); err != nil {
		metrics.RecordErrorByComponent("repository", "ladder_write")
		return err
	}
	metrics.RecordLadderWrite(len(bots))
	return nil
}
