// Package repository persists ladders and match results.
package repository

import (
	"context"

	"github.com/okian/autoleague/internal/domain/model"
	"github.com/okian/autoleague/internal/domain/types"
)

// LadderStore persists numbered ladder snapshots. Slot 0 is the seed ladder;
// each league event writes the next slot.
type LadderStore interface {
	// Latest returns the highest existing slot. It fails with a
	// *model.LadderFormatError when slot 0 does not exist.
	Latest(ctx context.Context) (int, error)
	// Read returns the ranking stored in slot.
	Read(ctx context.Context, slot int) ([]string, error)
	// Write atomically replaces slot with bots.
	Write(ctx context.Context, slot int, bots []string) error
	// Exists reports whether slot has been written.
	Exists(ctx context.Context, slot int) bool
	// Location names slot for operators, e.g. its file path.
	Location(slot int) string
}

// ResultStore is the append-only match result cache.
type ResultStore interface {
	// Get returns the result stored under key. A stored entry that cannot
	// be parsed yields a *model.CorruptResultError.
	Get(ctx context.Context, key types.PairKey) (model.MatchResult, bool, error)
	// Put stores result under key.
	Put(ctx context.Context, key types.PairKey, result model.MatchResult) error
	// List returns every result stored under scope.
	List(ctx context.Context, scope string) (map[types.PairKey]model.MatchResult, error)
	Close(ctx context.Context) error
}
