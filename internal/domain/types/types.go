// Package types contains common types used across the application
package types

import (
	"context"
	"path"
	"strconv"
	"strings"
	"time"
)

// Entry represents a ranked ladder entry
type Entry struct {
	Rank     int    `json:"rank"`
	Bot      string `json:"bot"`
	Division string `json:"division"`
}

// PairKey identifies the stored result of one unordered pairing.
// A and B are (optionally version-qualified) identifiers with A <= B.
type PairKey struct {
	Scope string
	A     string
	B     string
}

// NewPairKey orders x and y so that the key is the same for (x, y) and (y, x).
func NewPairKey(scope, x, y string) PairKey {
	if y < x {
		x, y = y, x
	}
	return PairKey{Scope: scope, A: x, B: y}
}

// Name returns the pairing name without its scope, e.g. "a_vs_b".
func (k PairKey) Name() string {
	return k.A + "_vs_" + k.B
}

// String returns the scoped name, e.g. "event_3/quantum/a_vs_b".
func (k PairKey) String() string {
	if k.Scope == "" {
		return k.Name()
	}
	return path.Join(k.Scope, k.Name())
}

// BubbleScope holds bubble-sort results, shared by every bubble session.
const BubbleScope = "bubble"

// LeagueScope returns the result scope of one division in one event.
func LeagueScope(event int, division string) string {
	return "event_" + strconv.Itoa(event) + "/" + strings.ToLower(division)
}

// Live-state modes.
const (
	ModeLeague = "league"
	ModeBubble = "bubble"
)

// LiveState describes the contest currently being resolved. It is purely
// observational and never read back by the scheduler.
type LiveState struct {
	RunID         string    `json:"run_id"`
	Mode          string    `json:"mode"`
	Division      string    `json:"division,omitempty"`
	DivisionIndex int       `json:"division_index"`
	Cursor        int       `json:"cursor"`
	Blue          string    `json:"blue"`
	BlueVersion   string    `json:"blue_version,omitempty"`
	Orange        string    `json:"orange"`
	OrangeVersion string    `json:"orange_version,omitempty"`
	NeedsMatch    bool      `json:"needs_match"`
	Winner        string    `json:"winner,omitempty"`
	SortComplete  bool      `json:"sort_complete"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Observer receives live-state updates.
type Observer interface {
	Publish(ctx context.Context, s LiveState)
}

// NopObserver discards updates.
type NopObserver struct{}

// Publish does nothing.
func (NopObserver) Publish(context.Context, LiveState) {}
