package model

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel kinds for scheduling errors. The typed errors below match them
// through errors.Is.
var (
	ErrLadderFormat            = errors.New("ladder format error")
	ErrCorruptResult           = errors.New("corrupt match result")
	ErrInsufficientCompetitors = errors.New("insufficient competitors")
	ErrUnknownCompetitor       = errors.New("unknown competitor")
	ErrNoRecording             = errors.New("match finished but no recording was produced")
	ErrUnsortable              = errors.New("ladder cannot be sorted: pairwise results are not transitive")
)

// LadderFormatError reports a missing, empty or malformed ladder resource.
type LadderFormatError struct {
	Resource string
	Line     int
	Reason   string
}

func (e *LadderFormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("ladder %s line %d: %s", e.Resource, e.Line, e.Reason)
	}
	return fmt.Sprintf("ladder %s: %s", e.Resource, e.Reason)
}

func (e *LadderFormatError) Is(target error) bool { return target == ErrLadderFormat }

// CorruptResultError reports a stored match result that cannot be parsed.
// The resource must be fixed or deleted by hand.
type CorruptResultError struct {
	Resource string
	Err      error
}

func (e *CorruptResultError) Error() string {
	return fmt.Sprintf("match result %s is corrupt (fix or delete it to replay the match): %v", e.Resource, e.Err)
}

func (e *CorruptResultError) Unwrap() error { return e.Err }

func (e *CorruptResultError) Is(target error) bool { return target == ErrCorruptResult }

// InsufficientCompetitorsError reports that fewer than two competitors are
// available to schedule.
type InsufficientCompetitorsError struct {
	Have int
}

func (e *InsufficientCompetitorsError) Error() string {
	return fmt.Sprintf("need at least 2 competitors to schedule, have %d", e.Have)
}

func (e *InsufficientCompetitorsError) Is(target error) bool {
	return target == ErrInsufficientCompetitors
}

// UnknownCompetitorError reports a scheduled competitor absent from the pool.
type UnknownCompetitorError struct {
	Name        string
	Suggestions []string
}

func (e *UnknownCompetitorError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("unknown competitor %q", e.Name)
	}
	return fmt.Sprintf("unknown competitor %q (did you mean %s?)", e.Name, strings.Join(e.Suggestions, ", "))
}

func (e *UnknownCompetitorError) Is(target error) bool { return target == ErrUnknownCompetitor }
