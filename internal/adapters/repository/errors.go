package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrResultExists   = errors.New("match result already recorded")
	ErrUnknownBackend = errors.New("unknown result backend")
	ErrInvalidSlot    = errors.New("invalid ladder slot")
)
