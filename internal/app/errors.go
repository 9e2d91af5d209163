package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted   = errors.New("service not started")
	ErrLadderExists = errors.New("seed ladder already exists")
	ErrEmptySeed    = errors.New("nothing to seed")
)
