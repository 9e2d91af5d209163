package dedupe

import "errors"

// Sentinel kinds for resolution errors.
var (
	ErrInFlight         = errors.New("pairing is already being resolved")
	ErrUndecided        = errors.New("executor returned before the match was decided")
	ErrMismatchedResult = errors.New("result does not match the requested pairing")
)
