package bubble

import "errors"

// Sentinel kinds for bubble-sort errors.
var (
	ErrNotStarted     = errors.New("bubble sort has not begun")
	ErrAlreadyStarted = errors.New("bubble sort already begun")
)
