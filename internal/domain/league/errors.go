package league

import "errors"

// Sentinel kinds for league errors.
var (
	ErrRoundInProgress = errors.New("cannot admit competitors while a round is in progress")
)
