package attendance

import "errors"

// Attendance domain errors
var (
	ErrAlreadyOpenSession = errors.New("you already have an open session today")
	ErrNoOpenSession      = errors.New("you have no open session to check out of")
	ErrNoPendingAction    = errors.New("no pending attendance event to finalize")
	ErrOutsideRadius      = errors.New("you are outside the allowed office radius")
	ErrCheckOutNotAfter   = errors.New("check-out time must be after check-in time")
	ErrSessionNotFound    = errors.New("attendance session not found")
	ErrStoreUnavailable   = errors.New("attendance store unavailable, try again")
)
