package schedule

import "errors"

// Schedule domain errors
var (
	ErrInvalidSchedule  = errors.New("invalid schedule: malformed date or time")
	ErrEndBeforeStart   = errors.New("invalid schedule: end must be after start")
	ErrScheduleNotFound = errors.New("schedule not found")
)
