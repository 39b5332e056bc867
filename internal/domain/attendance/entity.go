package attendance

import (
	"time"
)

const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

// Session is one employee's check-in/check-out pair for a single date.
// Rows are never deleted; they are the audit trail.
type Session struct {
	ID         string
	EmployeeID string
	Date       string // YYYY-MM-DD in the application timezone

	CheckInAt       time.Time
	CheckInLat      float64
	CheckInLon      float64
	CheckInDistance float64

	CheckOutAt       *time.Time
	CheckOutLat      *float64
	CheckOutLon      *float64
	CheckOutDistance *float64

	IsLate      bool
	IsEarly     bool
	LateReason  *string
	EarlyReason *string

	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WorkDuration is the time between check-in and check-out for a closed
// session, zero while the session is still open.
func (s Session) WorkDuration() time.Duration {
	if s.CheckOutAt == nil {
		return 0
	}
	return s.CheckOutAt.Sub(s.CheckInAt)
}

// Event kinds for pending (deferred-commit) attendance events.
const (
	KindCheckIn  = "check_in"
	KindCheckOut = "check_out"
)

// PendingEvent is the payload of a late/early attendance event that has
// been verified but not yet committed because its justification is still
// being collected. Nothing reaches the durable ledger until the matching
// finalize call supplies the reason.
type PendingEvent struct {
	Kind     string    `json:"kind"`
	At       time.Time `json:"at"`
	Lat      float64   `json:"lat"`
	Lon      float64   `json:"lon"`
	Distance float64   `json:"distance"`
}
