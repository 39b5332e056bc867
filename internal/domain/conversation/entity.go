package conversation

import (
	"time"

	"github.com/hadir-app/hadir-backend-go/internal/domain/attendance"
)

type Mode string

const (
	ModeIdle          Mode = "idle"
	ModeAwaitingLate  Mode = "awaiting_late_reason"
	ModeAwaitingEarly Mode = "awaiting_early_reason"
)

// State is the per-employee conversation state for a pending late/early
// justification. It is ephemeral: created when a deferred event needs a
// reason, destroyed on completion, and treated as nonexistent once
// expired. An awaiting state always carries the payload needed to
// finalize the ledger write.
type State struct {
	EmployeeID string
	Mode       Mode
	Payload    attendance.PendingEvent
	ExpiresAt  time.Time
	UpdatedAt  time.Time
}

// Expired reports whether the state should be treated as Idle.
func (s State) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
