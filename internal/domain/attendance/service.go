package attendance

import (
	"context"
	"time"
)

// Service is the attendance ledger. Check-in and check-out for the same
// employee are serialized; late/early events follow the deferred-commit
// flow described on PendingEvent.
type Service interface {
	CheckIn(ctx context.Context, employeeID string, at time.Time, lat, lon, distance float64) (EventResult, error)
	CheckOut(ctx context.Context, employeeID string, at time.Time, lat, lon, distance float64) (EventResult, error)

	// FinalizeCheckIn / FinalizeCheckOut persist a deferred event using
	// its pending payload plus the collected reason. Calling either with
	// nothing pending returns ErrNoPendingAction.
	FinalizeCheckIn(ctx context.Context, employeeID string, reason string) (Session, error)
	FinalizeCheckOut(ctx context.Context, employeeID string, reason string) (Session, error)

	// AbortPending discards a pending event without a ledger write and
	// returns the discarded payload, or nil when nothing was pending.
	AbortPending(ctx context.Context, employeeID string) (*PendingEvent, error)

	Status(ctx context.Context, employeeID string, date string) (*Session, error)
	DailySummary(ctx context.Context, date string) (DailySummary, error)
	History(ctx context.Context, employeeID string, limit int) ([]Session, error)
}
