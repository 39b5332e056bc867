package attendance

import (
	"context"
	"time"
)

// Repository defines data access for attendance sessions. The
// one-open-session-per-(employee, date) invariant is enforced by the
// service layer and backstopped by a partial unique index on open rows.
type Repository interface {
	Create(ctx context.Context, session Session) (Session, error)

	// Close writes the check-out half of the session.
	Close(ctx context.Context, session Session) error

	// GetOpenSession returns the open session for (employee, date), or
	// nil when there is none.
	GetOpenSession(ctx context.Context, employeeID string, date string) (*Session, error)

	GetByEmployeeAndDate(ctx context.Context, employeeID string, date string) (*Session, error)

	ListByDate(ctx context.Context, date string) ([]Session, error)

	// ListOpenBefore returns open sessions whose check-in happened
	// before the cutoff, regardless of date.
	ListOpenBefore(ctx context.Context, cutoff time.Time) ([]Session, error)

	History(ctx context.Context, employeeID string, limit int) ([]Session, error)
}

// Transactor runs fn inside a single store transaction, so a pending
// conversation state and the session row it finalizes into commit or
// roll back together.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
