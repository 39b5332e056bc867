package conversation

import (
	"context"
	"time"
)

// Repository stores per-employee conversation state. Writes are
// last-request-wins: Set replaces any existing entry for the employee.
type Repository interface {
	Set(ctx context.Context, state State) error

	// Get returns the stored state, or nil when none exists. Expiry is
	// the caller's concern; the repository returns what is stored.
	Get(ctx context.Context, employeeID string) (*State, error)

	Delete(ctx context.Context, employeeID string) error

	// ListExpired returns all states whose expiry is at or before now.
	ListExpired(ctx context.Context, now time.Time) ([]State, error)
}
