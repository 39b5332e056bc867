package schedule

import (
	"context"
)

type Repository interface {
	// Upsert creates the override for (employee, date) or replaces an
	// existing one.
	Upsert(ctx context.Context, sched ExceptionalSchedule) (ExceptionalSchedule, error)

	GetByEmployeeAndDate(ctx context.Context, employeeID string, date string) (*ExceptionalSchedule, error)

	ListByDate(ctx context.Context, date string) ([]ExceptionalSchedule, error)
}
