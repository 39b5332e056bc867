package employee

import (
	"time"

	"github.com/hadir-app/hadir-backend-go/internal/pkg/workclock"
)

type Employee struct {
	ID       string
	ChatID   string
	FullName string
	Phone    string

	// Standard work hours; HasStandardHours is false for employees that
	// registered before an admin assigned them a schedule, in which case
	// the system-wide default applies.
	HasStandardHours bool
	StandardStart    workclock.TimeOfDay
	StandardEnd      workclock.TimeOfDay

	IsAdmin      bool
	PasswordHash *string
	Active       bool

	// Minutes past the effective start before this admin wants a late
	// alert. Only meaningful when IsAdmin is true.
	AlertThresholdMinutes int

	CreatedAt time.Time
	UpdatedAt time.Time
}
