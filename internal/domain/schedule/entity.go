package schedule

import (
	"time"

	"github.com/hadir-app/hadir-backend-go/internal/pkg/workclock"
)

// ExceptionalSchedule overrides an employee's standard hours for one
// specific date. Unique per (employee, date); always wins whole, never
// merged with the standard pair.
type ExceptionalSchedule struct {
	ID         string
	EmployeeID string
	Date       string // YYYY-MM-DD in the application timezone
	Start      workclock.TimeOfDay
	End        workclock.TimeOfDay
	Reason     string
	CreatedBy  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// HoursSource records which rule produced an effective pair.
type HoursSource string

const (
	SourceExceptional HoursSource = "exceptional"
	SourceStandard    HoursSource = "standard"
	SourceDefault     HoursSource = "default"
)

// EffectiveHours is the (start, end) pair actually applied to an
// employee on a specific date.
type EffectiveHours struct {
	Start  workclock.TimeOfDay
	End    workclock.TimeOfDay
	Source HoursSource
}
