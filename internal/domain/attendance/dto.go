package attendance

import (
	"time"

	"github.com/hadir-app/hadir-backend-go/internal/domain/schedule"
)

// EventResult is the outcome of a check-in or check-out attempt.
// When ReasonRequired is true nothing was persisted: the event is
// parked as a PendingEvent and the caller must collect a justification
// and call the matching finalize operation.
type EventResult struct {
	Session        *Session
	ReasonRequired bool
	Hours          schedule.EffectiveHours
	Distance       float64
}

type SummaryEntry struct {
	EmployeeID   string     `json:"employee_id"`
	EmployeeName string     `json:"employee_name"`
	At           time.Time  `json:"at"`
	Reason       *string    `json:"reason,omitempty"`
	CheckOutAt   *time.Time `json:"check_out_at,omitempty"`
}

// DailySummary is the aggregate consumed by the admin report, the
// evening summary notification and the dashboard.
type DailySummary struct {
	Date           string         `json:"date"`
	TotalEmployees int            `json:"total_employees"`
	CheckedIn      int            `json:"checked_in"`
	CheckedOut     int            `json:"checked_out"`
	StillWorking   int            `json:"still_working"`
	LateCount      int            `json:"late_count"`
	EarlyCount     int            `json:"early_count"`
	Unconfirmed    int            `json:"unconfirmed"`
	LateEntries    []SummaryEntry `json:"late_entries,omitempty"`
	EarlyEntries   []SummaryEntry `json:"early_entries,omitempty"`
}

type SessionResponse struct {
	ID           string     `json:"id"`
	EmployeeID   string     `json:"employee_id"`
	Date         string     `json:"date"`
	CheckInAt    time.Time  `json:"check_in_at"`
	CheckOutAt   *time.Time `json:"check_out_at,omitempty"`
	IsLate       bool       `json:"is_late"`
	IsEarly      bool       `json:"is_early"`
	LateReason   *string    `json:"late_reason,omitempty"`
	EarlyReason  *string    `json:"early_reason,omitempty"`
	Status       string     `json:"status"`
	WorkDuration string     `json:"work_duration,omitempty"`
}

func ToResponse(s Session) SessionResponse {
	resp := SessionResponse{
		ID:          s.ID,
		EmployeeID:  s.EmployeeID,
		Date:        s.Date,
		CheckInAt:   s.CheckInAt,
		CheckOutAt:  s.CheckOutAt,
		IsLate:      s.IsLate,
		IsEarly:     s.IsEarly,
		LateReason:  s.LateReason,
		EarlyReason: s.EarlyReason,
		Status:      s.Status,
	}
	if d := s.WorkDuration(); d > 0 {
		resp.WorkDuration = d.String()
	}
	return resp
}
