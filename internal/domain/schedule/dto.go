package schedule

import (
	"github.com/hadir-app/hadir-backend-go/internal/pkg/validator"
)

type SetExceptionalRequest struct {
	EmployeePhone string `json:"employee_phone"`
	Date          string `json:"date"`
	Start         string `json:"start"`
	End           string `json:"end"`
	Reason        string `json:"reason"`
}

func (r SetExceptionalRequest) Validate() error {
	var errs validator.ValidationErrors
	if !validator.IsValidPhoneNumber(r.EmployeePhone) {
		errs = append(errs, validator.ValidationError{Field: "employee_phone", Message: "is not a valid phone number"})
	}
	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "must be YYYY-MM-DD"})
	}
	if !validator.IsValidTimeOfDay(r.Start) {
		errs = append(errs, validator.ValidationError{Field: "start", Message: "must be HH:MM"})
	}
	if !validator.IsValidTimeOfDay(r.End) {
		errs = append(errs, validator.ValidationError{Field: "end", Message: "must be HH:MM"})
	}
	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{Field: "reason", Message: "is required"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ExceptionalResponse struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`
	Start      string `json:"start"`
	End        string `json:"end"`
	Reason     string `json:"reason"`
	CreatedBy  string `json:"created_by"`
}

func ToResponse(s ExceptionalSchedule) ExceptionalResponse {
	return ExceptionalResponse{
		ID:         s.ID,
		EmployeeID: s.EmployeeID,
		Date:       s.Date,
		Start:      s.Start.String(),
		End:        s.End.String(),
		Reason:     s.Reason,
		CreatedBy:  s.CreatedBy,
	}
}
