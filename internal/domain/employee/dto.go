package employee

import (
	"github.com/hadir-app/hadir-backend-go/internal/pkg/validator"
)

type RegisterRequest struct {
	ChatID   string
	FullName string
	Phone    string
}

func (r RegisterRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.ChatID) {
		errs = append(errs, validator.ValidationError{Field: "chat_id", Message: "is required"})
	}
	if validator.IsEmpty(r.FullName) {
		errs = append(errs, validator.ValidationError{Field: "full_name", Message: "is required"})
	}
	if !validator.IsValidPhoneNumber(r.Phone) {
		errs = append(errs, validator.ValidationError{Field: "phone", Message: "is not a valid phone number"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateHoursRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (r UpdateHoursRequest) Validate() error {
	var errs validator.ValidationErrors
	if !validator.IsValidTimeOfDay(r.Start) {
		errs = append(errs, validator.ValidationError{Field: "start", Message: "must be HH:MM"})
	}
	if !validator.IsValidTimeOfDay(r.End) {
		errs = append(errs, validator.ValidationError{Field: "end", Message: "must be HH:MM"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type EmployeeResponse struct {
	ID            string `json:"id"`
	ChatID        string `json:"chat_id"`
	FullName      string `json:"full_name"`
	Phone         string `json:"phone"`
	StandardStart string `json:"standard_start,omitempty"`
	StandardEnd   string `json:"standard_end,omitempty"`
	IsAdmin       bool   `json:"is_admin"`
	Active        bool   `json:"active"`
}

func ToResponse(e Employee) EmployeeResponse {
	resp := EmployeeResponse{
		ID:       e.ID,
		ChatID:   e.ChatID,
		FullName: e.FullName,
		Phone:    e.Phone,
		IsAdmin:  e.IsAdmin,
		Active:   e.Active,
	}
	if e.HasStandardHours {
		resp.StandardStart = e.StandardStart.String()
		resp.StandardEnd = e.StandardEnd.String()
	}
	return resp
}
