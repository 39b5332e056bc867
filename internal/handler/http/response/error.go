package response

import (
	"errors"
	"net/http"

	"github.com/hadir-app/hadir-backend-go/internal/domain/attendance"
	"github.com/hadir-app/hadir-backend-go/internal/domain/auth"
	"github.com/hadir-app/hadir-backend-go/internal/domain/employee"
	"github.com/hadir-app/hadir-backend-go/internal/domain/schedule"
	"github.com/hadir-app/hadir-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Auth domain errors
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, "Invalid phone or password")
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or missing token")
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, auth.ErrPasswordNotSet):
		Forbidden(w, "No dashboard password set for this account")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrNotRegistered):
		NotFound(w, "Employee not registered")
	case errors.Is(err, employee.ErrAlreadyRegistered):
		Conflict(w, "This chat is already registered")
	case errors.Is(err, employee.ErrPhoneExists):
		Conflict(w, "Phone number already registered")
	case errors.Is(err, employee.ErrEmployeeDeactivated):
		Forbidden(w, "Employee account is deactivated")
	case errors.Is(err, employee.ErrAdminPrivilegeRequired):
		Forbidden(w, "Admin privilege required")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAlreadyOpenSession):
		Conflict(w, "An open attendance session already exists for today")
	case errors.Is(err, attendance.ErrNoOpenSession):
		Conflict(w, "No open attendance session to close")
	case errors.Is(err, attendance.ErrNoPendingAction):
		Conflict(w, "No pending action awaits a reason")
	case errors.Is(err, attendance.ErrOutsideRadius):
		BadRequest(w, "Location is outside the office radius", nil)
	case errors.Is(err, attendance.ErrCheckOutNotAfter):
		BadRequest(w, "Check-out must be after check-in", nil)
	case errors.Is(err, attendance.ErrSessionNotFound):
		NotFound(w, "Attendance session not found")
	case errors.Is(err, attendance.ErrStoreUnavailable):
		ServiceUnavailable(w, "Attendance store unavailable, please try again")

	// Schedule domain errors
	case errors.Is(err, schedule.ErrInvalidSchedule):
		BadRequest(w, "Invalid schedule", nil)
	case errors.Is(err, schedule.ErrEndBeforeStart):
		BadRequest(w, "Work end must be after work start", nil)
	case errors.Is(err, schedule.ErrScheduleNotFound):
		NotFound(w, "Schedule not found")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
