package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hadir-app/hadir-backend-go/internal/domain/attendance"
	"github.com/hadir-app/hadir-backend-go/internal/handler/http/middleware"
	"github.com/hadir-app/hadir-backend-go/internal/handler/http/response"
	"github.com/hadir-app/hadir-backend-go/internal/pkg/workclock"
)

type AttendanceHandler interface {
	Status(w http.ResponseWriter, r *http.Request)
	Summary(w http.ResponseWriter, r *http.Request)
	History(w http.ResponseWriter, r *http.Request)
	MyHistory(w http.ResponseWriter, r *http.Request)
}

type AttendanceHandlerImpl struct {
	attendanceService attendance.Service
	loc               *time.Location
}

func NewAttendanceHandler(svc attendance.Service, loc *time.Location) AttendanceHandler {
	return &AttendanceHandlerImpl{
		attendanceService: svc,
		loc:               loc,
	}
}

func (h *AttendanceHandlerImpl) date(r *http.Request) (string, bool) {
	date := r.URL.Query().Get("date")
	if date == "" {
		return workclock.DateOf(time.Now().In(h.loc), h.loc), true
	}
	if _, err := workclock.ParseDate(date, h.loc); err != nil {
		return "", false
	}
	return date, true
}

// Status implements AttendanceHandler.
func (h *AttendanceHandlerImpl) Status(w http.ResponseWriter, r *http.Request) {
	date, ok := h.date(r)
	if !ok {
		response.BadRequest(w, "Invalid date, expected YYYY-MM-DD", nil)
		return
	}

	employeeID := middleware.EmployeeID(r)
	session, err := h.attendanceService.Status(r.Context(), employeeID, date)
	if err != nil {
		slog.Error("Status service error", "error", err)
		response.HandleError(w, err)
		return
	}
	if session == nil {
		response.Success(w, nil)
		return
	}
	response.Success(w, attendance.ToResponse(*session))
}

// Summary implements AttendanceHandler. Admin only.
func (h *AttendanceHandlerImpl) Summary(w http.ResponseWriter, r *http.Request) {
	date, ok := h.date(r)
	if !ok {
		response.BadRequest(w, "Invalid date, expected YYYY-MM-DD", nil)
		return
	}

	summary, err := h.attendanceService.DailySummary(r.Context(), date)
	if err != nil {
		slog.Error("Summary service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Success(w, summary)
}

// History implements AttendanceHandler. Admin only, any employee.
func (h *AttendanceHandlerImpl) History(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	sessions, err := h.attendanceService.History(r.Context(), employeeID, limit)
	if err != nil {
		slog.Error("History service error", "error", err)
		response.HandleError(w, err)
		return
	}

	out := make([]attendance.SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, attendance.ToResponse(s))
	}
	response.Success(w, out)
}

// MyHistory implements AttendanceHandler.
func (h *AttendanceHandlerImpl) MyHistory(w http.ResponseWriter, r *http.Request) {
	employeeID := middleware.EmployeeID(r)
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	sessions, err := h.attendanceService.History(r.Context(), employeeID, limit)
	if err != nil {
		slog.Error("MyHistory service error", "error", err)
		response.HandleError(w, err)
		return
	}

	out := make([]attendance.SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, attendance.ToResponse(s))
	}
	response.Success(w, out)
}
