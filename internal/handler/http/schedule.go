package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hadir-app/hadir-backend-go/internal/domain/schedule"
	"github.com/hadir-app/hadir-backend-go/internal/handler/http/middleware"
	"github.com/hadir-app/hadir-backend-go/internal/handler/http/response"
	scheduleService "github.com/hadir-app/hadir-backend-go/internal/service/schedule"
)

type ScheduleHandler interface {
	SetExceptional(w http.ResponseWriter, r *http.Request)
}

type ScheduleHandlerImpl struct {
	scheduleService *scheduleService.Service
}

func NewScheduleHandler(svc *scheduleService.Service) ScheduleHandler {
	return &ScheduleHandlerImpl{scheduleService: svc}
}

// SetExceptional implements ScheduleHandler. Creates or replaces the
// one-day override for (employee, date); the whole pair is replaced,
// never a single endpoint of it.
func (h *ScheduleHandlerImpl) SetExceptional(w http.ResponseWriter, r *http.Request) {
	var req schedule.SetExceptionalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("SetExceptional decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	sched, err := h.scheduleService.SetExceptional(r.Context(), req, middleware.EmployeeID(r))
	if err != nil {
		slog.Error("SetExceptional service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Exceptional schedule set", schedule.ToResponse(sched))
}
