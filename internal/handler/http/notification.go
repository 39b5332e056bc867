package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/hadir-app/hadir-backend-go/internal/domain/notification"
	"github.com/hadir-app/hadir-backend-go/internal/handler/http/response"
	"github.com/hadir-app/hadir-backend-go/internal/pkg/workclock"
)

type NotificationHandler interface {
	List(w http.ResponseWriter, r *http.Request)
}

// NotificationHandlerImpl exposes the dispatch audit trail to admins.
type NotificationHandlerImpl struct {
	repo notification.Repository
	loc  *time.Location
}

func NewNotificationHandler(repo notification.Repository, loc *time.Location) NotificationHandler {
	return &NotificationHandlerImpl{repo: repo, loc: loc}
}

// List implements NotificationHandler.
func (h *NotificationHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = workclock.DateOf(time.Now().In(h.loc), h.loc)
	} else if _, err := workclock.ParseDate(date, h.loc); err != nil {
		response.BadRequest(w, "Invalid date, expected YYYY-MM-DD", nil)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	records, err := h.repo.ListByDate(r.Context(), date, limit)
	if err != nil {
		slog.Error("notification List error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Success(w, records)
}
