package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/hadir-app/hadir-backend-go/internal/pkg/sse"
	attendanceService "github.com/hadir-app/hadir-backend-go/internal/service/attendance"
)

type SSEHandler interface {
	Attendance(w http.ResponseWriter, r *http.Request)
}

// SSEHandlerImpl streams live attendance events to the dashboard.
type SSEHandlerImpl struct {
	hub *sse.Hub
}

func NewSSEHandler(hub *sse.Hub) SSEHandler {
	return &SSEHandlerImpl{hub: hub}
}

// Attendance implements SSEHandler.
func (h *SSEHandlerImpl) Attendance(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	events, cleanup := h.hub.Subscribe(attendanceService.TopicAttendance)
	defer cleanup()

	fmt.Fprintf(w, "event: connected\ndata: {}\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, open := <-events:
			if !open {
				return
			}
			payload, err := json.Marshal(event.Data)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, payload)
			flusher.Flush()
		}
	}
}
