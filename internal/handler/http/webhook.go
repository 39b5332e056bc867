package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hadir-app/hadir-backend-go/internal/domain/attendance"
	"github.com/hadir-app/hadir-backend-go/internal/domain/conversation"
	"github.com/hadir-app/hadir-backend-go/internal/domain/employee"
	"github.com/hadir-app/hadir-backend-go/internal/domain/notification"
	"github.com/hadir-app/hadir-backend-go/internal/domain/schedule"
	"github.com/hadir-app/hadir-backend-go/internal/pkg/geo"
	"github.com/hadir-app/hadir-backend-go/internal/pkg/validator"
	"github.com/hadir-app/hadir-backend-go/internal/pkg/workclock"
	conversationService "github.com/hadir-app/hadir-backend-go/internal/service/conversation"
	employeeService "github.com/hadir-app/hadir-backend-go/internal/service/employee"
	scheduleService "github.com/hadir-app/hadir-backend-go/internal/service/schedule"
)

// Update is the inbound chat webhook payload.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

type Message struct {
	MessageID int64     `json:"message_id"`
	Chat      Chat      `json:"chat"`
	Text      string    `json:"text,omitempty"`
	Location  *Location `json:"location,omitempty"`
	Contact   *Contact  `json:"contact,omitempty"`
}

type Chat struct {
	ID int64 `json:"id"`
}

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Contact struct {
	PhoneNumber string `json:"phone_number"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name,omitempty"`
}

// OfficeGeofence is the configured office location every chat-side
// event is verified against.
type OfficeGeofence struct {
	Latitude     float64
	Longitude    float64
	RadiusMeters float64
}

type WebhookHandler interface {
	HandleUpdate(w http.ResponseWriter, r *http.Request)
}

// WebhookHandlerImpl turns chat updates into attendance operations. It
// always answers 200 to the chat platform; user-facing outcomes travel
// back through the chat sender, never through the HTTP status.
type WebhookHandlerImpl struct {
	employees     *employeeService.Service
	attendance    attendance.Service
	schedules     *scheduleService.Service
	conversations *conversationService.Service
	sender        notification.Sender
	office        OfficeGeofence
	secret        string
	loc           *time.Location
	now           func() time.Time
}

func NewWebhookHandler(
	employees *employeeService.Service,
	attendanceSvc attendance.Service,
	schedules *scheduleService.Service,
	conversations *conversationService.Service,
	sender notification.Sender,
	office OfficeGeofence,
	secret string,
	loc *time.Location,
) WebhookHandler {
	return &WebhookHandlerImpl{
		employees:     employees,
		attendance:    attendanceSvc,
		schedules:     schedules,
		conversations: conversations,
		sender:        sender,
		office:        office,
		secret:        secret,
		loc:           loc,
		now:           time.Now,
	}
}

// HandleUpdate implements WebhookHandler.
func (h *WebhookHandlerImpl) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	if chi.URLParam(r, "secret") != h.secret {
		// Wrong secret means the request did not come from the chat
		// platform. No body, no hint.
		w.WriteHeader(http.StatusNotFound)
		return
	}

	var update Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		slog.Error("webhook decode error", "error", err)
		w.WriteHeader(http.StatusOK)
		return
	}

	if update.Message != nil {
		h.dispatch(r.Context(), *update.Message)
	}
	w.WriteHeader(http.StatusOK)
}

func (h *WebhookHandlerImpl) dispatch(ctx context.Context, msg Message) {
	chatID := strconv.FormatInt(msg.Chat.ID, 10)

	if msg.Contact != nil {
		h.handleContact(ctx, chatID, *msg.Contact)
		return
	}

	emp, err := h.employees.GetByChatID(ctx, chatID)
	if err != nil {
		if errors.Is(err, employee.ErrNotRegistered) {
			h.reply(ctx, chatID, "You are not registered yet. Share your contact card to enroll.")
			return
		}
		slog.Error("webhook employee lookup failed", "chat_id", chatID, "error", err)
		h.reply(ctx, chatID, "Something went wrong, please try again.")
		return
	}
	if !emp.Active {
		h.reply(ctx, chatID, "Your account is deactivated. Contact your administrator.")
		return
	}

	switch {
	case msg.Location != nil:
		h.handleLocation(ctx, emp, *msg.Location)
	case msg.Text != "":
		h.handleText(ctx, emp, msg.Text)
	}
}

func (h *WebhookHandlerImpl) handleContact(ctx context.Context, chatID string, contact Contact) {
	name := contact.FirstName
	if contact.LastName != "" {
		name += " " + contact.LastName
	}

	emp, err := h.employees.Register(ctx, employee.RegisterRequest{
		ChatID:   chatID,
		FullName: name,
		Phone:    contact.PhoneNumber,
	})
	if err != nil {
		if errors.Is(err, employee.ErrAlreadyRegistered) {
			h.reply(ctx, chatID, "You are already registered. Share your location to check in.")
			return
		}
		slog.Error("webhook registration failed", "chat_id", chatID, "error", err)
		h.replyError(ctx, chatID, err)
		return
	}

	h.reply(ctx, chatID, fmt.Sprintf(
		"Welcome, %s! You are registered. Share your location when you arrive at the office to check in.",
		emp.FullName))
}

// handleLocation infers intent from session state: no open session
// means check-in, an open session means check-out.
func (h *WebhookHandlerImpl) handleLocation(ctx context.Context, emp employee.Employee, loc Location) {
	distance, within, err := geo.Verify(
		loc.Latitude, loc.Longitude,
		h.office.Latitude, h.office.Longitude, h.office.RadiusMeters)
	if err != nil {
		h.reply(ctx, emp.ChatID, "That location could not be verified. Please send a live location.")
		return
	}
	if !within {
		h.reply(ctx, emp.ChatID, fmt.Sprintf(
			"You are %.0f m from the office, outside the %.0f m radius. Move closer and share your location again.",
			distance, h.office.RadiusMeters))
		return
	}

	at := h.now().In(h.loc)
	date := workclock.DateOf(at, h.loc)

	session, err := h.attendance.Status(ctx, emp.ID, date)
	if err != nil {
		slog.Error("webhook status lookup failed", "employee_id", emp.ID, "error", err)
		h.reply(ctx, emp.ChatID, "Something went wrong, please try again.")
		return
	}

	switch {
	case session == nil:
		h.doCheckIn(ctx, emp, at, loc, distance)
	case session.Status == attendance.StatusOpen:
		h.doCheckOut(ctx, emp, at, loc, distance)
	default:
		h.reply(ctx, emp.ChatID, "You already checked in and out today. See you tomorrow!")
	}
}

func (h *WebhookHandlerImpl) doCheckIn(ctx context.Context, emp employee.Employee, at time.Time, loc Location, distance float64) {
	result, err := h.attendance.CheckIn(ctx, emp.ID, at, loc.Latitude, loc.Longitude, distance)
	if err != nil {
		h.replyError(ctx, emp.ChatID, err)
		return
	}

	if result.ReasonRequired {
		h.reply(ctx, emp.ChatID, fmt.Sprintf(
			"You are late: work started at %s and it is now %s. Reply with the reason to record your check-in.",
			result.Hours.Start, at.Format("15:04")))
		return
	}

	h.reply(ctx, emp.ChatID, fmt.Sprintf(
		"Checked in at %s. Have a productive day!", at.Format("15:04")))
}

func (h *WebhookHandlerImpl) doCheckOut(ctx context.Context, emp employee.Employee, at time.Time, loc Location, distance float64) {
	result, err := h.attendance.CheckOut(ctx, emp.ID, at, loc.Latitude, loc.Longitude, distance)
	if err != nil {
		h.replyError(ctx, emp.ChatID, err)
		return
	}

	if result.ReasonRequired {
		h.reply(ctx, emp.ChatID, fmt.Sprintf(
			"You are leaving early: work ends at %s and it is now %s. Reply with the reason to record your check-out.",
			result.Hours.End, at.Format("15:04")))
		return
	}

	duration := ""
	if result.Session != nil {
		duration = fmt.Sprintf(" You worked %s.", result.Session.WorkDuration().Round(time.Minute))
	}
	h.reply(ctx, emp.ChatID, fmt.Sprintf(
		"Checked out at %s.%s", at.Format("15:04"), duration))
}

func (h *WebhookHandlerImpl) handleText(ctx context.Context, emp employee.Employee, text string) {
	if strings.HasPrefix(text, "/") {
		h.handleCommand(ctx, emp, strings.Fields(text))
		return
	}

	// Free text is only meaningful as the justification for a pending
	// late check-in or early check-out.
	mode, _, err := h.conversations.Current(ctx, emp.ID)
	if err != nil {
		slog.Error("webhook conversation lookup failed", "employee_id", emp.ID, "error", err)
		h.reply(ctx, emp.ChatID, "Something went wrong, please try again.")
		return
	}

	switch mode {
	case conversation.ModeAwaitingLate:
		session, err := h.attendance.FinalizeCheckIn(ctx, emp.ID, text)
		if err != nil {
			h.replyError(ctx, emp.ChatID, err)
			return
		}
		h.reply(ctx, emp.ChatID, fmt.Sprintf(
			"Late check-in recorded at %s with your reason. Have a productive day!",
			session.CheckInAt.In(h.loc).Format("15:04")))
	case conversation.ModeAwaitingEarly:
		session, err := h.attendance.FinalizeCheckOut(ctx, emp.ID, text)
		if err != nil {
			h.replyError(ctx, emp.ChatID, err)
			return
		}
		at := session.CheckInAt
		if session.CheckOutAt != nil {
			at = *session.CheckOutAt
		}
		h.reply(ctx, emp.ChatID, fmt.Sprintf(
			"Early check-out recorded at %s with your reason. See you tomorrow!",
			at.In(h.loc).Format("15:04")))
	default:
		h.reply(ctx, emp.ChatID,
			"Nothing is waiting for a reply. Share your location to check in or out.")
	}
}

func (h *WebhookHandlerImpl) handleCommand(ctx context.Context, emp employee.Employee, args []string) {
	switch args[0] {
	case "/start", "/help":
		help := "Share your location when you arrive to check in and when you leave to check out.\n" +
			"/status - today's attendance\n" +
			"/history - recent sessions\n" +
			"/cancel - discard a pending check-in or check-out"
		if emp.IsAdmin {
			help += "\n\nAdmin commands:\n" +
				"/report [date] - attendance summary\n" +
				"/employees - active roster\n" +
				"/set_hours <phone> <start> <end> - standard work hours\n" +
				"/exceptional_hours <phone> <date> <start> <end> <reason> - one-day override\n" +
				"/deactivate <phone> - deactivate an employee"
		}
		h.reply(ctx, emp.ChatID, help)
	case "/status":
		h.handleStatus(ctx, emp)
	case "/history":
		h.handleHistory(ctx, emp)
	case "/cancel":
		h.handleCancel(ctx, emp)
	case "/report", "/employees", "/set_hours", "/exceptional_hours", "/deactivate":
		if !emp.IsAdmin {
			h.reply(ctx, emp.ChatID, "That command is for administrators.")
			return
		}
		h.handleAdminCommand(ctx, emp, args)
	default:
		h.reply(ctx, emp.ChatID, "Unknown command. Send /help for the list.")
	}
}

func (h *WebhookHandlerImpl) handleAdminCommand(ctx context.Context, admin employee.Employee, args []string) {
	switch args[0] {
	case "/report":
		date := workclock.DateOf(h.now().In(h.loc), h.loc)
		if len(args) > 1 {
			if _, err := workclock.ParseDate(args[1], h.loc); err != nil {
				h.reply(ctx, admin.ChatID, "Usage: /report [YYYY-MM-DD]")
				return
			}
			date = args[1]
		}
		summary, err := h.attendance.DailySummary(ctx, date)
		if err != nil {
			slog.Error("webhook report failed", "admin_id", admin.ID, "error", err)
			h.reply(ctx, admin.ChatID, "Something went wrong, please try again.")
			return
		}
		h.reply(ctx, admin.ChatID, formatAdminReport(summary))

	case "/employees":
		list, err := h.employees.List(ctx)
		if err != nil {
			slog.Error("webhook roster failed", "admin_id", admin.ID, "error", err)
			h.reply(ctx, admin.ChatID, "Something went wrong, please try again.")
			return
		}
		text := fmt.Sprintf("Active employees (%d):", len(list))
		for _, e := range list {
			hours := "default hours"
			if e.HasStandardHours {
				hours = e.StandardStart.String() + "-" + e.StandardEnd.String()
			}
			text += fmt.Sprintf("\n- %s (%s, %s)", e.FullName, e.Phone, hours)
		}
		h.reply(ctx, admin.ChatID, text)

	case "/set_hours":
		if len(args) != 4 {
			h.reply(ctx, admin.ChatID, "Usage: /set_hours <phone> <HH:MM> <HH:MM>")
			return
		}
		updated, err := h.employees.UpdateStandardHours(ctx, args[1], employee.UpdateHoursRequest{
			Start: args[2],
			End:   args[3],
		})
		if err != nil {
			h.replyAdminError(ctx, admin.ChatID, err, "Usage: /set_hours <phone> <HH:MM> <HH:MM>")
			return
		}
		h.reply(ctx, admin.ChatID, fmt.Sprintf(
			"Standard hours for %s set to %s-%s.",
			updated.FullName, updated.StandardStart, updated.StandardEnd))

	case "/exceptional_hours":
		if len(args) < 6 {
			h.reply(ctx, admin.ChatID, "Usage: /exceptional_hours <phone> <YYYY-MM-DD> <HH:MM> <HH:MM> <reason>")
			return
		}
		sched, err := h.schedules.SetExceptional(ctx, schedule.SetExceptionalRequest{
			EmployeePhone: args[1],
			Date:          args[2],
			Start:         args[3],
			End:           args[4],
			Reason:        strings.Join(args[5:], " "),
		}, admin.ID)
		if err != nil {
			h.replyAdminError(ctx, admin.ChatID, err, "Usage: /exceptional_hours <phone> <YYYY-MM-DD> <HH:MM> <HH:MM> <reason>")
			return
		}
		h.reply(ctx, admin.ChatID, fmt.Sprintf(
			"Exceptional hours on %s set to %s-%s (%s).",
			sched.Date, sched.Start, sched.End, sched.Reason))

	case "/deactivate":
		if len(args) != 2 {
			h.reply(ctx, admin.ChatID, "Usage: /deactivate <phone>")
			return
		}
		target, err := h.employees.GetByPhone(ctx, args[1])
		if err != nil {
			h.replyAdminError(ctx, admin.ChatID, err, "Usage: /deactivate <phone>")
			return
		}
		if target.ID == admin.ID {
			h.reply(ctx, admin.ChatID, "You cannot deactivate your own account.")
			return
		}
		if err := h.employees.Deactivate(ctx, target.ID); err != nil {
			slog.Error("webhook deactivate failed", "admin_id", admin.ID, "error", err)
			h.reply(ctx, admin.ChatID, "Something went wrong, please try again.")
			return
		}
		h.reply(ctx, admin.ChatID, fmt.Sprintf("%s has been deactivated.", target.FullName))
	}
}

func (h *WebhookHandlerImpl) replyAdminError(ctx context.Context, chatID string, err error, usage string) {
	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, employee.ErrEmployeeNotFound):
		h.reply(ctx, chatID, "No employee found with that phone number.")
	case errors.Is(err, schedule.ErrEndBeforeStart):
		h.reply(ctx, chatID, "End time must be after the start time.")
	case errors.Is(err, schedule.ErrInvalidSchedule), errors.As(err, &verrs):
		h.reply(ctx, chatID, usage)
	default:
		slog.Error("webhook admin command failed", "chat_id", chatID, "error", err)
		h.reply(ctx, chatID, "Something went wrong, please try again.")
	}
}

func formatAdminReport(s attendance.DailySummary) string {
	text := fmt.Sprintf(
		"Attendance for %s\nEmployees: %d, checked in: %d, checked out: %d, still working: %d\nLate: %d, early: %d",
		s.Date, s.TotalEmployees, s.CheckedIn, s.CheckedOut, s.StillWorking, s.LateCount, s.EarlyCount)
	if s.Unconfirmed > 0 {
		text += fmt.Sprintf(", unconfirmed: %d", s.Unconfirmed)
	}
	return text
}

func (h *WebhookHandlerImpl) handleStatus(ctx context.Context, emp employee.Employee) {
	date := workclock.DateOf(h.now().In(h.loc), h.loc)
	session, err := h.attendance.Status(ctx, emp.ID, date)
	if err != nil {
		slog.Error("webhook status failed", "employee_id", emp.ID, "error", err)
		h.reply(ctx, emp.ChatID, "Something went wrong, please try again.")
		return
	}

	switch {
	case session == nil:
		h.reply(ctx, emp.ChatID, "You have not checked in today.")
	case session.Status == attendance.StatusOpen:
		h.reply(ctx, emp.ChatID, fmt.Sprintf(
			"Checked in at %s, session still open.",
			session.CheckInAt.In(h.loc).Format("15:04")))
	default:
		h.reply(ctx, emp.ChatID, fmt.Sprintf(
			"Checked in at %s, checked out at %s (worked %s).",
			session.CheckInAt.In(h.loc).Format("15:04"),
			session.CheckOutAt.In(h.loc).Format("15:04"),
			session.WorkDuration().Round(time.Minute)))
	}
}

func (h *WebhookHandlerImpl) handleHistory(ctx context.Context, emp employee.Employee) {
	sessions, err := h.attendance.History(ctx, emp.ID, 7)
	if err != nil {
		slog.Error("webhook history failed", "employee_id", emp.ID, "error", err)
		h.reply(ctx, emp.ChatID, "Something went wrong, please try again.")
		return
	}
	if len(sessions) == 0 {
		h.reply(ctx, emp.ChatID, "No attendance history yet.")
		return
	}

	text := "Your recent sessions:"
	for _, s := range sessions {
		line := fmt.Sprintf("\n%s: in %s", s.Date, s.CheckInAt.In(h.loc).Format("15:04"))
		if s.CheckOutAt != nil {
			line += fmt.Sprintf(", out %s", s.CheckOutAt.In(h.loc).Format("15:04"))
		} else {
			line += ", still open"
		}
		text += line
	}
	h.reply(ctx, emp.ChatID, text)
}

func (h *WebhookHandlerImpl) handleCancel(ctx context.Context, emp employee.Employee) {
	pending, err := h.attendance.AbortPending(ctx, emp.ID)
	if err != nil {
		slog.Error("webhook cancel failed", "employee_id", emp.ID, "error", err)
		h.reply(ctx, emp.ChatID, "Something went wrong, please try again.")
		return
	}
	if pending == nil {
		h.reply(ctx, emp.ChatID, "Nothing pending to cancel.")
		return
	}

	var what string
	if pending.Kind == attendance.KindCheckIn {
		what = "check-in"
	} else {
		what = "check-out"
	}
	h.reply(ctx, emp.ChatID, fmt.Sprintf(
		"Pending %s discarded. Nothing was recorded.", what))
}

func (h *WebhookHandlerImpl) replyError(ctx context.Context, chatID string, err error) {
	switch {
	case errors.Is(err, attendance.ErrAlreadyOpenSession):
		h.reply(ctx, chatID, "You already have an open session today. Share your location to check out.")
	case errors.Is(err, attendance.ErrNoOpenSession):
		h.reply(ctx, chatID, "You have no open session. Share your location to check in first.")
	case errors.Is(err, attendance.ErrNoPendingAction):
		h.reply(ctx, chatID, "Nothing is waiting for a reply. Share your location to check in or out.")
	case errors.Is(err, attendance.ErrCheckOutNotAfter):
		h.reply(ctx, chatID, "Check-out must come after check-in. Please try again.")
	case errors.Is(err, employee.ErrEmployeeDeactivated):
		h.reply(ctx, chatID, "Your account is deactivated. Contact your administrator.")
	case errors.Is(err, employee.ErrPhoneExists):
		h.reply(ctx, chatID, "That phone number is already registered.")
	default:
		slog.Error("webhook operation failed", "chat_id", chatID, "error", err)
		h.reply(ctx, chatID, "Something went wrong, please try again.")
	}
}

func (h *WebhookHandlerImpl) reply(ctx context.Context, chatID string, text string) {
	if err := h.sender.Send(ctx, chatID, text); err != nil {
		slog.Error("webhook reply failed", "chat_id", chatID, "error", err)
	}
}
