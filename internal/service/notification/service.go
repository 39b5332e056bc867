package notification

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hadir-app/hadir-backend-go/internal/domain/attendance"
	"github.com/hadir-app/hadir-backend-go/internal/domain/employee"
	"github.com/hadir-app/hadir-backend-go/internal/domain/notification"
	"github.com/hadir-app/hadir-backend-go/internal/pkg/workclock"
	conversationService "github.com/hadir-app/hadir-backend-go/internal/service/conversation"
	scheduleService "github.com/hadir-app/hadir-backend-go/internal/service/schedule"
)

// Each outbound dispatch is bounded so one unreachable recipient cannot
// stall the tick.
const dispatchTimeout = 15 * time.Second

const defaultLateThresholdMinutes = 30

// Config carries the rule-table settings resolved from app config.
type Config struct {
	DailySummaryAt      workclock.TimeOfDay
	LateAlertFrom       workclock.TimeOfDay
	LateAlertUntil      workclock.TimeOfDay
	LateAlertEvery      time.Duration
	MissedCheckoutAfter time.Duration
	KeepAliveEvery      time.Duration
}

// Service evaluates the time-based notification rules on every
// scheduler tick. Rules are idempotent per (rule, subject, date): a
// delayed or repeated tick can neither skip nor duplicate a trigger.
type Service struct {
	repo           notification.Repository
	employeeRepo   employee.Repository
	attendanceSvc  attendance.Service
	attendanceRepo attendance.Repository
	resolver       *scheduleService.Resolver
	conversations  *conversationService.Service
	sender         notification.Sender
	pinger         notification.Pinger
	cfg            Config
	loc            *time.Location
	now            func() time.Time
}

func NewService(
	repo notification.Repository,
	employeeRepo employee.Repository,
	attendanceSvc attendance.Service,
	attendanceRepo attendance.Repository,
	resolver *scheduleService.Resolver,
	conversations *conversationService.Service,
	sender notification.Sender,
	pinger notification.Pinger,
	cfg Config,
	loc *time.Location,
) *Service {
	if cfg.LateAlertEvery == 0 {
		cfg.LateAlertEvery = 30 * time.Minute
	}
	return &Service{
		repo:           repo,
		employeeRepo:   employeeRepo,
		attendanceSvc:  attendanceSvc,
		attendanceRepo: attendanceRepo,
		resolver:       resolver,
		conversations:  conversations,
		sender:         sender,
		pinger:         pinger,
		cfg:            cfg,
		loc:            loc,
		now:            time.Now,
	}
}

type rule struct {
	name string
	fn   func(ctx context.Context, now time.Time) error
}

// EvaluateTick runs every rule against the current time. A failing rule
// is logged and never aborts the tick; EvaluateTick itself always
// returns nil so the loop keeps running.
func (s *Service) EvaluateTick(ctx context.Context) error {
	now := s.now().In(s.loc)

	rules := []rule{
		{"daily_summary", s.dailySummary},
		{"checkin_reminder", s.checkInReminders},
		{"missed_checkout", s.missedCheckouts},
		{"late_alert", s.lateAlerts},
		{"keep_alive", s.keepAlive},
		{"expired_pending", s.expiredPending},
	}

	for _, r := range rules {
		if err := r.fn(ctx, now); err != nil {
			slog.Error("notification rule failed", "rule", r.name, "error", err)
		}
	}
	return nil
}

// dispatchOnce sends text to the recipient and stores the idempotency
// marker, unless a marker for (rule, subject, date) already exists. The
// unique constraint on the marker table closes the race between
// concurrent evaluators.
func (s *Service) dispatchOnce(ctx context.Context, ruleID notification.RuleID, subjectID, date, recipientChatID, text string) error {
	sent, err := s.repo.Exists(ctx, ruleID, subjectID, date)
	if err != nil {
		return err
	}
	if sent {
		return nil
	}

	sendCtx, cancel := context.WithTimeout(ctx, dispatchTimeout)
	defer cancel()
	if err := s.sender.Send(sendCtx, recipientChatID, text); err != nil {
		return fmt.Errorf("%w: %s", notification.ErrDispatchFailure, err)
	}

	_, err = s.repo.Create(ctx, notification.Record{
		RuleID:    ruleID,
		SubjectID: subjectID,
		Date:      date,
		Message:   text,
		SentAt:    s.now(),
	})
	if err != nil && err != notification.ErrAlreadySent {
		return err
	}
	return nil
}

// dailySummary sends the attendance digest to every admin once per day,
// on the first tick at or after the configured time.
func (s *Service) dailySummary(ctx context.Context, now time.Time) error {
	if workclock.FromTime(now).Before(s.cfg.DailySummaryAt) {
		return nil
	}

	date := workclock.DateOf(now, s.loc)
	admins, err := s.employeeRepo.ListAdmins(ctx)
	if err != nil {
		return err
	}
	if len(admins) == 0 {
		return nil
	}

	summary, err := s.attendanceSvc.DailySummary(ctx, date)
	if err != nil {
		return err
	}

	// Events already swept by the expiry rule only survive as dispatch
	// records; fold them into the unconfirmed count.
	if records, err := s.repo.ListByDate(ctx, date, 1000); err == nil {
		for _, record := range records {
			if record.RuleID == notification.RuleExpiredPending {
				summary.Unconfirmed++
			}
		}
	}

	text := formatDailySummary(summary)

	for _, admin := range admins {
		if err := s.dispatchOnce(ctx, notification.RuleDailySummary, admin.ID, date, admin.ChatID, text); err != nil {
			slog.Error("daily summary dispatch failed", "admin_id", admin.ID, "error", err)
		}
	}
	return nil
}

// checkInReminders nudges every employee who has no attendance record
// once their effective work start has passed. One reminder per employee
// per day.
func (s *Service) checkInReminders(ctx context.Context, now time.Time) error {
	date := workclock.DateOf(now, s.loc)
	tod := workclock.FromTime(now)

	employees, err := s.employeeRepo.ListActive(ctx)
	if err != nil {
		return err
	}

	for _, emp := range employees {
		hours, err := s.resolver.EffectiveHours(ctx, emp, date)
		if err != nil {
			slog.Error("check-in reminder: resolve hours failed", "employee_id", emp.ID, "error", err)
			continue
		}
		if !tod.After(hours.Start) || tod.After(hours.End) {
			continue
		}

		session, err := s.attendanceSvc.Status(ctx, emp.ID, date)
		if err != nil {
			slog.Error("check-in reminder: status lookup failed", "employee_id", emp.ID, "error", err)
			continue
		}
		if session != nil {
			continue
		}

		text := fmt.Sprintf(
			"Check-in reminder: your work day started at %s. Please share your location to check in.",
			hours.Start)
		if err := s.dispatchOnce(ctx, notification.RuleCheckInReminder, emp.ID, date, emp.ChatID, text); err != nil {
			slog.Error("check-in reminder dispatch failed", "employee_id", emp.ID, "error", err)
		}
	}
	return nil
}

// missedCheckouts reminds employees whose session has been open longer
// than the configured threshold.
func (s *Service) missedCheckouts(ctx context.Context, now time.Time) error {
	cutoff := now.Add(-s.cfg.MissedCheckoutAfter)

	sessions, err := s.attendanceRepo.ListOpenBefore(ctx, cutoff)
	if err != nil {
		return err
	}

	for _, session := range sessions {
		emp, err := s.employeeRepo.GetByID(ctx, session.EmployeeID)
		if err != nil {
			slog.Error("missed-checkout reminder: employee lookup failed", "employee_id", session.EmployeeID, "error", err)
			continue
		}

		text := fmt.Sprintf(
			"You checked in at %s and never checked out. Please share your location to close your session.",
			session.CheckInAt.In(s.loc).Format("15:04"))
		if err := s.dispatchOnce(ctx, notification.RuleMissedCheckout, emp.ID, session.Date, emp.ChatID, text); err != nil {
			slog.Error("missed-checkout dispatch failed", "employee_id", emp.ID, "error", err)
		}
	}
	return nil
}

// lateAlerts tells each admin, within the morning window and at most
// once per alert slot, which employees are past their start by more
// than the admin's threshold and still absent.
func (s *Service) lateAlerts(ctx context.Context, now time.Time) error {
	tod := workclock.FromTime(now)
	if tod.Before(s.cfg.LateAlertFrom) || tod.After(s.cfg.LateAlertUntil) {
		return nil
	}

	date := workclock.DateOf(now, s.loc)
	slot := now.Truncate(s.cfg.LateAlertEvery).Format("15:04")

	admins, err := s.employeeRepo.ListAdmins(ctx)
	if err != nil {
		return err
	}
	if len(admins) == 0 {
		return nil
	}

	employees, err := s.employeeRepo.ListActive(ctx)
	if err != nil {
		return err
	}

	type lateEmployee struct {
		name    string
		minutes int
	}

	// Resolve hours and absence once; per-admin thresholds only filter.
	var absentees []lateEmployee
	for _, emp := range employees {
		hours, err := s.resolver.EffectiveHours(ctx, emp, date)
		if err != nil {
			continue
		}
		if !tod.After(hours.Start) {
			continue
		}
		session, err := s.attendanceSvc.Status(ctx, emp.ID, date)
		if err != nil || session != nil {
			continue
		}
		absentees = append(absentees, lateEmployee{name: emp.FullName, minutes: tod.Sub(hours.Start)})
	}
	if len(absentees) == 0 {
		return nil
	}

	for _, admin := range admins {
		threshold := admin.AlertThresholdMinutes
		if threshold <= 0 {
			threshold = defaultLateThresholdMinutes
		}

		var lines []string
		for _, late := range absentees {
			if late.minutes >= threshold {
				lines = append(lines, fmt.Sprintf("- %s: %d minutes late", late.name, late.minutes))
			}
		}
		if len(lines) == 0 {
			continue
		}

		text := fmt.Sprintf("Late check-in alert (%s):\n%s", date, strings.Join(lines, "\n"))
		subject := admin.ID + "/" + slot
		if err := s.dispatchOnce(ctx, notification.RuleLateAlert, subject, date, admin.ChatID, text); err != nil {
			slog.Error("late alert dispatch failed", "admin_id", admin.ID, "error", err)
		}
	}
	return nil
}

// keepAlive pings the chat API once per slot to keep free-tier hosting
// from idling out. The slot is folded into the subject so the marker
// table stays the single idempotency mechanism.
func (s *Service) keepAlive(ctx context.Context, now time.Time) error {
	if s.pinger == nil {
		return nil
	}

	date := workclock.DateOf(now, s.loc)
	slot := now.Truncate(s.cfg.KeepAliveEvery).Format("15:04")
	subject := "server/" + slot

	sent, err := s.repo.Exists(ctx, notification.RuleKeepAlive, subject, date)
	if err != nil {
		return err
	}
	if sent {
		return nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, dispatchTimeout)
	defer cancel()
	if err := s.pinger.Ping(pingCtx); err != nil {
		return err
	}

	_, err = s.repo.Create(ctx, notification.Record{
		RuleID:    notification.RuleKeepAlive,
		SubjectID: subject,
		Date:      date,
		Message:   "keep-alive ping",
		SentAt:    s.now(),
	})
	if err != nil && err != notification.ErrAlreadySent {
		return err
	}
	return nil
}

// expiredPending sweeps conversation states whose TTL passed without a
// justification. The pending event is discarded, never committed, and
// the employee is told their event was not recorded.
func (s *Service) expiredPending(ctx context.Context, now time.Time) error {
	states, err := s.conversations.Expired(ctx)
	if err != nil {
		return err
	}

	for _, state := range states {
		pending := state.Payload

		// Discard, never commit. Live states go through the abort flow;
		// expired ones already read as idle, so the stored row just
		// needs removing.
		if err := s.conversations.Clear(ctx, state.EmployeeID); err != nil {
			slog.Error("expired-pending clear failed", "employee_id", state.EmployeeID, "error", err)
			continue
		}
		slog.Warn("pending attendance event expired without justification",
			"employee_id", state.EmployeeID,
			"kind", pending.Kind,
			"at", pending.At)

		emp, err := s.employeeRepo.GetByID(ctx, state.EmployeeID)
		if err != nil {
			continue
		}

		what := "check-out"
		if pending.Kind == attendance.KindCheckIn {
			what = "check-in"
		}
		text := fmt.Sprintf(
			"Your %s at %s was NOT recorded because no reason was provided in time. Please share your location again.",
			what, pending.At.In(s.loc).Format("15:04"))

		date := workclock.DateOf(pending.At, s.loc)
		if err := s.dispatchOnce(ctx, notification.RuleExpiredPending, emp.ID+"/"+pending.Kind, date, emp.ChatID, text); err != nil {
			slog.Error("expired-pending dispatch failed", "employee_id", emp.ID, "error", err)
		}
	}
	return nil
}

func formatDailySummary(s attendance.DailySummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Daily attendance summary for %s\n", s.Date)
	fmt.Fprintf(&b, "Employees: %d, checked in: %d, checked out: %d, still working: %d\n",
		s.TotalEmployees, s.CheckedIn, s.CheckedOut, s.StillWorking)
	fmt.Fprintf(&b, "Late check-ins: %d, early check-outs: %d", s.LateCount, s.EarlyCount)
	if s.Unconfirmed > 0 {
		fmt.Fprintf(&b, ", unconfirmed events: %d", s.Unconfirmed)
	}
	for _, e := range s.LateEntries {
		reason := "no reason"
		if e.Reason != nil {
			reason = *e.Reason
		}
		fmt.Fprintf(&b, "\n- late: %s at %s (%s)", e.EmployeeName, e.At.Format("15:04"), reason)
	}
	for _, e := range s.EarlyEntries {
		reason := "no reason"
		if e.Reason != nil {
			reason = *e.Reason
		}
		fmt.Fprintf(&b, "\n- early: %s at %s (%s)", e.EmployeeName, e.At.Format("15:04"), reason)
	}
	return b.String()
}
