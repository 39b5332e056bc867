package attendance

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hadir-app/hadir-backend-go/internal/domain/attendance"
	"github.com/hadir-app/hadir-backend-go/internal/domain/conversation"
	"github.com/hadir-app/hadir-backend-go/internal/domain/employee"
	"github.com/hadir-app/hadir-backend-go/internal/pkg/sse"
	"github.com/hadir-app/hadir-backend-go/internal/pkg/workclock"
	conversationService "github.com/hadir-app/hadir-backend-go/internal/service/conversation"
	scheduleService "github.com/hadir-app/hadir-backend-go/internal/service/schedule"
)

// TopicAttendance is the SSE topic live check-in/out events are
// published on for the dashboard.
const TopicAttendance = "attendance"

type service struct {
	attendanceRepo attendance.Repository
	employeeRepo   employee.Repository
	resolver       *scheduleService.Resolver
	conversations  *conversationService.Service
	tx             attendance.Transactor
	hub            *sse.Hub
	loc            *time.Location

	// Per-employee locks serialize check-in/check-out/finalize so two
	// concurrent check-ins cannot both observe "no open session".
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewService(
	attendanceRepo attendance.Repository,
	employeeRepo employee.Repository,
	resolver *scheduleService.Resolver,
	conversations *conversationService.Service,
	tx attendance.Transactor,
	hub *sse.Hub,
	loc *time.Location,
) attendance.Service {
	return &service{
		attendanceRepo: attendanceRepo,
		employeeRepo:   employeeRepo,
		resolver:       resolver,
		conversations:  conversations,
		tx:             tx,
		hub:            hub,
		loc:            loc,
		locks:          make(map[string]*sync.Mutex),
	}
}

func (s *service) withinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.tx == nil {
		return fn(ctx)
	}
	return s.tx.WithinTransaction(ctx, fn)
}

func (s *service) employeeLock(employeeID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[employeeID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[employeeID] = l
	}
	return l
}

func (s *service) activeEmployee(ctx context.Context, employeeID string) (employee.Employee, error) {
	emp, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return employee.Employee{}, err
	}
	if !emp.Active {
		return employee.Employee{}, employee.ErrEmployeeDeactivated
	}
	return emp, nil
}

// CheckIn implements attendance.Service.
func (s *service) CheckIn(ctx context.Context, employeeID string, at time.Time, lat, lon, distance float64) (attendance.EventResult, error) {
	l := s.employeeLock(employeeID)
	l.Lock()
	defer l.Unlock()

	emp, err := s.activeEmployee(ctx, employeeID)
	if err != nil {
		return attendance.EventResult{}, err
	}

	date := workclock.DateOf(at, s.loc)

	open, err := s.attendanceRepo.GetOpenSession(ctx, employeeID, date)
	if err != nil {
		return attendance.EventResult{}, err
	}
	if open != nil {
		return attendance.EventResult{}, attendance.ErrAlreadyOpenSession
	}

	hours, err := s.resolver.EffectiveHours(ctx, emp, date)
	if err != nil {
		return attendance.EventResult{}, err
	}

	// Strict comparison: arriving exactly at the effective start is
	// on time.
	isLate := workclock.FromTime(at.In(s.loc)).After(hours.Start)

	if isLate {
		// Deferred commit: nothing is persisted until the justification
		// arrives via FinalizeCheckIn.
		pending := attendance.PendingEvent{
			Kind:     attendance.KindCheckIn,
			At:       at,
			Lat:      lat,
			Lon:      lon,
			Distance: distance,
		}
		if err := s.conversations.Begin(ctx, employeeID, conversation.ModeAwaitingLate, pending); err != nil {
			return attendance.EventResult{}, err
		}
		slog.Info("late check-in deferred pending justification",
			"employee_id", employeeID,
			"at", at,
			"work_start", hours.Start.String())
		return attendance.EventResult{ReasonRequired: true, Hours: hours, Distance: distance}, nil
	}

	session, err := s.attendanceRepo.Create(ctx, attendance.Session{
		EmployeeID:      employeeID,
		Date:            date,
		CheckInAt:       at,
		CheckInLat:      lat,
		CheckInLon:      lon,
		CheckInDistance: distance,
		IsLate:          false,
	})
	if err != nil {
		return attendance.EventResult{}, err
	}

	s.publish("check_in", session)
	return attendance.EventResult{Session: &session, Hours: hours, Distance: distance}, nil
}

// CheckOut implements attendance.Service.
func (s *service) CheckOut(ctx context.Context, employeeID string, at time.Time, lat, lon, distance float64) (attendance.EventResult, error) {
	l := s.employeeLock(employeeID)
	l.Lock()
	defer l.Unlock()

	emp, err := s.activeEmployee(ctx, employeeID)
	if err != nil {
		return attendance.EventResult{}, err
	}

	date := workclock.DateOf(at, s.loc)

	open, err := s.attendanceRepo.GetOpenSession(ctx, employeeID, date)
	if err != nil {
		return attendance.EventResult{}, err
	}
	if open == nil {
		return attendance.EventResult{}, attendance.ErrNoOpenSession
	}
	if !at.After(open.CheckInAt) {
		return attendance.EventResult{}, attendance.ErrCheckOutNotAfter
	}

	hours, err := s.resolver.EffectiveHours(ctx, emp, date)
	if err != nil {
		return attendance.EventResult{}, err
	}

	// Strict comparison: leaving exactly at the effective end is not
	// early.
	isEarly := workclock.FromTime(at.In(s.loc)).Before(hours.End)

	if isEarly {
		pending := attendance.PendingEvent{
			Kind:     attendance.KindCheckOut,
			At:       at,
			Lat:      lat,
			Lon:      lon,
			Distance: distance,
		}
		if err := s.conversations.Begin(ctx, employeeID, conversation.ModeAwaitingEarly, pending); err != nil {
			return attendance.EventResult{}, err
		}
		slog.Info("early check-out deferred pending justification",
			"employee_id", employeeID,
			"at", at,
			"work_end", hours.End.String())
		return attendance.EventResult{ReasonRequired: true, Hours: hours, Distance: distance}, nil
	}

	closed, err := s.closeSession(ctx, *open, at, lat, lon, distance, false, nil)
	if err != nil {
		return attendance.EventResult{}, err
	}

	s.publish("check_out", closed)
	return attendance.EventResult{Session: &closed, Hours: hours, Distance: distance}, nil
}

// FinalizeCheckIn implements attendance.Service. The pending state is
// cleared only after the session write lands, so a store failure leaves
// the event in place for the employee to resend the reason.
func (s *service) FinalizeCheckIn(ctx context.Context, employeeID string, reason string) (attendance.Session, error) {
	l := s.employeeLock(employeeID)
	l.Lock()
	defer l.Unlock()

	var session attendance.Session
	err := s.withinTx(ctx, func(ctx context.Context) error {
		mode, pending, err := s.conversations.Current(ctx, employeeID)
		if err != nil {
			return err
		}
		if pending == nil || mode != conversation.ModeAwaitingLate || pending.Kind != attendance.KindCheckIn {
			return attendance.ErrNoPendingAction
		}

		date := workclock.DateOf(pending.At, s.loc)

		open, err := s.attendanceRepo.GetOpenSession(ctx, employeeID, date)
		if err != nil {
			return err
		}
		if open != nil {
			// Stale pending event: consume it so the next free-text
			// message is not misread as a justification.
			if err := s.conversations.Clear(ctx, employeeID); err != nil {
				return err
			}
			return attendance.ErrAlreadyOpenSession
		}

		session, err = s.attendanceRepo.Create(ctx, attendance.Session{
			EmployeeID:      employeeID,
			Date:            date,
			CheckInAt:       pending.At,
			CheckInLat:      pending.Lat,
			CheckInLon:      pending.Lon,
			CheckInDistance: pending.Distance,
			IsLate:          true,
			LateReason:      &reason,
		})
		if err != nil {
			return err
		}

		return s.conversations.Clear(ctx, employeeID)
	})
	if err != nil {
		return attendance.Session{}, err
	}

	slog.Info("late check-in finalized", "employee_id", employeeID, "at", session.CheckInAt)
	s.publish("check_in", session)
	return session, nil
}

// FinalizeCheckOut implements attendance.Service. Same ordering as
// FinalizeCheckIn: the ledger write comes first, the state clear after.
func (s *service) FinalizeCheckOut(ctx context.Context, employeeID string, reason string) (attendance.Session, error) {
	l := s.employeeLock(employeeID)
	l.Lock()
	defer l.Unlock()

	var closed attendance.Session
	err := s.withinTx(ctx, func(ctx context.Context) error {
		mode, pending, err := s.conversations.Current(ctx, employeeID)
		if err != nil {
			return err
		}
		if pending == nil || mode != conversation.ModeAwaitingEarly || pending.Kind != attendance.KindCheckOut {
			return attendance.ErrNoPendingAction
		}

		date := workclock.DateOf(pending.At, s.loc)

		open, err := s.attendanceRepo.GetOpenSession(ctx, employeeID, date)
		if err != nil {
			return err
		}
		if open == nil {
			if err := s.conversations.Clear(ctx, employeeID); err != nil {
				return err
			}
			return attendance.ErrNoOpenSession
		}
		if !pending.At.After(open.CheckInAt) {
			if err := s.conversations.Clear(ctx, employeeID); err != nil {
				return err
			}
			return attendance.ErrCheckOutNotAfter
		}

		closed, err = s.closeSession(ctx, *open, pending.At, pending.Lat, pending.Lon, pending.Distance, true, &reason)
		if err != nil {
			return err
		}

		return s.conversations.Clear(ctx, employeeID)
	})
	if err != nil {
		return attendance.Session{}, err
	}

	slog.Info("early check-out finalized", "employee_id", employeeID, "at", *closed.CheckOutAt)
	s.publish("check_out", closed)
	return closed, nil
}

// AbortPending implements attendance.Service.
func (s *service) AbortPending(ctx context.Context, employeeID string) (*attendance.PendingEvent, error) {
	l := s.employeeLock(employeeID)
	l.Lock()
	defer l.Unlock()

	mode, pending, err := s.conversations.Take(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if pending == nil || mode == conversation.ModeIdle {
		return nil, nil
	}

	slog.Warn("pending attendance event discarded without ledger write",
		"employee_id", employeeID,
		"kind", pending.Kind,
		"at", pending.At)
	return pending, nil
}

func (s *service) closeSession(ctx context.Context, open attendance.Session, at time.Time, lat, lon, distance float64, isEarly bool, earlyReason *string) (attendance.Session, error) {
	open.CheckOutAt = &at
	open.CheckOutLat = &lat
	open.CheckOutLon = &lon
	open.CheckOutDistance = &distance
	open.IsEarly = isEarly
	open.EarlyReason = earlyReason
	open.Status = attendance.StatusClosed

	if err := s.attendanceRepo.Close(ctx, open); err != nil {
		return attendance.Session{}, err
	}

	return open, nil
}

// Status implements attendance.Service.
func (s *service) Status(ctx context.Context, employeeID string, date string) (*attendance.Session, error) {
	return s.attendanceRepo.GetByEmployeeAndDate(ctx, employeeID, date)
}

// History implements attendance.Service.
func (s *service) History(ctx context.Context, employeeID string, limit int) ([]attendance.Session, error) {
	if limit <= 0 || limit > 100 {
		limit = 30
	}
	return s.attendanceRepo.History(ctx, employeeID, limit)
}

// DailySummary implements attendance.Service.
func (s *service) DailySummary(ctx context.Context, date string) (attendance.DailySummary, error) {
	sessions, err := s.attendanceRepo.ListByDate(ctx, date)
	if err != nil {
		return attendance.DailySummary{}, err
	}
	active, err := s.employeeRepo.ListActive(ctx)
	if err != nil {
		return attendance.DailySummary{}, err
	}

	names := make(map[string]string, len(active))
	for _, emp := range active {
		names[emp.ID] = emp.FullName
	}

	summary := attendance.DailySummary{
		Date:           date,
		TotalEmployees: len(active),
	}

	for _, sess := range sessions {
		summary.CheckedIn++
		if sess.Status == attendance.StatusClosed {
			summary.CheckedOut++
		}
		if sess.IsLate {
			summary.LateCount++
			summary.LateEntries = append(summary.LateEntries, attendance.SummaryEntry{
				EmployeeID:   sess.EmployeeID,
				EmployeeName: names[sess.EmployeeID],
				At:           sess.CheckInAt,
				Reason:       sess.LateReason,
			})
		}
		if sess.IsEarly {
			summary.EarlyCount++
			entry := attendance.SummaryEntry{
				EmployeeID:   sess.EmployeeID,
				EmployeeName: names[sess.EmployeeID],
				Reason:       sess.EarlyReason,
				CheckOutAt:   sess.CheckOutAt,
			}
			if sess.CheckOutAt != nil {
				entry.At = *sess.CheckOutAt
			}
			summary.EarlyEntries = append(summary.EarlyEntries, entry)
		}
	}
	summary.StillWorking = summary.CheckedIn - summary.CheckedOut

	// Events whose justification never arrived: counted so the evening
	// report surfaces what the ledger deliberately did not record. A
	// conversation-store failure costs only this count, not the summary.
	expired, err := s.conversations.Expired(ctx)
	if err != nil {
		slog.Error("daily summary: unconfirmed count unavailable", "date", date, "error", err)
		return summary, nil
	}
	for _, st := range expired {
		if workclock.DateOf(st.Payload.At, s.loc) == date {
			summary.Unconfirmed++
		}
	}

	return summary, nil
}

func (s *service) publish(event string, session attendance.Session) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(TopicAttendance, sse.Event{
		Topic: TopicAttendance,
		Event: event,
		Data:  attendance.ToResponse(session),
	})
}
