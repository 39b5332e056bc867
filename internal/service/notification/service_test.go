package notification

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hadir-app/hadir-backend-go/internal/domain/attendance"
	"github.com/hadir-app/hadir-backend-go/internal/domain/conversation"
	"github.com/hadir-app/hadir-backend-go/internal/domain/employee"
	"github.com/hadir-app/hadir-backend-go/internal/domain/notification"
	"github.com/hadir-app/hadir-backend-go/internal/domain/schedule"
	"github.com/hadir-app/hadir-backend-go/internal/pkg/workclock"
	conversationService "github.com/hadir-app/hadir-backend-go/internal/service/conversation"
	scheduleService "github.com/hadir-app/hadir-backend-go/internal/service/schedule"
)

type fakeNotificationRepo struct {
	records map[string]notification.Record
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{records: make(map[string]notification.Record)}
}

func key(ruleID notification.RuleID, subjectID, date string) string {
	return string(ruleID) + "|" + subjectID + "|" + date
}

func (f *fakeNotificationRepo) Exists(ctx context.Context, ruleID notification.RuleID, subjectID string, date string) (bool, error) {
	_, ok := f.records[key(ruleID, subjectID, date)]
	return ok, nil
}

func (f *fakeNotificationRepo) Create(ctx context.Context, record notification.Record) (notification.Record, error) {
	k := key(record.RuleID, record.SubjectID, record.Date)
	if _, ok := f.records[k]; ok {
		return notification.Record{}, notification.ErrAlreadySent
	}
	f.records[k] = record
	return record, nil
}

func (f *fakeNotificationRepo) ListByDate(ctx context.Context, date string, limit int) ([]notification.Record, error) {
	var out []notification.Record
	for _, r := range f.records {
		if r.Date == date {
			out = append(out, r)
		}
	}
	return out, nil
}

type sentMessage struct {
	chatID string
	text   string
}

type fakeSender struct {
	sent []sentMessage
}

func (f *fakeSender) Send(ctx context.Context, recipientChatID string, text string) error {
	f.sent = append(f.sent, sentMessage{chatID: recipientChatID, text: text})
	return nil
}

type fakePinger struct {
	pings int
}

func (f *fakePinger) Ping(ctx context.Context) error {
	f.pings++
	return nil
}

type fakeEmployeeRepo struct {
	employees map[string]employee.Employee
}

func (f *fakeEmployeeRepo) Create(ctx context.Context, emp employee.Employee) (employee.Employee, error) {
	f.employees[emp.ID] = emp
	return emp, nil
}
func (f *fakeEmployeeRepo) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	if emp, ok := f.employees[id]; ok {
		return emp, nil
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}
func (f *fakeEmployeeRepo) GetByChatID(ctx context.Context, chatID string) (employee.Employee, error) {
	return employee.Employee{}, employee.ErrEmployeeNotFound
}
func (f *fakeEmployeeRepo) GetByPhone(ctx context.Context, phone string) (employee.Employee, error) {
	return employee.Employee{}, employee.ErrEmployeeNotFound
}
func (f *fakeEmployeeRepo) Update(ctx context.Context, emp employee.Employee) error { return nil }
func (f *fakeEmployeeRepo) ListActive(ctx context.Context) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, emp := range f.employees {
		if emp.Active {
			out = append(out, emp)
		}
	}
	return out, nil
}
func (f *fakeEmployeeRepo) ListAdmins(ctx context.Context) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, emp := range f.employees {
		if emp.Active && emp.IsAdmin {
			out = append(out, emp)
		}
	}
	return out, nil
}
func (f *fakeEmployeeRepo) Deactivate(ctx context.Context, id string) error { return nil }

type fakeScheduleRepo struct{}

func (fakeScheduleRepo) Upsert(ctx context.Context, sched schedule.ExceptionalSchedule) (schedule.ExceptionalSchedule, error) {
	return sched, nil
}
func (fakeScheduleRepo) GetByEmployeeAndDate(ctx context.Context, employeeID string, date string) (*schedule.ExceptionalSchedule, error) {
	return nil, nil
}
func (fakeScheduleRepo) ListByDate(ctx context.Context, date string) ([]schedule.ExceptionalSchedule, error) {
	return nil, nil
}

type fakeConversationRepo struct {
	states map[string]conversation.State
}

func (f *fakeConversationRepo) Set(ctx context.Context, state conversation.State) error {
	f.states[state.EmployeeID] = state
	return nil
}
func (f *fakeConversationRepo) Get(ctx context.Context, employeeID string) (*conversation.State, error) {
	if state, ok := f.states[employeeID]; ok {
		return &state, nil
	}
	return nil, nil
}
func (f *fakeConversationRepo) Delete(ctx context.Context, employeeID string) error {
	delete(f.states, employeeID)
	return nil
}
func (f *fakeConversationRepo) ListExpired(ctx context.Context, now time.Time) ([]conversation.State, error) {
	var out []conversation.State
	for _, state := range f.states {
		if state.Expired(now) {
			out = append(out, state)
		}
	}
	return out, nil
}

type fakeAttendanceRepo struct {
	openSessions []attendance.Session
}

func (f *fakeAttendanceRepo) Create(ctx context.Context, s attendance.Session) (attendance.Session, error) {
	return s, nil
}
func (f *fakeAttendanceRepo) Close(ctx context.Context, s attendance.Session) error { return nil }
func (f *fakeAttendanceRepo) GetOpenSession(ctx context.Context, employeeID string, date string) (*attendance.Session, error) {
	return nil, nil
}
func (f *fakeAttendanceRepo) GetByEmployeeAndDate(ctx context.Context, employeeID string, date string) (*attendance.Session, error) {
	return nil, nil
}
func (f *fakeAttendanceRepo) ListByDate(ctx context.Context, date string) ([]attendance.Session, error) {
	return nil, nil
}
func (f *fakeAttendanceRepo) ListOpenBefore(ctx context.Context, cutoff time.Time) ([]attendance.Session, error) {
	var out []attendance.Session
	for _, s := range f.openSessions {
		if s.CheckInAt.Before(cutoff) {
			out = append(out, s)
		}
	}
	return out, nil
}
func (f *fakeAttendanceRepo) History(ctx context.Context, employeeID string, limit int) ([]attendance.Session, error) {
	return nil, nil
}

// fakeAttendanceService satisfies attendance.Service with canned data.
type fakeAttendanceService struct {
	summary    attendance.DailySummary
	statusByID map[string]*attendance.Session
	aborted    []string
	abortedOut map[string]*attendance.PendingEvent
}

func (f *fakeAttendanceService) CheckIn(ctx context.Context, employeeID string, at time.Time, lat, lon, distance float64) (attendance.EventResult, error) {
	return attendance.EventResult{}, nil
}
func (f *fakeAttendanceService) CheckOut(ctx context.Context, employeeID string, at time.Time, lat, lon, distance float64) (attendance.EventResult, error) {
	return attendance.EventResult{}, nil
}
func (f *fakeAttendanceService) FinalizeCheckIn(ctx context.Context, employeeID string, reason string) (attendance.Session, error) {
	return attendance.Session{}, nil
}
func (f *fakeAttendanceService) FinalizeCheckOut(ctx context.Context, employeeID string, reason string) (attendance.Session, error) {
	return attendance.Session{}, nil
}
func (f *fakeAttendanceService) AbortPending(ctx context.Context, employeeID string) (*attendance.PendingEvent, error) {
	f.aborted = append(f.aborted, employeeID)
	if f.abortedOut != nil {
		return f.abortedOut[employeeID], nil
	}
	return nil, nil
}
func (f *fakeAttendanceService) Status(ctx context.Context, employeeID string, date string) (*attendance.Session, error) {
	return f.statusByID[employeeID], nil
}
func (f *fakeAttendanceService) DailySummary(ctx context.Context, date string) (attendance.DailySummary, error) {
	return f.summary, nil
}
func (f *fakeAttendanceService) History(ctx context.Context, employeeID string, limit int) ([]attendance.Session, error) {
	return nil, nil
}

func mustParse(t *testing.T, s string) workclock.TimeOfDay {
	t.Helper()
	tod, err := workclock.Parse(s)
	require.NoError(t, err)
	return tod
}

type testEnv struct {
	svc            *Service
	repo           *fakeNotificationRepo
	sender         *fakeSender
	pinger         *fakePinger
	employees      *fakeEmployeeRepo
	attendanceSvc  *fakeAttendanceService
	attendanceRepo *fakeAttendanceRepo
	convRepo       *fakeConversationRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repo := newFakeNotificationRepo()
	sender := &fakeSender{}
	pinger := &fakePinger{}
	employees := &fakeEmployeeRepo{employees: map[string]employee.Employee{
		"admin-1": {ID: "admin-1", ChatID: "9001", FullName: "Mona Hassan", IsAdmin: true, Active: true},
		"emp-1":   {ID: "emp-1", ChatID: "1001", FullName: "Sara Adel", Active: true},
	}}
	attendanceSvc := &fakeAttendanceService{statusByID: make(map[string]*attendance.Session)}
	attendanceRepo := &fakeAttendanceRepo{}
	convRepo := &fakeConversationRepo{states: make(map[string]conversation.State)}
	conversations := conversationService.NewService(convRepo, 30*time.Minute)
	resolver := scheduleService.NewResolver(fakeScheduleRepo{}, mustParse(t, "09:00"), mustParse(t, "17:00"))

	svc := NewService(
		repo,
		employees,
		attendanceSvc,
		attendanceRepo,
		resolver,
		conversations,
		sender,
		pinger,
		Config{
			DailySummaryAt:      mustParse(t, "20:00"),
			LateAlertFrom:       mustParse(t, "09:00"),
			LateAlertUntil:      mustParse(t, "12:00"),
			MissedCheckoutAfter: 10 * time.Hour,
			KeepAliveEvery:      14 * time.Minute,
		},
		time.UTC,
	)

	return &testEnv{
		svc:            svc,
		repo:           repo,
		sender:         sender,
		pinger:         pinger,
		employees:      employees,
		attendanceSvc:  attendanceSvc,
		attendanceRepo: attendanceRepo,
		convRepo:       convRepo,
	}
}

func countContaining(sender *fakeSender, chatID, sub string) int {
	n := 0
	for _, m := range sender.sent {
		if m.chatID == chatID && strings.Contains(m.text, sub) {
			n++
		}
	}
	return n
}

func countSentTo(sender *fakeSender, chatID string) int {
	n := 0
	for _, m := range sender.sent {
		if m.chatID == chatID {
			n++
		}
	}
	return n
}

func TestDailySummarySentOncePerAdmin(t *testing.T) {
	env := newTestEnv(t)
	env.attendanceSvc.summary = attendance.DailySummary{
		Date:           "2026-08-25",
		TotalEmployees: 2,
		CheckedIn:      2,
		CheckedOut:     2,
		LateCount:      1,
	}

	now := time.Date(2026, 8, 25, 20, 5, 0, 0, time.UTC)
	env.svc.now = func() time.Time { return now }

	require.NoError(t, env.svc.EvaluateTick(context.Background()))
	assert.Equal(t, 1, countSentTo(env.sender, "9001"))

	// A second tick in the same window changes nothing.
	env.svc.now = func() time.Time { return now.Add(time.Minute) }
	require.NoError(t, env.svc.EvaluateTick(context.Background()))
	assert.Equal(t, 1, countSentTo(env.sender, "9001"))
}

func TestDailySummaryNotBeforeConfiguredTime(t *testing.T) {
	env := newTestEnv(t)
	env.svc.now = func() time.Time { return time.Date(2026, 8, 25, 19, 59, 0, 0, time.UTC) }

	require.NoError(t, env.svc.EvaluateTick(context.Background()))
	assert.Equal(t, 0, countSentTo(env.sender, "9001"))
}

func TestCheckInReminderOnlyWhenAbsent(t *testing.T) {
	env := newTestEnv(t)

	// 09:30, employee absent: one reminder, idempotent across ticks.
	env.svc.now = func() time.Time { return time.Date(2026, 8, 25, 9, 30, 0, 0, time.UTC) }
	require.NoError(t, env.svc.EvaluateTick(context.Background()))
	require.NoError(t, env.svc.EvaluateTick(context.Background()))
	assert.Equal(t, 1, countSentTo(env.sender, "1001"))

	// An employee with a session gets no reminder.
	env.sender.sent = nil
	env.repo.records = make(map[string]notification.Record)
	env.attendanceSvc.statusByID["emp-1"] = &attendance.Session{ID: "s1", Status: attendance.StatusOpen}
	require.NoError(t, env.svc.EvaluateTick(context.Background()))
	assert.Equal(t, 0, countSentTo(env.sender, "1001"))
}

func TestCheckInReminderNotBeforeStart(t *testing.T) {
	env := newTestEnv(t)

	env.svc.now = func() time.Time { return time.Date(2026, 8, 25, 8, 30, 0, 0, time.UTC) }
	require.NoError(t, env.svc.EvaluateTick(context.Background()))
	assert.Equal(t, 0, countSentTo(env.sender, "1001"))
}

func TestMissedCheckoutReminderPastThreshold(t *testing.T) {
	env := newTestEnv(t)

	// Checked in at 08:45, never out; at 19:30 the session is past the
	// 10 hour threshold.
	env.attendanceRepo.openSessions = []attendance.Session{{
		ID:         "s1",
		EmployeeID: "emp-1",
		Date:       "2026-08-25",
		CheckInAt:  time.Date(2026, 8, 25, 8, 45, 0, 0, time.UTC),
		Status:     attendance.StatusOpen,
	}}
	env.svc.now = func() time.Time { return time.Date(2026, 8, 25, 19, 30, 0, 0, time.UTC) }

	require.NoError(t, env.svc.EvaluateTick(context.Background()))
	assert.Equal(t, 1, countContaining(env.sender, "1001", "never checked out"))

	// A later tick does not repeat the reminder.
	env.svc.now = func() time.Time { return time.Date(2026, 8, 25, 19, 45, 0, 0, time.UTC) }
	require.NoError(t, env.svc.EvaluateTick(context.Background()))
	assert.Equal(t, 1, countContaining(env.sender, "1001", "never checked out"))
}

func TestMissedCheckoutSilentAtOrWithinThreshold(t *testing.T) {
	env := newTestEnv(t)

	// Exactly 10 hours open at 19:30: not yet past the threshold.
	env.attendanceRepo.openSessions = []attendance.Session{{
		ID:         "s1",
		EmployeeID: "emp-1",
		Date:       "2026-08-25",
		CheckInAt:  time.Date(2026, 8, 25, 9, 30, 0, 0, time.UTC),
		Status:     attendance.StatusOpen,
	}}
	env.svc.now = func() time.Time { return time.Date(2026, 8, 25, 19, 30, 0, 0, time.UTC) }

	require.NoError(t, env.svc.EvaluateTick(context.Background()))
	assert.Equal(t, 0, countContaining(env.sender, "1001", "never checked out"))
}

func TestLateAlertListsAbsenteesPastThreshold(t *testing.T) {
	env := newTestEnv(t)

	// Admin threshold defaults to 30 minutes; at 09:45 the absentee is
	// 45 minutes late.
	env.svc.now = func() time.Time { return time.Date(2026, 8, 25, 9, 45, 0, 0, time.UTC) }
	require.NoError(t, env.svc.EvaluateTick(context.Background()))

	var alert *sentMessage
	for i := range env.sender.sent {
		if env.sender.sent[i].chatID == "9001" {
			alert = &env.sender.sent[i]
		}
	}
	require.NotNil(t, alert)
	assert.Contains(t, alert.text, "Sara Adel")
	assert.Contains(t, alert.text, "45 minutes late")

	// Same slot, no duplicate.
	before := len(env.sender.sent)
	require.NoError(t, env.svc.EvaluateTick(context.Background()))
	assert.Equal(t, before, len(env.sender.sent))
}

func TestLateAlertOutsideWindowSilent(t *testing.T) {
	env := newTestEnv(t)

	env.svc.now = func() time.Time { return time.Date(2026, 8, 25, 13, 0, 0, 0, time.UTC) }
	require.NoError(t, env.svc.EvaluateTick(context.Background()))
	assert.Equal(t, 0, countSentTo(env.sender, "9001"))
}

func TestKeepAliveOncePerSlot(t *testing.T) {
	env := newTestEnv(t)

	base := time.Date(2026, 8, 25, 3, 0, 0, 0, time.UTC)
	env.svc.now = func() time.Time { return base }
	require.NoError(t, env.svc.EvaluateTick(context.Background()))
	env.svc.now = func() time.Time { return base.Add(time.Minute) }
	require.NoError(t, env.svc.EvaluateTick(context.Background()))
	assert.Equal(t, 1, env.pinger.pings)

	// Next slot pings again.
	env.svc.now = func() time.Time { return base.Add(14 * time.Minute) }
	require.NoError(t, env.svc.EvaluateTick(context.Background()))
	assert.Equal(t, 2, env.pinger.pings)
}

func TestExpiredPendingDiscardsAndNotifies(t *testing.T) {
	env := newTestEnv(t)

	eventAt := time.Date(2026, 8, 25, 9, 30, 0, 0, time.UTC)
	pending := attendance.PendingEvent{Kind: attendance.KindCheckIn, At: eventAt}
	env.convRepo.states["emp-1"] = conversation.State{
		EmployeeID: "emp-1",
		Mode:       conversation.ModeAwaitingLate,
		Payload:    pending,
		ExpiresAt:  eventAt.Add(30 * time.Minute),
	}
	// Past the TTL, outside the windows of the other employee rules.
	env.svc.now = func() time.Time { return time.Date(2026, 8, 25, 13, 30, 0, 0, time.UTC) }
	require.NoError(t, env.svc.EvaluateTick(context.Background()))

	// The stored state is gone and nothing reached the ledger.
	assert.Empty(t, env.convRepo.states)

	var found bool
	for _, m := range env.sender.sent {
		if m.chatID == "1001" && strings.Contains(m.text, "NOT recorded") {
			found = true
		}
	}
	assert.True(t, found)
}
