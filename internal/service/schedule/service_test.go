package schedule

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hadir-app/hadir-backend-go/internal/domain/employee"
	"github.com/hadir-app/hadir-backend-go/internal/domain/schedule"
	"github.com/hadir-app/hadir-backend-go/internal/pkg/workclock"
)

type fakeScheduleRepo struct {
	overrides map[string]schedule.ExceptionalSchedule
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{overrides: make(map[string]schedule.ExceptionalSchedule)}
}

func (f *fakeScheduleRepo) Upsert(ctx context.Context, sched schedule.ExceptionalSchedule) (schedule.ExceptionalSchedule, error) {
	f.overrides[sched.EmployeeID+"/"+sched.Date] = sched
	return sched, nil
}

func (f *fakeScheduleRepo) GetByEmployeeAndDate(ctx context.Context, employeeID string, date string) (*schedule.ExceptionalSchedule, error) {
	if sched, ok := f.overrides[employeeID+"/"+date]; ok {
		return &sched, nil
	}
	return nil, nil
}

func (f *fakeScheduleRepo) ListByDate(ctx context.Context, date string) ([]schedule.ExceptionalSchedule, error) {
	var out []schedule.ExceptionalSchedule
	for _, sched := range f.overrides {
		if sched.Date == date {
			out = append(out, sched)
		}
	}
	return out, nil
}

func mustTime(t *testing.T, s string) workclock.TimeOfDay {
	t.Helper()
	tod, err := workclock.Parse(s)
	require.NoError(t, err)
	return tod
}

func TestEffectiveHoursDefault(t *testing.T) {
	repo := newFakeScheduleRepo()
	resolver := NewResolver(repo, mustTime(t, "09:00"), mustTime(t, "17:00"))

	emp := employee.Employee{ID: "emp-1"}
	hours, err := resolver.EffectiveHours(context.Background(), emp, "2026-08-25")
	require.NoError(t, err)

	assert.Equal(t, schedule.SourceDefault, hours.Source)
	assert.Equal(t, "09:00", hours.Start.String())
	assert.Equal(t, "17:00", hours.End.String())
}

func TestEffectiveHoursStandardBeatsDefault(t *testing.T) {
	repo := newFakeScheduleRepo()
	resolver := NewResolver(repo, mustTime(t, "09:00"), mustTime(t, "17:00"))

	emp := employee.Employee{
		ID:               "emp-1",
		HasStandardHours: true,
		StandardStart:    mustTime(t, "10:00"),
		StandardEnd:      mustTime(t, "18:00"),
	}
	hours, err := resolver.EffectiveHours(context.Background(), emp, "2026-08-25")
	require.NoError(t, err)

	assert.Equal(t, schedule.SourceStandard, hours.Source)
	assert.Equal(t, "10:00", hours.Start.String())
	assert.Equal(t, "18:00", hours.End.String())
}

func TestEffectiveHoursExceptionalWinsWhole(t *testing.T) {
	repo := newFakeScheduleRepo()
	_, err := repo.Upsert(context.Background(), schedule.ExceptionalSchedule{
		EmployeeID: "emp-1",
		Date:       "2026-08-25",
		Start:      mustTime(t, "12:00"),
		End:        mustTime(t, "16:00"),
	})
	require.NoError(t, err)

	resolver := NewResolver(repo, mustTime(t, "09:00"), mustTime(t, "17:00"))
	emp := employee.Employee{
		ID:               "emp-1",
		HasStandardHours: true,
		StandardStart:    mustTime(t, "10:00"),
		StandardEnd:      mustTime(t, "18:00"),
	}

	hours, err := resolver.EffectiveHours(context.Background(), emp, "2026-08-25")
	require.NoError(t, err)

	// The override replaces both endpoints; the standard end never
	// leaks into an exceptional day.
	assert.Equal(t, schedule.SourceExceptional, hours.Source)
	assert.Equal(t, "12:00", hours.Start.String())
	assert.Equal(t, "16:00", hours.End.String())

	// The next day falls back to the standard pair.
	hours, err = resolver.EffectiveHours(context.Background(), emp, "2026-08-26")
	require.NoError(t, err)
	assert.Equal(t, schedule.SourceStandard, hours.Source)
}

type fakeEmployeeRepo struct {
	byPhone map[string]employee.Employee
}

func (f *fakeEmployeeRepo) Create(ctx context.Context, emp employee.Employee) (employee.Employee, error) {
	return emp, nil
}
func (f *fakeEmployeeRepo) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	return employee.Employee{}, employee.ErrEmployeeNotFound
}
func (f *fakeEmployeeRepo) GetByChatID(ctx context.Context, chatID string) (employee.Employee, error) {
	return employee.Employee{}, employee.ErrEmployeeNotFound
}
func (f *fakeEmployeeRepo) GetByPhone(ctx context.Context, phone string) (employee.Employee, error) {
	if emp, ok := f.byPhone[phone]; ok {
		return emp, nil
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}
func (f *fakeEmployeeRepo) Update(ctx context.Context, emp employee.Employee) error { return nil }
func (f *fakeEmployeeRepo) ListActive(ctx context.Context) ([]employee.Employee, error) {
	return nil, nil
}
func (f *fakeEmployeeRepo) ListAdmins(ctx context.Context) ([]employee.Employee, error) {
	return nil, nil
}
func (f *fakeEmployeeRepo) Deactivate(ctx context.Context, id string) error { return nil }

func TestSetExceptionalValidation(t *testing.T) {
	repo := newFakeScheduleRepo()
	resolver := NewResolver(repo, mustTime(t, "09:00"), mustTime(t, "17:00"))
	employees := &fakeEmployeeRepo{byPhone: map[string]employee.Employee{
		"+201001234567": {ID: "emp-1", Phone: "+201001234567"},
	}}
	svc := NewService(resolver, repo, employees)

	_, err := svc.SetExceptional(context.Background(), schedule.SetExceptionalRequest{
		EmployeePhone: "+201001234567",
		Date:          "2026-08-25",
		Start:         "16:00",
		End:           "12:00",
		Reason:        "maintenance window",
	}, "admin-1")
	assert.ErrorIs(t, err, schedule.ErrEndBeforeStart)

	sched, err := svc.SetExceptional(context.Background(), schedule.SetExceptionalRequest{
		EmployeePhone: "+201001234567",
		Date:          "2026-08-25",
		Start:         "12:00",
		End:           "16:00",
		Reason:        "half day",
	}, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, "emp-1", sched.EmployeeID)
	assert.Equal(t, "12:00", sched.Start.String())
}

func TestSetExceptionalUnknownPhone(t *testing.T) {
	repo := newFakeScheduleRepo()
	resolver := NewResolver(repo, mustTime(t, "09:00"), mustTime(t, "17:00"))
	employees := &fakeEmployeeRepo{byPhone: map[string]employee.Employee{}}
	svc := NewService(resolver, repo, employees)

	_, err := svc.SetExceptional(context.Background(), schedule.SetExceptionalRequest{
		EmployeePhone: "+201009999999",
		Date:          "2026-08-25",
		Start:         "12:00",
		End:           "16:00",
		Reason:        "half day",
	}, "admin-1")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}
