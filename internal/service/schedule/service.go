package schedule

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hadir-app/hadir-backend-go/internal/domain/employee"
	"github.com/hadir-app/hadir-backend-go/internal/domain/schedule"
	"github.com/hadir-app/hadir-backend-go/internal/pkg/workclock"
)

// Resolver resolves the effective (start, end) work-hour pair for an
// employee on a given date. Resolution is total: exceptional override
// wins whole, then the employee's standard hours, then the system-wide
// default. Start and end are never taken from different sources.
type Resolver struct {
	scheduleRepo schedule.Repository
	defaultStart workclock.TimeOfDay
	defaultEnd   workclock.TimeOfDay
}

func NewResolver(scheduleRepo schedule.Repository, defaultStart, defaultEnd workclock.TimeOfDay) *Resolver {
	return &Resolver{
		scheduleRepo: scheduleRepo,
		defaultStart: defaultStart,
		defaultEnd:   defaultEnd,
	}
}

func (r *Resolver) EffectiveHours(ctx context.Context, emp employee.Employee, date string) (schedule.EffectiveHours, error) {
	exceptional, err := r.scheduleRepo.GetByEmployeeAndDate(ctx, emp.ID, date)
	if err != nil {
		return schedule.EffectiveHours{}, fmt.Errorf("resolve exceptional schedule: %w", err)
	}

	if exceptional != nil {
		return schedule.EffectiveHours{
			Start:  exceptional.Start,
			End:    exceptional.End,
			Source: schedule.SourceExceptional,
		}, nil
	}

	if emp.HasStandardHours {
		return schedule.EffectiveHours{
			Start:  emp.StandardStart,
			End:    emp.StandardEnd,
			Source: schedule.SourceStandard,
		}, nil
	}

	return schedule.EffectiveHours{
		Start:  r.defaultStart,
		End:    r.defaultEnd,
		Source: schedule.SourceDefault,
	}, nil
}

// Service manages exceptional schedule overrides.
type Service struct {
	resolver     *Resolver
	scheduleRepo schedule.Repository
	employeeRepo employee.Repository
}

func NewService(resolver *Resolver, scheduleRepo schedule.Repository, employeeRepo employee.Repository) *Service {
	return &Service{
		resolver:     resolver,
		scheduleRepo: scheduleRepo,
		employeeRepo: employeeRepo,
	}
}

func (s *Service) Resolver() *Resolver {
	return s.resolver
}

// SetExceptional creates or replaces the override for (employee, date).
func (s *Service) SetExceptional(ctx context.Context, req schedule.SetExceptionalRequest, createdBy string) (schedule.ExceptionalSchedule, error) {
	if err := req.Validate(); err != nil {
		return schedule.ExceptionalSchedule{}, err
	}

	start, err := workclock.Parse(req.Start)
	if err != nil {
		return schedule.ExceptionalSchedule{}, schedule.ErrInvalidSchedule
	}
	end, err := workclock.Parse(req.End)
	if err != nil {
		return schedule.ExceptionalSchedule{}, schedule.ErrInvalidSchedule
	}
	if !end.After(start) {
		return schedule.ExceptionalSchedule{}, schedule.ErrEndBeforeStart
	}

	emp, err := s.employeeRepo.GetByPhone(ctx, req.EmployeePhone)
	if err != nil {
		return schedule.ExceptionalSchedule{}, err
	}

	sched, err := s.scheduleRepo.Upsert(ctx, schedule.ExceptionalSchedule{
		EmployeeID: emp.ID,
		Date:       req.Date,
		Start:      start,
		End:        end,
		Reason:     req.Reason,
		CreatedBy:  createdBy,
	})
	if err != nil {
		return schedule.ExceptionalSchedule{}, err
	}

	slog.Info("exceptional schedule set",
		"employee_id", emp.ID,
		"date", req.Date,
		"start", start.String(),
		"end", end.String(),
		"created_by", createdBy)

	return sched, nil
}
