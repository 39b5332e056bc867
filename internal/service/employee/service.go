package employee

import (
	"context"
	"log/slog"

	"github.com/hadir-app/hadir-backend-go/internal/domain/employee"
	"github.com/hadir-app/hadir-backend-go/internal/pkg/workclock"
)

// Service manages the employee roster. Registration comes from the chat
// side (a shared contact card), hour assignment and deactivation from
// the admin side.
type Service struct {
	repo employee.Repository
}

func NewService(repo employee.Repository) *Service {
	return &Service{repo: repo}
}

// Register enrolls the chat the contact card came from. Registering an
// already-enrolled chat or phone fails; re-sending the contact is a
// no-op at the chat layer.
func (s *Service) Register(ctx context.Context, req employee.RegisterRequest) (employee.Employee, error) {
	if err := req.Validate(); err != nil {
		return employee.Employee{}, err
	}

	existing, err := s.repo.GetByChatID(ctx, req.ChatID)
	if err != nil && err != employee.ErrEmployeeNotFound {
		return employee.Employee{}, err
	}
	if err == nil {
		if !existing.Active {
			return employee.Employee{}, employee.ErrEmployeeDeactivated
		}
		return employee.Employee{}, employee.ErrAlreadyRegistered
	}

	emp, err := s.repo.Create(ctx, employee.Employee{
		ChatID:   req.ChatID,
		FullName: req.FullName,
		Phone:    normalizePhone(req.Phone),
		Active:   true,
	})
	if err != nil {
		return employee.Employee{}, err
	}

	slog.Info("employee registered", "employee_id", emp.ID, "full_name", emp.FullName)
	return emp, nil
}

// GetByChatID resolves the sender of a chat update to an employee.
func (s *Service) GetByChatID(ctx context.Context, chatID string) (employee.Employee, error) {
	emp, err := s.repo.GetByChatID(ctx, chatID)
	if err == employee.ErrEmployeeNotFound {
		return employee.Employee{}, employee.ErrNotRegistered
	}
	return emp, err
}

func (s *Service) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByPhone looks up an employee tolerating whatever separators the
// caller typed into the phone number.
func (s *Service) GetByPhone(ctx context.Context, phone string) (employee.Employee, error) {
	return s.repo.GetByPhone(ctx, normalizePhone(phone))
}

func (s *Service) List(ctx context.Context) ([]employee.Employee, error) {
	return s.repo.ListActive(ctx)
}

// UpdateStandardHours assigns the employee's recurring work hours.
// These apply every day unless an exceptional schedule overrides them.
func (s *Service) UpdateStandardHours(ctx context.Context, phone string, req employee.UpdateHoursRequest) (employee.Employee, error) {
	if err := req.Validate(); err != nil {
		return employee.Employee{}, err
	}

	start, err := workclock.Parse(req.Start)
	if err != nil {
		return employee.Employee{}, err
	}
	end, err := workclock.Parse(req.End)
	if err != nil {
		return employee.Employee{}, err
	}

	emp, err := s.repo.GetByPhone(ctx, normalizePhone(phone))
	if err != nil {
		return employee.Employee{}, err
	}

	emp.HasStandardHours = true
	emp.StandardStart = start
	emp.StandardEnd = end
	if err := s.repo.Update(ctx, emp); err != nil {
		return employee.Employee{}, err
	}

	slog.Info("standard hours updated",
		"employee_id", emp.ID,
		"start", start.String(),
		"end", end.String())
	return emp, nil
}

// Deactivate soft-deletes the employee. Sessions and notification
// records survive for the audit trail.
func (s *Service) Deactivate(ctx context.Context, id string) error {
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return err
	}
	slog.Info("employee deactivated", "employee_id", id)
	return nil
}

// normalizePhone strips the separators chat clients add to contact
// cards so phone lookups match regardless of formatting.
func normalizePhone(phone string) string {
	out := make([]byte, 0, len(phone))
	for i := 0; i < len(phone); i++ {
		c := phone[i]
		if c >= '0' && c <= '9' {
			out = append(out, c)
		} else if c == '+' && len(out) == 0 {
			out = append(out, c)
		}
	}
	return string(out)
}
