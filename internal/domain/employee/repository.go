package employee

import (
	"context"
)

// Repository defines data access for employees. Employees are never
// hard-deleted; Deactivate clears the active flag so the attendance
// audit trail stays intact.
type Repository interface {
	Create(ctx context.Context, emp Employee) (Employee, error)
	GetByID(ctx context.Context, id string) (Employee, error)
	GetByChatID(ctx context.Context, chatID string) (Employee, error)
	GetByPhone(ctx context.Context, phone string) (Employee, error)
	Update(ctx context.Context, emp Employee) error
	ListActive(ctx context.Context) ([]Employee, error)
	ListAdmins(ctx context.Context) ([]Employee, error)
	Deactivate(ctx context.Context, id string) error
}
