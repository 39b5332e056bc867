package employee

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hadir-app/hadir-backend-go/internal/domain/employee"
)

type fakeEmployeeRepo struct {
	byID map[string]employee.Employee
}

func newFakeEmployeeRepo() *fakeEmployeeRepo {
	return &fakeEmployeeRepo{byID: make(map[string]employee.Employee)}
}

func (f *fakeEmployeeRepo) Create(ctx context.Context, emp employee.Employee) (employee.Employee, error) {
	for _, existing := range f.byID {
		if existing.Phone == emp.Phone {
			return employee.Employee{}, employee.ErrPhoneExists
		}
	}
	emp.ID = "emp-" + emp.ChatID
	f.byID[emp.ID] = emp
	return emp, nil
}

func (f *fakeEmployeeRepo) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	if emp, ok := f.byID[id]; ok {
		return emp, nil
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (f *fakeEmployeeRepo) GetByChatID(ctx context.Context, chatID string) (employee.Employee, error) {
	for _, emp := range f.byID {
		if emp.ChatID == chatID {
			return emp, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (f *fakeEmployeeRepo) GetByPhone(ctx context.Context, phone string) (employee.Employee, error) {
	for _, emp := range f.byID {
		if emp.Phone == phone {
			return emp, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (f *fakeEmployeeRepo) Update(ctx context.Context, emp employee.Employee) error {
	if _, ok := f.byID[emp.ID]; !ok {
		return employee.ErrEmployeeNotFound
	}
	f.byID[emp.ID] = emp
	return nil
}

func (f *fakeEmployeeRepo) ListActive(ctx context.Context) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, emp := range f.byID {
		if emp.Active {
			out = append(out, emp)
		}
	}
	return out, nil
}

func (f *fakeEmployeeRepo) ListAdmins(ctx context.Context) ([]employee.Employee, error) {
	return nil, nil
}

func (f *fakeEmployeeRepo) Deactivate(ctx context.Context, id string) error {
	emp, ok := f.byID[id]
	if !ok {
		return employee.ErrEmployeeNotFound
	}
	emp.Active = false
	f.byID[id] = emp
	return nil
}

func TestRegisterNormalizesPhone(t *testing.T) {
	svc := NewService(newFakeEmployeeRepo())

	emp, err := svc.Register(context.Background(), employee.RegisterRequest{
		ChatID:   "1001",
		FullName: "Sara Adel",
		Phone:    "+20 100 123-4567",
	})
	require.NoError(t, err)

	assert.Equal(t, "+201001234567", emp.Phone)
	assert.True(t, emp.Active)
	assert.False(t, emp.HasStandardHours)
}

func TestRegisterTwiceRejected(t *testing.T) {
	svc := NewService(newFakeEmployeeRepo())

	_, err := svc.Register(context.Background(), employee.RegisterRequest{
		ChatID: "1001", FullName: "Sara Adel", Phone: "+201001234567",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), employee.RegisterRequest{
		ChatID: "1001", FullName: "Sara Adel", Phone: "+201001234567",
	})
	assert.ErrorIs(t, err, employee.ErrAlreadyRegistered)
}

func TestRegisterValidation(t *testing.T) {
	svc := NewService(newFakeEmployeeRepo())

	_, err := svc.Register(context.Background(), employee.RegisterRequest{
		ChatID: "1001", FullName: "", Phone: "not-a-phone",
	})
	assert.Error(t, err)
}

func TestUpdateStandardHours(t *testing.T) {
	repo := newFakeEmployeeRepo()
	svc := NewService(repo)

	_, err := svc.Register(context.Background(), employee.RegisterRequest{
		ChatID: "1001", FullName: "Sara Adel", Phone: "+201001234567",
	})
	require.NoError(t, err)

	emp, err := svc.UpdateStandardHours(context.Background(), "+20 100 123 4567", employee.UpdateHoursRequest{
		Start: "10:00",
		End:   "18:00",
	})
	require.NoError(t, err)

	assert.True(t, emp.HasStandardHours)
	assert.Equal(t, "10:00", emp.StandardStart.String())
	assert.Equal(t, "18:00", emp.StandardEnd.String())
}

func TestUpdateHoursUnknownPhone(t *testing.T) {
	svc := NewService(newFakeEmployeeRepo())

	_, err := svc.UpdateStandardHours(context.Background(), "+201009999999", employee.UpdateHoursRequest{
		Start: "10:00",
		End:   "18:00",
	})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestDeactivateClearsActive(t *testing.T) {
	repo := newFakeEmployeeRepo()
	svc := NewService(repo)

	emp, err := svc.Register(context.Background(), employee.RegisterRequest{
		ChatID: "1001", FullName: "Sara Adel", Phone: "+201001234567",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(context.Background(), emp.ID))

	stored, err := repo.GetByID(context.Background(), emp.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active)
}
