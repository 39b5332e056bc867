package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hadir-app/hadir-backend-go/internal/domain/employee"
	"github.com/hadir-app/hadir-backend-go/internal/pkg/database"
	"github.com/hadir-app/hadir-backend-go/internal/pkg/workclock"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type employeeRepository struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.Repository {
	return &employeeRepository{db: db}
}

const employeeColumns = `
	id, chat_id, full_name, phone, standard_start, standard_end,
	is_admin, password_hash, active, alert_threshold_minutes,
	created_at, updated_at
`

// employeeRow carries the raw column values before time-of-day decoding.
type employeeRow struct {
	emp           employee.Employee
	standardStart *string
	standardEnd   *string
}

func (r *employeeRow) decode() (employee.Employee, error) {
	if r.standardStart != nil && r.standardEnd != nil {
		start, err := workclock.Parse(*r.standardStart)
		if err != nil {
			return employee.Employee{}, fmt.Errorf("decode standard_start: %w", err)
		}
		end, err := workclock.Parse(*r.standardEnd)
		if err != nil {
			return employee.Employee{}, fmt.Errorf("decode standard_end: %w", err)
		}
		r.emp.HasStandardHours = true
		r.emp.StandardStart = start
		r.emp.StandardEnd = end
	}
	return r.emp, nil
}

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var r employeeRow
	err := row.Scan(
		&r.emp.ID, &r.emp.ChatID, &r.emp.FullName, &r.emp.Phone,
		&r.standardStart, &r.standardEnd,
		&r.emp.IsAdmin, &r.emp.PasswordHash, &r.emp.Active, &r.emp.AlertThresholdMinutes,
		&r.emp.CreatedAt, &r.emp.UpdatedAt,
	)
	if err != nil {
		return employee.Employee{}, err
	}
	return r.decode()
}

func hoursColumns(emp employee.Employee) (start, end *string) {
	if !emp.HasStandardHours {
		return nil, nil
	}
	s := emp.StandardStart.String()
	e := emp.StandardEnd.String()
	return &s, &e
}

func (r *employeeRepository) Create(ctx context.Context, emp employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	emp.ID = uuid.New().String()
	start, end := hoursColumns(emp)

	query := `
		INSERT INTO employees (
			id, chat_id, full_name, phone, standard_start, standard_end,
			is_admin, password_hash, active, alert_threshold_minutes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		emp.ID, emp.ChatID, emp.FullName, emp.Phone, start, end,
		emp.IsAdmin, emp.PasswordHash, emp.Active, emp.AlertThresholdMinutes,
	).Scan(&emp.CreatedAt, &emp.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			switch pgErr.ConstraintName {
			case "employees_chat_id_key":
				return employee.Employee{}, employee.ErrAlreadyRegistered
			case "employees_phone_key":
				return employee.Employee{}, employee.ErrPhoneExists
			}
			return employee.Employee{}, employee.ErrAlreadyRegistered
		}
		return employee.Employee{}, fmt.Errorf("create employee: %w", err)
	}

	return emp, nil
}

func (r *employeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`
	emp, err := scanEmployee(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("get employee by id: %w", err)
	}
	return emp, nil
}

func (r *employeeRepository) GetByChatID(ctx context.Context, chatID string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE chat_id = $1`
	emp, err := scanEmployee(q.QueryRow(ctx, query, chatID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("get employee by chat id: %w", err)
	}
	return emp, nil
}

func (r *employeeRepository) GetByPhone(ctx context.Context, phone string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE phone = $1`
	emp, err := scanEmployee(q.QueryRow(ctx, query, phone))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("get employee by phone: %w", err)
	}
	return emp, nil
}

func (r *employeeRepository) Update(ctx context.Context, emp employee.Employee) error {
	q := GetQuerier(ctx, r.db)

	start, end := hoursColumns(emp)

	query := `
		UPDATE employees
		SET full_name = $2, phone = $3, standard_start = $4, standard_end = $5,
			is_admin = $6, password_hash = $7, active = $8,
			alert_threshold_minutes = $9, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		emp.ID, emp.FullName, emp.Phone, start, end,
		emp.IsAdmin, emp.PasswordHash, emp.Active, emp.AlertThresholdMinutes,
	)
	if err != nil {
		return fmt.Errorf("update employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

func (r *employeeRepository) listWhere(ctx context.Context, condition string) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE ` + condition + ` ORDER BY full_name`
	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

func (r *employeeRepository) ListActive(ctx context.Context) ([]employee.Employee, error) {
	return r.listWhere(ctx, "active = TRUE")
}

func (r *employeeRepository) ListAdmins(ctx context.Context) ([]employee.Employee, error) {
	return r.listWhere(ctx, "active = TRUE AND is_admin = TRUE")
}

func (r *employeeRepository) Deactivate(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE employees SET active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}
