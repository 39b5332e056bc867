package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hadir-app/hadir-backend-go/internal/domain/schedule"
	"github.com/hadir-app/hadir-backend-go/internal/pkg/database"
	"github.com/hadir-app/hadir-backend-go/internal/pkg/workclock"
	"github.com/jackc/pgx/v5"
)

type scheduleRepository struct {
	db *database.DB
}

func NewScheduleRepository(db *database.DB) schedule.Repository {
	return &scheduleRepository{db: db}
}

func scanExceptional(row pgx.Row) (schedule.ExceptionalSchedule, error) {
	var (
		sched      schedule.ExceptionalSchedule
		start, end string
	)
	err := row.Scan(
		&sched.ID, &sched.EmployeeID, &sched.Date, &start, &end,
		&sched.Reason, &sched.CreatedBy, &sched.CreatedAt, &sched.UpdatedAt,
	)
	if err != nil {
		return schedule.ExceptionalSchedule{}, err
	}

	if sched.Start, err = workclock.Parse(start); err != nil {
		return schedule.ExceptionalSchedule{}, fmt.Errorf("decode start: %w", err)
	}
	if sched.End, err = workclock.Parse(end); err != nil {
		return schedule.ExceptionalSchedule{}, fmt.Errorf("decode end: %w", err)
	}
	return sched, nil
}

func (r *scheduleRepository) Upsert(ctx context.Context, sched schedule.ExceptionalSchedule) (schedule.ExceptionalSchedule, error) {
	q := GetQuerier(ctx, r.db)

	if sched.ID == "" {
		sched.ID = uuid.New().String()
	}

	query := `
		INSERT INTO exceptional_schedules (
			id, employee_id, date, start_time, end_time, reason, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (employee_id, date) DO UPDATE
		SET start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			reason = EXCLUDED.reason,
			created_by = EXCLUDED.created_by,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		sched.ID, sched.EmployeeID, sched.Date,
		sched.Start.String(), sched.End.String(),
		sched.Reason, sched.CreatedBy,
	).Scan(&sched.ID, &sched.CreatedAt, &sched.UpdatedAt)

	if err != nil {
		return schedule.ExceptionalSchedule{}, fmt.Errorf("upsert exceptional schedule: %w", err)
	}

	return sched, nil
}

func (r *scheduleRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date string) (*schedule.ExceptionalSchedule, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, date, start_time, end_time, reason, created_by, created_at, updated_at
		FROM exceptional_schedules
		WHERE employee_id = $1 AND date = $2
	`

	sched, err := scanExceptional(q.QueryRow(ctx, query, employeeID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get exceptional schedule: %w", err)
	}
	return &sched, nil
}

func (r *scheduleRepository) ListByDate(ctx context.Context, date string) ([]schedule.ExceptionalSchedule, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, date, start_time, end_time, reason, created_by, created_at, updated_at
		FROM exceptional_schedules
		WHERE date = $1
		ORDER BY employee_id
	`

	rows, err := q.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("list exceptional schedules: %w", err)
	}
	defer rows.Close()

	var schedules []schedule.ExceptionalSchedule
	for rows.Next() {
		sched, err := scanExceptional(rows)
		if err != nil {
			return nil, fmt.Errorf("scan exceptional schedule: %w", err)
		}
		schedules = append(schedules, sched)
	}
	return schedules, rows.Err()
}
