package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hadir-app/hadir-backend-go/internal/domain/attendance"
	"github.com/hadir-app/hadir-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

const sessionColumns = `
	id, employee_id, date,
	check_in_at, check_in_lat, check_in_lon, check_in_distance,
	check_out_at, check_out_lat, check_out_lon, check_out_distance,
	is_late, is_early, late_reason, early_reason,
	status, created_at, updated_at
`

func scanSession(row pgx.Row) (attendance.Session, error) {
	var s attendance.Session
	err := row.Scan(
		&s.ID, &s.EmployeeID, &s.Date,
		&s.CheckInAt, &s.CheckInLat, &s.CheckInLon, &s.CheckInDistance,
		&s.CheckOutAt, &s.CheckOutLat, &s.CheckOutLon, &s.CheckOutDistance,
		&s.IsLate, &s.IsEarly, &s.LateReason, &s.EarlyReason,
		&s.Status, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

func (r *attendanceRepository) Create(ctx context.Context, session attendance.Session) (attendance.Session, error) {
	q := GetQuerier(ctx, r.db)

	session.ID = uuid.New().String()
	session.Status = attendance.StatusOpen

	query := `
		INSERT INTO attendance_sessions (
			id, employee_id, date,
			check_in_at, check_in_lat, check_in_lon, check_in_distance,
			is_late, late_reason, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		session.ID, session.EmployeeID, session.Date,
		session.CheckInAt, session.CheckInLat, session.CheckInLon, session.CheckInDistance,
		session.IsLate, session.LateReason, session.Status,
	).Scan(&session.CreatedAt, &session.UpdatedAt)

	if err != nil {
		// The partial unique index on open rows backstops the
		// one-open-session invariant against concurrent writers.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return attendance.Session{}, attendance.ErrAlreadyOpenSession
		}
		return attendance.Session{}, fmt.Errorf("create attendance session: %w", err)
	}

	return session, nil
}

func (r *attendanceRepository) Close(ctx context.Context, session attendance.Session) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendance_sessions
		SET check_out_at = $2, check_out_lat = $3, check_out_lon = $4, check_out_distance = $5,
			is_early = $6, early_reason = $7, status = $8, updated_at = NOW()
		WHERE id = $1 AND status = $9
	`

	tag, err := q.Exec(ctx, query,
		session.ID,
		session.CheckOutAt, session.CheckOutLat, session.CheckOutLon, session.CheckOutDistance,
		session.IsEarly, session.EarlyReason, attendance.StatusClosed, attendance.StatusOpen,
	)
	if err != nil {
		return fmt.Errorf("close attendance session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrNoOpenSession
	}
	return nil
}

func (r *attendanceRepository) GetOpenSession(ctx context.Context, employeeID string, date string) (*attendance.Session, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + sessionColumns + `
		FROM attendance_sessions
		WHERE employee_id = $1 AND date = $2 AND status = $3
		LIMIT 1
	`

	s, err := scanSession(q.QueryRow(ctx, query, employeeID, date, attendance.StatusOpen))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get open session: %w", err)
	}
	return &s, nil
}

func (r *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date string) (*attendance.Session, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + sessionColumns + `
		FROM attendance_sessions
		WHERE employee_id = $1 AND date = $2
		ORDER BY check_in_at DESC
		LIMIT 1
	`

	s, err := scanSession(q.QueryRow(ctx, query, employeeID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session by employee and date: %w", err)
	}
	return &s, nil
}

func (r *attendanceRepository) listQuery(ctx context.Context, query string, args ...interface{}) ([]attendance.Session, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list attendance sessions: %w", err)
	}
	defer rows.Close()

	var sessions []attendance.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attendance session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (r *attendanceRepository) ListByDate(ctx context.Context, date string) ([]attendance.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM attendance_sessions
		WHERE date = $1
		ORDER BY check_in_at
	`
	return r.listQuery(ctx, query, date)
}

func (r *attendanceRepository) ListOpenBefore(ctx context.Context, cutoff time.Time) ([]attendance.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM attendance_sessions
		WHERE status = $1 AND check_in_at < $2
		ORDER BY check_in_at
	`
	return r.listQuery(ctx, query, attendance.StatusOpen, cutoff)
}

func (r *attendanceRepository) History(ctx context.Context, employeeID string, limit int) ([]attendance.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM attendance_sessions
		WHERE employee_id = $1
		ORDER BY check_in_at DESC
		LIMIT $2
	`
	return r.listQuery(ctx, query, employeeID, limit)
}
