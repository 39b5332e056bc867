package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hadir-app/hadir-backend-go/internal/domain/notification"
	"github.com/hadir-app/hadir-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5/pgconn"
)

type notificationRepository struct {
	db *database.DB
}

func NewNotificationRepository(db *database.DB) notification.Repository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Exists(ctx context.Context, ruleID notification.RuleID, subjectID string, date string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM notifications
			WHERE rule_id = $1 AND subject_id = $2 AND date = $3
		)
	`, string(ruleID), subjectID, date).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check notification record: %w", err)
	}
	return exists, nil
}

func (r *notificationRepository) Create(ctx context.Context, record notification.Record) (notification.Record, error) {
	q := GetQuerier(ctx, r.db)

	record.ID = uuid.New().String()

	query := `
		INSERT INTO notifications (id, rule_id, subject_id, date, message, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING sent_at
	`

	err := q.QueryRow(ctx, query,
		record.ID, string(record.RuleID), record.SubjectID, record.Date, record.Message, record.SentAt,
	).Scan(&record.SentAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return notification.Record{}, notification.ErrAlreadySent
		}
		return notification.Record{}, fmt.Errorf("create notification record: %w", err)
	}

	return record, nil
}

func (r *notificationRepository) ListByDate(ctx context.Context, date string, limit int) ([]notification.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, rule_id, subject_id, date, message, sent_at
		FROM notifications
		WHERE date = $1
		ORDER BY sent_at DESC
		LIMIT $2
	`

	rows, err := q.Query(ctx, query, date, limit)
	if err != nil {
		return nil, fmt.Errorf("list notification records: %w", err)
	}
	defer rows.Close()

	var records []notification.Record
	for rows.Next() {
		var (
			record notification.Record
			ruleID string
		)
		if err := rows.Scan(&record.ID, &ruleID, &record.SubjectID, &record.Date, &record.Message, &record.SentAt); err != nil {
			return nil, fmt.Errorf("scan notification record: %w", err)
		}
		record.RuleID = notification.RuleID(ruleID)
		records = append(records, record)
	}
	return records, rows.Err()
}
