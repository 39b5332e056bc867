package notification

import (
	"context"
)

type Repository interface {
	// Exists reports whether a record for (rule, subject, date) is
	// already stored.
	Exists(ctx context.Context, ruleID RuleID, subjectID string, date string) (bool, error)

	// Create stores the idempotency marker; ErrAlreadySent on a unique
	// violation so concurrent evaluators cannot double-send.
	Create(ctx context.Context, record Record) (Record, error)

	ListByDate(ctx context.Context, date string, limit int) ([]Record, error)
}
