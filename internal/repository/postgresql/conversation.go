package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hadir-app/hadir-backend-go/internal/domain/attendance"
	"github.com/hadir-app/hadir-backend-go/internal/domain/conversation"
	"github.com/hadir-app/hadir-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type conversationRepository struct {
	db *database.DB
}

func NewConversationRepository(db *database.DB) conversation.Repository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) Set(ctx context.Context, state conversation.State) error {
	q := GetQuerier(ctx, r.db)

	payload, err := json.Marshal(state.Payload)
	if err != nil {
		return fmt.Errorf("encode conversation payload: %w", err)
	}

	// Last request wins: a new awaiting state replaces any prior one.
	query := `
		INSERT INTO conversation_state (employee_id, mode, payload, expires_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (employee_id) DO UPDATE
		SET mode = EXCLUDED.mode,
			payload = EXCLUDED.payload,
			expires_at = EXCLUDED.expires_at,
			updated_at = NOW()
	`

	if _, err := q.Exec(ctx, query, state.EmployeeID, string(state.Mode), payload, state.ExpiresAt); err != nil {
		return fmt.Errorf("set conversation state: %w", err)
	}
	return nil
}

func (r *conversationRepository) Get(ctx context.Context, employeeID string) (*conversation.State, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT employee_id, mode, payload, expires_at, updated_at
		FROM conversation_state
		WHERE employee_id = $1
	`

	state, err := scanConversation(q.QueryRow(ctx, query, employeeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get conversation state: %w", err)
	}
	return &state, nil
}

func (r *conversationRepository) Delete(ctx context.Context, employeeID string) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM conversation_state WHERE employee_id = $1`, employeeID); err != nil {
		return fmt.Errorf("delete conversation state: %w", err)
	}
	return nil
}

func (r *conversationRepository) ListExpired(ctx context.Context, now time.Time) ([]conversation.State, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT employee_id, mode, payload, expires_at, updated_at
		FROM conversation_state
		WHERE expires_at <= $1
	`

	rows, err := q.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("list expired conversation states: %w", err)
	}
	defer rows.Close()

	var states []conversation.State
	for rows.Next() {
		state, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan conversation state: %w", err)
		}
		states = append(states, state)
	}
	return states, rows.Err()
}

func scanConversation(row pgx.Row) (conversation.State, error) {
	var (
		state   conversation.State
		mode    string
		payload []byte
	)
	if err := row.Scan(&state.EmployeeID, &mode, &payload, &state.ExpiresAt, &state.UpdatedAt); err != nil {
		return conversation.State{}, err
	}
	state.Mode = conversation.Mode(mode)

	var pending attendance.PendingEvent
	if err := json.Unmarshal(payload, &pending); err != nil {
		return conversation.State{}, fmt.Errorf("decode conversation payload: %w", err)
	}
	state.Payload = pending
	return state, nil
}
