package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hadir-app/hadir-backend-go/internal/domain/attendance"
	"github.com/hadir-app/hadir-backend-go/internal/domain/conversation"
)

// Service is the per-employee conversation state machine for pending
// late/early justifications. States move Idle -> Awaiting* when the
// ledger defers a commit, and back to Idle when the reason arrives, the
// entry expires, or the pending event is aborted.
type Service struct {
	repo conversation.Repository
	ttl  time.Duration
	now  func() time.Time
}

func NewService(repo conversation.Repository, ttl time.Duration) *Service {
	return &Service{
		repo: repo,
		ttl:  ttl,
		now:  time.Now,
	}
}

// Begin parks a pending event for the employee. A prior pending entry,
// expired or not, is overwritten: the last request wins.
func (s *Service) Begin(ctx context.Context, employeeID string, mode conversation.Mode, payload attendance.PendingEvent) error {
	if mode != conversation.ModeAwaitingLate && mode != conversation.ModeAwaitingEarly {
		return fmt.Errorf("begin conversation: mode %q carries no pending event", mode)
	}

	state := conversation.State{
		EmployeeID: employeeID,
		Mode:       mode,
		Payload:    payload,
		ExpiresAt:  s.now().Add(s.ttl),
	}
	if err := s.repo.Set(ctx, state); err != nil {
		return err
	}

	slog.Debug("conversation state set",
		"employee_id", employeeID,
		"mode", string(mode),
		"expires_at", state.ExpiresAt)
	return nil
}

// Current returns the employee's live state. Expired entries read as
// Idle; the stored row is left for the sweep to clean up and report.
func (s *Service) Current(ctx context.Context, employeeID string) (conversation.Mode, *attendance.PendingEvent, error) {
	state, err := s.repo.Get(ctx, employeeID)
	if err != nil {
		return conversation.ModeIdle, nil, err
	}
	if state == nil || state.Expired(s.now()) {
		return conversation.ModeIdle, nil, nil
	}
	payload := state.Payload
	return state.Mode, &payload, nil
}

// Take removes and returns the live state, or (Idle, nil) when nothing
// usable is pending.
func (s *Service) Take(ctx context.Context, employeeID string) (conversation.Mode, *attendance.PendingEvent, error) {
	mode, payload, err := s.Current(ctx, employeeID)
	if err != nil || payload == nil {
		return conversation.ModeIdle, nil, err
	}
	if err := s.repo.Delete(ctx, employeeID); err != nil {
		return conversation.ModeIdle, nil, err
	}
	return mode, payload, nil
}

// Clear drops any state for the employee.
func (s *Service) Clear(ctx context.Context, employeeID string) error {
	return s.repo.Delete(ctx, employeeID)
}

// Expired returns the stored entries whose TTL has passed. Callers
// decide what to do with the abandoned payloads; the entries themselves
// are removed via Clear.
func (s *Service) Expired(ctx context.Context) ([]conversation.State, error) {
	return s.repo.ListExpired(ctx, s.now())
}
