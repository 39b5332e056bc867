package conversation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hadir-app/hadir-backend-go/internal/domain/attendance"
	"github.com/hadir-app/hadir-backend-go/internal/domain/conversation"
)

type fakeConversationRepo struct {
	states map[string]conversation.State
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{states: make(map[string]conversation.State)}
}

func (f *fakeConversationRepo) Set(ctx context.Context, state conversation.State) error {
	f.states[state.EmployeeID] = state
	return nil
}

func (f *fakeConversationRepo) Get(ctx context.Context, employeeID string) (*conversation.State, error) {
	if state, ok := f.states[employeeID]; ok {
		return &state, nil
	}
	return nil, nil
}

func (f *fakeConversationRepo) Delete(ctx context.Context, employeeID string) error {
	delete(f.states, employeeID)
	return nil
}

func (f *fakeConversationRepo) ListExpired(ctx context.Context, now time.Time) ([]conversation.State, error) {
	var out []conversation.State
	for _, state := range f.states {
		if state.Expired(now) {
			out = append(out, state)
		}
	}
	return out, nil
}

func pendingAt(at time.Time) attendance.PendingEvent {
	return attendance.PendingEvent{
		Kind:     attendance.KindCheckIn,
		At:       at,
		Lat:      31.0417,
		Lon:      31.3778,
		Distance: 12,
	}
}

func TestBeginRejectsIdle(t *testing.T) {
	svc := NewService(newFakeConversationRepo(), 30*time.Minute)
	err := svc.Begin(context.Background(), "emp-1", conversation.ModeIdle, attendance.PendingEvent{})
	assert.Error(t, err)
}

func TestTakeReturnsPayloadOnce(t *testing.T) {
	svc := NewService(newFakeConversationRepo(), 30*time.Minute)
	at := time.Date(2026, 8, 25, 9, 30, 0, 0, time.UTC)

	require.NoError(t, svc.Begin(context.Background(), "emp-1", conversation.ModeAwaitingLate, pendingAt(at)))

	mode, payload, err := svc.Take(context.Background(), "emp-1")
	require.NoError(t, err)
	require.NotNil(t, payload)
	assert.Equal(t, conversation.ModeAwaitingLate, mode)
	assert.Equal(t, at, payload.At)

	// Second take finds nothing.
	mode, payload, err = svc.Take(context.Background(), "emp-1")
	require.NoError(t, err)
	assert.Nil(t, payload)
	assert.Equal(t, conversation.ModeIdle, mode)
}

func TestExpiredStateReadsAsIdle(t *testing.T) {
	repo := newFakeConversationRepo()
	svc := NewService(repo, 30*time.Minute)

	base := time.Date(2026, 8, 25, 9, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	require.NoError(t, svc.Begin(context.Background(), "emp-1", conversation.ModeAwaitingLate, pendingAt(base)))

	// One second before the TTL the state is still live.
	svc.now = func() time.Time { return base.Add(30*time.Minute - time.Second) }
	mode, payload, err := svc.Current(context.Background(), "emp-1")
	require.NoError(t, err)
	require.NotNil(t, payload)
	assert.Equal(t, conversation.ModeAwaitingLate, mode)

	// At the TTL it reads as idle but stays stored for the sweep.
	svc.now = func() time.Time { return base.Add(30 * time.Minute) }
	mode, payload, err = svc.Current(context.Background(), "emp-1")
	require.NoError(t, err)
	assert.Nil(t, payload)
	assert.Equal(t, conversation.ModeIdle, mode)

	expired, err := svc.Expired(context.Background())
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, "emp-1", expired[0].EmployeeID)
}

func TestBeginOverwritesPrior(t *testing.T) {
	svc := NewService(newFakeConversationRepo(), 30*time.Minute)

	first := time.Date(2026, 8, 25, 9, 30, 0, 0, time.UTC)
	second := first.Add(5 * time.Minute)

	require.NoError(t, svc.Begin(context.Background(), "emp-1", conversation.ModeAwaitingLate, pendingAt(first)))
	require.NoError(t, svc.Begin(context.Background(), "emp-1", conversation.ModeAwaitingLate, pendingAt(second)))

	_, payload, err := svc.Take(context.Background(), "emp-1")
	require.NoError(t, err)
	require.NotNil(t, payload)
	assert.Equal(t, second, payload.At)
}
