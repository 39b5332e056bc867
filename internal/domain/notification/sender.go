package notification

import "context"

// Sender is the outbound messaging collaborator. Implementations must
// bound each call so one unreachable recipient cannot stall a tick.
type Sender interface {
	Send(ctx context.Context, recipientChatID string, text string) error
}

// Pinger is the keep-alive collaborator.
type Pinger interface {
	Ping(ctx context.Context) error
}
