package ports

import "context"

// EventPublisher publishes session lifecycle events to notify other instances
type EventPublisher interface {
	PublishLogin(ctx context.Context, email string) error
	PublishLogout(ctx context.Context, email string) error
}
