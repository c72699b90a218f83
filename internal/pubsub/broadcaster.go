package pubsub

import "context"

// Broadcaster fans fresh scan results out to live dashboard subscribers.
type Broadcaster interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Health(ctx context.Context) error
}
