package outbox

import (
	"context"
	"time"
)

// Entry is an outbox record claimed for delivery.
type Entry struct {
	ID         string            `bson:"_id"`
	Name       string            `bson:"name"`
	Payload    []byte            `bson:"payload"`
	OccurredAt time.Time         `bson:"occurred_at"`
	Aggregate  string            `bson:"aggregate"`
	Headers    map[string]string `bson:"headers"`
	Attempts   int               `bson:"attempts"`
}

// Store is the relay side of the outbox.
type Store interface {
	// Claim returns the next deliverable entry or nil when there is none.
	Claim(ctx context.Context, workerID string) (*Entry, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error
}

// Notifier is implemented by stores that can signal freshly committed entries.
type Notifier interface {
	Notify() <-chan struct{}
}
