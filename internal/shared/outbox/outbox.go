// Package outbox implements the transactional outbox: events destined for the
// message channel are persisted in the same transaction as the write that
// produced them, then published by a separate dispatch stage. A sale can never
// exist without its events being at least recorded.
package outbox

import (
	"context"
	"errors"
	"time"
)

// Status is the dispatch state of an outbox event.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusSent    Status = "SENT"
)

// ErrNotFound signals an unknown outbox event id.
var ErrNotFound = errors.New("outbox event not found")

// Event is one message waiting to be published.
type Event struct {
	ID          string
	AggregateID int64
	Topic       string
	Key         string
	Payload     []byte
	Status      Status
	CreatedAt   time.Time
	SentAt      *time.Time
}

// Store persists outbox events. Appending happens inside the producing
// transaction (the sales repository owns that); the dispatch side reads and
// marks through this port.
type Store interface {
	// ListPending returns up to limit pending events created before the
	// grace cutoff, oldest first. A zero grace returns all pending events.
	ListPending(ctx context.Context, limit int, grace time.Duration) ([]Event, error)
	// PendingForAggregate returns the pending events of one aggregate,
	// oldest first.
	PendingForAggregate(ctx context.Context, aggregateID int64) ([]Event, error)
	// MarkSent flips an event to SENT and stamps the send time.
	MarkSent(ctx context.Context, id string) error
}
