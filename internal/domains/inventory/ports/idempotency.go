package ports

import "context"

// ProcessedEventStore records message ids that have already been applied.
// Claim returns false when the id was claimed before, which marks the
// message as a redelivery to be acknowledged without effect.
type ProcessedEventStore interface {
	Claim(ctx context.Context, eventID string) (bool, error)
	Release(ctx context.Context, eventID string) error
}
