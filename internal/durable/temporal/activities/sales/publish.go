package sales

import (
	"context"
	"errors"

	"github.com/Apurer/go-sales-api-server/internal/platform/pubsub"
	"github.com/Apurer/go-sales-api-server/internal/shared/outbox"
)

// Activities carries the dependencies for the fulfillment publish activities.
type Activities struct {
	store     outbox.Store
	publisher pubsub.Publisher
}

// NewActivities wires the activities against the outbox store and channel.
func NewActivities(store outbox.Store, publisher pubsub.Publisher) *Activities {
	return &Activities{store: store, publisher: publisher}
}

// ListPendingSaleEvents resolves a sale's undispatched outbox events.
func (a *Activities) ListPendingSaleEvents(ctx context.Context, saleOrderID int64) ([]outbox.Event, error) {
	return a.store.PendingForAggregate(ctx, saleOrderID)
}

// PublishSaleEvent hands one event to the channel and marks it sent. Marking
// a row the sweep already flipped is not an error; the publish that preceded
// it is a redelivery consumers tolerate.
func (a *Activities) PublishSaleEvent(ctx context.Context, ev outbox.Event) error {
	if err := a.publisher.Publish(ctx, ev.Topic, ev.Key, ev.Payload); err != nil {
		return err
	}
	if err := a.store.MarkSent(ctx, ev.ID); err != nil && !errors.Is(err, outbox.ErrNotFound) {
		return err
	}
	return nil
}
