package outbox

import (
	"context"
	"log/slog"
	"time"

	"github.com/Apurer/go-sales-api-server/internal/platform/pubsub"
)

// Dispatcher sweeps pending outbox events into the message channel. It is the
// safety net behind the durable publish path: anything still pending past the
// grace window gets published here, so a crashed process or unavailable
// workflow engine only delays delivery.
type Dispatcher struct {
	store     Store
	publisher pubsub.Publisher
	logger    *slog.Logger
	batchSize int
	grace     time.Duration
}

// NewDispatcher wires a sweep dispatcher. The grace window keeps the sweep
// from racing the primary publish path on freshly committed events.
func NewDispatcher(store Store, publisher pubsub.Publisher, logger *slog.Logger, batchSize int, grace time.Duration) *Dispatcher {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Dispatcher{store: store, publisher: publisher, logger: logger, batchSize: batchSize, grace: grace}
}

// Sweep publishes one batch of pending events and returns how many were sent.
// A publish failure skips the event; it stays pending for the next sweep.
// Publish-then-mark means a crash between the two re-publishes the event,
// which consumers already tolerate.
func (d *Dispatcher) Sweep(ctx context.Context) (int, error) {
	events, err := d.store.ListPending(ctx, d.batchSize, d.grace)
	if err != nil {
		return 0, err
	}
	sent := 0
	for _, ev := range events {
		if err := d.publisher.Publish(ctx, ev.Topic, ev.Key, ev.Payload); err != nil {
			d.logger.Warn("outbox publish failed, event stays pending",
				slog.String("event_id", ev.ID),
				slog.String("topic", ev.Topic),
				slog.String("error", err.Error()))
			continue
		}
		if err := d.store.MarkSent(ctx, ev.ID); err != nil {
			d.logger.Warn("failed to mark outbox event sent",
				slog.String("event_id", ev.ID),
				slog.String("error", err.Error()))
			continue
		}
		sent++
	}
	return sent, nil
}

// Run sweeps on the given interval until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sent, err := d.Sweep(ctx)
			if err != nil {
				d.logger.Error("outbox sweep failed", slog.String("error", err.Error()))
				continue
			}
			if sent > 0 {
				d.logger.Info("outbox sweep dispatched events", slog.Int("count", sent))
			}
		}
	}
}
