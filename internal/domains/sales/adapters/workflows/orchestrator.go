// Package workflows provides the fulfillment dispatch implementations: an
// inline best-effort publisher and a Temporal-backed durable one. Both leave
// failed events pending so the outbox sweep can finish the job.
package workflows

import (
	"context"
	"fmt"
	"log/slog"

	"go.temporal.io/sdk/client"

	salesports "github.com/Apurer/go-sales-api-server/internal/domains/sales/ports"
	salesworkflows "github.com/Apurer/go-sales-api-server/internal/durable/temporal/workflows/sales"
	"github.com/Apurer/go-sales-api-server/internal/platform/pubsub"
	"github.com/Apurer/go-sales-api-server/internal/shared/outbox"
)

var _ salesports.FulfillmentOrchestrator = (*InlineFulfillment)(nil)

// InlineFulfillment publishes a sale's pending events directly. A failed
// publish is logged and skipped; the event stays pending for the sweep.
type InlineFulfillment struct {
	store     outbox.Store
	publisher pubsub.Publisher
	logger    *slog.Logger
}

func NewInlineFulfillment(store outbox.Store, publisher pubsub.Publisher, logger *slog.Logger) *InlineFulfillment {
	if logger == nil {
		logger = slog.Default()
	}
	return &InlineFulfillment{store: store, publisher: publisher, logger: logger}
}

func (f *InlineFulfillment) DispatchSaleEvents(ctx context.Context, saleOrderID int64) error {
	events, err := f.store.PendingForAggregate(ctx, saleOrderID)
	if err != nil {
		return err
	}
	var firstErr error
	for _, ev := range events {
		if err := f.publisher.Publish(ctx, ev.Topic, ev.Key, ev.Payload); err != nil {
			f.logger.Warn("inline publish failed, event stays pending",
				slog.Int64("sale_order_id", saleOrderID),
				slog.String("event_id", ev.ID),
				slog.String("topic", ev.Topic),
				slog.String("error", err.Error()))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err := f.store.MarkSent(ctx, ev.ID); err != nil {
			f.logger.Warn("failed to mark sale event sent",
				slog.String("event_id", ev.ID),
				slog.String("error", err.Error()))
		}
	}
	return firstErr
}

var _ salesports.FulfillmentOrchestrator = (*TemporalFulfillment)(nil)

// TemporalFulfillment starts the durable fulfillment workflow for a sale. It
// does not wait for the workflow result: the caller's response must not block
// on downstream publishing.
type TemporalFulfillment struct {
	client client.Client
}

func NewTemporalFulfillment(temporalClient client.Client) *TemporalFulfillment {
	return &TemporalFulfillment{client: temporalClient}
}

func (f *TemporalFulfillment) DispatchSaleEvents(ctx context.Context, saleOrderID int64) error {
	options := client.StartWorkflowOptions{
		ID:        fmt.Sprintf("sale-fulfillment-%d", saleOrderID),
		TaskQueue: salesworkflows.FulfillmentTaskQueue,
	}
	_, err := f.client.ExecuteWorkflow(ctx, options, salesworkflows.FulfillmentWorkflowName,
		salesworkflows.FulfillmentWorkflowInput{SaleOrderID: saleOrderID})
	return err
}
