package sales

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/go-sales-api-server/internal/shared/outbox"
)

const (
	// FulfillmentWorkflowName is the public identifier for registering the workflow.
	FulfillmentWorkflowName = "sales.workflows.Fulfillment"
	// FulfillmentTaskQueue is the queue consumed by the worker publishing sale events.
	FulfillmentTaskQueue = "SALE_FULFILLMENT"

	// ListPendingSaleEventsActivityName resolves a sale's pending outbox events.
	ListPendingSaleEventsActivityName = "sales.activities.ListPendingSaleEvents"
	// PublishSaleEventActivityName publishes one event and marks it sent.
	PublishSaleEventActivityName = "sales.activities.PublishSaleEvent"
)

// FulfillmentWorkflowInput identifies the sale whose events need publishing.
type FulfillmentWorkflowInput struct {
	SaleOrderID int64
}

// FulfillmentWorkflow durably publishes a committed sale's outbox events. The
// workflow retries each publish through the SDK retry policy; events already
// marked sent by a concurrent sweep simply come back empty here.
func FulfillmentWorkflow(ctx workflow.Context, input FulfillmentWorkflowInput) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("FulfillmentWorkflow started", "saleOrderId", input.SaleOrderID)

	activityCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    10,
		},
	})

	var events []outbox.Event
	if err := workflow.ExecuteActivity(activityCtx, ListPendingSaleEventsActivityName, input.SaleOrderID).Get(ctx, &events); err != nil {
		logger.Error("FulfillmentWorkflow failed to list events", "saleOrderId", input.SaleOrderID, "error", err)
		return err
	}

	for _, ev := range events {
		if err := workflow.ExecuteActivity(activityCtx, PublishSaleEventActivityName, ev).Get(ctx, nil); err != nil {
			logger.Error("FulfillmentWorkflow failed to publish event",
				"saleOrderId", input.SaleOrderID, "eventId", ev.ID, "error", err)
			return err
		}
	}

	logger.Info("FulfillmentWorkflow completed", "saleOrderId", input.SaleOrderID, "events", len(events))
	return nil
}
