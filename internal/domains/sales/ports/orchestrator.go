package ports

import "context"

// FulfillmentOrchestrator dispatches a committed order's outbox events to the
// message channel. Implementations may publish inline or through a durable
// workflow; either way the call must not block on downstream consumers, and a
// dispatch failure leaves the events pending for the outbox sweep.
type FulfillmentOrchestrator interface {
	DispatchSaleEvents(ctx context.Context, saleOrderID int64) error
}
