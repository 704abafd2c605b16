package application

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Apurer/go-sales-api-server/internal/domains/sales/domain"
	"github.com/Apurer/go-sales-api-server/internal/shared/contracts"
	"github.com/Apurer/go-sales-api-server/internal/shared/outbox"
)

// BuildInvoice computes the invoice document for a persisted order. Money
// math runs on decimals so item totals and the aggregate never accumulate
// float drift; the wire document carries plain numbers.
func BuildInvoice(order *domain.SaleOrder, nfID string, issuedAt time.Time) contracts.InvoiceDocument {
	items := make([]contracts.InvoiceItem, 0, len(order.Items))
	total := decimal.Zero
	for _, item := range order.Items {
		lineTotal := decimal.NewFromInt(int64(item.Quantity)).
			Mul(decimal.NewFromFloat(item.Price)).
			Sub(decimal.NewFromFloat(item.Discount)).
			Round(2)
		total = total.Add(lineTotal)
		items = append(items, contracts.InvoiceItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
			Discount:  item.Discount,
			Total:     lineTotal.InexactFloat64(),
		})
	}
	return contracts.InvoiceDocument{
		NFID:          nfID,
		SaleOrderID:   order.ID,
		IssueDate:     issuedAt,
		ClientID:      order.ClientID,
		EmployeeID:    order.EmployeeID,
		PaymentMethod: order.PaymentMethod,
		Status:        order.Status,
		TotalValue:    total.Round(2).InexactFloat64(),
		Items:         items,
		Notes:         order.Notes,
	}
}

// Snapshot copies the order header for embedding in the invoice event.
func Snapshot(order *domain.SaleOrder) contracts.SaleOrderSnapshot {
	return contracts.SaleOrderSnapshot{
		ID:            order.ID,
		ClientID:      order.ClientID,
		EmployeeID:    order.EmployeeID,
		Date:          order.Date,
		PaymentMethod: order.PaymentMethod,
		Status:        order.Status,
	}
}

// buildSaleEvents produces the fan-out for a persisted order: one inventory
// decrement per line item plus one invoice event, each as a pending outbox
// row. Decrement messages are keyed by product so the channel serializes
// messages for the same product; each carries a fresh event id for consumer
// idempotency.
func buildSaleEvents(order *domain.SaleOrder, now time.Time) ([]outbox.Event, error) {
	events := make([]outbox.Event, 0, len(order.Items)+1)
	for _, item := range order.Items {
		payload, err := json.Marshal(contracts.InventoryDecrement{
			EventID:      uuid.NewString(),
			ProductID:    item.ProductID,
			QuantitySold: item.Quantity,
		})
		if err != nil {
			return nil, err
		}
		events = append(events, outbox.Event{
			ID:          uuid.NewString(),
			AggregateID: order.ID,
			Topic:       contracts.TopicInventoryUpdates,
			Key:         strconv.FormatInt(item.ProductID, 10),
			Payload:     payload,
			Status:      outbox.StatusPending,
			CreatedAt:   now,
		})
	}

	invoice := BuildInvoice(order, uuid.NewString(), now)
	payload, err := json.Marshal(contracts.SaleInvoiceEvent{
		SaleOrder:   Snapshot(order),
		InvoiceData: invoice,
	})
	if err != nil {
		return nil, err
	}
	events = append(events, outbox.Event{
		ID:          uuid.NewString(),
		AggregateID: order.ID,
		Topic:       contracts.TopicSaleInvoiceEvents,
		Key:         invoice.NFID,
		Payload:     payload,
		Status:      outbox.StatusPending,
		CreatedAt:   now,
	})
	return events, nil
}
