package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	inventorymemory "github.com/Apurer/go-sales-api-server/internal/domains/inventory/adapters/memory"
	inventoryapp "github.com/Apurer/go-sales-api-server/internal/domains/inventory/application"
	"github.com/Apurer/go-sales-api-server/internal/domains/inventory/domain"
	invoicesapp "github.com/Apurer/go-sales-api-server/internal/domains/invoices/application"
	salesworkflowadapters "github.com/Apurer/go-sales-api-server/internal/domains/sales/adapters/workflows"
	salesapp "github.com/Apurer/go-sales-api-server/internal/domains/sales/application"
	salesports "github.com/Apurer/go-sales-api-server/internal/domains/sales/ports"
	"github.com/Apurer/go-sales-api-server/internal/platform/pubsub"
	"github.com/Apurer/go-sales-api-server/internal/shared/contracts"
)

// The full in-process pipeline: create a sale, publish its outbox events over
// the memory channel, and verify stock and invoices on the other side.
func TestSaleFanOut(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	storage := memoryStorage()
	channel := pubsub.NewMemoryChannel()

	inventoryService := inventoryapp.NewService(storage.inventory, inventorymemory.NewProcessedEvents(), logger)
	invoiceService := invoicesapp.NewService(storage.invoices, logger)
	channel.Subscribe(contracts.TopicInventoryUpdates, inventoryService.HandleMessage)
	channel.Subscribe(contracts.TopicSaleInvoiceEvents, invoiceService.HandleMessage)

	orchestrator := salesworkflowadapters.NewInlineFulfillment(storage.outbox, channel, logger)
	salesService := salesapp.NewService(storage.sales, orchestrator, logger)

	require.NoError(t, storage.inventory.Seed(ctx, &domain.Product{ID: 10, Name: "Widget", Quantity: 5}))
	require.NoError(t, storage.inventory.Seed(ctx, &domain.Product{ID: 20, Name: "Gadget", Quantity: 1}))

	clientID, employeeID := int64(7), int64(3)
	productA, productB := int64(10), int64(20)
	qtyA, qtyB := int32(2), int32(1)
	priceA, priceB := 50.0, 120.0
	discountB := 10.0
	saved, err := salesService.CreateSale(ctx, salesports.CreateSaleInput{
		ClientID:   &clientID,
		EmployeeID: &employeeID,
		Items: []salesports.ItemInput{
			{ProductID: &productA, Quantity: &qtyA, Price: &priceA},
			{ProductID: &productB, Quantity: &qtyB, Price: &priceB, Discount: &discountB},
		},
	})
	require.NoError(t, err)

	var nfID string
	for _, d := range channel.Pending() {
		if d.Topic == contracts.TopicSaleInvoiceEvents {
			var event contracts.SaleInvoiceEvent
			require.NoError(t, json.Unmarshal(d.Payload, &event))
			nfID = event.InvoiceData.NFID
		}
	}
	require.NotEmpty(t, nfID)

	delivered := channel.Drain(ctx)
	require.Equal(t, 3, delivered)

	widget, err := inventoryService.GetProduct(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, int32(3), widget.Quantity)

	gadget, err := inventoryService.GetProduct(ctx, 20)
	require.NoError(t, err)
	require.Equal(t, int32(0), gadget.Quantity)

	order, err := storage.sales.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	require.Len(t, order.Items, 2)

	invoice, err := invoiceService.GetInvoice(ctx, nfID)
	require.NoError(t, err)
	require.Equal(t, saved.ID, invoice.SaleOrderID)
	require.InDelta(t, 210.0, invoice.TotalValue, 0.001)
	require.Len(t, invoice.Items, 2)
}
