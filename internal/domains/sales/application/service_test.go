package application

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	salesmemory "github.com/Apurer/go-sales-api-server/internal/domains/sales/adapters/memory"
	"github.com/Apurer/go-sales-api-server/internal/domains/sales/ports"
	"github.com/Apurer/go-sales-api-server/internal/shared/apperrors"
	"github.com/Apurer/go-sales-api-server/internal/shared/contracts"
	outboxmemory "github.com/Apurer/go-sales-api-server/internal/shared/outbox/memory"
)

func int64Ptr(v int64) *int64        { return &v }
func int32Ptr(v int32) *int32        { return &v }
func floatPtr(v float64) *float64    { return &v }
func stringPtr(v string) *string     { return &v }
func timePtr(v time.Time) *time.Time { return &v }

type recordingOrchestrator struct {
	dispatched []int64
	err        error
}

func (r *recordingOrchestrator) DispatchSaleEvents(_ context.Context, saleOrderID int64) error {
	r.dispatched = append(r.dispatched, saleOrderID)
	return r.err
}

func newTestService(t *testing.T) (*Service, *outboxmemory.Store, *recordingOrchestrator) {
	t.Helper()
	events := outboxmemory.NewStore()
	orch := &recordingOrchestrator{}
	repo := salesmemory.NewRepository(events)
	return NewService(repo, orch, nil), events, orch
}

func validInput() ports.CreateSaleInput {
	return ports.CreateSaleInput{
		ClientID:      int64Ptr(7),
		EmployeeID:    int64Ptr(3),
		Date:          timePtr(time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)),
		PaymentMethod: stringPtr("card"),
		Observacoes:   stringPtr("entregar na recepcao"),
		Items: []ports.ItemInput{
			{ProductID: int64Ptr(10), Quantity: int32Ptr(2), Price: floatPtr(50)},
			{ProductID: int64Ptr(20), Quantity: int32Ptr(1), Price: floatPtr(120), Discount: floatPtr(10)},
		},
	}
}

func requireValidation(t *testing.T, err error, msg string) *apperrors.Error {
	t.Helper()
	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, apperrors.KindValidation, appErr.Kind)
	require.Equal(t, msg, appErr.Msg)
	return appErr
}

func TestCreateSale(t *testing.T) {
	ctx := context.Background()

	t.Run("persists the order and emits the fan-out events", func(t *testing.T) {
		svc, events, orch := newTestService(t)

		saved, err := svc.CreateSale(ctx, validInput())
		require.NoError(t, err)
		require.NotZero(t, saved.ID)
		require.Equal(t, "PENDING", saved.Status)
		require.Len(t, saved.Items, 2)
		require.Equal(t, int64(10), saved.Items[0].ProductID)
		require.Equal(t, int32(2), saved.Items[0].Quantity)

		require.Equal(t, []int64{saved.ID}, orch.dispatched)

		all := events.All()
		require.Len(t, all, 3)

		var decrements []contracts.InventoryDecrement
		var invoices []contracts.SaleInvoiceEvent
		for _, ev := range all {
			require.Equal(t, saved.ID, ev.AggregateID)
			switch ev.Topic {
			case contracts.TopicInventoryUpdates:
				var msg contracts.InventoryDecrement
				require.NoError(t, json.Unmarshal(ev.Payload, &msg))
				require.NotEmpty(t, msg.EventID)
				decrements = append(decrements, msg)
			case contracts.TopicSaleInvoiceEvents:
				var msg contracts.SaleInvoiceEvent
				require.NoError(t, json.Unmarshal(ev.Payload, &msg))
				invoices = append(invoices, msg)
			default:
				t.Fatalf("unexpected topic %q", ev.Topic)
			}
		}
		require.Len(t, decrements, 2)
		require.Equal(t, int64(10), decrements[0].ProductID)
		require.Equal(t, int32(2), decrements[0].QuantitySold)
		require.Equal(t, int64(20), decrements[1].ProductID)
		require.Equal(t, int32(1), decrements[1].QuantitySold)

		require.Len(t, invoices, 1)
		invoice := invoices[0].InvoiceData
		require.NotEmpty(t, invoice.NFID)
		require.Equal(t, saved.ID, invoice.SaleOrderID)
		require.Equal(t, saved.ID, invoices[0].SaleOrder.ID)
		require.Equal(t, "entregar na recepcao", invoice.Notes)
		require.InDelta(t, 210.0, invoice.TotalValue, 0.001)
		require.Len(t, invoice.Items, 2)
		require.InDelta(t, 100.0, invoice.Items[0].Total, 0.001)
		require.InDelta(t, 110.0, invoice.Items[1].Total, 0.001)
	})

	t.Run("rejects missing parties before inspecting items", func(t *testing.T) {
		svc, events, _ := newTestService(t)

		input := validInput()
		input.ClientID = nil
		input.Items = []ports.ItemInput{{ProductID: int64Ptr(10)}}
		_, err := svc.CreateSale(ctx, input)
		requireValidation(t, err, "Client ID and Employee ID are required")
		require.Empty(t, events.All())
	})

	t.Run("rejects an empty items list", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		input := validInput()
		input.Items = []ports.ItemInput{}
		_, err := svc.CreateSale(ctx, input)
		requireValidation(t, err, "Items are required and must be a non-empty list")
	})

	t.Run("rejects an item missing its price", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		input := validInput()
		input.Items = []ports.ItemInput{{ProductID: int64Ptr(10), Quantity: int32Ptr(2)}}
		_, err := svc.CreateSale(ctx, input)
		requireValidation(t, err, "Product ID, quantity, and price are required for each item")
	})

	t.Run("rejects a non-positive quantity and names the product", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		input := validInput()
		input.Items = []ports.ItemInput{{ProductID: int64Ptr(10), Quantity: int32Ptr(0), Price: floatPtr(50)}}
		_, err := svc.CreateSale(ctx, input)
		appErr := requireValidation(t, err, "Item quantity must be a positive integer")
		require.Equal(t, int64(10), appErr.Details["product_id"])
	})

	t.Run("rejects a negative price", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		input := validInput()
		input.Items = []ports.ItemInput{{ProductID: int64Ptr(10), Quantity: int32Ptr(1), Price: floatPtr(-1)}}
		_, err := svc.CreateSale(ctx, input)
		requireValidation(t, err, "Item price must be a non-negative number")
	})

	t.Run("succeeds even when dispatch fails", func(t *testing.T) {
		events := outboxmemory.NewStore()
		orch := &recordingOrchestrator{err: errors.New("workflow engine unreachable")}
		svc := NewService(salesmemory.NewRepository(events), orch, nil)

		saved, err := svc.CreateSale(ctx, validInput())
		require.NoError(t, err)
		require.NotZero(t, saved.ID)
		require.Len(t, events.All(), 3, "events stay pending for the sweep")
	})
}

func TestGetSale(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	saved, err := svc.CreateSale(ctx, validInput())
	require.NoError(t, err)

	loaded, err := svc.GetSale(ctx, saved.ID)
	require.NoError(t, err)
	require.Equal(t, saved.ID, loaded.ID)
	require.Len(t, loaded.Items, 2)

	_, err = svc.GetSale(ctx, 9999)
	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, apperrors.KindNotFound, appErr.Kind)
	require.Equal(t, "Sale not found", appErr.Msg)
}

func TestUpdateSale(t *testing.T) {
	ctx := context.Background()

	t.Run("applies header changes", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		saved, err := svc.CreateSale(ctx, validInput())
		require.NoError(t, err)

		updated, err := svc.UpdateSale(ctx, ports.UpdateSaleInput{
			ID:            saved.ID,
			PaymentMethod: stringPtr("pix"),
			Status:        stringPtr("CONFIRMED"),
		})
		require.NoError(t, err)
		require.Equal(t, "pix", updated.PaymentMethod)
		require.Equal(t, "CONFIRMED", updated.Status)
		require.Len(t, updated.Items, 2, "items are untouched")
	})

	t.Run("rejects item replacement", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		saved, err := svc.CreateSale(ctx, validInput())
		require.NoError(t, err)

		_, err = svc.UpdateSale(ctx, ports.UpdateSaleInput{
			ID:    saved.ID,
			Items: []ports.ItemInput{{ProductID: int64Ptr(99), Quantity: int32Ptr(1), Price: floatPtr(5)}},
		})
		requireValidation(t, err, "Sale items cannot be replaced after publication")
	})

	t.Run("unknown order is not found", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		_, err := svc.UpdateSale(ctx, ports.UpdateSaleInput{ID: 404, Status: stringPtr("CONFIRMED")})
		var appErr *apperrors.Error
		require.ErrorAs(t, err, &appErr)
		require.Equal(t, apperrors.KindNotFound, appErr.Kind)
	})
}

func TestDeleteSale(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	saved, err := svc.CreateSale(ctx, validInput())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSale(ctx, saved.ID))

	_, err = svc.GetSale(ctx, saved.ID)
	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, apperrors.KindNotFound, appErr.Kind)

	err = svc.DeleteSale(ctx, saved.ID)
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, apperrors.KindNotFound, appErr.Kind)
}

func TestListSales(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	for i := 0; i < 3; i++ {
		_, err := svc.CreateSale(ctx, validInput())
		require.NoError(t, err)
	}
	orders, err := svc.ListSales(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 3)
}
