package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-sales-api-server/internal/domains/sales/domain"
)

func TestBuildInvoice(t *testing.T) {
	issuedAt := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	order := &domain.SaleOrder{
		ID:            42,
		ClientID:      7,
		EmployeeID:    3,
		Date:          issuedAt,
		PaymentMethod: "card",
		Status:        domain.StatusPending,
		Notes:         "entregar na recepcao",
		Items: []domain.SaleItem{
			{ProductID: 10, Quantity: 2, Price: 50},
			{ProductID: 20, Quantity: 1, Price: 120, Discount: 10},
		},
	}

	invoice := BuildInvoice(order, "nf-1", issuedAt)

	require.Equal(t, "nf-1", invoice.NFID)
	require.Equal(t, int64(42), invoice.SaleOrderID)
	require.Equal(t, issuedAt, invoice.IssueDate)
	require.Equal(t, "entregar na recepcao", invoice.Notes)
	require.InDelta(t, 210.0, invoice.TotalValue, 0.0001)
	require.Len(t, invoice.Items, 2)
	require.InDelta(t, 100.0, invoice.Items[0].Total, 0.0001)
	require.InDelta(t, 110.0, invoice.Items[1].Total, 0.0001)
}

func TestBuildInvoiceAvoidsFloatDrift(t *testing.T) {
	// 3 * 0.1 accumulates drift in raw float math.
	order := &domain.SaleOrder{
		ID: 1, ClientID: 1, EmployeeID: 1,
		Items: []domain.SaleItem{
			{ProductID: 10, Quantity: 3, Price: 0.1},
			{ProductID: 20, Quantity: 1, Price: 19.99, Discount: 0.01},
		},
	}

	invoice := BuildInvoice(order, "nf-1", time.Now())

	require.Equal(t, 0.3, invoice.Items[0].Total)
	require.Equal(t, 19.98, invoice.Items[1].Total)
	require.Equal(t, 20.28, invoice.TotalValue)
}

func TestBuildSaleEvents(t *testing.T) {
	order := &domain.SaleOrder{
		ID: 42, ClientID: 7, EmployeeID: 3,
		Items: []domain.SaleItem{
			{ProductID: 10, Quantity: 2, Price: 50},
		},
	}

	events, err := buildSaleEvents(order, time.Now())
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, "10", events[0].Key, "decrements are keyed by product")
	require.NotEqual(t, events[0].ID, events[1].ID)
	for _, ev := range events {
		require.Equal(t, int64(42), ev.AggregateID)
	}
}
