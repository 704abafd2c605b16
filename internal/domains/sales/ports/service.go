package ports

import (
	"context"
	"time"

	"github.com/Apurer/go-sales-api-server/internal/domains/sales/domain"
)

// ItemInput is one requested sale line. Pointer fields distinguish absent
// from zero so missing-field validation can name what is missing.
type ItemInput struct {
	ProductID *int64
	Quantity  *int32
	Price     *float64
	Discount  *float64
}

// CreateSaleInput is the coordinator's request contract. Observacoes is the
// optional free-text note carried through to the invoice document.
type CreateSaleInput struct {
	ClientID      *int64
	EmployeeID    *int64
	Date          *time.Time
	PaymentMethod *string
	Status        *string
	Observacoes   *string
	Items         []ItemInput
}

// UpdateSaleInput carries header-field changes for an existing order. A
// non-nil Items signals an attempted item replacement, which is rejected.
type UpdateSaleInput struct {
	ID            int64
	ClientID      *int64
	EmployeeID    *int64
	Date          *time.Time
	PaymentMethod *string
	Status        *string
	Items         []ItemInput
}

// Service exposes the sales use cases to adapters.
type Service interface {
	// CreateSale validates, persists order+items+events atomically, and
	// hands the events to the fulfillment orchestrator. The response does
	// not wait for downstream consumers.
	CreateSale(ctx context.Context, input CreateSaleInput) (*domain.SaleOrder, error)
	GetSale(ctx context.Context, id int64) (*domain.SaleOrder, error)
	ListSales(ctx context.Context) ([]*domain.SaleOrder, error)
	UpdateSale(ctx context.Context, input UpdateSaleInput) (*domain.SaleOrder, error)
	DeleteSale(ctx context.Context, id int64) error
}
