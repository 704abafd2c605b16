package ports

import (
	"context"
	"errors"

	"github.com/Apurer/go-sales-api-server/internal/domains/sales/domain"
	"github.com/Apurer/go-sales-api-server/internal/shared/outbox"
)

var ErrNotFound = errors.New("sale order not found")

// EventFactory builds the outbox events for a freshly persisted order. The
// repository invokes it after identifiers are assigned but inside the same
// transaction, so the events commit or roll back with the order.
type EventFactory func(saved *domain.SaleOrder) ([]outbox.Event, error)

// Repository persists sale orders and their items.
type Repository interface {
	// CreateWithItems writes the order, its items, and the events produced
	// by the factory as a single atomic unit.
	CreateWithItems(ctx context.Context, order *domain.SaleOrder, events EventFactory) (*domain.SaleOrder, error)
	GetByID(ctx context.Context, id int64) (*domain.SaleOrder, error)
	List(ctx context.Context) ([]*domain.SaleOrder, error)
	// UpdateHeader persists header-field changes only; the item set is
	// immutable after creation.
	UpdateHeader(ctx context.Context, order *domain.SaleOrder) (*domain.SaleOrder, error)
	// Delete removes the order and cascades to its items.
	Delete(ctx context.Context, id int64) error
}
