package ports

import (
	"context"
	"errors"

	"github.com/Apurer/go-sales-api-server/internal/domains/inventory/domain"
)

// ErrNotFound is returned when no product exists for the given id.
var ErrNotFound = errors.New("product not found")

// DecrementOutcome is the result of applying a sale to a product row.
type DecrementOutcome struct {
	Product *domain.Product
	Clamped bool
}

// Repository persists products. ApplyDecrement must serialize concurrent
// decrements of the same product so the clamp is computed against the
// committed quantity.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	Seed(ctx context.Context, product *domain.Product) error
	ApplyDecrement(ctx context.Context, productID int64, quantitySold int32) (*DecrementOutcome, error)
}
