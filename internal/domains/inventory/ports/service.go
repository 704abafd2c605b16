package ports

import (
	"context"

	"github.com/Apurer/go-sales-api-server/internal/domains/inventory/domain"
)

// Outcome classifies what a decrement did.
type Outcome string

const (
	OutcomeApplied        Outcome = "updated"
	OutcomeDuplicate      Outcome = "duplicate"
	OutcomeProductMissing Outcome = "product_not_found"
)

// DecrementCommand carries one inventory-update message. EventID is empty
// for legacy producers that predate idempotency keys.
type DecrementCommand struct {
	EventID      string
	ProductID    int64
	QuantitySold int32
}

// DecrementResult reports the effect of a decrement. NewQuantity is only
// meaningful when Outcome is OutcomeApplied.
type DecrementResult struct {
	Outcome     Outcome
	ProductID   int64
	NewQuantity int32
	Clamped     bool
}

type Service interface {
	ApplyDecrement(ctx context.Context, cmd DecrementCommand) (*DecrementResult, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	SeedProduct(ctx context.Context, product *domain.Product) error
}
