package memory

import (
	"context"
	"sync"

	"github.com/Apurer/go-sales-api-server/internal/domains/inventory/domain"
	"github.com/Apurer/go-sales-api-server/internal/domains/inventory/ports"
)

// Repository is an in-memory product store for tests and broker-less
// deployments.
type Repository struct {
	mu       sync.Mutex
	products map[int64]*domain.Product
}

var _ ports.Repository = (*Repository)(nil)

func NewRepository() *Repository {
	return &Repository{products: make(map[int64]*domain.Product)}
}

func (r *Repository) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	product, ok := r.products[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := *product
	return &clone, nil
}

func (r *Repository) Seed(_ context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *product
	r.products[product.ID] = &clone
	return nil
}

func (r *Repository) ApplyDecrement(_ context.Context, productID int64, quantitySold int32) (*ports.DecrementOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	product, ok := r.products[productID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clamped := product.ApplySale(quantitySold)
	clone := *product
	return &ports.DecrementOutcome{Product: &clone, Clamped: clamped}, nil
}
