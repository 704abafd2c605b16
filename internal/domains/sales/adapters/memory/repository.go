package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Apurer/go-sales-api-server/internal/domains/sales/domain"
	"github.com/Apurer/go-sales-api-server/internal/domains/sales/ports"
	outboxmemory "github.com/Apurer/go-sales-api-server/internal/shared/outbox/memory"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory sales persistence adapter. It appends outbox
// events to the paired memory store under the same lock, mimicking the
// atomicity of the postgres transaction.
type Repository struct {
	mu         sync.RWMutex
	orders     map[int64]*domain.SaleOrder
	nextID     int64
	nextItemID int64
	outbox     *outboxmemory.Store
}

// NewRepository wires the memory repository. The outbox store may be nil when
// no fan-out is wanted (pure CRUD tests).
func NewRepository(outboxStore *outboxmemory.Store) *Repository {
	return &Repository{orders: map[int64]*domain.SaleOrder{}, outbox: outboxStore}
}

func (r *Repository) CreateWithItems(_ context.Context, order *domain.SaleOrder, events ports.EventFactory) (*domain.SaleOrder, error) {
	if err := order.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := cloneOrder(order)
	r.nextID++
	clone.ID = r.nextID
	for i := range clone.Items {
		r.nextItemID++
		clone.Items[i].ID = r.nextItemID
		clone.Items[i].SaleOrderID = clone.ID
	}
	if events != nil {
		outboxEvents, err := events(clone)
		if err != nil {
			return nil, err
		}
		if r.outbox != nil {
			r.outbox.Append(outboxEvents)
		}
	}
	r.orders[clone.ID] = clone
	return cloneOrder(clone), nil
}

func (r *Repository) GetByID(_ context.Context, id int64) (*domain.SaleOrder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return cloneOrder(order), nil
}

func (r *Repository) List(_ context.Context) ([]*domain.SaleOrder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.SaleOrder, 0, len(r.orders))
	for _, order := range r.orders {
		list = append(list, cloneOrder(order))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r *Repository) UpdateHeader(_ context.Context, order *domain.SaleOrder) (*domain.SaleOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.orders[order.ID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	existing.ClientID = order.ClientID
	existing.EmployeeID = order.EmployeeID
	existing.Date = order.Date
	existing.PaymentMethod = order.PaymentMethod
	existing.Status = order.Status
	return cloneOrder(existing), nil
}

func (r *Repository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.orders, id)
	return nil
}

// SeedWithID installs an order under a fixed id, for contract test fixtures.
func (r *Repository) SeedWithID(id int64, order *domain.SaleOrder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := cloneOrder(order)
	clone.ID = id
	for i := range clone.Items {
		r.nextItemID++
		clone.Items[i].ID = r.nextItemID
		clone.Items[i].SaleOrderID = id
	}
	if id > r.nextID {
		r.nextID = id
	}
	r.orders[id] = clone
}

func cloneOrder(order *domain.SaleOrder) *domain.SaleOrder {
	clone := *order
	clone.Items = append([]domain.SaleItem(nil), order.Items...)
	return &clone
}
