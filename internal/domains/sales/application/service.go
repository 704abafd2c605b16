package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/Apurer/go-sales-api-server/internal/domains/sales/domain"
	"github.com/Apurer/go-sales-api-server/internal/domains/sales/ports"
	"github.com/Apurer/go-sales-api-server/internal/shared/apperrors"
	"github.com/Apurer/go-sales-api-server/internal/shared/outbox"
)

// Service is the order creation coordinator plus the surviving CRUD surface
// of the sales context.
type Service struct {
	repo         ports.Repository
	orchestrator ports.FulfillmentOrchestrator
	logger       *slog.Logger
}

// NewService wires the sales service. A nil orchestrator leaves dispatch
// entirely to the outbox sweep.
func NewService(repo ports.Repository, orchestrator ports.FulfillmentOrchestrator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, orchestrator: orchestrator, logger: logger}
}

// CreateSale validates the request, persists order+items+outbox events as one
// atomic write, then hands dispatch to the orchestrator. Dispatch failure is
// logged but never rolls back or fails the request: the order is durable and
// the sweep will deliver the events.
func (s *Service) CreateSale(ctx context.Context, input ports.CreateSaleInput) (*domain.SaleOrder, error) {
	order, err := buildOrder(input)
	if err != nil {
		return nil, mapError(err)
	}

	saved, err := s.repo.CreateWithItems(ctx, order, func(persisted *domain.SaleOrder) ([]outbox.Event, error) {
		return buildSaleEvents(persisted, time.Now())
	})
	if err != nil {
		if mapped := mapError(err); mapped != err {
			return nil, mapped
		}
		return nil, apperrors.Store("Failed to save sale to database", err)
	}

	if s.orchestrator != nil {
		if err := s.orchestrator.DispatchSaleEvents(ctx, saved.ID); err != nil {
			s.logger.Warn("sale event dispatch failed, outbox sweep will retry",
				slog.Int64("sale_order_id", saved.ID),
				slog.String("error", err.Error()))
		}
	}
	return saved, nil
}

// GetSale loads one order with its items.
func (s *Service) GetSale(ctx context.Context, id int64) (*domain.SaleOrder, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	return order, nil
}

// ListSales returns all orders with their items.
func (s *Service) ListSales(ctx context.Context) ([]*domain.SaleOrder, error) {
	orders, err := s.repo.List(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return orders, nil
}

// UpdateSale applies header-field changes. Item replacement is rejected: the
// fan-out reflects the creation-time item set and there is no compensation
// message to reconcile inventory or invoices afterwards.
func (s *Service) UpdateSale(ctx context.Context, input ports.UpdateSaleInput) (*domain.SaleOrder, error) {
	if input.Items != nil {
		return nil, mapError(domain.ErrItemsImmutable)
	}
	order, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, mapError(err)
	}
	if input.ClientID != nil {
		order.ClientID = *input.ClientID
	}
	if input.EmployeeID != nil {
		order.EmployeeID = *input.EmployeeID
	}
	if input.Date != nil {
		order.Date = *input.Date
	}
	if input.PaymentMethod != nil {
		order.PaymentMethod = *input.PaymentMethod
	}
	if input.Status != nil {
		order.Status = *input.Status
	}
	if err := order.Validate(); err != nil {
		return nil, mapError(err)
	}
	updated, err := s.repo.UpdateHeader(ctx, order)
	if err != nil {
		return nil, mapError(err)
	}
	return updated, nil
}

// DeleteSale removes the order and its items.
func (s *Service) DeleteSale(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapError(err)
	}
	return nil
}

// buildOrder turns the request input into a validated aggregate. Required
// header fields are checked before any item is looked at, and the first
// failing item aborts the request.
func buildOrder(input ports.CreateSaleInput) (*domain.SaleOrder, error) {
	if input.ClientID == nil || input.EmployeeID == nil {
		return nil, domain.ErrMissingParties
	}
	if len(input.Items) == 0 {
		return nil, domain.ErrNoItems
	}
	items := make([]domain.SaleItem, 0, len(input.Items))
	for _, item := range input.Items {
		if item.ProductID == nil || item.Quantity == nil || item.Price == nil {
			productID := int64(0)
			if item.ProductID != nil {
				productID = *item.ProductID
			}
			return nil, &domain.ItemError{ProductID: productID, Err: domain.ErrItemIncomplete}
		}
		discount := 0.0
		if item.Discount != nil {
			discount = *item.Discount
		}
		items = append(items, domain.SaleItem{
			ProductID: *item.ProductID,
			Quantity:  *item.Quantity,
			Price:     *item.Price,
			Discount:  discount,
		})
	}
	date := time.Time{}
	if input.Date != nil {
		date = *input.Date
	}
	paymentMethod := ""
	if input.PaymentMethod != nil {
		paymentMethod = *input.PaymentMethod
	}
	status := ""
	if input.Status != nil {
		status = *input.Status
	}
	order, err := domain.NewSaleOrder(*input.ClientID, *input.EmployeeID, date, paymentMethod, status, items)
	if err != nil {
		return nil, err
	}
	if input.Observacoes != nil {
		order.Notes = *input.Observacoes
	}
	return order, nil
}

var _ ports.Service = (*Service)(nil)
