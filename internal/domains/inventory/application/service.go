package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Apurer/go-sales-api-server/internal/domains/inventory/domain"
	"github.com/Apurer/go-sales-api-server/internal/domains/inventory/ports"
	"github.com/Apurer/go-sales-api-server/internal/shared/apperrors"
)

// Service applies inventory-update messages. Redeliveries carrying an
// event id that was already claimed are acknowledged without touching
// stock; messages without an event id are applied unconditionally.
type Service struct {
	repo      ports.Repository
	processed ports.ProcessedEventStore
	logger    *slog.Logger
}

var _ ports.Service = (*Service)(nil)

func NewService(repo ports.Repository, processed ports.ProcessedEventStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, processed: processed, logger: logger}
}

func (s *Service) ApplyDecrement(ctx context.Context, cmd ports.DecrementCommand) (*ports.DecrementResult, error) {
	if cmd.ProductID <= 0 {
		return nil, apperrors.BadMessage("Invalid message: missing product_id or quantity_sold", nil)
	}
	if cmd.QuantitySold <= 0 {
		return nil, apperrors.BadMessage("Invalid message: quantity_sold must be a positive integer", nil)
	}

	claimed := false
	if cmd.EventID != "" {
		ok, err := s.processed.Claim(ctx, cmd.EventID)
		if err != nil {
			return nil, apperrors.Store("Failed to check event idempotency", err)
		}
		if !ok {
			s.logger.InfoContext(ctx, "duplicate inventory event skipped",
				slog.String("event_id", cmd.EventID),
				slog.Int64("product_id", cmd.ProductID))
			return &ports.DecrementResult{Outcome: ports.OutcomeDuplicate, ProductID: cmd.ProductID}, nil
		}
		claimed = true
	}

	outcome, err := s.repo.ApplyDecrement(ctx, cmd.ProductID, cmd.QuantitySold)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			// The claim stands: redelivering a message for a product
			// that does not exist will never succeed.
			s.logger.WarnContext(ctx, "inventory update for unknown product",
				slog.Int64("product_id", cmd.ProductID))
			return &ports.DecrementResult{Outcome: ports.OutcomeProductMissing, ProductID: cmd.ProductID}, nil
		}
		if claimed {
			if relErr := s.processed.Release(ctx, cmd.EventID); relErr != nil {
				s.logger.ErrorContext(ctx, "failed to release idempotency claim",
					slog.String("event_id", cmd.EventID),
					slog.String("error", relErr.Error()))
			}
		}
		return nil, apperrors.Store("Failed to update inventory", err)
	}

	if outcome.Clamped {
		s.logger.WarnContext(ctx, "inventory decrement clamped at zero",
			slog.Int64("product_id", cmd.ProductID),
			slog.Int("quantity_sold", int(cmd.QuantitySold)))
	}
	return &ports.DecrementResult{
		Outcome:     ports.OutcomeApplied,
		ProductID:   cmd.ProductID,
		NewQuantity: outcome.Product.Quantity,
		Clamped:     outcome.Clamped,
	}, nil
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, apperrors.NotFound("Product not found")
		}
		return nil, apperrors.Store("Failed to load product", err)
	}
	return product, nil
}

func (s *Service) SeedProduct(ctx context.Context, product *domain.Product) error {
	if err := s.repo.Seed(ctx, product); err != nil {
		return apperrors.Store("Failed to save product", err)
	}
	return nil
}
