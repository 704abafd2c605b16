package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-sales-api-server/internal/domains/inventory/adapters/memory"
	"github.com/Apurer/go-sales-api-server/internal/domains/inventory/domain"
	"github.com/Apurer/go-sales-api-server/internal/domains/inventory/ports"
	"github.com/Apurer/go-sales-api-server/internal/shared/apperrors"
)

func newTestService(t *testing.T) (*Service, *memory.Repository, *memory.ProcessedEvents) {
	t.Helper()
	repo := memory.NewRepository()
	processed := memory.NewProcessedEvents()
	return NewService(repo, processed, nil), repo, processed
}

func TestApplyDecrement(t *testing.T) {
	ctx := context.Background()

	t.Run("reduces stock and reports the new quantity", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		require.NoError(t, repo.Seed(ctx, &domain.Product{ID: 10, Name: "Widget", Quantity: 8}))

		result, err := svc.ApplyDecrement(ctx, ports.DecrementCommand{
			EventID: "evt-1", ProductID: 10, QuantitySold: 3,
		})
		require.NoError(t, err)
		require.Equal(t, ports.OutcomeApplied, result.Outcome)
		require.Equal(t, int32(5), result.NewQuantity)
		require.False(t, result.Clamped)
	})

	t.Run("clamps at zero when the sale exceeds stock", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		require.NoError(t, repo.Seed(ctx, &domain.Product{ID: 10, Quantity: 3}))

		result, err := svc.ApplyDecrement(ctx, ports.DecrementCommand{
			EventID: "evt-1", ProductID: 10, QuantitySold: 5,
		})
		require.NoError(t, err)
		require.Equal(t, ports.OutcomeApplied, result.Outcome)
		require.Equal(t, int32(0), result.NewQuantity)
		require.True(t, result.Clamped)
	})

	t.Run("acknowledges unknown products without error", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		result, err := svc.ApplyDecrement(ctx, ports.DecrementCommand{
			EventID: "evt-1", ProductID: 999, QuantitySold: 1,
		})
		require.NoError(t, err)
		require.Equal(t, ports.OutcomeProductMissing, result.Outcome)
	})

	t.Run("skips redeliveries that reuse an event id", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		require.NoError(t, repo.Seed(ctx, &domain.Product{ID: 10, Quantity: 8}))

		cmd := ports.DecrementCommand{EventID: "evt-1", ProductID: 10, QuantitySold: 3}
		first, err := svc.ApplyDecrement(ctx, cmd)
		require.NoError(t, err)
		require.Equal(t, ports.OutcomeApplied, first.Outcome)

		second, err := svc.ApplyDecrement(ctx, cmd)
		require.NoError(t, err)
		require.Equal(t, ports.OutcomeDuplicate, second.Outcome)

		product, err := svc.GetProduct(ctx, 10)
		require.NoError(t, err)
		require.Equal(t, int32(5), product.Quantity)
	})

	t.Run("applies messages without an event id every time", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		require.NoError(t, repo.Seed(ctx, &domain.Product{ID: 10, Quantity: 8}))

		cmd := ports.DecrementCommand{ProductID: 10, QuantitySold: 3}
		_, err := svc.ApplyDecrement(ctx, cmd)
		require.NoError(t, err)
		_, err = svc.ApplyDecrement(ctx, cmd)
		require.NoError(t, err)

		product, err := svc.GetProduct(ctx, 10)
		require.NoError(t, err)
		require.Equal(t, int32(2), product.Quantity)
	})

	t.Run("rejects commands without product or quantity", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		_, err := svc.ApplyDecrement(ctx, ports.DecrementCommand{QuantitySold: 1})
		require.Equal(t, apperrors.KindBadMessage, apperrors.KindOf(err))

		_, err = svc.ApplyDecrement(ctx, ports.DecrementCommand{ProductID: 10})
		require.Equal(t, apperrors.KindBadMessage, apperrors.KindOf(err))
	})

	t.Run("releases the claim when the store fails", func(t *testing.T) {
		repo := &failingRepository{}
		processed := memory.NewProcessedEvents()
		svc := NewService(repo, processed, nil)

		cmd := ports.DecrementCommand{EventID: "evt-1", ProductID: 10, QuantitySold: 1}
		_, err := svc.ApplyDecrement(ctx, cmd)
		require.Equal(t, apperrors.KindStore, apperrors.KindOf(err))

		ok, err := processed.Claim(ctx, "evt-1")
		require.NoError(t, err)
		require.True(t, ok, "claim should have been released for redelivery")
	})
}

func TestHandleMessage(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService(t)
	require.NoError(t, repo.Seed(ctx, &domain.Product{ID: 10, Quantity: 4}))

	require.NoError(t, svc.HandleMessage(ctx, []byte(`{"event_id":"evt-1","product_id":10,"quantity_sold":4}`)))

	product, err := svc.GetProduct(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, int32(0), product.Quantity)

	err = svc.HandleMessage(ctx, []byte(`not json`))
	require.Equal(t, apperrors.KindBadMessage, apperrors.KindOf(err))
}

type failingRepository struct{}

func (f *failingRepository) GetByID(context.Context, int64) (*domain.Product, error) {
	return nil, errors.New("connection reset")
}

func (f *failingRepository) Seed(context.Context, *domain.Product) error {
	return errors.New("connection reset")
}

func (f *failingRepository) ApplyDecrement(context.Context, int64, int32) (*ports.DecrementOutcome, error) {
	return nil, errors.New("connection reset")
}
