package application

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/Apurer/go-sales-api-server/internal/domains/invoices/ports"
	"github.com/Apurer/go-sales-api-server/internal/shared/apperrors"
	"github.com/Apurer/go-sales-api-server/internal/shared/contracts"
)

// Service records invoice documents emitted by sale fan-out. Storage is an
// upsert on nf_id, so redelivered events settle on the same row.
type Service struct {
	store  ports.Store
	logger *slog.Logger
}

var _ ports.Service = (*Service)(nil)

func NewService(store ports.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

func (s *Service) StoreInvoice(ctx context.Context, event contracts.SaleInvoiceEvent) error {
	if event.InvoiceData.NFID == "" {
		return apperrors.BadMessage("Invalid message: missing invoice_data.nf_id", nil)
	}
	if err := s.store.Upsert(ctx, event.InvoiceData); err != nil {
		return apperrors.Store("Failed to save invoice", err)
	}
	s.logger.InfoContext(ctx, "invoice stored",
		slog.String("nf_id", event.InvoiceData.NFID),
		slog.Int64("sale_order_id", event.InvoiceData.SaleOrderID))
	return nil
}

func (s *Service) GetInvoice(ctx context.Context, nfID string) (*contracts.InvoiceDocument, error) {
	doc, err := s.store.GetByID(ctx, nfID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, apperrors.NotFound("Invoice not found")
		}
		return nil, apperrors.Store("Failed to load invoice", err)
	}
	return doc, nil
}

// HandleMessage adapts the service to the broker reader loop.
func (s *Service) HandleMessage(ctx context.Context, payload []byte) error {
	var event contracts.SaleInvoiceEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return apperrors.BadMessage("Invalid message: body is not JSON", err)
	}
	return s.StoreInvoice(ctx, event)
}
