package ports

import (
	"context"

	"github.com/Apurer/go-sales-api-server/internal/shared/contracts"
)

type Service interface {
	StoreInvoice(ctx context.Context, event contracts.SaleInvoiceEvent) error
	GetInvoice(ctx context.Context, nfID string) (*contracts.InvoiceDocument, error)
}
