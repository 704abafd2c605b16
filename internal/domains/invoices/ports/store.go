package ports

import (
	"context"
	"errors"

	"github.com/Apurer/go-sales-api-server/internal/shared/contracts"
)

// ErrNotFound is returned when no invoice exists for the given nf_id.
var ErrNotFound = errors.New("invoice not found")

// Store persists invoice documents keyed by nf_id. Upsert must replace an
// existing document with the same id so redeliveries converge on one row.
type Store interface {
	Upsert(ctx context.Context, doc contracts.InvoiceDocument) error
	GetByID(ctx context.Context, nfID string) (*contracts.InvoiceDocument, error)
}
