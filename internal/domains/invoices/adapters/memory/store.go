package memory

import (
	"context"
	"sync"

	"github.com/Apurer/go-sales-api-server/internal/domains/invoices/ports"
	"github.com/Apurer/go-sales-api-server/internal/shared/contracts"
)

// Store keeps invoice documents in process memory.
type Store struct {
	mu   sync.Mutex
	docs map[string]contracts.InvoiceDocument
}

var _ ports.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{docs: make(map[string]contracts.InvoiceDocument)}
}

func (s *Store) Upsert(_ context.Context, doc contracts.InvoiceDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.NFID] = doc
	return nil
}

func (s *Store) GetByID(_ context.Context, nfID string) (*contracts.InvoiceDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[nfID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return &doc, nil
}

// Count reports how many documents are stored, for tests.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}
