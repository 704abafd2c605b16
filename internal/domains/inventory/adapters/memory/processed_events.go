package memory

import (
	"context"
	"sync"

	"github.com/Apurer/go-sales-api-server/internal/domains/inventory/ports"
)

// ProcessedEvents tracks claimed event ids in process memory.
type ProcessedEvents struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

var _ ports.ProcessedEventStore = (*ProcessedEvents)(nil)

func NewProcessedEvents() *ProcessedEvents {
	return &ProcessedEvents{seen: make(map[string]struct{})}
}

func (p *ProcessedEvents) Claim(_ context.Context, eventID string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.seen[eventID]; ok {
		return false, nil
	}
	p.seen[eventID] = struct{}{}
	return true, nil
}

func (p *ProcessedEvents) Release(_ context.Context, eventID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.seen, eventID)
	return nil
}
