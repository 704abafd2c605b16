package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Apurer/go-sales-api-server/internal/shared/outbox"
)

var _ outbox.Store = (*Store)(nil)

// Store is an in-memory outbox used with the memory sales repository and in
// tests.
type Store struct {
	mu     sync.RWMutex
	events map[string]*outbox.Event
}

func NewStore() *Store {
	return &Store{events: map[string]*outbox.Event{}}
}

// Append records events as pending. The memory sales repository calls this in
// place of a database transaction.
func (s *Store) Append(events []outbox.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ev := range events {
		clone := ev
		s.events[ev.ID] = &clone
	}
}

func (s *Store) ListPending(_ context.Context, limit int, grace time.Duration) ([]outbox.Event, error) {
	cutoff := time.Now().Add(-grace)
	s.mu.RLock()
	var pending []outbox.Event
	for _, ev := range s.events {
		if ev.Status != outbox.StatusPending {
			continue
		}
		if grace > 0 && !ev.CreatedAt.Before(cutoff) {
			continue
		}
		pending = append(pending, *ev)
	}
	s.mu.RUnlock()
	sort.Slice(pending, func(i, j int) bool { return pending[i].CreatedAt.Before(pending[j].CreatedAt) })
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

func (s *Store) PendingForAggregate(_ context.Context, aggregateID int64) ([]outbox.Event, error) {
	s.mu.RLock()
	var pending []outbox.Event
	for _, ev := range s.events {
		if ev.Status == outbox.StatusPending && ev.AggregateID == aggregateID {
			pending = append(pending, *ev)
		}
	}
	s.mu.RUnlock()
	sort.Slice(pending, func(i, j int) bool { return pending[i].CreatedAt.Before(pending[j].CreatedAt) })
	return pending, nil
}

func (s *Store) MarkSent(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[id]
	if !ok {
		return outbox.ErrNotFound
	}
	if ev.Status == outbox.StatusSent {
		return nil
	}
	now := time.Now()
	ev.Status = outbox.StatusSent
	ev.SentAt = &now
	return nil
}

// All returns every stored event; test helper.
func (s *Store) All() []outbox.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]outbox.Event, 0, len(s.events))
	for _, ev := range s.events {
		all = append(all, *ev)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	return all
}
