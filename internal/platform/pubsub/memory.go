package pubsub

import (
	"context"
	"sync"
)

var _ Publisher = (*MemoryChannel)(nil)

// Delivery is one message held by the memory channel.
type Delivery struct {
	Topic   string
	Key     string
	Payload []byte
}

// MemoryChannel is an in-process channel used when no brokers are configured
// and in tests. Subscribers receive every message published to their topic;
// Drain lets tests pump deliveries synchronously.
type MemoryChannel struct {
	mu          sync.Mutex
	pending     []Delivery
	subscribers map[string][]HandlerFunc
}

func NewMemoryChannel() *MemoryChannel {
	return &MemoryChannel{subscribers: map[string][]HandlerFunc{}}
}

// Publish enqueues the payload for later delivery.
func (m *MemoryChannel) Publish(_ context.Context, topic string, key string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	buf := make([]byte, len(payload))
	copy(buf, payload)
	m.pending = append(m.pending, Delivery{Topic: topic, Key: key, Payload: buf})
	return nil
}

// Subscribe registers a handler for a topic.
func (m *MemoryChannel) Subscribe(topic string, handle HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers[topic] = append(m.subscribers[topic], handle)
}

// Drain delivers all pending messages to their subscribers and returns how
// many were delivered. Handler errors are ignored; redelivery happens by
// publishing again.
func (m *MemoryChannel) Drain(ctx context.Context) int {
	m.mu.Lock()
	batch := m.pending
	m.pending = nil
	subs := make(map[string][]HandlerFunc, len(m.subscribers))
	for topic, handlers := range m.subscribers {
		subs[topic] = append([]HandlerFunc(nil), handlers...)
	}
	m.mu.Unlock()

	delivered := 0
	for _, d := range batch {
		for _, handle := range subs[d.Topic] {
			_ = handle(ctx, d.Payload)
		}
		delivered++
	}
	return delivered
}

// Pending returns a copy of the undelivered messages, oldest first.
func (m *MemoryChannel) Pending() []Delivery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Delivery(nil), m.pending...)
}
