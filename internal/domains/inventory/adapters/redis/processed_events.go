package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Apurer/go-sales-api-server/internal/domains/inventory/ports"
)

const (
	keyPrefix = "inventory:event:"
	claimTTL  = 24 * time.Hour
)

// ProcessedEvents records claimed event ids in Redis with SET NX so that
// consumer replicas share one dedup window. Claims expire after a day,
// which bounds the set while outlasting any broker redelivery horizon.
type ProcessedEvents struct {
	client *redis.Client
}

var _ ports.ProcessedEventStore = (*ProcessedEvents)(nil)

func NewProcessedEvents(client *redis.Client) *ProcessedEvents {
	return &ProcessedEvents{client: client}
}

func (p *ProcessedEvents) Claim(ctx context.Context, eventID string) (bool, error) {
	ok, err := p.client.SetNX(ctx, keyPrefix+eventID, 1, claimTTL).Result()
	if err != nil {
		return false, fmt.Errorf("claim event %s: %w", eventID, err)
	}
	return ok, nil
}

func (p *ProcessedEvents) Release(ctx context.Context, eventID string) error {
	if err := p.client.Del(ctx, keyPrefix+eventID).Err(); err != nil {
		return fmt.Errorf("release event %s: %w", eventID, err)
	}
	return nil
}
