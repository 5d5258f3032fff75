package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/arbscan/arbscan/internal/domain"
)

// opportunityChannel is the Pub/Sub channel carrying per-user scan results.
const opportunityChannel = keyPrefix + "opportunities"

// OpportunityBus implements domain.OpportunityBus over Redis Pub/Sub. Messages
// are ephemeral: a notifier that is down during a cycle simply misses it, and
// the next cycle supersedes it anyway.
type OpportunityBus struct {
	rdb *redis.Client
}

// NewOpportunityBus creates an OpportunityBus backed by the given Client.
func NewOpportunityBus(c *Client) *OpportunityBus {
	return &OpportunityBus{rdb: c.Underlying()}
}

// Publish sends one subscriber's eligible opportunities for the cycle.
func (b *OpportunityBus) Publish(ctx context.Context, chatID int64, opps []domain.Opportunity) error {
	payload, err := json.Marshal(domain.UserOpportunities{
		ChatID:        chatID,
		Opportunities: opps,
		PublishedAt:   time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("redis: encode opportunities for chat %d: %w", chatID, err)
	}
	if err := b.rdb.Publish(ctx, opportunityChannel, payload).Err(); err != nil {
		return fmt.Errorf("redis: publish opportunities for chat %d: %w", chatID, err)
	}
	return nil
}

// Subscribe returns a channel of per-user opportunity messages. The
// subscription closes, along with the returned channel, when the context is
// cancelled. Messages that fail to decode are dropped.
func (b *OpportunityBus) Subscribe(ctx context.Context) (<-chan domain.UserOpportunities, error) {
	pubsub := b.rdb.Subscribe(ctx, opportunityChannel)

	// Verify the subscription is established by receiving the confirmation.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("redis: subscribe %s: %w", opportunityChannel, err)
	}

	out := make(chan domain.UserOpportunities, 128)
	go func() {
		defer close(out)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var uo domain.UserOpportunities
				if err := json.Unmarshal([]byte(msg.Payload), &uo); err != nil {
					continue
				}
				select {
				case out <- uo:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// Compile-time interface check.
var _ domain.OpportunityBus = (*OpportunityBus)(nil)
