package events

import (
	"context"
	"encoding/json"
	"fmt"

	"carcare/internal/domain"
	"carcare/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// UserChannel is the pub/sub channel carrying one user's booking changes.
func UserChannel(userID string) string {
	return "bookings:user:" + userID
}

// RedisHub fans changes out across API instances over Redis pub/sub.
type RedisHub struct {
	client *redis.Client
	buffer int
	logger *zerolog.Logger
}

func NewRedisHub(client *redis.Client, buffer int, logger *zerolog.Logger) *RedisHub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "redis_hub").Logger()
	return &RedisHub{client: client, buffer: buffer, logger: &l}
}

func (h *RedisHub) Publish(ctx context.Context, ev models.ChangeEvent) error {
	if h.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal change event: %w", err)
	}
	if err := h.client.Publish(ctx, UserChannel(ev.Booking.UserID), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish change event: %w", err)
	}
	return nil
}

// Subscribe returns once the Redis subscription is confirmed, so events
// published afterwards are not missed.
func (h *RedisHub) Subscribe(ctx context.Context, userID string) (domain.Subscription, error) {
	if h.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	ps := h.client.Subscribe(ctx, UserChannel(userID))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", UserChannel(userID), err)
	}

	sub := newSubscription(userID, h.buffer, func() { _ = ps.Close() })
	sub.closeOn(ctx)

	go func() {
		for msg := range ps.Channel() {
			var ev models.ChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				h.logger.Warn().Err(err).Str("channel", msg.Channel).Msg("skipping malformed change event")
				continue
			}
			if !sub.deliver(ev) {
				return
			}
		}
		// Channel closes when the pubsub is closed; ends the subscription if it
		// was not already ended by the consumer.
		sub.finish(ErrFeedClosed)
	}()

	return sub, nil
}
