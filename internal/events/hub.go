package events

import (
	"context"
	"errors"
	"sync"

	"carcare/internal/domain"
	"carcare/internal/models"

	"github.com/rs/zerolog"
)

// Hub is the in-process change feed, segmented by booking owner. Each
// subscriber only sees events for its own user id.
type Hub struct {
	buffer int
	logger *zerolog.Logger

	mu     sync.RWMutex
	users  map[string]map[*subscription]struct{}
	closed bool
}

func NewHub(buffer int, logger *zerolog.Logger) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "hub").Logger()
	return &Hub{
		buffer: buffer,
		logger: &l,
		users:  make(map[string]map[*subscription]struct{}),
	}
}

// Subscribe registers a subscriber for userID. It ends when ctx is done or
// Close is called.
func (h *Hub) Subscribe(ctx context.Context, userID string) (domain.Subscription, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrFeedClosed
	}

	var sub *subscription
	sub = newSubscription(userID, h.buffer, func() { h.remove(userID, sub) })

	if _, ok := h.users[userID]; !ok {
		h.users[userID] = make(map[*subscription]struct{})
	}
	h.users[userID][sub] = struct{}{}

	sub.closeOn(ctx)
	return sub, nil
}

func (h *Hub) remove(userID string, sub *subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs, ok := h.users[userID]; ok {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(h.users, userID)
		}
	}
}

// Publish delivers ev to the owner's subscribers. It never blocks on a slow
// subscriber; that subscriber is dropped with ErrSubscriberLagged instead.
func (h *Hub) Publish(_ context.Context, ev models.ChangeEvent) error {
	h.mu.RLock()
	subs := make([]*subscription, 0, len(h.users[ev.Booking.UserID]))
	for sub := range h.users[ev.Booking.UserID] {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	for _, sub := range subs {
		if !sub.deliver(ev) && errors.Is(sub.Err(), ErrSubscriberLagged) {
			h.logger.Warn().Str("user_id", ev.Booking.UserID).Msg("dropping lagged subscriber")
		}
	}
	return nil
}

// Subscribers returns the number of open subscriptions for userID.
func (h *Hub) Subscribers(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}

// Close ends every subscription with ErrFeedClosed.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	var all []*subscription
	for _, subs := range h.users {
		for sub := range subs {
			all = append(all, sub)
		}
	}
	h.mu.Unlock()

	for _, sub := range all {
		sub.finish(ErrFeedClosed)
	}
}
