package events

import (
	"context"
	"errors"
	"sync"

	"carcare/internal/metrics"
	"carcare/internal/models"
)

// ErrSubscriberLagged ends a subscription whose buffer overflowed. The
// consumer missed events and must resnapshot.
var ErrSubscriberLagged = errors.New("subscriber fell behind, resync required")

// ErrFeedClosed ends subscriptions when the feed itself shuts down.
var ErrFeedClosed = errors.New("change feed closed")

type subscription struct {
	userID string
	ch     chan models.ChangeEvent
	done   chan struct{}

	mu     sync.Mutex
	closed bool
	err    error

	onClose func()
}

func newSubscription(userID string, buffer int, onClose func()) *subscription {
	if buffer <= 0 {
		buffer = models.SubscriberBuffer
	}
	metrics.SubscriberOpened()
	return &subscription{
		userID:  userID,
		ch:      make(chan models.ChangeEvent, buffer),
		done:    make(chan struct{}),
		onClose: onClose,
	}
}

func (s *subscription) Events() <-chan models.ChangeEvent {
	return s.ch
}

func (s *subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *subscription) Close() {
	s.finish(nil)
}

// closeOn ends the subscription when ctx is done.
func (s *subscription) closeOn(ctx context.Context) {
	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-s.done:
		}
	}()
}

// deliver never blocks. A full buffer terminates the subscription.
func (s *subscription) deliver(ev models.ChangeEvent) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	select {
	case s.ch <- ev:
		s.mu.Unlock()
		return true
	default:
	}
	s.mu.Unlock()
	s.finish(ErrSubscriberLagged)
	return false
}

func (s *subscription) finish(err error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.err = err
	close(s.ch)
	close(s.done)
	s.mu.Unlock()

	metrics.SubscriberClosed()
	if s.onClose != nil {
		s.onClose()
	}
}
