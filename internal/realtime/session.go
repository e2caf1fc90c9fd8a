package realtime

import (
	"context"
	"errors"
	"sync"

	"carcare/internal/domain"
	"carcare/internal/models"
	"carcare/internal/worker"

	"github.com/rs/zerolog"
)

// ErrSessionStarted is returned by a second Start.
var ErrSessionStarted = errors.New("session already started")

// SnapshotFunc loads the user's current bookings.
type SnapshotFunc func(ctx context.Context, userID string) ([]*models.Booking, error)

type UpdateKind string

const (
	UpdateSnapshot UpdateKind = "snapshot"
	UpdateChange   UpdateKind = "change"
)

// Update is handed to the session handler after the list changed. Snapshot
// updates carry the full list; change updates carry the event that was applied.
type Update struct {
	Kind  UpdateKind
	Event models.ChangeEvent
	Items []models.Booking
}

// Session owns one user's subscription: Start snapshots and subscribes,
// Close releases it. If the feed drops the subscription (for example the
// consumer lagged) the session resubscribes and resnapshots.
type Session struct {
	userID   string
	feed     domain.ChangeFeed
	snapshot SnapshotFunc
	handler  func(Update)
	retry    worker.RetryPolicy
	logger   *zerolog.Logger

	list *BookingList

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
	err     error
}

func NewSession(userID string, feed domain.ChangeFeed, snapshot SnapshotFunc, handler func(Update), retry worker.RetryPolicy, logger *zerolog.Logger) *Session {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if handler == nil {
		handler = func(Update) {}
	}
	l := logger.With().Str("component", "session").Str("user_id", userID).Logger()
	return &Session{
		userID:   userID,
		feed:     feed,
		snapshot: snapshot,
		handler:  handler,
		retry:    retry,
		logger:   &l,
		list:     NewBookingList(),
		done:     make(chan struct{}),
	}
}

// List is the session's folded view.
func (s *Session) List() *BookingList {
	return s.list
}

// Start subscribes first and then snapshots, so nothing committed between
// the two is lost; the merge drops anything seen twice.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrSessionStarted
	}
	s.started = true
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	sub, err := s.connect(ctx)
	if err != nil {
		cancel()
		close(s.done)
		return err
	}

	go s.run(ctx, sub)
	return nil
}

func (s *Session) connect(ctx context.Context) (domain.Subscription, error) {
	sub, err := s.feed.Subscribe(ctx, s.userID)
	if err != nil {
		return nil, err
	}
	bookings, err := s.snapshot(ctx, s.userID)
	if err != nil {
		sub.Close()
		return nil, err
	}
	s.list.Load(bookings)
	s.handler(Update{Kind: UpdateSnapshot, Items: s.list.Items()})
	return sub, nil
}

func (s *Session) run(ctx context.Context, sub domain.Subscription) {
	defer close(s.done)
	for {
		for ev := range sub.Events() {
			if s.list.Apply(ev) {
				s.handler(Update{Kind: UpdateChange, Event: ev})
			}
		}
		sub.Close()
		if ctx.Err() != nil {
			return
		}

		s.logger.Warn().AnErr("reason", sub.Err()).Msg("subscription ended, resyncing")
		err := s.retry.Do(ctx, func(ctx context.Context) error {
			var err error
			sub, err = s.connect(ctx)
			return err
		})
		if err != nil {
			s.setErr(err)
			s.logger.Error().Err(err).Msg("resync failed, session stopped")
			return
		}
	}
}

func (s *Session) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// Err reports why the session stopped on its own.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Done is closed once the session has stopped.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Close releases the subscription and waits for the session to stop.
func (s *Session) Close() {
	s.mu.Lock()
	started, cancel := s.started, s.cancel
	s.mu.Unlock()
	if !started {
		return
	}
	cancel()
	<-s.done
}
