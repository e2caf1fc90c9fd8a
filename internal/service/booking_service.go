package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"carcare/internal/catalog"
	"carcare/internal/config"
	"carcare/internal/domain"
	"carcare/internal/lifecycle"
	"carcare/internal/metrics"
	"carcare/internal/models"
	"carcare/internal/pricing"

	"github.com/rs/zerolog"
)

// BookingService runs every booking mutation: it checks preconditions,
// serialises actions per booking, applies the lifecycle rules against a
// fresh read and publishes the committed change.
type BookingService struct {
	bookings  domain.BookingStore
	profiles  domain.ProfileStore
	guard     domain.ActionGuard
	publisher domain.ChangePublisher
	prices    *pricing.Resolver
	catalog   *catalog.Catalog
	validator *RequestValidator
	cfg       config.BookingConfig
	logger    *zerolog.Logger
	now       func() time.Time
}

func NewBookingService(
	bookings domain.BookingStore,
	profiles domain.ProfileStore,
	guard domain.ActionGuard,
	publisher domain.ChangePublisher,
	prices *pricing.Resolver,
	cat *catalog.Catalog,
	cfg config.BookingConfig,
	logger *zerolog.Logger,
) *BookingService {
	if cfg.ActionLockTTL <= 0 {
		cfg.ActionLockTTL = models.ActionLockTTL
	}
	if cfg.CreateRateLimit <= 0 {
		cfg.CreateRateLimit = models.RateLimitBookings
	}
	if cfg.CreateRateWindow <= 0 {
		cfg.CreateRateWindow = models.RateLimitWindow
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "booking_service").Logger()
	return &BookingService{
		bookings:  bookings,
		profiles:  profiles,
		guard:     guard,
		publisher: publisher,
		prices:    prices,
		catalog:   cat,
		validator: NewRequestValidator(),
		cfg:       cfg,
		logger:    &l,
		now:       time.Now,
	}
}

// SetClock replaces the clock used for window checks and timestamps.
func (s *BookingService) SetClock(now func() time.Time) {
	s.now = now
}

// IsAdmin reports whether userID is the configured admin account.
func (s *BookingService) IsAdmin(ctx context.Context, userID string) (bool, error) {
	p, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return p.IsAdmin(s.cfg.AdminEmail), nil
}

// CheckCreate reports whether userID may create bookings right now.
func (s *BookingService) CheckCreate(ctx context.Context, userID string) (*models.Profile, error) {
	p, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", userID, err)
	}
	if p.IsAdmin(s.cfg.AdminEmail) {
		return p, nil
	}
	if p.Blocked {
		return nil, domain.ErrBlocked
	}
	if !p.Verified {
		return nil, domain.ErrUnverified
	}
	return p, nil
}

func (s *BookingService) CreateBooking(ctx context.Context, userID string, req CreateBookingRequest) (*models.Booking, error) {
	b, err := s.createBooking(ctx, userID, req)
	metrics.IncTransition("create", string(models.ActorUser), resultLabel(err))
	return b, err
}

func (s *BookingService) createBooking(ctx context.Context, userID string, req CreateBookingRequest) (*models.Booking, error) {
	req.VehicleMakeModel = strings.TrimSpace(req.VehicleMakeModel)
	req.PreferredDateTime = strings.TrimSpace(req.PreferredDateTime)
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	profile, err := s.CheckCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	vt, _ := models.ParseVehicleType(req.VehicleType)

	for _, id := range req.ServiceIDs {
		if _, ok := s.catalog.Lookup(id); !ok {
			return nil, domain.Invalid("unknown service %q", id)
		}
	}

	mode := models.ServiceMode(strings.TrimSpace(req.ServiceMode))
	if mode == "" {
		mode = models.DefaultServiceMode
	}
	if mode == models.ModeHomeService && !s.catalog.HomeServiceEligible(req.ServiceIDs) {
		return nil, domain.Invalid("home service is only available for wash and detailing services")
	}

	address := strings.TrimSpace(req.Address)
	if address == "" {
		address = profile.SnapshotAddress()
	}
	if address == "" {
		return nil, domain.Invalid("address is required")
	}

	serviceName := strings.TrimSpace(req.ServiceName)
	if serviceName == "" {
		serviceName = strings.Join(s.catalog.ServiceNames(req.ServiceIDs), ", ")
	}
	if serviceName == "" {
		serviceName = models.DefaultServiceName
	}

	// Counted only for requests that passed every check above.
	allowed, err := s.guard.CheckRateLimit(ctx, "create:"+userID, s.cfg.CreateRateLimit, s.cfg.CreateRateWindow)
	if err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}
	if !allowed {
		return nil, domain.ErrRateLimited
	}

	var amount int64
	if len(req.ServiceIDs) > 0 {
		price, err := s.prices.Total(ctx, req.ServiceIDs, vt)
		if err != nil {
			return nil, fmt.Errorf("price: %w", err)
		}
		amount = price.Amount
	}

	now := s.now()
	booking := &models.Booking{
		UserID:            userID,
		UserName:          profile.FullName,
		UserEmail:         profile.Email,
		UserPhone:         profile.Phone,
		ServiceName:       serviceName,
		VehicleType:       vt,
		VehicleNumber:     strings.ToUpper(strings.TrimSpace(req.VehicleNumber)),
		VehicleMakeModel:  req.VehicleMakeModel,
		ServiceMode:       mode,
		Address:           address,
		Notes:             strings.TrimSpace(req.Notes),
		PreferredDateTime: req.PreferredDateTime,
		BookingDate:       models.DeriveBookingDate(req.PreferredDateTime, now),
		TotalAmount:       amount,
		Status:            models.Pending(),
		CreatedAt:         now,
	}

	created, err := s.bookings.InsertBooking(ctx, booking)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("booking_id", created.ID).
		Str("user_id", userID).
		Int64("amount", created.TotalAmount).
		Msg("booking created")
	s.publish(ctx, models.ChangeInsert, created)
	return created, nil
}

// Confirm, Complete and AdminReschedule are admin overrides, allowed at any
// time before the booking is completed.
func (s *BookingService) Confirm(ctx context.Context, bookingID string) (*models.Booking, error) {
	return s.act(ctx, bookingID, "", lifecycle.EventConfirm, models.ActorAdmin, nil)
}

func (s *BookingService) Complete(ctx context.Context, bookingID string) (*models.Booking, error) {
	return s.act(ctx, bookingID, "", lifecycle.EventComplete, models.ActorAdmin, nil)
}

func (s *BookingService) AdminReschedule(ctx context.Context, bookingID, preferred string) (*models.Booking, error) {
	if err := s.validator.Struct(RescheduleRequest{PreferredDateTime: strings.TrimSpace(preferred)}); err != nil {
		return nil, err
	}
	return s.act(ctx, bookingID, "", lifecycle.EventReschedule, models.ActorAdmin, setPreferred(preferred))
}

// Reschedule is the owner's self-service reschedule, open only inside the
// change window.
func (s *BookingService) Reschedule(ctx context.Context, userID, bookingID, preferred string) (*models.Booking, error) {
	if err := s.validator.Struct(RescheduleRequest{PreferredDateTime: strings.TrimSpace(preferred)}); err != nil {
		return nil, err
	}
	return s.act(ctx, bookingID, userID, lifecycle.EventReschedule, models.ActorUser, setSlot(preferred))
}

// Cancel hard-deletes the owner's booking. It returns the last state of the
// deleted row.
func (s *BookingService) Cancel(ctx context.Context, userID, bookingID string) (*models.Booking, error) {
	return s.act(ctx, bookingID, userID, lifecycle.EventCancel, models.ActorUser, nil)
}

// setPreferred rewrites the requested slot only; bookingDate stays as booked.
func setPreferred(preferred string) func(b *models.Booking) {
	preferred = strings.TrimSpace(preferred)
	return func(b *models.Booking) {
		b.PreferredDateTime = preferred
	}
}

// setSlot rewrites the requested slot and re-derives bookingDate from it.
func setSlot(preferred string) func(b *models.Booking) {
	preferred = strings.TrimSpace(preferred)
	return func(b *models.Booking) {
		b.PreferredDateTime = preferred
		b.BookingDate = models.DeriveBookingDate(preferred, b.BookingDate)
	}
}

func (s *BookingService) act(
	ctx context.Context,
	bookingID, userID string,
	ev lifecycle.Event,
	actor models.Actor,
	mutate func(b *models.Booking),
) (*models.Booking, error) {
	b, err := s.withLock(ctx, bookingID, func() (*models.Booking, error) {
		return s.transition(ctx, bookingID, userID, ev, actor, mutate)
	})
	metrics.IncTransition(string(ev), string(actor), resultLabel(err))
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("booking_id", bookingID).
			Str("event", string(ev)).
			Str("actor", string(actor)).
			Msg("booking action rejected")
	}
	return b, err
}

// withLock holds the per-booking action lock around fn. A second action on
// the same booking fails fast instead of queueing.
func (s *BookingService) withLock(ctx context.Context, bookingID string, fn func() (*models.Booking, error)) (*models.Booking, error) {
	key := "booking:" + bookingID
	token, ok, err := s.guard.AcquireLock(ctx, key, s.cfg.ActionLockTTL)
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", bookingID, err)
	}
	if !ok {
		return nil, domain.ErrActionInFlight
	}
	defer func() {
		if err := s.guard.ReleaseLock(context.WithoutCancel(ctx), key, token); err != nil {
			s.logger.Error().Err(err).Str("booking_id", bookingID).Msg("release lock error")
		}
	}()
	return fn()
}

func (s *BookingService) transition(
	ctx context.Context,
	bookingID, userID string,
	ev lifecycle.Event,
	actor models.Actor,
	mutate func(b *models.Booking),
) (*models.Booking, error) {
	current, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if actor == models.ActorUser && current.UserID != userID {
		return nil, domain.ErrNotOwner
	}

	t, err := lifecycle.Apply(current.Status, current.CreatedAt, ev, actor, s.now())
	if err != nil {
		return nil, err
	}

	if t.Delete {
		if err := s.bookings.DeleteBooking(ctx, current.ID, current.Version); err != nil {
			return nil, err
		}
		s.publish(ctx, models.ChangeDelete, current)
		return current, nil
	}

	next := *current
	next.Status = t.Next
	if mutate != nil {
		mutate(&next)
	}
	updated, err := s.bookings.UpdateBooking(ctx, &next)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, models.ChangeUpdate, updated)
	return updated, nil
}

// publish failures never undo a committed write; subscribers resync.
func (s *BookingService) publish(ctx context.Context, t models.ChangeType, b *models.Booking) {
	if s.publisher == nil {
		return
	}
	ev := models.NewChangeEvent(t, b, s.now())
	if err := s.publisher.Publish(context.WithoutCancel(ctx), ev); err != nil {
		s.logger.Error().
			Err(err).
			Str("booking_id", b.ID).
			Str("change", string(t)).
			Msg("publish change error")
	}
}

// GetBooking returns a booking visible to the caller. Users only see their own.
func (s *BookingService) GetBooking(ctx context.Context, userID, bookingID string, admin bool) (*models.Booking, error) {
	b, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !admin && b.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return b, nil
}

// UserBookings lists one user's bookings, newest first. It doubles as the
// realtime snapshot loader.
func (s *BookingService) UserBookings(ctx context.Context, userID string) ([]*models.Booking, error) {
	return s.bookings.ListBookings(ctx, domain.BookingFilter{UserID: userID})
}

func (s *BookingService) AllBookings(ctx context.Context, f domain.BookingFilter) ([]*models.Booking, error) {
	return s.bookings.ListBookings(ctx, f)
}

// Actions lists the events actor may apply to b at this moment.
func (s *BookingService) Actions(b *models.Booking, actor models.Actor) []lifecycle.Event {
	return lifecycle.Actions(b.Status, b.CreatedAt, actor, s.now())
}

// WindowRemaining is the live remaining self-service window for b.
func (s *BookingService) WindowRemaining(b *models.Booking) time.Duration {
	return lifecycle.WindowRemaining(b.CreatedAt, s.now())
}

func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	return domain.KindOf(err).String()
}
