package domain

import (
	"context"
	"time"

	"carcare/internal/models"
)

// BookingFilter narrows a booking select. Zero values match everything.
type BookingFilter struct {
	UserID string
	Status models.StatusKind
	// Newest first unless Ascending.
	Ascending bool
	Limit     int
}

type BookingStore interface {
	InsertBooking(ctx context.Context, b *models.Booking) (*models.Booking, error)
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	// UpdateBooking writes status, slot and booking date when the stored
	// version equals b.Version and returns the new row.
	UpdateBooking(ctx context.Context, b *models.Booking) (*models.Booking, error)
	DeleteBooking(ctx context.Context, id string, version int64) error
	ListBookings(ctx context.Context, f BookingFilter) ([]*models.Booking, error)
}

type ProfileStore interface {
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
	ListProfiles(ctx context.Context) ([]*models.Profile, error)
	UpsertProfile(ctx context.Context, p *models.Profile) error
	// UpdateProfileDetails leaves email, verified and blocked untouched.
	UpdateProfileDetails(ctx context.Context, p *models.Profile) error
	SetVerified(ctx context.Context, id string, verified bool) error
	SetBlocked(ctx context.Context, id string, blocked bool) error
}

type PriceStore interface {
	ListPrices(ctx context.Context) ([]*models.ServicePrice, error)
	UpsertPrice(ctx context.Context, p *models.ServicePrice) error
}

// AuthAdmin is the slice of the auth provider the admin panel may drive.
type AuthAdmin interface {
	SetPasswordHash(ctx context.Context, userID string, hash []byte) error
}

// ChangePublisher receives every committed booking change.
type ChangePublisher interface {
	Publish(ctx context.Context, ev models.ChangeEvent) error
}

// Subscription is a scoped stream of one user's booking changes. Events is
// closed when the subscription ends; Err then reports why (nil after Close).
type Subscription interface {
	Events() <-chan models.ChangeEvent
	Err() error
	Close()
}

type ChangeFeed interface {
	Subscribe(ctx context.Context, userID string) (Subscription, error)
}

// ActionGuard serialises actions per booking and throttles per user.
type ActionGuard interface {
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	ReleaseLock(ctx context.Context, key, token string) error
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// PriceSource loads the price table; satisfied by PriceStore.
type PriceSource interface {
	ListPrices(ctx context.Context) ([]*models.ServicePrice, error)
}
