package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"carcare/internal/catalog"
	"carcare/internal/config"
	"carcare/internal/database"
	"carcare/internal/domain"
	"carcare/internal/models"
	"carcare/internal/pricing"
	"carcare/internal/repository"
	"carcare/internal/worker"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const adminEmail = "admin@carcare.in"

var t0 = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	svc      *BookingService
	bookings *mockBookings
	profiles *mockProfiles
	prices   *mockPrices
	pub      *mockPublisher
	now      time.Time
}

func newFixture(t *testing.T, guard domain.ActionGuard, cfg config.BookingConfig) *fixture {
	t.Helper()
	f := &fixture{
		bookings: new(mockBookings),
		profiles: new(mockProfiles),
		prices:   new(mockPrices),
		pub:      new(mockPublisher),
		now:      t0,
	}
	if guard == nil {
		guard = repository.NewMemoryGuard()
	}
	cfg.AdminEmail = adminEmail
	logger := zerolog.New(io.Discard)
	cat := catalog.Default()
	resolver := pricing.NewResolver(f.prices, cat, worker.FixedRetry(0, time.Millisecond), &logger)
	f.svc = NewBookingService(f.bookings, f.profiles, guard, f.pub, resolver, cat, cfg, &logger)
	f.svc.SetClock(func() time.Time { return f.now })
	return f
}

func verifiedProfile(id string) *models.Profile {
	return &models.Profile{
		ID:           id,
		FullName:     "Asha Rao",
		Email:        id + "@example.com",
		Phone:        "9876543210",
		AddressLine1: "12 MG Road",
		City:         "Bengaluru",
		State:        "KA",
		Pincode:      "560001",
		Verified:     true,
	}
}

func validRequest() CreateBookingRequest {
	return CreateBookingRequest{
		ServiceIDs:        []string{"car-wash", "interior-detailing"},
		VehicleType:       "sedan",
		VehicleNumber:     "ka01ab1234",
		VehicleMakeModel:  "Honda City",
		ServiceMode:       string(models.ModeHomeService),
		PreferredDateTime: "2024-06-03 10:30",
	}
}

func storedBooking(id, userID string, status models.Status, version int64) *models.Booking {
	return &models.Booking{
		ID:                id,
		UserID:            userID,
		ServiceName:       "Car Wash",
		VehicleType:       models.VehicleSedan,
		VehicleMakeModel:  "Honda City",
		ServiceMode:       models.ModePickupDrop,
		Address:           "12 MG Road",
		PreferredDateTime: "2024-06-03 10:30",
		BookingDate:       time.Date(2024, 6, 3, 10, 30, 0, 0, time.Local),
		Status:            status,
		CreatedAt:         t0,
		UpdatedAt:         t0,
		Version:           version,
	}
}

func TestCreateBooking(t *testing.T) {
	f := newFixture(t, nil, config.BookingConfig{})
	ctx := context.Background()

	f.profiles.On("GetProfile", mock.Anything, "u1").Return(verifiedProfile("u1"), nil)
	f.prices.On("ListPrices", mock.Anything).Return([]*models.ServicePrice{
		{ServiceID: "car-wash", PriceSedan: 699, PriceHatchback: 599},
	}, nil).Once()

	var inserted *models.Booking
	created := &models.Booking{ID: "b1", UserID: "u1", Status: models.Pending(), Version: 1}
	f.bookings.On("InsertBooking", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { inserted = args.Get(1).(*models.Booking) }).
		Return(created, nil).Once()
	f.pub.On("Publish", mock.Anything, mock.MatchedBy(func(ev models.ChangeEvent) bool {
		return ev.Type == models.ChangeInsert && ev.Booking.ID == "b1"
	})).Return(nil).Once()

	b, err := f.svc.CreateBooking(ctx, "u1", validRequest())
	require.NoError(t, err)
	assert.Equal(t, "b1", b.ID)

	require.NotNil(t, inserted)
	assert.Equal(t, "u1", inserted.UserID)
	assert.Equal(t, "Asha Rao", inserted.UserName)
	assert.Equal(t, "u1@example.com", inserted.UserEmail)
	assert.Equal(t, "Car Wash, Interior Detailing", inserted.ServiceName)
	assert.Equal(t, models.VehicleSedan, inserted.VehicleType)
	assert.Equal(t, "KA01AB1234", inserted.VehicleNumber)
	assert.Equal(t, models.ModeHomeService, inserted.ServiceMode)
	assert.Equal(t, "12 MG Road, Bengaluru, KA, 560001", inserted.Address)
	assert.Equal(t, int64(699+2499), inserted.TotalAmount, "table price plus catalog default")
	assert.Equal(t, models.Pending(), inserted.Status)
	assert.Equal(t, t0, inserted.CreatedAt)
	assert.Equal(t, time.Date(2024, 6, 3, 10, 30, 0, 0, time.Local), inserted.BookingDate)

	f.bookings.AssertExpectations(t)
	f.pub.AssertExpectations(t)
}

func TestCreateBookingDefaults(t *testing.T) {
	f := newFixture(t, nil, config.BookingConfig{})
	f.profiles.On("GetProfile", mock.Anything, "u1").Return(verifiedProfile("u1"), nil)

	var inserted *models.Booking
	f.bookings.On("InsertBooking", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { inserted = args.Get(1).(*models.Booking) }).
		Return(&models.Booking{ID: "b1"}, nil).Once()
	f.pub.On("Publish", mock.Anything, mock.Anything).Return(nil)

	_, err := f.svc.CreateBooking(context.Background(), "u1", CreateBookingRequest{
		VehicleMakeModel:  "Maruti Swift",
		PreferredDateTime: "Tomorrow morning",
		Address:           "  Gate 3, Tech Park  ",
	})
	require.NoError(t, err)

	assert.Equal(t, models.DefaultServiceName, inserted.ServiceName)
	assert.Equal(t, models.VehicleHatchback, inserted.VehicleType)
	assert.Equal(t, models.ModePickupDrop, inserted.ServiceMode)
	assert.Equal(t, "Gate 3, Tech Park", inserted.Address)
	assert.Equal(t, int64(0), inserted.TotalAmount)
	assert.Equal(t, t0, inserted.BookingDate, "unparseable slot falls back to creation instant")
	f.prices.AssertNotCalled(t, "ListPrices", mock.Anything)
}

func TestCreateBookingPreconditions(t *testing.T) {
	ctx := context.Background()

	t.Run("BlockedUserHasNoSideEffects", func(t *testing.T) {
		f := newFixture(t, nil, config.BookingConfig{})
		p := verifiedProfile("u1")
		p.Blocked = true
		f.profiles.On("GetProfile", mock.Anything, "u1").Return(p, nil)

		b, err := f.svc.CreateBooking(ctx, "u1", validRequest())
		assert.ErrorIs(t, err, domain.ErrBlocked)
		assert.Nil(t, b)
		assert.Equal(t, domain.KindPrecondition, domain.KindOf(err))
		f.bookings.AssertNotCalled(t, "InsertBooking", mock.Anything, mock.Anything)
		f.pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
		f.prices.AssertNotCalled(t, "ListPrices", mock.Anything)
	})

	t.Run("UnverifiedUser", func(t *testing.T) {
		f := newFixture(t, nil, config.BookingConfig{})
		p := verifiedProfile("u1")
		p.Verified = false
		f.profiles.On("GetProfile", mock.Anything, "u1").Return(p, nil)

		_, err := f.svc.CreateBooking(ctx, "u1", validRequest())
		assert.ErrorIs(t, err, domain.ErrUnverified)
		f.bookings.AssertNotCalled(t, "InsertBooking", mock.Anything, mock.Anything)
	})

	t.Run("AdminBypassesGates", func(t *testing.T) {
		f := newFixture(t, nil, config.BookingConfig{})
		p := verifiedProfile("admin")
		p.Email = "Admin@CarCare.in"
		p.Verified = false
		p.Blocked = true
		f.profiles.On("GetProfile", mock.Anything, "admin").Return(p, nil)
		f.prices.On("ListPrices", mock.Anything).Return([]*models.ServicePrice{}, nil)
		f.bookings.On("InsertBooking", mock.Anything, mock.Anything).Return(&models.Booking{ID: "b1"}, nil).Once()
		f.pub.On("Publish", mock.Anything, mock.Anything).Return(nil)

		_, err := f.svc.CreateBooking(ctx, "admin", validRequest())
		assert.NoError(t, err)
	})

	t.Run("MissingProfile", func(t *testing.T) {
		f := newFixture(t, nil, config.BookingConfig{})
		f.profiles.On("GetProfile", mock.Anything, "ghost").Return(nil, domain.ErrNotFound)

		_, err := f.svc.CreateBooking(ctx, "ghost", validRequest())
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("InvalidRequestsDoNotUseQuota", func(t *testing.T) {
		f := newFixture(t, nil, config.BookingConfig{CreateRateLimit: 1, CreateRateWindow: time.Minute})
		f.profiles.On("GetProfile", mock.Anything, "u1").Return(verifiedProfile("u1"), nil)
		f.prices.On("ListPrices", mock.Anything).Return([]*models.ServicePrice{}, nil)
		f.bookings.On("InsertBooking", mock.Anything, mock.Anything).Return(&models.Booking{ID: "b1"}, nil).Once()
		f.pub.On("Publish", mock.Anything, mock.Anything).Return(nil)

		bad := validRequest()
		bad.ServiceIDs = []string{"teleport"}
		for i := 0; i < 3; i++ {
			_, err := f.svc.CreateBooking(ctx, "u1", bad)
			require.ErrorIs(t, err, domain.ErrValidation)
		}
		_, err := f.svc.CreateBooking(ctx, "u1", validRequest())
		assert.NoError(t, err)
	})

	t.Run("RateLimited", func(t *testing.T) {
		f := newFixture(t, nil, config.BookingConfig{CreateRateLimit: 1, CreateRateWindow: time.Minute})
		f.profiles.On("GetProfile", mock.Anything, "u1").Return(verifiedProfile("u1"), nil)
		f.prices.On("ListPrices", mock.Anything).Return([]*models.ServicePrice{}, nil)
		f.bookings.On("InsertBooking", mock.Anything, mock.Anything).Return(&models.Booking{ID: "b1"}, nil).Once()
		f.pub.On("Publish", mock.Anything, mock.Anything).Return(nil)

		_, err := f.svc.CreateBooking(ctx, "u1", validRequest())
		require.NoError(t, err)
		_, err = f.svc.CreateBooking(ctx, "u1", validRequest())
		assert.ErrorIs(t, err, domain.ErrRateLimited)
		f.bookings.AssertNumberOfCalls(t, "InsertBooking", 1)
	})
}

func TestCreateBookingValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, config.BookingConfig{})
	noAddress := verifiedProfile("u2")
	noAddress.AddressLine1 = ""
	f.profiles.On("GetProfile", mock.Anything, "u1").Return(verifiedProfile("u1"), nil)
	f.profiles.On("GetProfile", mock.Anything, "u2").Return(noAddress, nil)

	tests := []struct {
		name   string
		userID string
		mutate func(r *CreateBookingRequest)
	}{
		{"missing make and model", "u1", func(r *CreateBookingRequest) { r.VehicleMakeModel = "" }},
		{"missing slot", "u1", func(r *CreateBookingRequest) { r.PreferredDateTime = " " }},
		{"unknown vehicle type", "u1", func(r *CreateBookingRequest) { r.VehicleType = "Truck" }},
		{"unknown service mode", "u1", func(r *CreateBookingRequest) { r.ServiceMode = "Drive-in" }},
		{"unknown service", "u1", func(r *CreateBookingRequest) { r.ServiceIDs = []string{"teleport"} }},
		{"home service for workshop job", "u1", func(r *CreateBookingRequest) { r.ServiceIDs = []string{"periodic-service"} }},
		{"home service without services", "u1", func(r *CreateBookingRequest) { r.ServiceIDs = nil }},
		{"no address anywhere", "u2", func(r *CreateBookingRequest) { r.Address = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			_, err := f.svc.CreateBooking(ctx, tt.userID, req)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
	f.bookings.AssertNotCalled(t, "InsertBooking", mock.Anything, mock.Anything)
}

func TestUserRescheduleWindow(t *testing.T) {
	f := newFixture(t, nil, config.BookingConfig{})
	ctx := context.Background()

	current := storedBooking("b1", "u1", models.Pending(), 1)
	f.bookings.On("GetBooking", mock.Anything, "b1").Return(current, nil)

	var written *models.Booking
	f.bookings.On("UpdateBooking", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { written = args.Get(1).(*models.Booking) }).
		Return(&models.Booking{ID: "b1", UserID: "u1", Status: models.Rescheduled(models.ActorUser), Version: 2}, nil).Once()
	f.pub.On("Publish", mock.Anything, mock.MatchedBy(func(ev models.ChangeEvent) bool {
		return ev.Type == models.ChangeUpdate && ev.Version == 2
	})).Return(nil).Once()

	f.now = t0.Add(30 * time.Minute)
	b, err := f.svc.Reschedule(ctx, "u1", "b1", "2024-06-05 16:00")
	require.NoError(t, err)
	assert.Equal(t, models.Rescheduled(models.ActorUser), b.Status)

	require.NotNil(t, written)
	assert.Equal(t, int64(1), written.Version, "write carries the version read")
	assert.Equal(t, models.Rescheduled(models.ActorUser), written.Status)
	assert.Equal(t, "2024-06-05 16:00", written.PreferredDateTime)
	assert.Equal(t, time.Date(2024, 6, 5, 16, 0, 0, 0, time.Local), written.BookingDate)
	assert.Equal(t, t0, written.CreatedAt)

	f.now = t0.Add(61 * time.Minute)
	_, err = f.svc.Reschedule(ctx, "u1", "b1", "2024-06-06 16:00")
	assert.ErrorIs(t, err, domain.ErrWindowExpired)
	f.bookings.AssertNumberOfCalls(t, "UpdateBooking", 1)
	f.pub.AssertExpectations(t)
}

func TestAdminLifecycle(t *testing.T) {
	f := newFixture(t, nil, config.BookingConfig{})
	ctx := context.Background()
	f.now = t0.Add(5 * time.Hour)

	pending := storedBooking("b1", "u1", models.Pending(), 1)
	confirmed := storedBooking("b1", "u1", models.Confirmed(models.ActorNone), 2)
	completed := storedBooking("b1", "u1", models.Completed(), 3)
	f.pub.On("Publish", mock.Anything, mock.Anything).Return(nil)

	f.bookings.On("GetBooking", mock.Anything, "b1").Return(pending, nil).Once()
	f.bookings.On("UpdateBooking", mock.Anything, mock.MatchedBy(func(b *models.Booking) bool {
		return b.Status == models.Confirmed(models.ActorNone) && b.Version == 1
	})).Return(confirmed, nil).Once()
	b, err := f.svc.Confirm(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, b.Status.Kind)

	f.bookings.On("GetBooking", mock.Anything, "b1").Return(confirmed, nil).Once()
	f.bookings.On("UpdateBooking", mock.Anything, mock.MatchedBy(func(b *models.Booking) bool {
		return b.Status == models.Completed() && b.Version == 2
	})).Return(completed, nil).Once()
	b, err = f.svc.Complete(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, b.Status.Kind)

	f.bookings.On("GetBooking", mock.Anything, "b1").Return(completed, nil).Once()
	_, err = f.svc.AdminReschedule(ctx, "b1", "2024-06-09 09:00")
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))

	f.bookings.AssertNumberOfCalls(t, "UpdateBooking", 2)
	f.bookings.AssertExpectations(t)
}

func TestAdminRescheduleKeepsBookingDate(t *testing.T) {
	f := newFixture(t, nil, config.BookingConfig{})
	ctx := context.Background()
	f.now = t0.Add(48 * time.Hour)
	f.pub.On("Publish", mock.Anything, mock.Anything).Return(nil)

	stored := storedBooking("b1", "u1", models.Confirmed(models.ActorNone), 2)
	f.bookings.On("GetBooking", mock.Anything, "b1").Return(stored, nil).Once()

	var written *models.Booking
	f.bookings.On("UpdateBooking", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { written = args.Get(1).(*models.Booking) }).
		Return(storedBooking("b1", "u1", models.Rescheduled(models.ActorAdmin), 3), nil).Once()

	_, err := f.svc.AdminReschedule(ctx, "b1", " 2024-06-09 09:00 ")
	require.NoError(t, err)
	require.NotNil(t, written)
	assert.Equal(t, models.Rescheduled(models.ActorAdmin), written.Status)
	assert.Equal(t, "2024-06-09 09:00", written.PreferredDateTime)
	assert.Equal(t, stored.BookingDate, written.BookingDate)
}

func TestAdminConfirmKeepsRescheduleProvenance(t *testing.T) {
	f := newFixture(t, nil, config.BookingConfig{})
	f.pub.On("Publish", mock.Anything, mock.Anything).Return(nil)
	f.bookings.On("GetBooking", mock.Anything, "b1").
		Return(storedBooking("b1", "u1", models.Rescheduled(models.ActorUser), 4), nil)
	f.bookings.On("UpdateBooking", mock.Anything, mock.MatchedBy(func(b *models.Booking) bool {
		return b.Status == models.Confirmed(models.ActorUser)
	})).Return(storedBooking("b1", "u1", models.Confirmed(models.ActorUser), 5), nil).Once()

	b, err := f.svc.Confirm(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, "Reschedule Confirmed", models.StatusLabel(b.Status))
}

func TestCancel(t *testing.T) {
	ctx := context.Background()

	t.Run("PendingIsDeleted", func(t *testing.T) {
		f := newFixture(t, nil, config.BookingConfig{})
		f.now = t0.Add(3 * time.Hour)
		current := storedBooking("b1", "u1", models.Pending(), 3)
		f.bookings.On("GetBooking", mock.Anything, "b1").Return(current, nil)
		f.bookings.On("DeleteBooking", mock.Anything, "b1", int64(3)).Return(nil).Once()
		f.pub.On("Publish", mock.Anything, mock.MatchedBy(func(ev models.ChangeEvent) bool {
			return ev.Type == models.ChangeDelete && ev.Booking.ID == "b1" && ev.Version == 3
		})).Return(nil).Once()

		b, err := f.svc.Cancel(ctx, "u1", "b1")
		require.NoError(t, err)
		assert.Equal(t, "b1", b.ID)
		f.bookings.AssertExpectations(t)
		f.pub.AssertExpectations(t)
	})

	t.Run("NotOwner", func(t *testing.T) {
		f := newFixture(t, nil, config.BookingConfig{})
		f.bookings.On("GetBooking", mock.Anything, "b1").Return(storedBooking("b1", "u1", models.Pending(), 1), nil)

		_, err := f.svc.Cancel(ctx, "intruder", "b1")
		assert.ErrorIs(t, err, domain.ErrNotOwner)
		f.bookings.AssertNotCalled(t, "DeleteBooking", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ConfirmedIsRejected", func(t *testing.T) {
		f := newFixture(t, nil, config.BookingConfig{})
		f.bookings.On("GetBooking", mock.Anything, "b1").
			Return(storedBooking("b1", "u1", models.Confirmed(models.ActorNone), 2), nil)

		_, err := f.svc.Cancel(ctx, "u1", "b1")
		assert.ErrorIs(t, err, domain.ErrIllegalTransition)
	})

	t.Run("ConcurrentDelete", func(t *testing.T) {
		f := newFixture(t, nil, config.BookingConfig{})
		f.bookings.On("GetBooking", mock.Anything, "b1").Return(storedBooking("b1", "u1", models.Pending(), 1), nil)
		f.bookings.On("DeleteBooking", mock.Anything, "b1", int64(1)).Return(domain.ErrConcurrentModification)

		_, err := f.svc.Cancel(ctx, "u1", "b1")
		assert.ErrorIs(t, err, domain.ErrConcurrentModification)
		f.pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})
}

func TestConcurrentModificationIsNotPublished(t *testing.T) {
	f := newFixture(t, nil, config.BookingConfig{})
	f.bookings.On("GetBooking", mock.Anything, "b1").Return(storedBooking("b1", "u1", models.Pending(), 1), nil)
	f.bookings.On("UpdateBooking", mock.Anything, mock.Anything).Return(nil, domain.ErrConcurrentModification)

	_, err := f.svc.Confirm(context.Background(), "b1")
	assert.ErrorIs(t, err, domain.ErrConcurrentModification)
	f.pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestPublishFailureKeepsWrite(t *testing.T) {
	f := newFixture(t, nil, config.BookingConfig{})
	f.bookings.On("GetBooking", mock.Anything, "b1").Return(storedBooking("b1", "u1", models.Pending(), 1), nil)
	f.bookings.On("UpdateBooking", mock.Anything, mock.Anything).
		Return(storedBooking("b1", "u1", models.Confirmed(models.ActorNone), 2), nil)
	f.pub.On("Publish", mock.Anything, mock.Anything).Return(errors.New("redis down"))

	b, err := f.svc.Confirm(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), b.Version)
}

func TestActionLock(t *testing.T) {
	ctx := context.Background()

	t.Run("InFlightActionIsRejected", func(t *testing.T) {
		guard := new(mockGuard)
		guard.On("AcquireLock", mock.Anything, "booking:b1", models.ActionLockTTL).Return("", false, nil)
		f := newFixture(t, guard, config.BookingConfig{})

		_, err := f.svc.Confirm(ctx, "b1")
		assert.ErrorIs(t, err, domain.ErrActionInFlight)
		f.bookings.AssertNotCalled(t, "GetBooking", mock.Anything, mock.Anything)
		guard.AssertNotCalled(t, "ReleaseLock", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("LockReleasedAfterFailure", func(t *testing.T) {
		guard := new(mockGuard)
		guard.On("AcquireLock", mock.Anything, "booking:b1", models.ActionLockTTL).Return("tok", true, nil).Once()
		guard.On("ReleaseLock", mock.Anything, "booking:b1", "tok").Return(nil).Once()
		f := newFixture(t, guard, config.BookingConfig{})
		f.bookings.On("GetBooking", mock.Anything, "b1").Return(nil, domain.ErrNotFound)

		_, err := f.svc.Complete(ctx, "b1")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		guard.AssertExpectations(t)
	})

	t.Run("SameBookingBlocksOthersProceed", func(t *testing.T) {
		f := newFixture(t, nil, config.BookingConfig{})
		f.pub.On("Publish", mock.Anything, mock.Anything).Return(nil)

		entered := make(chan struct{})
		release := make(chan struct{})
		f.bookings.On("GetBooking", mock.Anything, "b1").
			Run(func(mock.Arguments) {
				close(entered)
				<-release
			}).
			Return(storedBooking("b1", "u1", models.Pending(), 1), nil).Once()
		f.bookings.On("GetBooking", mock.Anything, "b2").Return(storedBooking("b2", "u2", models.Pending(), 1), nil)
		f.bookings.On("UpdateBooking", mock.Anything, mock.Anything).
			Return(storedBooking("x", "u", models.Confirmed(models.ActorNone), 2), nil)

		done := make(chan error, 1)
		go func() {
			_, err := f.svc.Confirm(ctx, "b1")
			done <- err
		}()
		<-entered

		_, err := f.svc.Confirm(ctx, "b1")
		assert.ErrorIs(t, err, domain.ErrActionInFlight)

		_, err = f.svc.Confirm(ctx, "b2")
		assert.NoError(t, err)

		close(release)
		assert.NoError(t, <-done)
	})
}

func TestUserBookings(t *testing.T) {
	f := newFixture(t, nil, config.BookingConfig{})
	list := []*models.Booking{storedBooking("b2", "u1", models.Pending(), 1), storedBooking("b1", "u1", models.Pending(), 1)}
	f.bookings.On("ListBookings", mock.Anything, domain.BookingFilter{UserID: "u1"}).Return(list, nil)

	got, err := f.svc.UserBookings(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	f.bookings.On("GetBooking", mock.Anything, "b1").Return(list[1], nil)
	_, err = f.svc.GetBooking(context.Background(), "u9", "b1", false)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.svc.GetBooking(context.Background(), "u9", "b1", true)
	assert.NoError(t, err)
}

func TestBookingAddressIsSnapshot(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.New(io.Discard)
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.UpsertProfile(ctx, verifiedProfile("u1")))

	cat := catalog.Default()
	resolver := pricing.NewResolver(db, cat, worker.FixedRetry(0, time.Millisecond), &logger)
	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, mock.Anything).Return(nil)
	bookings := NewBookingService(db, db, repository.NewMemoryGuard(), pub, resolver, cat,
		config.BookingConfig{AdminEmail: adminEmail}, &logger)
	users := NewUserService(db, db, adminEmail, &logger)

	created, err := bookings.CreateBooking(ctx, "u1", validRequest())
	require.NoError(t, err)
	assert.Equal(t, "12 MG Road, Bengaluru, KA, 560001", created.Address)

	moved := verifiedProfile("u1")
	moved.AddressLine1 = "7 Brigade Road"
	moved.City = "Mysuru"
	require.NoError(t, users.SaveProfile(ctx, moved))
	p, err := users.GetProfile(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "7 Brigade Road", p.AddressLine1)

	got, err := bookings.GetBooking(ctx, "u1", created.ID, false)
	require.NoError(t, err)
	assert.Equal(t, "12 MG Road, Bengaluru, KA, 560001", got.Address)
}
