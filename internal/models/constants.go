package models

import "time"

const (
	// RescheduleWindow is how long after creation the owner may reschedule or cancel.
	RescheduleWindow = 60 * time.Minute

	DefaultServiceName = "General Service"
	DefaultServiceMode = ModePickupDrop

	// PreferredDateTimeLayout is the "date time" string produced by the booking form.
	PreferredDateTimeLayout = "2006-01-02 15:04"

	// MinPasswordLength applies to admin password resets.
	MinPasswordLength = 8
)

const (
	// ActionLockTTL bounds how long a per-booking action lock may be held.
	ActionLockTTL = 30 * time.Second

	// RateLimitBookings is the number of booking creations allowed per window.
	RateLimitBookings = 10

	// RateLimitWindow limits booking creation per user.
	RateLimitWindow = time.Minute

	// PriceFetchRetries is the number of retries after a failed price table fetch.
	PriceFetchRetries = 2

	// PriceFetchBackoff is the fixed delay between price fetch attempts.
	PriceFetchBackoff = 500 * time.Millisecond

	// SubscriberBuffer is the per-subscriber event buffer of the realtime hub.
	SubscriberBuffer = 64
)
