package lifecycle

import (
	"time"

	"carcare/internal/models"
)

// WindowRemaining is max(0, RescheduleWindow - (now - createdAt)).
// It is never cached; callers recompute it with the current clock.
func WindowRemaining(createdAt, now time.Time) time.Duration {
	left := models.RescheduleWindow - now.Sub(createdAt)
	if left < 0 {
		return 0
	}
	return left
}

func WithinWindow(createdAt, now time.Time) bool {
	return WindowRemaining(createdAt, now) > 0
}

// WindowDeadline is the instant the self-service window closes.
func WindowDeadline(createdAt time.Time) time.Time {
	return createdAt.Add(models.RescheduleWindow)
}
