package lifecycle

import (
	"fmt"
	"time"

	"carcare/internal/domain"
	"carcare/internal/models"
)

type Event string

const (
	EventConfirm    Event = "confirm"
	EventComplete   Event = "complete"
	EventReschedule Event = "reschedule"
	EventCancel     Event = "cancel"
)

// Transition is the outcome of applying an event. Delete means the booking
// row must be removed; otherwise Next is the status to persist.
type Transition struct {
	From   models.Status
	Next   models.Status
	Delete bool
}

// Apply decides whether actor may apply ev to a booking in status from,
// created at createdAt, at instant now. It has no side effects.
func Apply(from models.Status, createdAt time.Time, ev Event, actor models.Actor, now time.Time) (Transition, error) {
	if from.IsTerminal() {
		return Transition{}, fmt.Errorf("%s on %s: %w", ev, from.Kind, domain.ErrIllegalTransition)
	}

	switch actor {
	case models.ActorAdmin:
		return applyAdmin(from, ev)
	case models.ActorUser:
		return applyUser(from, createdAt, ev, now)
	default:
		return Transition{}, fmt.Errorf("unknown actor %q: %w", actor, domain.ErrIllegalTransition)
	}
}

func applyAdmin(from models.Status, ev Event) (Transition, error) {
	t := Transition{From: from}
	switch ev {
	case EventConfirm:
		switch from.Kind {
		case models.StatusPending:
			t.Next = models.Confirmed(models.ActorNone)
		case models.StatusRescheduled:
			t.Next = models.Confirmed(from.RescheduledBy)
		default:
			return Transition{}, illegal(ev, from)
		}
	case EventComplete:
		if !from.Is(models.StatusConfirmed) {
			return Transition{}, illegal(ev, from)
		}
		t.Next = models.Completed()
	case EventReschedule:
		t.Next = models.Rescheduled(models.ActorAdmin)
	default:
		return Transition{}, illegal(ev, from)
	}
	return t, nil
}

func applyUser(from models.Status, createdAt time.Time, ev Event, now time.Time) (Transition, error) {
	open := WithinWindow(createdAt, now)
	switch ev {
	case EventReschedule:
		if !userEditable(from) {
			return Transition{}, illegal(ev, from)
		}
		if !open {
			return Transition{}, domain.ErrWindowExpired
		}
		return Transition{From: from, Next: models.Rescheduled(models.ActorUser)}, nil
	case EventCancel:
		switch {
		case from.Is(models.StatusPending):
			return Transition{From: from, Delete: true}, nil
		case from.Is(models.StatusRescheduled) && from.RescheduledBy == models.ActorUser:
			if !open {
				return Transition{}, domain.ErrWindowExpired
			}
			return Transition{From: from, Delete: true}, nil
		default:
			return Transition{}, illegal(ev, from)
		}
	default:
		return Transition{}, illegal(ev, from)
	}
}

// userEditable: Pending, Confirmed, or a reschedule the user made themselves.
func userEditable(s models.Status) bool {
	switch s.Kind {
	case models.StatusPending, models.StatusConfirmed:
		return true
	case models.StatusRescheduled:
		return s.RescheduledBy == models.ActorUser
	default:
		return false
	}
}

func illegal(ev Event, from models.Status) error {
	return fmt.Errorf("%s on %s: %w", ev, from, domain.ErrIllegalTransition)
}

// Actions lists what actor may currently do; used to render buttons.
func Actions(from models.Status, createdAt time.Time, actor models.Actor, now time.Time) []Event {
	var out []Event
	for _, ev := range []Event{EventConfirm, EventComplete, EventReschedule, EventCancel} {
		if _, err := Apply(from, createdAt, ev, actor, now); err == nil {
			out = append(out, ev)
		}
	}
	return out
}
