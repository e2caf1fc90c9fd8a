package models

import "fmt"

// StatusKind is the lifecycle position of a booking.
type StatusKind string

const (
	StatusPending     StatusKind = "Pending"
	StatusConfirmed   StatusKind = "Confirmed"
	StatusCompleted   StatusKind = "Completed"
	StatusRescheduled StatusKind = "Rescheduled"
)

// Actor identifies who triggered a change.
type Actor string

const (
	ActorNone  Actor = ""
	ActorUser  Actor = "user"
	ActorAdmin Actor = "admin"
)

func (a Actor) Valid() bool {
	return a == ActorNone || a == ActorUser || a == ActorAdmin
}

// Status is a tagged variant. RescheduledBy is only meaningful for
// Rescheduled (who moved the slot, always set) and Confirmed (who moved it
// before the confirmation, optional). Pending and Completed never carry it.
type Status struct {
	Kind          StatusKind `json:"kind"`
	RescheduledBy Actor      `json:"rescheduled_by,omitempty"`
}

func Pending() Status {
	return Status{Kind: StatusPending}
}

// Confirmed keeps the provenance of a preceding reschedule, if any.
func Confirmed(previouslyRescheduledBy Actor) Status {
	return Status{Kind: StatusConfirmed, RescheduledBy: previouslyRescheduledBy}
}

func Completed() Status {
	return Status{Kind: StatusCompleted}
}

func Rescheduled(by Actor) Status {
	return Status{Kind: StatusRescheduled, RescheduledBy: by}
}

// ParseStatus rebuilds a Status from its stored columns and rejects
// combinations the variant cannot represent.
func ParseStatus(kind, rescheduledBy string) (Status, error) {
	s := Status{Kind: StatusKind(kind), RescheduledBy: Actor(rescheduledBy)}
	if err := s.Validate(); err != nil {
		return Status{}, err
	}
	return s, nil
}

func (s Status) Validate() error {
	if !s.RescheduledBy.Valid() {
		return fmt.Errorf("invalid actor %q", s.RescheduledBy)
	}
	switch s.Kind {
	case StatusPending, StatusCompleted:
		if s.RescheduledBy != ActorNone {
			return fmt.Errorf("status %s cannot carry provenance", s.Kind)
		}
	case StatusRescheduled:
		if s.RescheduledBy == ActorNone {
			return fmt.Errorf("status %s requires provenance", s.Kind)
		}
	case StatusConfirmed:
	default:
		return fmt.Errorf("invalid booking status: %q", s.Kind)
	}
	return nil
}

func (s Status) Is(kind StatusKind) bool {
	return s.Kind == kind
}

func (s Status) IsTerminal() bool {
	return s.Kind == StatusCompleted
}

func (s Status) String() string {
	if s.RescheduledBy == ActorNone {
		return string(s.Kind)
	}
	return fmt.Sprintf("%s(%s)", s.Kind, s.RescheduledBy)
}

// AllStatusKinds lists kinds in the order the admin dashboard shows them.
func AllStatusKinds() []StatusKind {
	return []StatusKind{StatusPending, StatusRescheduled, StatusConfirmed, StatusCompleted}
}
