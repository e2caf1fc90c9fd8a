package models

import "time"

// ChangeType is the kind of row change delivered on a user's booking feed.
type ChangeType string

const (
	ChangeInsert ChangeType = "insert"
	ChangeUpdate ChangeType = "update"
	ChangeDelete ChangeType = "delete"
)

// ChangeEvent carries the full row after the change. For deletes the row is
// the last known state and Version is the version that was deleted.
type ChangeEvent struct {
	Type    ChangeType `json:"type"`
	Booking Booking    `json:"booking"`
	Version int64      `json:"version"`
	At      time.Time  `json:"at"`
}

func NewChangeEvent(t ChangeType, b *Booking, at time.Time) ChangeEvent {
	return ChangeEvent{Type: t, Booking: *b, Version: b.Version, At: at}
}
