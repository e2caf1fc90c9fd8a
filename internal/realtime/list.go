package realtime

import (
	"sort"
	"sync"

	"carcare/internal/models"
)

type entry struct {
	booking models.Booking
	deleted bool
}

// BookingList is a user's local view of their bookings, folded from a
// snapshot and change events. Merging is idempotent by (id, version): an
// event not newer than what is held is ignored, and deleted ids keep a
// tombstone so late updates cannot bring them back.
type BookingList struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

func NewBookingList() *BookingList {
	return &BookingList{entries: make(map[string]*entry)}
}

// Apply folds one event and reports whether the visible list changed.
// An update for an unknown id is treated as an insert.
func (l *BookingList) Apply(ev models.ChangeEvent) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.apply(ev)
}

func (l *BookingList) apply(ev models.ChangeEvent) bool {
	id := ev.Booking.ID
	if id == "" {
		return false
	}
	version := ev.Version
	if version == 0 {
		version = ev.Booking.Version
	}

	cur, known := l.entries[id]
	switch ev.Type {
	case models.ChangeDelete:
		if known && cur.deleted && cur.booking.Version >= version {
			return false
		}
		wasVisible := known && !cur.deleted
		b := ev.Booking
		b.Version = version
		if known && cur.booking.Version > version {
			b = cur.booking
		}
		l.entries[id] = &entry{booking: b, deleted: true}
		return wasVisible
	case models.ChangeInsert, models.ChangeUpdate:
		if known && cur.booking.Version >= version {
			return false
		}
		b := ev.Booking
		b.Version = version
		l.entries[id] = &entry{booking: b}
		return true
	default:
		return false
	}
}

// Load merges an authoritative snapshot. Visible entries absent from the
// snapshot were deleted while we were not listening and are tombstoned.
func (l *BookingList) Load(snapshot []*models.Booking) {
	l.mu.Lock()
	defer l.mu.Unlock()

	seen := make(map[string]struct{}, len(snapshot))
	for _, b := range snapshot {
		if b == nil {
			continue
		}
		seen[b.ID] = struct{}{}
		cur, known := l.entries[b.ID]
		if known && cur.booking.Version >= b.Version {
			continue
		}
		l.entries[b.ID] = &entry{booking: *b}
	}
	for id, e := range l.entries {
		if _, ok := seen[id]; !ok && !e.deleted {
			e.deleted = true
		}
	}
}

// Items returns visible bookings, newest first.
func (l *BookingList) Items() []models.Booking {
	l.mu.RLock()
	out := make([]models.Booking, 0, len(l.entries))
	for _, e := range l.entries {
		if !e.deleted {
			out = append(out, e.booking)
		}
	}
	l.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (l *BookingList) Get(id string) (models.Booking, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.entries[id]
	if !ok || e.deleted {
		return models.Booking{}, false
	}
	return e.booking, true
}

func (l *BookingList) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	n := 0
	for _, e := range l.entries {
		if !e.deleted {
			n++
		}
	}
	return n
}
