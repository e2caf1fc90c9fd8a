// Package admin builds the read-side views of the admin panel.
package admin

import (
	"strings"

	"carcare/internal/domain"
	"carcare/internal/models"
)

// BookingQuery selects what the bookings tab shows. An empty Status shows
// every status.
type BookingQuery struct {
	Status models.StatusKind
	Search string
}

// ParseQuery accepts "all" or an empty status as no filter.
func ParseQuery(status, search string) (BookingQuery, error) {
	q := BookingQuery{Search: strings.TrimSpace(search)}
	status = strings.TrimSpace(status)
	if status == "" || strings.EqualFold(status, "all") {
		return q, nil
	}
	for _, k := range models.AllStatusKinds() {
		if strings.EqualFold(status, string(k)) {
			q.Status = k
			return q, nil
		}
	}
	return BookingQuery{}, domain.Invalid("unknown status filter %q", status)
}

// Counts are taken over the search-matched set, so each status count equals
// the length of the list shown with that status selected.
type Counts struct {
	Total       int `json:"total"`
	Pending     int `json:"pending"`
	Confirmed   int `json:"confirmed"`
	Completed   int `json:"completed"`
	Rescheduled int `json:"rescheduled"`
}

func (c *Counts) add(s models.Status) {
	c.Total++
	switch s.Kind {
	case models.StatusPending:
		c.Pending++
	case models.StatusConfirmed:
		c.Confirmed++
	case models.StatusCompleted:
		c.Completed++
	case models.StatusRescheduled:
		c.Rescheduled++
	}
}

// Of returns the count for kind; an empty kind is the total.
func (c Counts) Of(kind models.StatusKind) int {
	switch kind {
	case models.StatusPending:
		return c.Pending
	case models.StatusConfirmed:
		return c.Confirmed
	case models.StatusCompleted:
		return c.Completed
	case models.StatusRescheduled:
		return c.Rescheduled
	default:
		return c.Total
	}
}

type BookingView struct {
	Items  []*models.Booking `json:"items"`
	Counts Counts            `json:"counts"`
}

// FilterBookings keeps the input order.
func FilterBookings(bookings []*models.Booking, q BookingQuery) BookingView {
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	view := BookingView{Items: make([]*models.Booking, 0, len(bookings))}
	for _, b := range bookings {
		if !matchesBooking(b, needle) {
			continue
		}
		view.Counts.add(b.Status)
		if q.Status == "" || b.Status.Is(q.Status) {
			view.Items = append(view.Items, b)
		}
	}
	return view
}

func matchesBooking(b *models.Booking, needle string) bool {
	if needle == "" {
		return true
	}
	return containsAny(needle,
		b.ServiceName,
		b.UserName,
		b.UserEmail,
		b.UserPhone,
		b.VehicleNumber,
		b.VehicleMakeModel,
		string(b.VehicleType),
	)
}

// FilterProfiles searches name, email, phone and city.
func FilterProfiles(profiles []*models.Profile, search string) []*models.Profile {
	needle := strings.ToLower(strings.TrimSpace(search))
	out := make([]*models.Profile, 0, len(profiles))
	for _, p := range profiles {
		if needle == "" || containsAny(needle, p.FullName, p.Email, p.Phone, p.City) {
			out = append(out, p)
		}
	}
	return out
}

func containsAny(needle string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}
