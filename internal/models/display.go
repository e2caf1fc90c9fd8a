package models

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	labelGetQuote = "Get Quote"
	labelPaid     = "Paid"
	labelPending  = "Pending"
)

// AmountLabel renders an amount as "₹1,499/-" using Indian digit grouping,
// or "Get Quote" when the amount is not fixed.
func AmountLabel(amount int64) string {
	if amount <= 0 {
		return labelGetQuote
	}
	return "₹" + GroupIndian(amount) + "/-"
}

// GroupIndian formats n with the last three digits grouped, then pairs:
// 1234567 -> "12,34,567".
func GroupIndian(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	s := strconv.FormatInt(n, 10)
	if len(s) > 3 {
		head, tail := s[:len(s)-3], s[len(s)-3:]
		var parts []string
		for len(head) > 2 {
			parts = append([]string{head[len(head)-2:]}, parts...)
			head = head[:len(head)-2]
		}
		if head != "" {
			parts = append([]string{head}, parts...)
		}
		s = strings.Join(parts, ",") + "," + tail
	}
	if neg {
		return "-" + s
	}
	return s
}

// PaymentLabel is "Paid" iff the booking is completed.
func PaymentLabel(s Status) string {
	if s.Is(StatusCompleted) {
		return labelPaid
	}
	return labelPending
}

func StatusLabel(s Status) string {
	if s.Is(StatusConfirmed) && s.RescheduledBy != ActorNone {
		return "Reschedule Confirmed"
	}
	return string(s.Kind)
}

// StatusColor is the badge color used by the dashboards.
func StatusColor(s Status) string {
	switch s.Kind {
	case StatusPending:
		return "amber"
	case StatusConfirmed:
		return "green"
	case StatusCompleted:
		return "blue"
	case StatusRescheduled:
		return "purple"
	default:
		return "gray"
	}
}

// RescheduleNote is shown to the owner under a rescheduled booking.
func RescheduleNote(s Status) string {
	if !s.Is(StatusRescheduled) {
		return ""
	}
	if s.RescheduledBy == ActorAdmin {
		return "Booking rescheduled by the garage"
	}
	return "Rescheduled successfully"
}

// ShareText is the plain-text summary the admin forwards to the customer.
func ShareText(b *Booking) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Booking #%s\n", shortID(b.ID))
	fmt.Fprintf(&sb, "Service: %s\n", b.ServiceName)
	fmt.Fprintf(&sb, "Customer: %s (%s)\n", b.UserName, b.UserPhone)
	vehicle := strings.TrimSpace(b.VehicleMakeModel + " " + string(b.VehicleType))
	if b.VehicleNumber != "" {
		vehicle += " - " + b.VehicleNumber
	}
	fmt.Fprintf(&sb, "Vehicle: %s\n", vehicle)
	fmt.Fprintf(&sb, "Mode: %s\n", b.ServiceMode)
	if b.Address != "" {
		fmt.Fprintf(&sb, "Address: %s\n", b.Address)
	}
	fmt.Fprintf(&sb, "Slot: %s\n", b.PreferredDateTime)
	fmt.Fprintf(&sb, "Amount: %s\n", AmountLabel(b.TotalAmount))
	fmt.Fprintf(&sb, "Status: %s", StatusLabel(b.Status))
	if b.Notes != "" {
		fmt.Fprintf(&sb, "\nNotes: %s", b.Notes)
	}
	return sb.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return strings.ToUpper(id[:8])
	}
	return strings.ToUpper(id)
}
