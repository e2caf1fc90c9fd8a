package models

import (
	"strings"
	"time"
)

type VehicleType string

const (
	VehicleSedan     VehicleType = "Sedan"
	VehicleHatchback VehicleType = "Hatchback"
	VehicleSUV       VehicleType = "SUV"
	VehicleLuxury    VehicleType = "Luxury"
)

func VehicleTypes() []VehicleType {
	return []VehicleType{VehicleSedan, VehicleHatchback, VehicleSUV, VehicleLuxury}
}

// ParseVehicleType is case-insensitive and falls back to Hatchback for an
// empty value. Unknown values return false.
func ParseVehicleType(raw string) (VehicleType, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return VehicleHatchback, true
	}
	for _, vt := range VehicleTypes() {
		if strings.EqualFold(raw, string(vt)) {
			return vt, true
		}
	}
	return "", false
}

type ServiceMode string

const (
	ModeHomeService ServiceMode = "Home Service"
	ModePickupDrop  ServiceMode = "Pickup & Drop"
)

type Booking struct {
	ID                string      `json:"id"`
	UserID            string      `json:"user_id"`
	UserName          string      `json:"user_name"`
	UserEmail         string      `json:"user_email"`
	UserPhone         string      `json:"user_phone"`
	ServiceName       string      `json:"service_name"`
	VehicleType       VehicleType `json:"vehicle_type"`
	VehicleNumber     string      `json:"vehicle_number,omitempty"`
	VehicleMakeModel  string      `json:"vehicle_make_model"`
	ServiceMode       ServiceMode `json:"service_mode"`
	Address           string      `json:"address"`
	Notes             string      `json:"notes,omitempty"`
	PreferredDateTime string      `json:"preferred_date_time"`
	BookingDate       time.Time   `json:"booking_date"`
	TotalAmount       int64       `json:"total_amount"` // 0 means "get quote"
	Status            Status      `json:"status"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
	Version           int64       `json:"version"`
}

// HasFixedPrice reports whether the amount is a real price rather than the
// quote-on-request marker.
func (b *Booking) HasFixedPrice() bool {
	return b.TotalAmount > 0
}

// DeriveBookingDate parses a "YYYY-MM-DD HH:MM" slot; anything else yields fallback.
func DeriveBookingDate(preferred string, fallback time.Time) time.Time {
	parts := strings.Fields(preferred)
	if len(parts) != 2 {
		return fallback
	}
	t, err := time.ParseInLocation(PreferredDateTimeLayout, parts[0]+" "+parts[1], time.Local)
	if err != nil {
		return fallback
	}
	return t
}
