package models

import (
	"strings"
	"time"
)

// Profile is owned by the auth flow; bookings only read it.
type Profile struct {
	ID              string    `json:"id"`
	FullName        string    `json:"full_name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	AddressLine1    string    `json:"address_line1,omitempty"`
	AddressLine2    string    `json:"address_line2,omitempty"`
	City            string    `json:"city,omitempty"`
	State           string    `json:"state,omitempty"`
	Pincode         string    `json:"pincode,omitempty"`
	LocationAddress string    `json:"location_address,omitempty"`
	Verified        bool      `json:"verified"`
	Blocked         bool      `json:"blocked"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// FormattedAddress joins the structured address; empty when line1 is unset.
func (p *Profile) FormattedAddress() string {
	if strings.TrimSpace(p.AddressLine1) == "" {
		return ""
	}
	parts := make([]string, 0, 5)
	for _, part := range []string{p.AddressLine1, p.AddressLine2, p.City, p.State, p.Pincode} {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ", ")
}

// SnapshotAddress is the value copied onto a booking at creation time.
func (p *Profile) SnapshotAddress() string {
	if addr := p.FormattedAddress(); addr != "" {
		return addr
	}
	return strings.TrimSpace(p.LocationAddress)
}

// IsAdmin compares against the configured admin account email.
func (p *Profile) IsAdmin(adminEmail string) bool {
	return adminEmail != "" && strings.EqualFold(strings.TrimSpace(p.Email), strings.TrimSpace(adminEmail))
}
