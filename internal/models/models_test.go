package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		kind, by string
		wantErr  bool
	}{
		{"Pending", "", false},
		{"Pending", "user", true},
		{"Confirmed", "", false},
		{"Confirmed", "admin", false},
		{"Completed", "", false},
		{"Completed", "admin", true},
		{"Rescheduled", "user", false},
		{"Rescheduled", "", true},
		{"Rescheduled", "robot", true},
		{"Cancelled", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.kind+"/"+tt.by, func(t *testing.T) {
			s, err := ParseStatus(tt.kind, tt.by)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, StatusKind(tt.kind), s.Kind)
			assert.Equal(t, Actor(tt.by), s.RescheduledBy)
		})
	}
}

func TestParseVehicleType(t *testing.T) {
	vt, ok := ParseVehicleType("")
	assert.True(t, ok)
	assert.Equal(t, VehicleHatchback, vt)

	vt, ok = ParseVehicleType("suv")
	assert.True(t, ok)
	assert.Equal(t, VehicleSUV, vt)

	_, ok = ParseVehicleType("Unknown")
	assert.False(t, ok)
}

func TestAmountLabel(t *testing.T) {
	assert.Equal(t, "Get Quote", AmountLabel(0))
	assert.Equal(t, "₹499/-", AmountLabel(499))
	assert.Equal(t, "₹1,499/-", AmountLabel(1499))
	assert.Equal(t, "₹1,00,000/-", AmountLabel(100000))
	assert.Equal(t, "12,34,567", GroupIndian(1234567))
}

func TestStatusLabels(t *testing.T) {
	assert.Equal(t, "Reschedule Confirmed", StatusLabel(Confirmed(ActorAdmin)))
	assert.Equal(t, "Confirmed", StatusLabel(Confirmed(ActorNone)))
	assert.Equal(t, "Paid", PaymentLabel(Completed()))
	assert.Equal(t, "Pending", PaymentLabel(Confirmed(ActorNone)))
	assert.Equal(t, "Booking rescheduled by the garage", RescheduleNote(Rescheduled(ActorAdmin)))
	assert.Equal(t, "Rescheduled successfully", RescheduleNote(Rescheduled(ActorUser)))
	assert.Empty(t, RescheduleNote(Pending()))
}

func TestProfileAddress(t *testing.T) {
	p := &Profile{AddressLine1: "12 MG Road", City: "Pune", Pincode: "411001", LocationAddress: "near station"}
	assert.Equal(t, "12 MG Road, Pune, 411001", p.SnapshotAddress())

	p.AddressLine1 = ""
	assert.Equal(t, "", p.FormattedAddress())
	assert.Equal(t, "near station", p.SnapshotAddress())
}

func TestProfileIsAdmin(t *testing.T) {
	p := &Profile{Email: "Admin@Garage.test"}
	assert.True(t, p.IsAdmin("admin@garage.test"))
	assert.False(t, p.IsAdmin(""))
}

func TestDeriveBookingDate(t *testing.T) {
	fallback := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	got := DeriveBookingDate("2024-05-10 14:30", fallback)
	assert.Equal(t, 2024, got.Year())
	assert.Equal(t, time.May, got.Month())
	assert.Equal(t, 14, got.Hour())

	assert.Equal(t, fallback, DeriveBookingDate("tomorrow morning", fallback))
	assert.Equal(t, fallback, DeriveBookingDate("", fallback))
}

func TestServicePriceFor(t *testing.T) {
	p := ServicePrice{PriceSedan: 1, PriceHatchback: 2, PriceSUV: 3, PriceLuxury: 4}
	assert.Equal(t, int64(1), p.For(VehicleSedan))
	assert.Equal(t, int64(3), p.For(VehicleSUV))
	assert.Equal(t, int64(2), p.For(""))
}

func TestShareText(t *testing.T) {
	b := &Booking{
		ID: "abcdef12-3456", ServiceName: "Car Wash", UserName: "Asha", UserPhone: "999",
		VehicleType: VehicleSedan, VehicleMakeModel: "Honda City", ServiceMode: ModeHomeService,
		PreferredDateTime: "2024-05-10 10:00", TotalAmount: 1499, Status: Confirmed(ActorUser),
	}
	text := ShareText(b)
	assert.Contains(t, text, "Booking #ABCDEF12")
	assert.Contains(t, text, "Amount: ₹1,499/-")
	assert.Contains(t, text, "Status: Reschedule Confirmed")
}
