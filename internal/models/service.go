package models

import "time"

type ServiceCategory string

const (
	CategoryWash      ServiceCategory = "wash"
	CategoryDetailing ServiceCategory = "detailing"
	CategoryRepair    ServiceCategory = "repair"
	CategoryGeneral   ServiceCategory = "general"
)

// Service is an entry of the static catalog.
type Service struct {
	ID                   string          `yaml:"id" json:"id"`
	Name                 string          `yaml:"name" json:"name"`
	Subtitle             string          `yaml:"subtitle" json:"subtitle"`
	Category             ServiceCategory `yaml:"category" json:"category"`
	Features             []string        `yaml:"features" json:"features"`
	Price                int64           `yaml:"price" json:"price"`
	PriceLabel           string          `yaml:"price_label" json:"price_label"`
	HomeServiceAvailable bool            `yaml:"home_service_available" json:"home_service_available"`
}

// ServicePrice is one row of the admin-editable price table. A zero for a
// vehicle type means the price is quoted on request.
type ServicePrice struct {
	ServiceID      string    `json:"service_id"`
	ServiceName    string    `json:"service_name"`
	PriceSedan     int64     `json:"price_sedan"`
	PriceHatchback int64     `json:"price_hatchback"`
	PriceSUV       int64     `json:"price_suv"`
	PriceLuxury    int64     `json:"price_luxury"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (p *ServicePrice) For(vt VehicleType) int64 {
	switch vt {
	case VehicleSedan:
		return p.PriceSedan
	case VehicleSUV:
		return p.PriceSUV
	case VehicleLuxury:
		return p.PriceLuxury
	default:
		return p.PriceHatchback
	}
}
