package catalog

import "carcare/internal/models"

const (
	labelStartingAt = "Starting at"
	labelGetQuote   = "Get Quote"
	labelContactUs  = "Contact Us"
)

var defaultServices = []models.Service{
	{
		ID: "car-wash", Name: "Car Wash", Subtitle: "Professional Cleaning Service At Home",
		Category: models.CategoryWash,
		Features: []string{"Pressure Wash", "Deep Vacuum", "Mat Cleaning", "Dashboard Polishing", "Tire Shine"},
		Price:    499, PriceLabel: labelStartingAt, HomeServiceAvailable: true,
	},
	{
		ID: "interior-detailing", Name: "Interior Detailing", Subtitle: "Complete Cabin Rejuvenation & Sanitization",
		Category: models.CategoryDetailing,
		Features: []string{"Deep Cleaning", "Leather Treatment", "Sanitization", "Odor Removal", "AC Vent Cleaning"},
		Price:    2499, PriceLabel: labelStartingAt, HomeServiceAvailable: true,
	},
	{
		ID: "exterior-detailing", Name: "Exterior Detailing", Subtitle: "Unmatched Shine & Paint Protection",
		Category: models.CategoryDetailing,
		Features: []string{"Paint Correction", "Chrome Polishing", "Wax Coating", "Glass Treatment", "Wheel Detailing"},
		Price:    2999, PriceLabel: labelStartingAt, HomeServiceAvailable: true,
	},
	{
		ID: "periodic-service", Name: "Periodic Service", Subtitle: "Expert Maintenance for Peak Performance",
		Category: models.CategoryGeneral,
		Features: []string{"Oil Change", "Filter Replacement", "Brake Inspection", "Fluid Top-up", "Multi-point Check"},
		Price:    3999, PriceLabel: labelStartingAt,
	},
	{
		ID: "denting-painting", Name: "Denting & Painting", Subtitle: "Precision Body Work & Factory Finish",
		Category: models.CategoryRepair,
		Features: []string{"Dent Removal", "Scratch Repair", "Full Body Paint", "Color Matching", "Clear Coat"},
		Price:    2999, PriceLabel: labelStartingAt,
	},
	{
		ID: "suspension-fitments", Name: "Suspension & Fitments", Subtitle: "Smooth Handling & Ride Comfort",
		Category: models.CategoryRepair,
		Features: []string{"Shock Absorbers", "Strut Replacement", "Alignment", "Bushing Replacement", "Spring Repair"},
		Price:    1999, PriceLabel: labelStartingAt,
	},
	{
		ID: "clutch-body-parts", Name: "Clutch & Body Parts", Subtitle: "Seamless Power Delivery & Component Replacement",
		Category: models.CategoryRepair,
		Features: []string{"Clutch Plate", "Pressure Plate", "Flywheel Service", "Body Panel Repair", "Parts Replacement"},
		Price:    3499, PriceLabel: labelStartingAt,
	},
	{
		ID: "insurance-claims", Name: "Insurance Claims", Subtitle: "Hassle-Free Accident Recovery",
		Category: models.CategoryGeneral,
		Features: []string{"Claim Processing", "Documentation Help", "Surveyor Coordination", "Cashless Service", "Quick Settlement"},
		Price:    0, PriceLabel: labelGetQuote,
	},
	{
		ID: "roadside-assistance", Name: "Roadside Assistance", Subtitle: "Reliable Support Whenever You Need It",
		Category: models.CategoryGeneral,
		Features: []string{"24/7 Support", "Towing Service", "Battery Jump Start", "Flat Tire Help", "Fuel Delivery"},
		Price:    999, PriceLabel: labelStartingAt,
	},
	{
		ID: "accidental-repair", Name: "Accidental Repair", Subtitle: "Major Collision Repair Specialists",
		Category: models.CategoryRepair,
		Features: []string{"Frame Straightening", "Panel Replacement", "Structural Repair", "Airbag Replacement", "Full Restoration"},
		Price:    0, PriceLabel: labelGetQuote,
	},
	{
		ID: "car-dealership", Name: "Car Dealership", Subtitle: "Buy & Sell Quality Pre-Owned Vehicles",
		Category: models.CategoryGeneral,
		Features: []string{"Verified Vehicles", "Documentation Help", "Fair Pricing", "Inspection Report", "Transfer Assistance"},
		Price:    0, PriceLabel: labelContactUs,
	},
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New(defaultServices)
	if err != nil {
		panic(err)
	}
	return c
}
