package service

import (
	"context"
	"fmt"

	"carcare/internal/catalog"
	"carcare/internal/domain"
	"carcare/internal/models"
	"carcare/internal/pricing"

	"github.com/rs/zerolog"
)

// PriceService edits the admin price table and keeps the shared resolver
// in step with it.
type PriceService struct {
	store    domain.PriceStore
	resolver *pricing.Resolver
	catalog  *catalog.Catalog
	logger   *zerolog.Logger
}

func NewPriceService(store domain.PriceStore, resolver *pricing.Resolver, cat *catalog.Catalog, logger *zerolog.Logger) *PriceService {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "price_service").Logger()
	return &PriceService{store: store, resolver: resolver, catalog: cat, logger: &l}
}

func (s *PriceService) ListPrices(ctx context.Context) ([]*models.ServicePrice, error) {
	return s.store.ListPrices(ctx)
}

// UpdatePrice stores one row. Zero means quote on request for that type.
func (s *PriceService) UpdatePrice(ctx context.Context, p *models.ServicePrice) error {
	svc, ok := s.catalog.Lookup(p.ServiceID)
	if !ok {
		return domain.Invalid("unknown service %q", p.ServiceID)
	}
	for _, v := range []int64{p.PriceSedan, p.PriceHatchback, p.PriceSUV, p.PriceLuxury} {
		if v < 0 {
			return domain.Invalid("prices must not be negative")
		}
	}
	if p.ServiceName == "" {
		p.ServiceName = svc.Name
	}
	if err := s.store.UpsertPrice(ctx, p); err != nil {
		return fmt.Errorf("update price %s: %w", p.ServiceID, err)
	}
	s.resolver.Invalidate()
	s.logger.Info().Str("service_id", p.ServiceID).Msg("price updated")
	return nil
}

// Quote resolves the total for the selected services and vehicle type.
func (s *PriceService) Quote(ctx context.Context, serviceIDs []string, vehicleType string) (pricing.Price, error) {
	vt, ok := models.ParseVehicleType(vehicleType)
	if !ok {
		return pricing.Price{}, domain.Invalid("unknown vehicle type %q", vehicleType)
	}
	for _, id := range serviceIDs {
		if _, ok := s.catalog.Lookup(id); !ok {
			return pricing.Price{}, domain.Invalid("unknown service %q", id)
		}
	}
	return s.resolver.Total(ctx, serviceIDs, vt)
}
