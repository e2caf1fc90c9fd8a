package database

import (
	"context"
	"fmt"
	"time"

	"carcare/internal/models"
)

type priceRow struct {
	ServiceID      string    `db:"service_id"`
	ServiceName    string    `db:"service_name"`
	PriceSedan     int64     `db:"price_sedan"`
	PriceHatchback int64     `db:"price_hatchback"`
	PriceSUV       int64     `db:"price_suv"`
	PriceLuxury    int64     `db:"price_luxury"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func (db *DB) ListPrices(ctx context.Context) ([]*models.ServicePrice, error) {
	var rows []priceRow
	query := `SELECT service_id, service_name, price_sedan, price_hatchback, price_suv, price_luxury, updated_at
		FROM service_prices ORDER BY service_id`
	if err := db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list prices: %w", err)
	}
	out := make([]*models.ServicePrice, 0, len(rows))
	for _, r := range rows {
		out = append(out, &models.ServicePrice{
			ServiceID:      r.ServiceID,
			ServiceName:    r.ServiceName,
			PriceSedan:     r.PriceSedan,
			PriceHatchback: r.PriceHatchback,
			PriceSUV:       r.PriceSUV,
			PriceLuxury:    r.PriceLuxury,
			UpdatedAt:      r.UpdatedAt.UTC(),
		})
	}
	return out, nil
}

func (db *DB) UpsertPrice(ctx context.Context, p *models.ServicePrice) error {
	for _, v := range []int64{p.PriceSedan, p.PriceHatchback, p.PriceSUV, p.PriceLuxury} {
		if v < 0 {
			return fmt.Errorf("negative price for %s", p.ServiceID)
		}
	}
	query := db.Rebind(`INSERT INTO service_prices
		(service_id, service_name, price_sedan, price_hatchback, price_suv, price_luxury, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (service_id) DO UPDATE SET
			service_name = excluded.service_name,
			price_sedan = excluded.price_sedan,
			price_hatchback = excluded.price_hatchback,
			price_suv = excluded.price_suv,
			price_luxury = excluded.price_luxury,
			updated_at = excluded.updated_at`)
	_, err := db.ExecContext(ctx, query,
		p.ServiceID, p.ServiceName, p.PriceSedan, p.PriceHatchback, p.PriceSUV, p.PriceLuxury, db.now())
	if err != nil {
		return fmt.Errorf("failed to upsert price: %w", err)
	}
	return nil
}
