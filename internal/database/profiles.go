package database

import (
	"context"
	"fmt"
	"time"

	"carcare/internal/models"
)

const profileColumns = `id, full_name, email, phone, address_line1, address_line2, city, state, pincode,
	location_address, verified, blocked, created_at, updated_at`

type profileRow struct {
	ID              string    `db:"id"`
	FullName        string    `db:"full_name"`
	Email           string    `db:"email"`
	Phone           string    `db:"phone"`
	AddressLine1    string    `db:"address_line1"`
	AddressLine2    string    `db:"address_line2"`
	City            string    `db:"city"`
	State           string    `db:"state"`
	Pincode         string    `db:"pincode"`
	LocationAddress string    `db:"location_address"`
	Verified        bool      `db:"verified"`
	Blocked         bool      `db:"blocked"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

func (r *profileRow) toModel() *models.Profile {
	return &models.Profile{
		ID:              r.ID,
		FullName:        r.FullName,
		Email:           r.Email,
		Phone:           r.Phone,
		AddressLine1:    r.AddressLine1,
		AddressLine2:    r.AddressLine2,
		City:            r.City,
		State:           r.State,
		Pincode:         r.Pincode,
		LocationAddress: r.LocationAddress,
		Verified:        r.Verified,
		Blocked:         r.Blocked,
		CreatedAt:       r.CreatedAt.UTC(),
		UpdatedAt:       r.UpdatedAt.UTC(),
	}
}

func (db *DB) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	var row profileRow
	query := db.Rebind(`SELECT ` + profileColumns + ` FROM profiles WHERE id = ?`)
	if err := db.GetContext(ctx, &row, query, id); err != nil {
		return nil, notFound(err)
	}
	return row.toModel(), nil
}

func (db *DB) ListProfiles(ctx context.Context) ([]*models.Profile, error) {
	var rows []profileRow
	query := `SELECT ` + profileColumns + ` FROM profiles ORDER BY created_at DESC, id DESC`
	if err := db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	out := make([]*models.Profile, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toModel())
	}
	return out, nil
}

// UpsertProfile is used by the auth flow; verified and blocked are only set
// on insert and otherwise left to SetVerified/SetBlocked.
func (db *DB) UpsertProfile(ctx context.Context, p *models.Profile) error {
	now := db.now()
	created := p.CreatedAt
	if created.IsZero() {
		created = now
	}
	query := db.Rebind(`INSERT INTO profiles (` + profileColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			full_name = excluded.full_name,
			email = excluded.email,
			phone = excluded.phone,
			address_line1 = excluded.address_line1,
			address_line2 = excluded.address_line2,
			city = excluded.city,
			state = excluded.state,
			pincode = excluded.pincode,
			location_address = excluded.location_address,
			updated_at = excluded.updated_at`)
	_, err := db.ExecContext(ctx, query,
		p.ID, p.FullName, p.Email, p.Phone, p.AddressLine1, p.AddressLine2, p.City, p.State, p.Pincode,
		p.LocationAddress, p.Verified, p.Blocked, created.UTC(), now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}

// UpdateProfileDetails is the user path: it rewrites name, phone and address
// only. Email and the verified/blocked flags belong to the auth flow.
func (db *DB) UpdateProfileDetails(ctx context.Context, p *models.Profile) error {
	query := db.Rebind(`UPDATE profiles SET
			full_name = ?, phone = ?, address_line1 = ?, address_line2 = ?, city = ?,
			state = ?, pincode = ?, location_address = ?, updated_at = ?
		WHERE id = ?`)
	res, err := db.ExecContext(ctx, query,
		p.FullName, p.Phone, p.AddressLine1, p.AddressLine2, p.City,
		p.State, p.Pincode, p.LocationAddress, db.now(), p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) SetVerified(ctx context.Context, id string, verified bool) error {
	return db.setProfileFlag(ctx, "verified", id, verified)
}

func (db *DB) SetBlocked(ctx context.Context, id string, blocked bool) error {
	return db.setProfileFlag(ctx, "blocked", id, blocked)
}

// setProfileFlag is idempotent: setting a flag to its current value succeeds.
func (db *DB) setProfileFlag(ctx context.Context, column, id string, value bool) error {
	query := db.Rebind(`UPDATE profiles SET ` + column + ` = ?, updated_at = ? WHERE id = ?`)
	res, err := db.ExecContext(ctx, query, value, db.now(), id)
	if err != nil {
		return fmt.Errorf("failed to update profile %s: %w", column, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
