package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"carcare/internal/domain"
	"carcare/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const bookingColumns = `id, user_id, user_name, user_email, user_phone, service_name, vehicle_type,
	vehicle_number, vehicle_make_model, service_mode, address, notes, preferred_date_time,
	booking_date, total_amount, status, rescheduled_by, created_at, updated_at, version`

type bookingRow struct {
	ID                string    `db:"id"`
	UserID            string    `db:"user_id"`
	UserName          string    `db:"user_name"`
	UserEmail         string    `db:"user_email"`
	UserPhone         string    `db:"user_phone"`
	ServiceName       string    `db:"service_name"`
	VehicleType       string    `db:"vehicle_type"`
	VehicleNumber     string    `db:"vehicle_number"`
	VehicleMakeModel  string    `db:"vehicle_make_model"`
	ServiceMode       string    `db:"service_mode"`
	Address           string    `db:"address"`
	Notes             string    `db:"notes"`
	PreferredDateTime string    `db:"preferred_date_time"`
	BookingDate       time.Time `db:"booking_date"`
	TotalAmount       int64     `db:"total_amount"`
	Status            string    `db:"status"`
	RescheduledBy     string    `db:"rescheduled_by"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
	Version           int64     `db:"version"`
}

func (r *bookingRow) toModel() (*models.Booking, error) {
	status, err := models.ParseStatus(r.Status, r.RescheduledBy)
	if err != nil {
		return nil, fmt.Errorf("booking %s: %w", r.ID, err)
	}
	return &models.Booking{
		ID:                r.ID,
		UserID:            r.UserID,
		UserName:          r.UserName,
		UserEmail:         r.UserEmail,
		UserPhone:         r.UserPhone,
		ServiceName:       r.ServiceName,
		VehicleType:       models.VehicleType(r.VehicleType),
		VehicleNumber:     r.VehicleNumber,
		VehicleMakeModel:  r.VehicleMakeModel,
		ServiceMode:       models.ServiceMode(r.ServiceMode),
		Address:           r.Address,
		Notes:             r.Notes,
		PreferredDateTime: r.PreferredDateTime,
		BookingDate:       r.BookingDate.UTC(),
		TotalAmount:       r.TotalAmount,
		Status:            status,
		CreatedAt:         r.CreatedAt.UTC(),
		UpdatedAt:         r.UpdatedAt.UTC(),
		Version:           r.Version,
	}, nil
}

type queryer interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	Rebind(query string) string
}

func getBooking(ctx context.Context, q queryer, id string) (*models.Booking, error) {
	var row bookingRow
	query := q.Rebind(`SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`)
	if err := q.GetContext(ctx, &row, query, id); err != nil {
		return nil, notFound(err)
	}
	return row.toModel()
}

// InsertBooking stores b as version 1 and returns the stored row. Missing
// id and created_at are assigned here.
func (db *DB) InsertBooking(ctx context.Context, b *models.Booking) (*models.Booking, error) {
	if err := b.Status.Validate(); err != nil {
		return nil, err
	}
	if b.TotalAmount < 0 {
		return nil, fmt.Errorf("negative total amount %d", b.TotalAmount)
	}

	id := b.ID
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := b.CreatedAt
	if createdAt.IsZero() {
		createdAt = db.now()
	}
	bookingDate := b.BookingDate
	if bookingDate.IsZero() {
		bookingDate = createdAt
	}

	var out *models.Booking
	err := db.withTx(ctx, func(tx *sqlx.Tx) error {
		query := tx.Rebind(`INSERT INTO bookings (` + bookingColumns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		_, err := tx.ExecContext(ctx, query,
			id, b.UserID, b.UserName, b.UserEmail, b.UserPhone, b.ServiceName, string(b.VehicleType),
			b.VehicleNumber, b.VehicleMakeModel, string(b.ServiceMode), b.Address, b.Notes, b.PreferredDateTime,
			bookingDate.UTC(), b.TotalAmount, string(b.Status.Kind), string(b.Status.RescheduledBy),
			createdAt.UTC(), createdAt.UTC(), 1,
		)
		if err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}
		out, err = getBooking(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (db *DB) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	return getBooking(ctx, db.DB, id)
}

// UpdateBooking writes the mutable fields (status, provenance, slot and
// booking date) if the stored version still equals b.Version.
func (db *DB) UpdateBooking(ctx context.Context, b *models.Booking) (*models.Booking, error) {
	if err := b.Status.Validate(); err != nil {
		return nil, err
	}

	var out *models.Booking
	err := db.withTx(ctx, func(tx *sqlx.Tx) error {
		query := tx.Rebind(`UPDATE bookings
			SET status = ?, rescheduled_by = ?, preferred_date_time = ?, booking_date = ?,
				updated_at = ?, version = version + 1
			WHERE id = ? AND version = ?`)
		res, err := tx.ExecContext(ctx, query,
			string(b.Status.Kind), string(b.Status.RescheduledBy), b.PreferredDateTime, b.BookingDate.UTC(),
			db.now(), b.ID, b.Version,
		)
		if err != nil {
			return fmt.Errorf("failed to update booking: %w", err)
		}
		if err := versionGuard(ctx, tx, res.RowsAffected, b.ID); err != nil {
			return err
		}
		out, err = getBooking(ctx, tx, b.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteBooking removes the row if the stored version still equals version.
func (db *DB) DeleteBooking(ctx context.Context, id string, version int64) error {
	return db.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM bookings WHERE id = ? AND version = ?`), id, version)
		if err != nil {
			return fmt.Errorf("failed to delete booking: %w", err)
		}
		return versionGuard(ctx, tx, res.RowsAffected, id)
	})
}

// versionGuard turns a zero-row write into ErrNotFound or ErrConcurrentModification.
func versionGuard(ctx context.Context, tx *sqlx.Tx, rowsAffected func() (int64, error), id string) error {
	n, err := rowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var exists int
	err = tx.GetContext(ctx, &exists, tx.Rebind(`SELECT COUNT(*) FROM bookings WHERE id = ?`), id)
	if err != nil {
		return err
	}
	if exists == 0 {
		return ErrNotFound
	}
	return ErrConcurrentModification
}

func (db *DB) ListBookings(ctx context.Context, f domain.BookingFilter) ([]*models.Booking, error) {
	var (
		where []string
		args  []interface{}
	)
	if f.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	if f.Ascending {
		query += ` ORDER BY created_at ASC, id ASC`
	} else {
		query += ` ORDER BY created_at DESC, id DESC`
	}
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	var rows []bookingRow
	if err := db.SelectContext(ctx, &rows, db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	out := make([]*models.Booking, 0, len(rows))
	for i := range rows {
		b, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func (db *DB) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
