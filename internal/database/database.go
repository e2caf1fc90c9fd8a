package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"carcare/internal/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"           // postgres driver
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog"
)

// DB is the booking store. Queries are written with '?' placeholders and
// rebound for the active driver.
type DB struct {
	*sqlx.DB
	driver string
	logger *zerolog.Logger
	now    func() time.Time
}

// NewDB opens a sqlite database at path and creates the schema.
func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	return Open(config.DatabaseConfig{Driver: config.DriverSQLite, Path: path}, logger)
}

// Open connects using cfg.Driver (sqlite3 or postgres) and creates the schema.
func Open(cfg config.DatabaseConfig, logger *zerolog.Logger) (*DB, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	var (
		conn *sqlx.DB
		err  error
	)
	switch cfg.Driver {
	case config.DriverPostgres:
		conn, err = sqlx.Open("postgres", cfg.Postgres.DSN())
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		if cfg.Postgres.MaxConnections > 0 {
			conn.SetMaxOpenConns(cfg.Postgres.MaxConnections)
			conn.SetMaxIdleConns(cfg.Postgres.MaxConnections)
		}
		conn.SetConnMaxLifetime(5 * time.Minute)
	case config.DriverSQLite, "":
		if cfg.Path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		conn, err = sqlx.Open("sqlite3", sqliteDSN(cfg.Path))
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		// one writer; also keeps a :memory: database on a single connection
		conn.SetMaxOpenConns(1)
	default:
		return nil, fmt.Errorf("unsupported driver %q", cfg.Driver)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{DB: conn, driver: conn.DriverName(), logger: logger, now: func() time.Time { return time.Now().UTC() }}
	if err := db.createTables(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("driver", db.driver).Msg("database initialized")
	return db, nil
}

func sqliteDSN(path string) string {
	if path == ":memory:" {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on"
}

func (db *DB) timestampType() string {
	if db.driver == config.DriverPostgres {
		return "TIMESTAMPTZ"
	}
	return "DATETIME"
}

func (db *DB) createTables() error {
	ts := db.timestampType()
	queries := []string{
		`CREATE TABLE IF NOT EXISTS profiles (
            id TEXT PRIMARY KEY,
            full_name TEXT NOT NULL DEFAULT '',
            email TEXT NOT NULL DEFAULT '',
            phone TEXT NOT NULL DEFAULT '',
            address_line1 TEXT NOT NULL DEFAULT '',
            address_line2 TEXT NOT NULL DEFAULT '',
            city TEXT NOT NULL DEFAULT '',
            state TEXT NOT NULL DEFAULT '',
            pincode TEXT NOT NULL DEFAULT '',
            location_address TEXT NOT NULL DEFAULT '',
            verified BOOLEAN NOT NULL DEFAULT FALSE,
            blocked BOOLEAN NOT NULL DEFAULT FALSE,
            created_at ` + ts + ` NOT NULL,
            updated_at ` + ts + ` NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS bookings (
            id TEXT PRIMARY KEY,
            user_id TEXT NOT NULL,
            user_name TEXT NOT NULL DEFAULT '',
            user_email TEXT NOT NULL DEFAULT '',
            user_phone TEXT NOT NULL DEFAULT '',
            service_name TEXT NOT NULL,
            vehicle_type TEXT NOT NULL,
            vehicle_number TEXT NOT NULL DEFAULT '',
            vehicle_make_model TEXT NOT NULL DEFAULT '',
            service_mode TEXT NOT NULL,
            address TEXT NOT NULL DEFAULT '',
            notes TEXT NOT NULL DEFAULT '',
            preferred_date_time TEXT NOT NULL DEFAULT '',
            booking_date ` + ts + ` NOT NULL,
            total_amount BIGINT NOT NULL DEFAULT 0 CHECK (total_amount >= 0),
            status TEXT NOT NULL DEFAULT 'Pending',
            rescheduled_by TEXT NOT NULL DEFAULT '',
            created_at ` + ts + ` NOT NULL,
            updated_at ` + ts + ` NOT NULL,
            version BIGINT NOT NULL DEFAULT 1
        )`,
		`CREATE TABLE IF NOT EXISTS service_prices (
            service_id TEXT PRIMARY KEY,
            service_name TEXT NOT NULL DEFAULT '',
            price_sedan BIGINT NOT NULL DEFAULT 0,
            price_hatchback BIGINT NOT NULL DEFAULT 0,
            price_suv BIGINT NOT NULL DEFAULT 0,
            price_luxury BIGINT NOT NULL DEFAULT 0,
            updated_at ` + ts + ` NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS credentials (
            user_id TEXT PRIMARY KEY,
            password_hash TEXT NOT NULL,
            updated_at ` + ts + ` NOT NULL
        )`,

		`CREATE INDEX IF NOT EXISTS idx_bookings_user_id ON bookings(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_status ON bookings(status)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_created_at ON bookings(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_profiles_email ON profiles(email)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

// Driver reports the active driver name.
func (db *DB) Driver() string {
	return db.driver
}

// SetClock replaces the timestamp source used for created_at/updated_at.
func (db *DB) SetClock(now func() time.Time) {
	db.now = now
}
