package database

import (
	"context"
	"fmt"
)

// SetPasswordHash stores a password hash for userID, replacing any previous one.
func (db *DB) SetPasswordHash(ctx context.Context, userID string, hash []byte) error {
	query := db.Rebind(`INSERT INTO credentials (user_id, password_hash, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			password_hash = excluded.password_hash,
			updated_at = excluded.updated_at`)
	if _, err := db.ExecContext(ctx, query, userID, string(hash), db.now()); err != nil {
		return fmt.Errorf("failed to set password hash: %w", err)
	}
	return nil
}

// PasswordHash returns the stored hash or ErrNotFound.
func (db *DB) PasswordHash(ctx context.Context, userID string) ([]byte, error) {
	var hash string
	err := db.GetContext(ctx, &hash, db.Rebind(`SELECT password_hash FROM credentials WHERE user_id = ?`), userID)
	if err != nil {
		return nil, notFound(err)
	}
	return []byte(hash), nil
}
