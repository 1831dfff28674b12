package db

import (
	"context"
	"database/sql"
	"fmt"
)

// GetVerse returns the cached verse for an ISO date. The third return is
// false on a cache miss.
func (db *DB) GetVerse(ctx context.Context, date string) (string, string, bool, error) {
	var ref, text string
	err := db.QueryRowContext(ctx,
		`SELECT reference, text FROM verses WHERE date=?`, date).Scan(&ref, &text)
	if err == sql.ErrNoRows {
		return "", "", false, nil
	}
	if err != nil {
		return "", "", false, fmt.Errorf("failed to get verse: %w", err)
	}
	return ref, text, true, nil
}

// PutVerse caches the resolved verse for an ISO date, one row per day.
func (db *DB) PutVerse(ctx context.Context, date, reference, text string) error {
	_, err := db.ExecContext(ctx,
		`INSERT OR REPLACE INTO verses (date, reference, text) VALUES (?, ?, ?)`,
		date, reference, text)
	if err != nil {
		return fmt.Errorf("failed to cache verse: %w", err)
	}
	return nil
}
