package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Sync state keys.
const (
	// KeyBackfillCursor is the date (MM/DD/YYYY) backfill resumes from.
	KeyBackfillCursor = "backfill_cursor"
	// KeyLastSync is the date of the last completed run.
	KeyLastSync = "last_sync"
)

// GetSyncState returns the value stored for key. ok is false if unset.
func (s *Store) GetSyncState(ctx context.Context, key string) (value string, ok bool, err error) {
	err = s.conn.QueryRowContext(ctx, `SELECT value FROM sync_state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query sync_state %s: %w", key, err)
	}
	return value, true, nil
}

// SetSyncState upserts key.
func (s *Store) SetSyncState(ctx context.Context, key, value string) error {
	_, err := s.conn.ExecContext(ctx, `
	INSERT INTO sync_state (key, value) VALUES (?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set sync_state %s: %w", key, err)
	}
	return nil
}
