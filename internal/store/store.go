// Package store is the embedded SQLite persistence layer for govscout.
//
// It holds the denormalized opportunity records and their contacts, the
// sync_state key/value table used to resume backfill across runs, and a
// bounded audit log of every fetch-window execution.
//
// The database runs through ncruces/go-sqlite3 (pure Go, wasm-backed) with
// WAL enabled so the read-only query server can read while a sync writes.
//
// Schema:
//   - opportunities: one row per notice id, nested wire fields flattened
//   - contacts: replaced wholesale on every upsert, cascade on delete
//   - sync_state: backfill_cursor, last_sync
//   - api_call_log: newest 200 rows are kept
//
// Example:
//
//	s, err := store.Open("govscout.db", logger)
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"go.uber.org/zap"
)

// pragmas are applied by the driver to every connection in the pool.
var pragmas = []string{
	"journal_mode(wal)",
	"synchronous(normal)",
	"foreign_keys(1)",
	"busy_timeout(5000)",
}

// Store wraps the database connection.
type Store struct {
	conn   *sql.DB
	path   string
	calls  *CallLog
	logger *zap.Logger
}

// Open creates or opens the database at path and ensures the schema exists.
//
// The caller MUST call Close() when done so the WAL is checkpointed.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", path, err)
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{
		conn:   conn,
		path:   path,
		calls:  newCallLog(conn, CallLogCapacity),
		logger: logger,
	}

	if err := s.InitSchema(); err != nil {
		_ = s.Close()
		return nil, err
	}

	return s, nil
}

// dsn builds the connection string. immediate transactions take the write
// lock up front so busy_timeout applies instead of failing mid-transaction.
func dsn(path string) string {
	params := make([]string, 0, len(pragmas)+1)
	for _, p := range pragmas {
		params = append(params, "_pragma="+p)
	}
	params = append(params, "_txlock=immediate")
	return "file:" + path + "?" + strings.Join(params, "&")
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// RawDB returns the underlying sql.DB connection.
func (s *Store) RawDB() *sql.DB {
	return s.conn
}

// CallLog returns the bounded API call audit log.
func (s *Store) CallLog() *CallLog {
	return s.calls
}

// Close checkpoints the WAL and closes the connection.
func (s *Store) Close() error {
	if s.conn == nil {
		return nil
	}

	if _, err := s.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		s.logger.Warn("failed to checkpoint WAL", zap.Error(err))
	}

	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	s.conn = nil
	return nil
}

// InitSchema creates every table and index if missing. Idempotent.
func (s *Store) InitSchema() error {
	return s.InitSchemaContext(context.Background())
}

// InitSchemaContext creates the schema with context support.
func (s *Store) InitSchemaContext(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS opportunities (
		notice_id TEXT NOT NULL PRIMARY KEY,
		` + columnDefs() + `,
		created_at TEXT NOT NULL DEFAULT (datetime('now')),
		modified_at TEXT NOT NULL DEFAULT (datetime('now'))
	);

	CREATE TABLE IF NOT EXISTS contacts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		notice_id TEXT NOT NULL REFERENCES opportunities(notice_id) ON DELETE CASCADE,
		contact_type TEXT,
		full_name TEXT,
		email TEXT,
		phone TEXT,
		title TEXT,
		created_at TEXT NOT NULL DEFAULT (datetime('now')),
		modified_at TEXT NOT NULL DEFAULT (datetime('now'))
	);

	CREATE TABLE IF NOT EXISTS sync_state (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS api_call_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT,
		context TEXT NOT NULL,
		window_from TEXT NOT NULL,
		window_to TEXT NOT NULL,
		api_calls INTEGER NOT NULL DEFAULT 0,
		records_fetched INTEGER NOT NULL DEFAULT 0,
		rate_limited INTEGER NOT NULL DEFAULT 0,
		error_message TEXT,
		created_at TEXT NOT NULL DEFAULT (datetime('now'))
	);

	CREATE INDEX IF NOT EXISTS idx_opp_posted_date ON opportunities(posted_date);
	CREATE INDEX IF NOT EXISTS idx_opp_naics_code ON opportunities(naics_code);
	CREATE INDEX IF NOT EXISTS idx_opp_opp_type ON opportunities(opp_type);
	CREATE INDEX IF NOT EXISTS idx_opp_base_type ON opportunities(base_type);
	CREATE INDEX IF NOT EXISTS idx_opp_set_aside ON opportunities(set_aside);
	CREATE INDEX IF NOT EXISTS idx_opp_active ON opportunities(active);
	CREATE INDEX IF NOT EXISTS idx_opp_pop_state ON opportunities(pop_state_code);
	CREATE INDEX IF NOT EXISTS idx_opp_naics_type ON opportunities(naics_code, opp_type);
	CREATE INDEX IF NOT EXISTS idx_contacts_notice ON contacts(notice_id);
	`

	if _, err := s.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	return nil
}
