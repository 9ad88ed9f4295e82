package store

import (
	"context"
	"database/sql"
	"fmt"
)

// CallLogCapacity is the number of api_call_log rows kept.
const CallLogCapacity = 200

// Call log context tags.
const (
	ContextIncremental = "incremental"
	ContextBackfill    = "backfill"
)

// APICallLogEntry is one fetch-window execution.
type APICallLogEntry struct {
	ID             int64  `json:"id" yaml:"id"`
	RunID          string `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Context        string `json:"context" yaml:"context"`
	WindowFrom     string `json:"window_from" yaml:"window_from"`
	WindowTo       string `json:"window_to" yaml:"window_to"`
	APICalls       int    `json:"api_calls" yaml:"api_calls"`
	RecordsFetched int    `json:"records_fetched" yaml:"records_fetched"`
	RateLimited    bool   `json:"rate_limited" yaml:"rate_limited"`
	ErrorMessage   string `json:"error_message,omitempty" yaml:"error_message,omitempty"`
	CreatedAt      string `json:"created_at" yaml:"created_at"`
}

// CallLog is an append-only table trimmed to a fixed number of rows. Every
// Append inserts and prunes inside one transaction, so the table never holds
// more than capacity rows once committed.
type CallLog struct {
	conn     *sql.DB
	capacity int
}

func newCallLog(conn *sql.DB, capacity int) *CallLog {
	return &CallLog{conn: conn, capacity: capacity}
}

// Append records e and drops the oldest rows beyond capacity. ID and
// CreatedAt on e are ignored and assigned by the database.
func (l *CallLog) Append(ctx context.Context, e *APICallLogEntry) error {
	tx, err := l.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
	INSERT INTO api_call_log (
		run_id, context, window_from, window_to,
		api_calls, records_fetched, rate_limited, error_message
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sql.NullString{String: e.RunID, Valid: e.RunID != ""},
		e.Context,
		e.WindowFrom,
		e.WindowTo,
		e.APICalls,
		e.RecordsFetched,
		e.RateLimited,
		sql.NullString{String: e.ErrorMessage, Valid: e.ErrorMessage != ""},
	)
	if err != nil {
		return fmt.Errorf("failed to insert api_call_log: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
	DELETE FROM api_call_log
	WHERE id NOT IN (SELECT id FROM api_call_log ORDER BY id DESC LIMIT ?)`, l.capacity)
	if err != nil {
		return fmt.Errorf("failed to prune api_call_log: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Recent returns up to n entries, newest first.
func (l *CallLog) Recent(ctx context.Context, n int) ([]APICallLogEntry, error) {
	rows, err := l.conn.QueryContext(ctx, `
	SELECT id, run_id, context, window_from, window_to,
	       api_calls, records_fetched, rate_limited, error_message, created_at
	FROM api_call_log
	ORDER BY id DESC
	LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query api_call_log: %w", err)
	}
	defer rows.Close()

	var entries []APICallLogEntry
	for rows.Next() {
		var e APICallLogEntry
		var runID, errMsg sql.NullString
		err := rows.Scan(
			&e.ID,
			&runID,
			&e.Context,
			&e.WindowFrom,
			&e.WindowTo,
			&e.APICalls,
			&e.RecordsFetched,
			&e.RateLimited,
			&errMsg,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan api_call_log: %w", err)
		}
		e.RunID = runID.String
		e.ErrorMessage = errMsg.String
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating api_call_log: %w", err)
	}
	return entries, nil
}

// Count returns the number of rows currently held.
func (l *CallLog) Count(ctx context.Context) (int, error) {
	var count int
	if err := l.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM api_call_log").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count api_call_log: %w", err)
	}
	return count, nil
}

// LogAPICall appends one entry to the bounded call log.
func (s *Store) LogAPICall(ctx context.Context, e *APICallLogEntry) error {
	return s.calls.Append(ctx, e)
}

// ListAPICallLogs returns the n most recent call log entries, newest first.
func (s *Store) ListAPICallLogs(ctx context.Context, n int) ([]APICallLogEntry, error) {
	return s.calls.Recent(ctx, n)
}
