package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/govscout/govscout/internal/samgov"
)

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// UpsertOpportunity inserts or updates one record and replaces its contacts,
// in a single transaction. A record without a notice id is skipped.
func (s *Store) UpsertOpportunity(ctx context.Context, opp *samgov.Opportunity) error {
	if opp.Key() == "" {
		return nil
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := upsertOpportunity(ctx, tx, opp); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// UpsertResponse applies UpsertOpportunity to every record of one page in a
// single transaction. A page with no record array is a no-op.
func (s *Store) UpsertResponse(ctx context.Context, resp *samgov.SearchResponse) error {
	if resp == nil || resp.OpportunitiesData == nil {
		return nil
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for i := range resp.OpportunitiesData {
		opp := &resp.OpportunitiesData[i]
		if opp.Key() == "" {
			continue
		}
		if err := upsertOpportunity(ctx, tx, opp); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func upsertOpportunity(ctx context.Context, tx execer, opp *samgov.Opportunity) error {
	id := opp.Key()

	if _, err := tx.ExecContext(ctx, upsertOpportunitySQL, values(id, opp)...); err != nil {
		return fmt.Errorf("failed to upsert opportunity %s: %w", id, err)
	}

	// Contacts have no upstream identity, so the stored set is replaced.
	if _, err := tx.ExecContext(ctx, `DELETE FROM contacts WHERE notice_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete contacts for %s: %w", id, err)
	}

	for _, c := range opp.PointOfContact {
		_, err := tx.ExecContext(ctx, `
		INSERT INTO contacts (notice_id, contact_type, full_name, email, phone, title)
		VALUES (?, ?, ?, ?, ?, ?)`,
			id,
			nullable(c.Type),
			nullable(c.FullName),
			nullable(c.Email),
			nullable(c.Phone),
			nullable(c.Title),
		)
		if err != nil {
			return fmt.Errorf("failed to insert contact for %s: %w", id, err)
		}
	}

	return nil
}

// GetOpportunity rebuilds the stored record for noticeID, contacts included.
// Returns an error wrapping sql.ErrNoRows if the notice is not stored.
func (s *Store) GetOpportunity(ctx context.Context, noticeID string) (*samgov.Opportunity, error) {
	query := `SELECT ` + columnNames() + ` FROM opportunities WHERE notice_id = ?`

	raw := make([]sql.NullString, len(columns))
	dest := make([]any, len(columns))
	for i := range raw {
		dest[i] = &raw[i]
	}

	if err := s.conn.QueryRowContext(ctx, query, noticeID).Scan(dest...); err != nil {
		return nil, fmt.Errorf("failed to get opportunity %s: %w", noticeID, err)
	}

	opp := &samgov.Opportunity{NoticeID: samgov.String(noticeID)}
	for i, c := range columns {
		if raw[i].Valid {
			c.set(opp, raw[i].String)
		}
	}

	contacts, err := s.listContacts(ctx, noticeID)
	if err != nil {
		return nil, err
	}
	opp.PointOfContact = contacts

	return opp, nil
}

func (s *Store) listContacts(ctx context.Context, noticeID string) ([]samgov.PointOfContact, error) {
	rows, err := s.conn.QueryContext(ctx, `
	SELECT contact_type, full_name, email, phone, title
	FROM contacts
	WHERE notice_id = ?
	ORDER BY id ASC`, noticeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query contacts: %w", err)
	}
	defer rows.Close()

	var contacts []samgov.PointOfContact
	for rows.Next() {
		var typ, name, email, phone, title sql.NullString
		if err := rows.Scan(&typ, &name, &email, &phone, &title); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, samgov.PointOfContact{
			Type:     nullPtr(typ),
			FullName: nullPtr(name),
			Email:    nullPtr(email),
			Phone:    nullPtr(phone),
			Title:    nullPtr(title),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contacts: %w", err)
	}
	return contacts, nil
}

func nullPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

// ListNoticeIDs returns every stored notice id, newest modification first.
func (s *Store) ListNoticeIDs(ctx context.Context) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT notice_id FROM opportunities ORDER BY modified_at DESC, notice_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query notice ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan notice id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notice ids: %w", err)
	}
	return ids, nil
}

// CountOpportunities returns the number of stored opportunities.
func (s *Store) CountOpportunities(ctx context.Context) (int, error) {
	var count int
	if err := s.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM opportunities").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count opportunities: %w", err)
	}
	return count, nil
}

// CountContacts returns the number of stored contacts.
func (s *Store) CountContacts(ctx context.Context) (int, error) {
	var count int
	if err := s.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM contacts").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count contacts: %w", err)
	}
	return count, nil
}

// EarliestPostedDate returns the smallest non-null posted_date, or "" for an
// empty store. The comparison is lexicographic on the stored text.
func (s *Store) EarliestPostedDate(ctx context.Context) (string, error) {
	var d sql.NullString
	err := s.conn.QueryRowContext(ctx, `SELECT MIN(posted_date) FROM opportunities WHERE posted_date IS NOT NULL`).Scan(&d)
	if err != nil {
		return "", fmt.Errorf("failed to query earliest posted_date: %w", err)
	}
	return d.String, nil
}
