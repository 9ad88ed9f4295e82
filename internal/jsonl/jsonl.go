// Package jsonl dumps stored opportunities to JSON Lines and loads them back.
//
// Each line is one opportunity in the upstream wire shape, contacts included,
// so an export can be re-imported into a fresh database or fed to other tools.
package jsonl

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/govscout/govscout/internal/samgov"
)

// Source is the store side of an export.
type Source interface {
	ListNoticeIDs(ctx context.Context) ([]string, error)
	GetOpportunity(ctx context.Context, noticeID string) (*samgov.Opportunity, error)
}

// Sink is the store side of an import.
type Sink interface {
	UpsertOpportunity(ctx context.Context, opp *samgov.Opportunity) error
}

// ImportOptions contains configuration for an import
type ImportOptions struct {
	DryRun bool // Parse and validate without writing
}

// ImportResult contains statistics about an import
type ImportResult struct {
	Read     int
	Imported int
	Skipped  int
	Errors   []string
}

// Export writes every stored opportunity to w, most recently modified first.
func Export(ctx context.Context, src Source, w io.Writer) (int, error) {
	ids, err := src.ListNoticeIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list opportunities: %w", err)
	}

	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	n := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		opp, err := src.GetOpportunity(ctx, id)
		if err != nil {
			return n, fmt.Errorf("failed to load %s: %w", id, err)
		}
		if err := enc.Encode(opp); err != nil {
			return n, fmt.Errorf("failed to encode %s: %w", id, err)
		}
		n++
	}
	if err := bw.Flush(); err != nil {
		return n, fmt.Errorf("failed to write export: %w", err)
	}
	return n, nil
}

// ExportFile writes the export to path atomically via a temp file.
func ExportFile(ctx context.Context, src Source, path string) (int, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return 0, fmt.Errorf("failed to create export directory: %w", err)
		}
	}

	tmpPath := path + ".tmp"
	// #nosec G304 - controlled path from CLI
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}

	n, err := Export(ctx, src, f)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("failed to close temp file: %w", cerr)
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return n, err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return n, fmt.Errorf("failed to rename temp file: %w", err)
	}
	return n, nil
}

// Read parses a JSONL stream into opportunities.
func Read(r io.Reader) ([]*samgov.Opportunity, error) {
	var opps []*samgov.Opportunity
	decoder := json.NewDecoder(r)
	recordNum := 0

	for {
		var opp samgov.Opportunity
		if err := decoder.Decode(&opp); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("invalid JSON at record %d: %w", recordNum+1, err)
		}
		recordNum++
		opps = append(opps, &opp)
	}

	return opps, nil
}

// Import loads the JSONL file at path into dst. Records without a notice
// ID are skipped. A failed write is recorded in Errors and the import goes
// on with the next record.
func Import(ctx context.Context, dst Sink, path string, opts ImportOptions) (*ImportResult, error) {
	// #nosec G304 - controlled path from CLI
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open JSONL file: %w", err)
	}
	defer file.Close()

	opps, err := Read(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JSONL: %w", err)
	}

	result := &ImportResult{Read: len(opps)}
	for _, opp := range opps {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if opp.Key() == "" {
			result.Skipped++
			continue
		}
		if opts.DryRun {
			result.Imported++
			continue
		}
		if err := dst.UpsertOpportunity(ctx, opp); err != nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("failed to import %s: %v", opp.Key(), err))
			continue
		}
		result.Imported++
	}

	return result, nil
}
