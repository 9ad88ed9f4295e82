package display

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/govscout/govscout/internal/store"
	govsync "github.com/govscout/govscout/internal/sync"
	"github.com/govscout/govscout/internal/ui"
)

// SyncSummary prints the outcome of one sync run.
func SyncSummary(w io.Writer, s *govsync.Summary) {
	switch {
	case s.DryRun:
		fmt.Fprintf(w, "%s Dry run plan (nothing fetched or written)\n", ui.RenderAccent("📋"))
	case s.RateLimited:
		fmt.Fprintf(w, "%s Sync paused: rate limited by SAM.gov\n", ui.RenderWarn("⚠"))
	default:
		fmt.Fprintf(w, "%s Sync complete\n", ui.RenderPass("✓"))
	}

	fmt.Fprintf(w, "   Run: %s\n", s.RunID)
	fmt.Fprintf(w, "   API calls: %d\n", s.APICallsUsed)
	fmt.Fprintf(w, "   Records: %d\n", s.RecordsSynced)
	fmt.Fprintf(w, "   Windows: %d\n", s.WindowsCompleted)
	if s.BackfillCursor != "" {
		fmt.Fprintf(w, "   Backfill cursor: %s\n", s.BackfillCursor)
	}

	if len(s.Windows) == 0 {
		return
	}
	fmt.Fprintln(w)

	t := newTable("Phase", "From", "To", "Calls", "Records", "")
	for _, win := range s.Windows {
		note := ""
		switch {
		case win.Planned:
			note = "planned"
		case win.RateLimited:
			note = "rate limited"
		}
		t.Row(win.Context, win.From, win.To,
			strconv.Itoa(win.APICalls), strconv.Itoa(win.RecordsFetched), note)
	}
	fmt.Fprintln(w, t.String())
}

// StatusReport is what the status command shows.
type StatusReport struct {
	DBPath         string                  `json:"db_path" yaml:"db_path"`
	Opportunities  int                     `json:"opportunities" yaml:"opportunities"`
	Contacts       int                     `json:"contacts" yaml:"contacts"`
	BackfillCursor string                  `json:"backfill_cursor,omitempty" yaml:"backfill_cursor,omitempty"`
	LastSync       string                  `json:"last_sync,omitempty" yaml:"last_sync,omitempty"`
	RecentCalls    []store.APICallLogEntry `json:"recent_calls" yaml:"recent_calls"`
}

// Status prints the store summary and the most recent call-log entries.
func Status(w io.Writer, r *StatusReport) {
	fmt.Fprintf(w, "\n%s GovScout Status\n\n", ui.RenderAccent("📊"))
	fmt.Fprintf(w, "Database: %s\n", r.DBPath)
	fmt.Fprintf(w, "Opportunities: %d\n", r.Opportunities)
	fmt.Fprintf(w, "Contacts: %d\n", r.Contacts)
	fmt.Fprintf(w, "Last sync: %s\n", valueOr(r.LastSync, "never"))
	fmt.Fprintf(w, "Backfill cursor: %s\n", valueOr(r.BackfillCursor, "not started"))

	if len(r.RecentCalls) == 0 {
		fmt.Fprintln(w)
		return
	}

	fmt.Fprintf(w, "\nRecent API calls:\n")
	t := newTable("When", "Phase", "From", "To", "Calls", "Records", "Result")
	for _, e := range r.RecentCalls {
		result := ui.RenderPass("ok")
		switch {
		case e.ErrorMessage != "":
			result = ui.RenderFail(Truncate(e.ErrorMessage, 40))
		case e.RateLimited:
			result = ui.RenderWarn("rate limited")
		}
		t.Row(e.CreatedAt, e.Context, e.WindowFrom, e.WindowTo,
			strconv.Itoa(e.APICalls), strconv.Itoa(e.RecordsFetched), result)
	}
	fmt.Fprintln(w, t.String())
	fmt.Fprintln(w)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
