package jsonl

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/govscout/govscout/internal/samgov"
	"github.com/govscout/govscout/internal/store"
)

func openStore(t *testing.T, name string) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), name), nil)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seed(t *testing.T, s *store.Store) {
	t.Helper()
	ctx := context.Background()
	opps := []*samgov.Opportunity{
		{
			NoticeID:   samgov.String("n-1"),
			Title:      samgov.String("Network upgrade"),
			PostedDate: samgov.String("2025-05-01"),
			PointOfContact: []samgov.PointOfContact{
				{FullName: samgov.String("Pat Smith"), Email: samgov.String("pat@example.gov")},
				{FullName: samgov.String("Lee Chen")},
			},
		},
		{
			NoticeID: samgov.String("n-2"),
			Title:    samgov.String("Janitorial services"),
			PlaceOfPerformance: &samgov.PlaceOfPerformance{
				State: &samgov.PlaceValue{Code: samgov.String("VA"), Name: samgov.String("Virginia")},
			},
		},
	}
	for _, opp := range opps {
		if err := s.UpsertOpportunity(ctx, opp); err != nil {
			t.Fatalf("UpsertOpportunity failed: %v", err)
		}
	}
}

func TestExportImport_RoundTrip(t *testing.T) {
	ctx := context.Background()
	src := openStore(t, "src.db")
	seed(t, src)

	path := filepath.Join(t.TempDir(), "out", "opps.jsonl")
	n, err := ExportFile(ctx, src, path)
	if err != nil {
		t.Fatalf("ExportFile failed: %v", err)
	}
	if n != 2 {
		t.Errorf("exported %d records, want 2", n)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind")
	}

	dst := openStore(t, "dst.db")
	result, err := Import(ctx, dst, path, ImportOptions{})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if result.Read != 2 || result.Imported != 2 || len(result.Errors) != 0 {
		t.Errorf("result = %+v, want 2 read, 2 imported", result)
	}

	if count, _ := dst.CountContacts(ctx); count != 2 {
		t.Errorf("contacts = %d, want 2", count)
	}
	got, err := dst.GetOpportunity(ctx, "n-2")
	if err != nil {
		t.Fatalf("GetOpportunity failed: %v", err)
	}
	if got.PlaceOfPerformance == nil || samgov.Value(got.PlaceOfPerformance.State.Code) != "VA" {
		t.Errorf("place of performance not restored: %+v", got.PlaceOfPerformance)
	}
}

func TestExport_Stream(t *testing.T) {
	src := openStore(t, "src.db")
	seed(t, src)

	var buf bytes.Buffer
	if _, err := Export(context.Background(), src, &buf); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if !strings.Contains(buf.String(), `"noticeId":"n-1"`) {
		t.Errorf("export missing n-1:\n%s", buf.String())
	}
}

func TestImport_SkipsKeylessAndDryRun(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "in.jsonl")
	content := `{"noticeId":"k-1","title":"Keep"}
{"title":"No key"}

{"noticeId":"k-2"}
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write input: %v", err)
	}

	dst := openStore(t, "dst.db")
	result, err := Import(ctx, dst, path, ImportOptions{DryRun: true})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if result.Read != 3 || result.Imported != 2 || result.Skipped != 1 {
		t.Errorf("result = %+v, want 3 read, 2 imported, 1 skipped", result)
	}
	if count, _ := dst.CountOpportunities(ctx); count != 0 {
		t.Errorf("dry run wrote %d records", count)
	}

	if _, err := Import(ctx, dst, path, ImportOptions{}); err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if count, _ := dst.CountOpportunities(ctx); count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestImport_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.jsonl")
	if err := os.WriteFile(path, []byte("{\"noticeId\":\"a\"}\n{not json}\n"), 0600); err != nil {
		t.Fatalf("failed to write input: %v", err)
	}

	_, err := Import(context.Background(), openStore(t, "dst.db"), path, ImportOptions{})
	if err == nil || !strings.Contains(err.Error(), "record 2") {
		t.Errorf("Import() err = %v, want invalid JSON at record 2", err)
	}
}

func TestImport_MissingFile(t *testing.T) {
	if _, err := Import(context.Background(), openStore(t, "dst.db"), "/nonexistent/path.jsonl", ImportOptions{}); err == nil {
		t.Error("expected error for nonexistent file")
	}
}
