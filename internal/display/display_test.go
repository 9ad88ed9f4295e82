package display

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/govscout/govscout/internal/samgov"
	"github.com/govscout/govscout/internal/store"
	govsync "github.com/govscout/govscout/internal/sync"
	"github.com/govscout/govscout/internal/ui"
)

func init() {
	ui.DisableColor()
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello world", 5, "hell…"},
		{"", 10, ""},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"tags", "<p>Hello <b>world</b></p>", "Hello world\n"},
		{"entities", "&amp; &lt; &gt; &nbsp; &#39; &quot;", "& < >   ' \"\n"},
		{"blank lines", "line1\n\n\n\nline2", "line1\n\nline2\n"},
		{"trims lines", "  indented  \n<br>\n", "indented\n\n"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripHTML(tt.in); got != tt.want {
				t.Errorf("StripHTML(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func sampleOpportunity() *samgov.Opportunity {
	return &samgov.Opportunity{
		NoticeID:   samgov.String("abc123"),
		Title:      samgov.String("Cloud Migration Services for the Department of Example Affairs"),
		BaseType:   samgov.String("Solicitation"),
		PostedDate: samgov.String("2025-06-01"),
		Department: samgov.String("DEPT OF EXAMPLES"),
		NAICSCode:  samgov.String("541512"),
		PointOfContact: []samgov.PointOfContact{
			{Type: samgov.String("primary"), FullName: samgov.String("Jane Doe"), Email: samgov.String("jane@example.gov")},
		},
		Description: samgov.String("<p>Scope of work</p>"),
	}
}

func TestSearchResults(t *testing.T) {
	total := 42
	resp := &samgov.SearchResponse{
		TotalRecords:      &total,
		OpportunitiesData: []samgov.Opportunity{*sampleOpportunity(), {}},
	}

	var buf bytes.Buffer
	SearchResults(&buf, resp, -1)
	out := buf.String()

	if !strings.Contains(out, "Showing 2 of 42 results") {
		t.Errorf("missing header in:\n%s", out)
	}
	for _, want := range []string{"Notice ID", "abc123", "DEPT OF EXAMPLES", "—", "╭"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Example Affairs") {
		t.Error("long title was not truncated")
	}

	buf.Reset()
	SearchResults(&buf, resp, 2)
	if !strings.Contains(buf.String(), "(2 saved to database)") {
		t.Errorf("missing saved count:\n%s", buf.String())
	}

	buf.Reset()
	SearchResults(&buf, &samgov.SearchResponse{}, -1)
	if strings.TrimSpace(buf.String()) != "No opportunities found." {
		t.Errorf("empty output = %q", buf.String())
	}
}

func TestOpportunity_Detail(t *testing.T) {
	var buf bytes.Buffer
	Opportunity(&buf, sampleOpportunity())
	out := buf.String()

	for _, want := range []string{
		"═══ Cloud Migration Services",
		"Notice ID:",
		"541512",
		"── Point(s) of Contact ──",
		"primary Jane Doe",
		"Email: jane@example.gov",
		"Scope of work",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("detail missing %q:\n%s", want, out)
		}
	}
	for _, absent := range []string{"── Award ──", "── Place of Performance ──", "<p>", "Archive Date:"} {
		if strings.Contains(out, absent) {
			t.Errorf("detail contains %q:\n%s", absent, out)
		}
	}
}

func TestOpportunity_DescriptionTruncated(t *testing.T) {
	opp := &samgov.Opportunity{Description: samgov.String(strings.Repeat("line\n", 40))}
	var buf bytes.Buffer
	Opportunity(&buf, opp)
	if strings.Count(buf.String(), "  line\n") != descriptionLines {
		t.Errorf("got %d description lines, want %d", strings.Count(buf.String(), "  line\n"), descriptionLines)
	}
	if !strings.Contains(buf.String(), "... (truncated)") {
		t.Error("missing truncation marker")
	}
}

func TestTypes(t *testing.T) {
	var buf bytes.Buffer
	Types(&buf)
	out := buf.String()
	if !strings.Contains(out, "  k    Combined Synopsis/Solicitation") {
		t.Errorf("missing notice type row:\n%s", out)
	}
	if !strings.Contains(out, "  EDWOSBSS     EDWOSB Sole Source (FAR 19.15)") {
		t.Errorf("missing set-aside row:\n%s", out)
	}
}

func TestSyncSummary(t *testing.T) {
	s := &govsync.Summary{
		RunID:            "run-1",
		APICallsUsed:     3,
		RecordsSynced:    120,
		WindowsCompleted: 2,
		RateLimited:      true,
		BackfillCursor:   "03/03/2025",
		Windows: []govsync.Window{
			{Context: store.ContextIncremental, From: "06/12/2025", To: "06/15/2025", APICalls: 1, RecordsFetched: 20},
			{Context: store.ContextBackfill, From: "03/03/2025", To: "06/01/2025", APICalls: 2, RecordsFetched: 100, RateLimited: true},
		},
	}

	var buf bytes.Buffer
	SyncSummary(&buf, s)
	out := buf.String()
	for _, want := range []string{"rate limited by SAM.gov", "API calls: 3", "Backfill cursor: 03/03/2025", "incremental", "06/12/2025"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestStatus(t *testing.T) {
	r := &StatusReport{
		DBPath:        "govscout.db",
		Opportunities: 10,
		RecentCalls: []store.APICallLogEntry{
			{Context: "backfill", WindowFrom: "01/01/2025", WindowTo: "03/31/2025", APICalls: 1, ErrorMessage: "upstream 500"},
		},
	}

	var buf bytes.Buffer
	Status(&buf, r)
	out := buf.String()
	for _, want := range []string{"Opportunities: 10", "Last sync: never", "Backfill cursor: not started", "upstream 500"} {
		if !strings.Contains(out, want) {
			t.Errorf("status missing %q:\n%s", want, out)
		}
	}
}

func TestEncode(t *testing.T) {
	opp := sampleOpportunity()

	var buf bytes.Buffer
	if err := Encode(&buf, JSON, opp); err != nil {
		t.Fatalf("Encode(JSON) failed: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if decoded["noticeId"] != "abc123" {
		t.Errorf("noticeId = %v", decoded["noticeId"])
	}

	buf.Reset()
	if err := Encode(&buf, YAML, opp); err != nil {
		t.Fatalf("Encode(YAML) failed: %v", err)
	}
	var fromYAML map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &fromYAML); err != nil {
		t.Fatalf("output is not YAML: %v", err)
	}
	if fromYAML["noticeId"] != "abc123" || fromYAML["naicsCode"] != "541512" {
		t.Errorf("yaml = %v", fromYAML)
	}
}

func TestFormatFromFlags(t *testing.T) {
	if f, _ := FormatFromFlags(false, false); f != Text {
		t.Errorf("default format = %v, want Text", f)
	}
	if f, _ := FormatFromFlags(false, true); f != YAML {
		t.Errorf("--yaml format = %v, want YAML", f)
	}
	if _, err := FormatFromFlags(true, true); err == nil {
		t.Error("FormatFromFlags(true, true) succeeded, want error")
	}
}
