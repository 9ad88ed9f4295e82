package main

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
)

func TestCommandsRegistered(t *testing.T) {
	want := []string{"search", "get", "sync", "status", "types", "export", "import"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestDateFlag(t *testing.T) {
	newCmd := func() *cobra.Command {
		c := &cobra.Command{Use: "x"}
		c.Flags().String("from", "", "")
		return c
	}
	def := time.Date(2025, 6, 15, 0, 0, 0, 0, time.Local)

	got, err := dateFlag(newCmd(), "from", def)
	if err != nil || got != "06/15/2025" {
		t.Errorf("dateFlag(unset) = %q, %v; want 06/15/2025", got, err)
	}

	c := newCmd()
	_ = c.Flags().Set("from", "2025-01-02")
	if got, err := dateFlag(c, "from", def); err != nil || got != "01/02/2025" {
		t.Errorf("dateFlag(ISO) = %q, %v; want 01/02/2025", got, err)
	}

	c = newCmd()
	_ = c.Flags().Set("from", "31/01/2025")
	if _, err := dateFlag(c, "from", def); err == nil {
		t.Error("dateFlag(31/01/2025) succeeded, want error")
	}
}

// TestMaxCallsFlagDefersToConfig tests that --max-calls has no default of its
// own, so cobra's usage cannot contradict sync.max_api_calls
func TestMaxCallsFlagDefersToConfig(t *testing.T) {
	f := syncCmd.Flags().Lookup("max-calls")
	if f == nil {
		t.Fatal("sync --max-calls not defined")
	}
	if f.DefValue != "0" {
		t.Errorf("DefValue = %q, want 0 so the config value applies", f.DefValue)
	}
	if !strings.Contains(f.Usage, "sync.max_api_calls") {
		t.Errorf("Usage = %q, want mention of sync.max_api_calls", f.Usage)
	}
}
