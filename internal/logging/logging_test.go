package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/govscout/govscout/internal/config"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level   string
		enabled zapcore.Level
		wantErr bool
	}{
		{"", zapcore.InfoLevel, false},
		{"debug", zapcore.DebugLevel, false},
		{"WARN", zapcore.WarnLevel, false},
		{"loud", zapcore.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger, err := New(config.LogConfig{Level: tt.level})
			if (err != nil) != tt.wantErr {
				t.Fatalf("New(%q) err = %v, wantErr %v", tt.level, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if !logger.Core().Enabled(tt.enabled) {
				t.Errorf("level %v not enabled", tt.enabled)
			}
			if tt.enabled > zapcore.DebugLevel && logger.Core().Enabled(tt.enabled-1) {
				t.Errorf("level %v enabled, want filtered", tt.enabled-1)
			}
		})
	}
}

func TestNew_UnknownEncoding(t *testing.T) {
	if _, err := New(config.LogConfig{Encoding: "xml"}); err == nil {
		t.Error("New() with xml encoding succeeded, want error")
	}
}

// TestNew_File tests that a configured file receives JSON entries
func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "govscout.log")
	logger, err := New(config.LogConfig{
		Level:     "info",
		Encoding:  "json",
		File:      path,
		MaxSizeMB: 1,
	})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	logger.Info("window complete", zap.String("from", "01/01/2025"), zap.Int("api_calls", 2))
	logger.Debug("hidden")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d log lines, want 1: %q", len(lines), data)
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["msg"] != "window complete" || entry["from"] != "01/01/2025" {
		t.Errorf("entry = %v", entry)
	}
	if entry["api_calls"] != float64(2) {
		t.Errorf("api_calls = %v, want 2", entry["api_calls"])
	}
}
