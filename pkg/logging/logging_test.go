package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tableflip.dev/lifedots/pkg/config"
)

func TestNewRejectsBadLevel(t *testing.T) {
	if _, err := New(config.Log{Level: "loud"}); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lifedots.log")
	logger, err := New(config.Log{Level: "debug", Format: "json", File: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	logger.Debug("week saved")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"week saved"`) {
		t.Fatalf("expected JSON log line, got %q", string(data))
	}
}

func TestForTerminalUIWithoutFileIsNop(t *testing.T) {
	logger, err := ForTerminalUI(config.Log{Level: "debug"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logger.Core().Enabled(0) {
		t.Fatalf("expected a disabled core")
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatalf("expected a logger")
	}
}
