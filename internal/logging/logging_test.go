package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNewWritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tally.log")
	log, err := New(Options{Path: path, Level: "debug"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	log.Debug("hello", zap.String("op", "load"))
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := strings.TrimSpace(string(data))
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("expected a JSON line, got %q: %v", line, err)
	}
	if entry["msg"] != "hello" || entry["op"] != "load" {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New(Options{Level: "chatty"}); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestNewWithoutOutputsIsNop(t *testing.T) {
	log, err := New(Options{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	log.Info("dropped")
}
