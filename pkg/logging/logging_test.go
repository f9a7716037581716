package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEmptyPathIsNop(t *testing.T) {
	logger, done, err := New("", "info")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer done()
	logger.Info("dropped")
}

func TestWritesJSONAtLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "chainjournal.log")
	logger, done, err := New(path, "warn")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	logger.Info("too quiet")
	logger.Warn("loud enough")
	done()

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(raw)
	if strings.Contains(out, "too quiet") {
		t.Fatalf("info should be filtered: %s", out)
	}
	if !strings.Contains(out, `"msg":"loud enough"`) {
		t.Fatalf("warn missing: %s", out)
	}
}

func TestBadLevel(t *testing.T) {
	if _, _, err := New(filepath.Join(t.TempDir(), "x.log"), "chatty"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
