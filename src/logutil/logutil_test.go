package logutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetupRejectsUnknownLevel(t *testing.T) {
	if err := Setup(Options{Level: "loud"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
	if err := Setup(Options{Level: "debug", Format: "json"}); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
}

func TestRotatingWriterRotatesPastLimit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.log")
	if err := os.WriteFile(path, make([]byte, maxSizeBytes), 0644); err != nil {
		t.Fatalf("seed log: %v", err)
	}

	w, err := newRotatingWriter(path)
	if err != nil {
		t.Fatalf("newRotatingWriter: %v", err)
	}
	if _, err := w.Write([]byte("next line\n")); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := os.Stat(archiveName(path, 1)); err != nil {
		t.Fatalf("expected archive .1 after rotation: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read current log: %v", err)
	}
	if string(data) != "next line\n" {
		t.Fatalf("expected fresh log file, got %d bytes", len(data))
	}
}

func TestSanitize(t *testing.T) {
	got := Sanitize("line one\nline\ttwo\x01")
	if got != "line one\\nline\\ttwo?" {
		t.Fatalf("Sanitize = %q", got)
	}
	long := strings.Repeat("a", 150)
	if got := Sanitize(long); len(got) != 103 || !strings.HasSuffix(got, "...") {
		t.Fatalf("expected truncation, got len=%d", len(got))
	}
}
