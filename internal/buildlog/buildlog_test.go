package buildlog

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestTailReturnsRecentLinesAndTotal(t *testing.T) {
	dir := t.TempDir()
	journal, err := New(filepath.Join(dir, "build.log"))
	if err != nil {
		t.Fatalf("new journal: %v", err)
	}
	for i := 0; i < 5; i++ {
		journal.Info("entry-%d", i)
	}
	lines, total := journal.Tail(3)
	if total != 5 {
		t.Fatalf("total lines = %d, want 5", total)
	}
	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3", len(lines))
	}
	for idx, want := range []string{"entry-2", "entry-3", "entry-4"} {
		if !strings.Contains(lines[idx], want) {
			t.Fatalf("line %d = %q, missing %s", idx, lines[idx], want)
		}
	}
}

func TestTailHandlesLongLines(t *testing.T) {
	journal, err := New(filepath.Join(t.TempDir(), "build.log"))
	if err != nil {
		t.Fatalf("new journal: %v", err)
	}
	long := strings.Repeat("x", 100*1024)
	journal.Info("before")
	journal.Info("long %s", long)
	journal.Info("after")
	lines, total := journal.Tail(3)
	if total != 3 {
		t.Fatalf("total lines = %d, want 3", total)
	}
	if !strings.Contains(lines[1], long) {
		t.Fatalf("long entry truncated, got %d bytes", len(lines[1]))
	}
	if !strings.Contains(lines[2], "after") {
		t.Fatalf("lines after the long entry lost: %q", lines[2])
	}
}

func TestRunFraming(t *testing.T) {
	dir := t.TempDir()
	journal, err := New(filepath.Join(dir, "build.log"))
	if err != nil {
		t.Fatalf("new journal: %v", err)
	}
	fixed := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	journal.WithClock(func() time.Time { return fixed })

	journal.BeginRun("run-1")
	journal.EndRun("run-1", nil, 1500*time.Millisecond)
	journal.BeginRun("run-2")
	journal.EndRun("run-2", errors.New("render failed"), 40*time.Millisecond)

	lines, total := journal.Tail(10)
	if total != 4 {
		t.Fatalf("expected 4 lines, got %d", total)
	}
	if !strings.Contains(lines[1], "finished in 1.5s") {
		t.Fatalf("unexpected success line %q", lines[1])
	}
	if !strings.Contains(lines[3], "ERROR") || !strings.Contains(lines[3], "render failed") {
		t.Fatalf("unexpected failure line %q", lines[3])
	}
	if !strings.Contains(lines[0], "2026-08-24T12:00:00Z") {
		t.Fatalf("expected fixed clock timestamp, got %q", lines[0])
	}
}

func TestTailMissingFile(t *testing.T) {
	journal, err := New(filepath.Join(t.TempDir(), "build.log"))
	if err != nil {
		t.Fatalf("new journal: %v", err)
	}
	if lines, total := journal.Tail(5); lines != nil || total != 0 {
		t.Fatalf("expected empty tail, got %v %d", lines, total)
	}
}
