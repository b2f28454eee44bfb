package runlog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/mfletch/tidyherd/internal/dispatch"
)

func TestOpenCreatesSchema(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "runs.db")
	store, err := Open(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if store.RunID() == "" {
		t.Fatal("expected a run ID")
	}
}

func TestRecordAndQueryTasks(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "runs.db")
	store, err := Open(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	results := []dispatch.TaskResult{
		{File: "a.cpp", Argv: []string{"clang-tidy", "-quiet", "a.cpp"}, ExitCode: 0, Duration: 120 * time.Millisecond},
		{File: "b.cpp", Argv: []string{"clang-tidy", "-quiet", "b.cpp"}, ExitCode: 1, Duration: 340 * time.Millisecond},
	}
	for _, res := range results {
		if err := store.Record(context.Background(), res); err != nil {
			t.Fatalf("Record %s: %v", res.File, err)
		}
	}

	entries, err := store.Tasks(context.Background(), store.RunID())
	if err != nil {
		t.Fatalf("Tasks: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].File != "a.cpp" || entries[0].Status != "ok" {
		t.Fatalf("unexpected first entry: %#v", entries[0])
	}
	if entries[1].File != "b.cpp" || entries[1].Status != "findings" || entries[1].ExitCode != 1 {
		t.Fatalf("unexpected second entry: %#v", entries[1])
	}
}

func TestSeparateRunsAreIsolated(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "runs.db")

	first, err := Open(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("Open first: %v", err)
	}
	if err := first.Record(context.Background(), dispatch.TaskResult{File: "a.cpp", Argv: []string{"t", "a.cpp"}}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	firstID := first.RunID()
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second, err := Open(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("Open second: %v", err)
	}
	t.Cleanup(func() { _ = second.Close() })

	if second.RunID() == firstID {
		t.Fatal("expected a fresh run ID per open")
	}

	entries, err := second.Tasks(context.Background(), second.RunID())
	if err != nil {
		t.Fatalf("Tasks: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries for the new run, got %d", len(entries))
	}

	old, err := second.Tasks(context.Background(), firstID)
	if err != nil {
		t.Fatalf("Tasks for first run: %v", err)
	}
	if len(old) != 1 {
		t.Fatalf("expected history of first run to persist, got %d entries", len(old))
	}
}
