// Package runlog persists per-task invocation history to SQLite so a
// developer can query what the last run did and which files had findings.
package runlog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mfletch/tidyherd/internal/dispatch"
)

// Store records task results for one run. Safe for concurrent use by the
// worker pool; SQLite serializes writes with the busy timeout set below.
type Store struct {
	db    *sql.DB
	runID string
}

// Open opens (and creates if needed) the run-log database at path, ensures
// the schema exists, and registers a new run row.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("run-log path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create run-log directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := db.ExecContext(pctx, "PRAGMA busy_timeout = 5000;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy_timeout: %w", err)
	}
	if err := bootstrap(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	runID := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := db.ExecContext(ctx, `
INSERT INTO runs(id, started_at) VALUES(?, ?);
`, runID, now); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("insert run: %w", err)
	}

	return &Store{db: db, runID: runID}, nil
}

// bootstrap creates tables if missing.
func bootstrap(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
  id         TEXT PRIMARY KEY,
  started_at TEXT NOT NULL
);`,
		`CREATE TABLE IF NOT EXISTS task_log (
  id          TEXT PRIMARY KEY,
  run_id      TEXT NOT NULL REFERENCES runs(id),
  file        TEXT NOT NULL,
  argv        TEXT NOT NULL,
  exit_code   INTEGER NOT NULL,
  status      TEXT NOT NULL,
  duration_ms INTEGER NOT NULL,
  recorded_at TEXT NOT NULL
);`,
		`CREATE INDEX IF NOT EXISTS idx_task_log_run ON task_log(run_id);`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrap run-log schema: %w", err)
		}
	}
	return nil
}

// RunID returns the identifier of the run this store was opened for.
func (s *Store) RunID() string {
	return s.runID
}

// Record inserts one completed task result.
func (s *Store) Record(ctx context.Context, res dispatch.TaskResult) error {
	status := "ok"
	if res.ExitCode != 0 {
		status = "findings"
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	_, err := s.db.ExecContext(ctx, `
INSERT INTO task_log(id, run_id, file, argv, exit_code, status, duration_ms, recorded_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?);
`, uuid.NewString(), s.runID, res.File, strings.Join(res.Argv, " "),
		res.ExitCode, status, res.Duration.Milliseconds(), now)
	if err != nil {
		return fmt.Errorf("insert task_log: %w", err)
	}
	return nil
}

// TaskEntry is a projection of one task_log row.
type TaskEntry struct {
	File     string
	ExitCode int
	Status   string
}

// Tasks returns the task entries recorded for a run, ordered by file.
func (s *Store) Tasks(ctx context.Context, runID string) ([]TaskEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT file, exit_code, status FROM task_log WHERE run_id = ? ORDER BY file ASC;
`, runID)
	if err != nil {
		return nil, fmt.Errorf("query task_log: %w", err)
	}
	defer rows.Close()

	var entries []TaskEntry
	for rows.Next() {
		var e TaskEntry
		if err := rows.Scan(&e.File, &e.ExitCode, &e.Status); err != nil {
			return nil, fmt.Errorf("scan task_log: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
