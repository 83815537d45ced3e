// Package audit persists one row of metadata per tool invocation: what ran,
// whether it succeeded, how long it took. Arguments and upstream payloads
// are never stored.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Invocation statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

const errorSummaryLimit = 300

// Log is an append-only invocation log backed by SQLite. A nil *Log is a
// valid no-op log, so callers never check whether auditing is enabled.
type Log struct {
	db *sql.DB
}

// Open opens the audit database at path, creating the schema if needed.
func Open(path string) (*Log, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}
	l := &Log{db: db}
	if err := l.initTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize audit db: %w", err)
	}
	return l, nil
}

func (l *Log) initTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS invocations (
		id TEXT PRIMARY KEY,
		tool TEXT NOT NULL,
		status TEXT NOT NULL,
		error_summary TEXT NOT NULL DEFAULT '',
		duration_ms INTEGER NOT NULL DEFAULT 0,
		invoked_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_invocations_tool ON invocations(tool);
	CREATE INDEX IF NOT EXISTS idx_invocations_invoked_at ON invocations(invoked_at);
	`
	_, err := l.db.Exec(schema)
	return err
}

// Record appends one invocation row. Long error summaries are truncated;
// the row never carries call arguments or results.
func (l *Log) Record(ctx context.Context, tool, status, errorSummary string, duration time.Duration) error {
	if l == nil || l.db == nil {
		return nil
	}
	if len(errorSummary) > errorSummaryLimit {
		errorSummary = errorSummary[:errorSummaryLimit] + "..."
	}
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO invocations (id, tool, status, error_summary, duration_ms, invoked_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, uuid.New().String(), tool, status, errorSummary, duration.Milliseconds(), time.Now())
	return err
}

// Entry is one recorded invocation.
type Entry struct {
	ID           string
	Tool         string
	Status       string
	ErrorSummary string
	DurationMS   int64
	InvokedAt    time.Time
}

// Recent returns the latest entries, newest first.
func (l *Log) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if l == nil || l.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := l.db.QueryContext(ctx, `
		SELECT id, tool, status, error_summary, duration_ms, invoked_at
		FROM invocations
		ORDER BY invoked_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Tool, &e.Status, &e.ErrorSummary, &e.DurationMS, &e.InvokedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close releases the database handle. Safe on a nil log.
func (l *Log) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}
