// Package journal persists committed events to SQLite so operators can audit
// swaps, distributions and launches after the fact.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/glebarez/sqlite"

	"safepump/core/events"
	"safepump/core/types"
)

const defaultFilePragmas = "mode=rwc&_busy_timeout=5000&_journal_mode=WAL"

// DefaultLimit bounds Recent when the caller does not.
const DefaultLimit = 100

var ErrPathRequired = errors.New("journal path must be configured")

// Journal is an append-only event log.
type Journal struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

// Entry is one journaled event.
type Entry struct {
	ID         int64
	Type       string
	RequestID  string
	Attributes map[string]string
	RecordedAt time.Time
}

// FileDSN converts a filesystem path into an on-disk SQLite DSN.
func FileDSN(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", ErrPathRequired
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve journal path: %w", err)
	}
	return fmt.Sprintf("file:%s?%s", abs, defaultFilePragmas), nil
}

// Open opens the journal at dsn and applies the schema.
func Open(dsn string) (*Journal, error) {
	trimmed := strings.TrimSpace(dsn)
	if trimmed == "" {
		return nil, ErrPathRequired
	}
	db, err := sql.Open("sqlite", trimmed)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	// One connection keeps ":memory:" journals coherent and serialises writers.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Journal{db: db, logger: slog.Default(), now: time.Now}, nil
}

func (j *Journal) SetLogger(logger *slog.Logger) {
	if logger != nil {
		j.logger = logger
	}
}

// Close releases database resources.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Append writes e to the journal.
func (j *Journal) Append(ctx context.Context, e events.Event) error {
	if j == nil {
		return fmt.Errorf("journal not configured")
	}
	flat := events.Flatten(e)
	if flat == nil {
		return nil
	}
	attrs, err := json.Marshal(flat.Attributes)
	if err != nil {
		return fmt.Errorf("encode attributes: %w", err)
	}
	_, err = j.db.ExecContext(ctx, `
        INSERT INTO events(type, request_id, attributes, recorded_at)
        VALUES(?, ?, ?, ?)
    `, flat.Type, flat.RequestID, string(attrs), j.now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// Emit implements events.Emitter. Write failures are logged; the state commit
// that produced e has already happened.
func (j *Journal) Emit(e events.Event) {
	if err := j.Append(context.Background(), e); err != nil {
		j.logger.Error("journal append failed", "type", e.EventType(), "error", err)
	}
}

// Recent returns up to limit entries, newest first. An empty kind matches
// every event type.
func (j *Journal) Recent(ctx context.Context, kind string, limit int) ([]Entry, error) {
	if j == nil {
		return nil, fmt.Errorf("journal not configured")
	}
	if limit <= 0 || limit > 10*DefaultLimit {
		limit = DefaultLimit
	}
	query := `SELECT id, type, request_id, attributes, recorded_at FROM events`
	args := []any{}
	if kind = strings.TrimSpace(kind); kind != "" {
		query += ` WHERE type = ?`
		args = append(args, kind)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			entry    Entry
			attrs    string
			recorded int64
		)
		if err := rows.Scan(&entry.ID, &entry.Type, &entry.RequestID, &attrs, &recorded); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if err := json.Unmarshal([]byte(attrs), &entry.Attributes); err != nil {
			return nil, fmt.Errorf("decode attributes: %w", err)
		}
		entry.RecordedAt = time.UnixMilli(recorded).UTC()
		out = append(out, entry)
	}
	return out, rows.Err()
}

// Flat renders entry in the wire shape shared with the event stream.
func (entry Entry) Flat() types.Event {
	return types.Event{Type: entry.Type, RequestID: entry.RequestID, Attributes: entry.Attributes}
}

const schema = `
CREATE TABLE IF NOT EXISTS events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    type TEXT NOT NULL,
    request_id TEXT NOT NULL DEFAULT '',
    attributes TEXT NOT NULL,
    recorded_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_type ON events(type, id);
`
