// File: store.go
// Title: Access Log Store
// Description: SQLite backed log of served requests.
// Author: msto63
// Version: v0.1.0
// Created: 2026-03-18
// Modified: 2026-03-18
//
// Change History:
// - 2026-03-18 v0.1.0: Initial implementation

package accesslog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Entry is one served request
type Entry struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	Host      string        `json:"host"`
	Method    string        `json:"method"`
	Path      string        `json:"path"`
	Status    int           `json:"status"`
	Duration  time.Duration `json:"duration"`
	SessionID string        `json:"session_id,omitempty"`
}

// Store persists access log entries in SQLite
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens or creates the database at path. The special path ":memory:"
// keeps the log in memory.
func Open(path string) (*Store, error) {
	dsn := ":memory:"
	if path != ":memory:" {
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
		dsn = path + "?_journal_mode=WAL&_synchronous=NORMAL"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == ":memory:" {
		// every pooled connection would get its own empty database
		db.SetMaxOpenConns(1)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// initSchema creates the necessary tables
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS access_log (
		id TEXT PRIMARY KEY,
		timestamp DATETIME NOT NULL,
		host TEXT NOT NULL,
		method TEXT NOT NULL,
		path TEXT NOT NULL,
		status INTEGER NOT NULL,
		duration_ns INTEGER NOT NULL,
		session_id TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_access_log_timestamp ON access_log(timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_access_log_session ON access_log(session_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Record stores entry, filling in a missing ID and timestamp
func (s *Store) Record(ctx context.Context, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO access_log (id, timestamp, host, method, path, status, duration_ns, session_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.Timestamp.UTC(), entry.Host, entry.Method, entry.Path,
		entry.Status, int64(entry.Duration), entry.SessionID)
	if err != nil {
		return fmt.Errorf("failed to insert access log entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first
func (s *Store) Recent(ctx context.Context, limit int) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, timestamp, host, method, path, status, duration_ns, session_id
		FROM access_log
		ORDER BY timestamp DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query access log: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		var durationNS int64
		var sessionID sql.NullString
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Host, &e.Method, &e.Path,
			&e.Status, &durationNS, &sessionID); err != nil {
			return nil, fmt.Errorf("failed to scan access log entry: %w", err)
		}
		e.Duration = time.Duration(durationNS)
		e.SessionID = sessionID.String
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// Count returns the number of stored entries
func (s *Store) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM access_log`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count access log entries: %w", err)
	}
	return n, nil
}

// Prune deletes entries older than olderThan and returns how many were removed
func (s *Store) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-olderThan).UTC()
	result, err := s.db.ExecContext(ctx, `DELETE FROM access_log WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune access log: %w", err)
	}
	return result.RowsAffected()
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}
