// Package store is the SQLite-backed tracking store: the used-subject set
// consulted for deduplication and the append-only run log. Subject
// reservation is a conditional insert keyed by normalized title, so two
// concurrent runs cannot both claim the same subject.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"autopress/internal/core"
)

// Store represents the SQLite-based tracking store
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new store instance with SQLite database
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "autopress.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{
		db:   db,
		path: dbPath,
	}

	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

// initialize creates the necessary tables
func (s *Store) initialize() error {
	usedSubjectsTable := `
	CREATE TABLE IF NOT EXISTS used_subjects (
		normalized_title TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		origin TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);`

	runLogTable := `
	CREATE TABLE IF NOT EXISTS run_log (
		id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		title TEXT,
		url TEXT,
		keywords TEXT,
		note TEXT,
		created_at DATETIME NOT NULL
	);`

	tables := []string{usedSubjectsTable, runLogTable}
	for _, table := range tables {
		if _, err := s.db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// normalizeTitle is the dedup key: titles match case-insensitively.
func normalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// ReserveSubject atomically claims a subject title. It returns false when the
// title is already present, which callers treat as "topic already used".
func (s *Store) ReserveSubject(title string, origin core.Origin) (bool, error) {
	query := `
	INSERT INTO used_subjects (normalized_title, title, origin, status, created_at)
	VALUES (?, ?, ?, 'reserved', ?)
	ON CONFLICT(normalized_title) DO NOTHING`

	result, err := s.db.Exec(query, normalizeTitle(title), title, string(origin), time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("failed to reserve subject: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read reservation result: %w", err)
	}

	return rows == 1, nil
}

// IsSubjectUsed reports whether a title is already in the used-subject set
// (case-insensitive match).
func (s *Store) IsSubjectUsed(title string) (bool, error) {
	var count int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM used_subjects WHERE normalized_title = ?",
		normalizeTitle(title),
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check used subject: %w", err)
	}
	return count > 0, nil
}

// MarkSubjectPublished flips a reserved subject's status to published. The
// row is inserted if a reservation never happened, e.g. for externally
// requested subjects that bypass the selector.
func (s *Store) MarkSubjectPublished(title string, origin core.Origin) error {
	query := `
	INSERT INTO used_subjects (normalized_title, title, origin, status, created_at)
	VALUES (?, ?, ?, 'published', ?)
	ON CONFLICT(normalized_title) DO UPDATE SET status = 'published'`

	_, err := s.db.Exec(query, normalizeTitle(title), title, string(origin), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to mark subject published: %w", err)
	}
	return nil
}

// ReleaseSubject drops a reservation whose run did not end in a publish, so
// the title can be selected again later.
func (s *Store) ReleaseSubject(title string) error {
	_, err := s.db.Exec(
		"DELETE FROM used_subjects WHERE normalized_title = ? AND status = 'reserved'",
		normalizeTitle(title),
	)
	if err != nil {
		return fmt.Errorf("failed to release subject: %w", err)
	}
	return nil
}

// ListUsedSubjects returns the most recent used-subject records.
func (s *Store) ListUsedSubjects(limit int) ([]core.UsedSubjectRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(
		"SELECT title, origin, status, created_at FROM used_subjects ORDER BY created_at DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list used subjects: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []core.UsedSubjectRecord
	for rows.Next() {
		var rec core.UsedSubjectRecord
		var origin string
		if err := rows.Scan(&rec.Title, &origin, &rec.Status, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan used subject: %w", err)
		}
		rec.Origin = core.Origin(origin)
		records = append(records, rec)
	}

	return records, rows.Err()
}

// AppendRun writes one outcome record to the run log.
func (s *Store) AppendRun(outcome core.PublishOutcome) error {
	keywords, _ := json.Marshal(outcome.Keywords)

	timestamp := outcome.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	query := `
	INSERT INTO run_log (id, status, title, url, keywords, note, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.Exec(query,
		outcome.RunID,
		string(outcome.Status),
		outcome.Title,
		outcome.URL,
		string(keywords),
		outcome.Note,
		timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to append run outcome: %w", err)
	}
	return nil
}

// RecentRuns returns the most recent run outcomes, newest first.
func (s *Store) RecentRuns(limit int) ([]core.PublishOutcome, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		"SELECT id, status, title, url, keywords, note, created_at FROM run_log ORDER BY created_at DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query run log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var outcomes []core.PublishOutcome
	for rows.Next() {
		var o core.PublishOutcome
		var status, keywordsJSON string
		if err := rows.Scan(&o.RunID, &status, &o.Title, &o.URL, &keywordsJSON, &o.Note, &o.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan run outcome: %w", err)
		}
		o.Status = core.RunStatus(status)
		_ = json.Unmarshal([]byte(keywordsJSON), &o.Keywords)
		outcomes = append(outcomes, o)
	}

	return outcomes, rows.Err()
}
