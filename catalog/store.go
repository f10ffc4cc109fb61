// Package catalog persists ingestion results in SQLite, keyed by canonical
// file path. Three tables hold one fact each: files (stat metadata and
// extraction status), labels (path to business label), content (extracted
// text). Re-ingesting a path overwrites its previous rows.
package catalog

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Extraction status values stored in files.extraction_status.
const (
	StatusOK             = "ok"
	StatusUnsupported    = "unsupported_format"
	StatusExtractorError = "extractor_error"
	StatusMissingFile    = "missing_file"
)

// Store wraps the SQLite catalog database.
type Store struct {
	db *sql.DB
}

// OpenStore opens (or creates) the catalog database at path and runs
// migrations. Parent directories are created as needed.
func OpenStore(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if path == ":memory:" {
		// Each connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// DB returns the underlying *sql.DB for sharing with reporting layers.
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the underlying database connection.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS files (
    path               TEXT PRIMARY KEY,
    size_bytes         INTEGER NOT NULL DEFAULT 0,
    modified_at        TEXT NOT NULL DEFAULT '',
    extension          TEXT NOT NULL DEFAULT '',
    extraction_status  TEXT NOT NULL,
    ingested_at        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS labels (
    path    TEXT PRIMARY KEY REFERENCES files(path) ON DELETE CASCADE,
    label   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS content (
    path            TEXT PRIMARY KEY REFERENCES files(path) ON DELETE CASCADE,
    text            TEXT NOT NULL,
    extractor_used  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_files_status    ON files(extraction_status);
CREATE INDEX IF NOT EXISTS idx_files_extension ON files(extension);
CREATE INDEX IF NOT EXISTS idx_labels_label    ON labels(label);
`
	_, err := s.db.Exec(ddl)
	return err
}

// FileRecord is one row of the files table.
type FileRecord struct {
	Path       string    `json:"path"`
	SizeBytes  int64     `json:"size_bytes"`
	ModifiedAt time.Time `json:"modified_at"`
	Extension  string    `json:"extension"`
	Status     string    `json:"extraction_status"`
	IngestedAt time.Time `json:"ingested_at"`
}

// ContentRecord is one row of the content table.
type ContentRecord struct {
	Text      string `json:"text"`
	Extractor string `json:"extractor_used"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
