package catalog

import (
	"fmt"
	"time"
)

// UpsertDocument writes the full result of ingesting one file: its metadata
// row, its label, and its content row when extraction produced text. The
// three writes run in a single transaction so a reader never observes a
// partially updated path. Passing nil content removes any stale text from a
// previous ingestion of the same path.
func (s *Store) UpsertDocument(f *FileRecord, label string, content *ContentRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	ingestedAt := f.IngestedAt
	if ingestedAt.IsZero() {
		ingestedAt = time.Now()
	}

	_, err = tx.Exec(
		`INSERT INTO files (path, size_bytes, modified_at, extension, extraction_status, ingested_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET
		   size_bytes = excluded.size_bytes,
		   modified_at = excluded.modified_at,
		   extension = excluded.extension,
		   extraction_status = excluded.extraction_status,
		   ingested_at = excluded.ingested_at`,
		f.Path, f.SizeBytes, formatTime(f.ModifiedAt), f.Extension, f.Status, formatTime(ingestedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert file %s: %w", f.Path, err)
	}

	_, err = tx.Exec(
		`INSERT INTO labels (path, label) VALUES (?, ?)
		 ON CONFLICT(path) DO UPDATE SET label = excluded.label`,
		f.Path, label,
	)
	if err != nil {
		return fmt.Errorf("upsert label %s: %w", f.Path, err)
	}

	if content != nil {
		_, err = tx.Exec(
			`INSERT INTO content (path, text, extractor_used) VALUES (?, ?, ?)
			 ON CONFLICT(path) DO UPDATE SET
			   text = excluded.text,
			   extractor_used = excluded.extractor_used`,
			f.Path, content.Text, content.Extractor,
		)
	} else {
		_, err = tx.Exec(`DELETE FROM content WHERE path = ?`, f.Path)
	}
	if err != nil {
		return fmt.Errorf("upsert content %s: %w", f.Path, err)
	}

	return tx.Commit()
}
