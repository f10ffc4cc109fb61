package catalog

import (
	"database/sql"
)

// JoinedRecord is one file with its optional label and content, as produced
// by the three-way join. HasLabel and HasContent distinguish empty values
// from missing rows.
type JoinedRecord struct {
	FileRecord
	Label      string `json:"label,omitempty"`
	HasLabel   bool   `json:"has_label"`
	Text       string `json:"text,omitempty"`
	HasContent bool   `json:"has_content"`
	Extractor  string `json:"extractor_used,omitempty"`
}

// ReadAll returns every cataloged file with its label and content joined,
// in first-ingestion order. The whole snapshot comes from one query so it
// is consistent even while ingestion runs concurrently.
func (s *Store) ReadAll() ([]JoinedRecord, error) {
	rows, err := s.db.Query(`
		SELECT f.path, f.size_bytes, f.modified_at, f.extension, f.extraction_status, f.ingested_at,
		       l.label, c.text, c.extractor_used
		FROM files f
		LEFT JOIN labels l ON l.path = f.path
		LEFT JOIN content c ON c.path = f.path
		ORDER BY f.rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []JoinedRecord
	for rows.Next() {
		var r JoinedRecord
		var modifiedAt, ingestedAt string
		var label, text, extractor sql.NullString
		if err := rows.Scan(&r.Path, &r.SizeBytes, &modifiedAt, &r.Extension, &r.Status, &ingestedAt,
			&label, &text, &extractor); err != nil {
			return nil, err
		}
		r.ModifiedAt = parseTime(modifiedAt)
		r.IngestedAt = parseTime(ingestedAt)
		if label.Valid {
			r.Label = label.String
			r.HasLabel = true
		}
		if text.Valid {
			r.Text = text.String
			r.HasContent = true
			r.Extractor = extractor.String
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Get returns the joined record for one path. Returns nil, nil if the path
// has never been ingested.
func (s *Store) Get(path string) (*JoinedRecord, error) {
	var r JoinedRecord
	var modifiedAt, ingestedAt string
	var label, text, extractor sql.NullString
	err := s.db.QueryRow(`
		SELECT f.path, f.size_bytes, f.modified_at, f.extension, f.extraction_status, f.ingested_at,
		       l.label, c.text, c.extractor_used
		FROM files f
		LEFT JOIN labels l ON l.path = f.path
		LEFT JOIN content c ON c.path = f.path
		WHERE f.path = ?`, path,
	).Scan(&r.Path, &r.SizeBytes, &modifiedAt, &r.Extension, &r.Status, &ingestedAt,
		&label, &text, &extractor)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	r.ModifiedAt = parseTime(modifiedAt)
	r.IngestedAt = parseTime(ingestedAt)
	if label.Valid {
		r.Label = label.String
		r.HasLabel = true
	}
	if text.Valid {
		r.Text = text.String
		r.HasContent = true
		r.Extractor = extractor.String
	}
	return &r, nil
}

// CountByStatus returns how many files sit in each extraction status.
func (s *Store) CountByStatus() (map[string]int, error) {
	rows, err := s.db.Query(`SELECT extraction_status, COUNT(*) FROM files GROUP BY extraction_status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
