// Package dataset turns catalog snapshots into training rows. Every labeled
// file yields one row regardless of extraction outcome: path tokens and the
// extension are always available, text only when extraction succeeded.
package dataset

import (
	"github.com/hazyhaar/dlm/catalog"
)

// FeatureConfig selects which features each row carries.
type FeatureConfig struct {
	// IncludeText adds extracted content to rows that have any.
	// Path tokens and extension are always included.
	IncludeText bool `json:"include_text" yaml:"include_text"`
}

// Row is one training example.
type Row struct {
	Path       string   `json:"path"`
	Label      string   `json:"label"`
	Extension  string   `json:"extension"`
	PathTokens []string `json:"path_tokens"`
	Text       string   `json:"text,omitempty"`
	HasText    bool     `json:"has_text"`
}

// Build converts a catalog snapshot into dataset rows. Unlabeled files are
// excluded; row order follows the snapshot order.
func Build(records []catalog.JoinedRecord, cfg FeatureConfig) []Row {
	rows := make([]Row, 0, len(records))
	for _, r := range records {
		if !r.HasLabel {
			continue
		}
		row := Row{
			Path:       r.Path,
			Label:      r.Label,
			Extension:  r.Extension,
			PathTokens: PathTokens(r.Path),
		}
		if cfg.IncludeText && r.HasContent {
			row.Text = r.Text
			row.HasText = true
		}
		rows = append(rows, row)
	}
	return rows
}
