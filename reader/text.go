package reader

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strings"
)

// extractText reads a plain text file as-is.
func extractText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// extractCSV re-joins delimited rows as comma-separated lines. Content is
// treated as opaque text; no header or type interpretation.
func extractCSV(path string, maxBytes int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var sb strings.Builder
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// First row must parse; later malformed rows end the harvest.
			if sb.Len() == 0 {
				return "", err
			}
			break
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(strings.Join(row, ","))
		if sb.Len() > maxBytes {
			break
		}
	}
	return sb.String(), nil
}
