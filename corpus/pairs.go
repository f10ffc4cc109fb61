package corpus

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/hazyhaar/dlm/reader"
)

// LoadPairs reads path/label pairs from a listing file. Supported formats
// are .csv and .xlsx, two columns: file location, business label. A header
// row is skipped when the first cell looks like one.
func LoadPairs(path string) ([]Pair, error) {
	var rows [][]string
	var err error
	switch reader.Extension(path) {
	case "csv":
		rows, err = readCSVRows(path)
	case "xlsx", "xlsm":
		rows, err = reader.ReadWorkbook(path)
	default:
		return nil, fmt.Errorf("unsupported pair listing format: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read pairs %s: %w", path, err)
	}

	var pairs []Pair
	for i, row := range rows {
		if len(row) < 2 {
			continue
		}
		loc := strings.TrimSpace(row[0])
		label := strings.TrimSpace(row[1])
		if loc == "" || label == "" {
			continue
		}
		if i == 0 && isHeaderRow(loc) {
			continue
		}
		pairs = append(pairs, Pair{Path: loc, Label: label})
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("no pairs found in %s", path)
	}
	return pairs, nil
}

func readCSVRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r.ReadAll()
}

func isHeaderRow(firstCell string) bool {
	switch strings.ToLower(firstCell) {
	case "file_location", "path", "file", "location":
		return true
	}
	return false
}
