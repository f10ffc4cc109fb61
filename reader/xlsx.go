package reader

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Extraction bounds for spreadsheets. Workbooks can be huge; a few sheets of
// leading rows are enough signal for classification.
const (
	xlsxMaxSheets = 3
	xlsxMaxRows   = 200
)

// extractXLSX renders the leading rows of the first sheets as comma-separated
// lines, one line per row.
func extractXLSX(path string, maxBytes int) (string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	shared, err := readSharedStrings(r)
	if err != nil {
		return "", err
	}

	sheets := sheetFiles(r)
	if len(sheets) == 0 {
		return "", fmt.Errorf("no worksheets found in archive")
	}
	if len(sheets) > xlsxMaxSheets {
		sheets = sheets[:xlsxMaxSheets]
	}

	var sb strings.Builder
	for _, f := range sheets {
		rows, err := parseSheet(f, shared, xlsxMaxRows)
		if err != nil {
			return "", fmt.Errorf("%s: %w", f.Name, err)
		}
		for _, row := range rows {
			if sb.Len() > 0 {
				sb.WriteByte('\n')
			}
			sb.WriteString(strings.Join(row, ","))
			if sb.Len() > maxBytes {
				return sb.String(), nil
			}
		}
	}
	return sb.String(), nil
}

// ReadWorkbook returns every row of the first worksheet as string cells.
// Used for tabular inputs such as path/label listings.
func ReadWorkbook(path string) ([][]string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	shared, err := readSharedStrings(r)
	if err != nil {
		return nil, err
	}
	sheets := sheetFiles(r)
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no worksheets found in archive")
	}
	rows, err := parseSheet(sheets[0], shared, 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", sheets[0].Name, err)
	}
	return rows, nil
}

// readSharedStrings parses xl/sharedStrings.xml into an indexable slice.
// The part is optional; workbooks with only inline or numeric cells omit it.
func readSharedStrings(r *zip.ReadCloser) ([]string, error) {
	var f *zip.File
	for _, zf := range r.File {
		if zf.Name == "xl/sharedStrings.xml" {
			f = zf
			break
		}
	}
	if f == nil {
		return nil, nil
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open sharedStrings.xml: %w", err)
	}
	defer rc.Close()

	var shared []string
	var current strings.Builder
	var inItem, inText bool

	err = walkXML(rc, func(tok xml.Token) error {
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "si":
				inItem = true
				current.Reset()
			case "t":
				inText = true
			}
		case xml.CharData:
			if inItem && inText {
				current.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "si":
				inItem = false
				shared = append(shared, current.String())
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("sharedStrings.xml: %w", err)
	}
	return shared, nil
}

// sheetFiles returns xl/worksheets/sheetN.xml members in sheet order.
func sheetFiles(r *zip.ReadCloser) []*zip.File {
	type sheet struct {
		num  int
		file *zip.File
	}
	var sheets []sheet
	for _, f := range r.File {
		rest, ok := strings.CutPrefix(f.Name, "xl/worksheets/sheet")
		if !ok {
			continue
		}
		rest, ok = strings.CutSuffix(rest, ".xml")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(rest)
		if err != nil {
			continue
		}
		sheets = append(sheets, sheet{num: n, file: f})
	}
	sort.Slice(sheets, func(i, j int) bool { return sheets[i].num < sheets[j].num })

	files := make([]*zip.File, len(sheets))
	for i, s := range sheets {
		files[i] = s.file
	}
	return files
}

// parseSheet walks one worksheet part and materializes rows of cell strings.
// maxRows <= 0 means unbounded. Shared-string cells (t="s") resolve through
// the shared table; inline strings and raw values pass through as-is.
func parseSheet(f *zip.File, shared []string, maxRows int) ([][]string, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var rows [][]string
	var row []string
	var cellType string
	var cellCol int
	var inValue, inInline bool
	var value strings.Builder

	err = walkXML(rc, func(tok xml.Token) error {
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "row":
				row = nil
			case "c":
				cellType = ""
				cellCol = len(row)
				for _, attr := range t.Attr {
					switch attr.Name.Local {
					case "t":
						cellType = attr.Value
					case "r":
						cellCol = columnIndex(attr.Value)
					}
				}
				value.Reset()
			case "v":
				inValue = true
			case "is":
				inInline = true
			case "t":
				if inInline {
					inValue = true
				}
			}
		case xml.CharData:
			if inValue {
				value.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "v", "t":
				inValue = false
			case "is":
				inInline = false
			case "c":
				cell := value.String()
				if cellType == "s" {
					if n, err := strconv.Atoi(cell); err == nil && n >= 0 && n < len(shared) {
						cell = shared[n]
					}
				}
				for len(row) < cellCol {
					row = append(row, "")
				}
				row = append(row, cell)
			case "row":
				rows = append(rows, row)
				if maxRows > 0 && len(rows) >= maxRows {
					return errSheetDone
				}
			}
		}
		return nil
	})
	if err != nil && err != errSheetDone {
		return nil, err
	}
	return rows, nil
}

// errSheetDone stops the token walk once enough rows are collected.
var errSheetDone = fmt.Errorf("sheet row limit reached")

// columnIndex converts a cell reference like "C12" to a zero-based column.
func columnIndex(ref string) int {
	col := 0
	for i := 0; i < len(ref); i++ {
		b := ref[i]
		if b < 'A' || b > 'Z' {
			break
		}
		col = col*26 + int(b-'A') + 1
	}
	if col == 0 {
		return 0
	}
	return col - 1
}
