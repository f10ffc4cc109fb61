package reader

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRoute(t *testing.T) {
	tests := []struct {
		ext      string
		fallback bool
		want     Strategy
	}{
		{"csv", false, Strategy(FormatCSV)},
		{"xlsx", false, Strategy(FormatXLSX)},
		{"xlsm", false, Strategy(FormatXLSX)},
		{"docx", false, Strategy(FormatDocx)},
		{"pptx", false, Strategy(FormatPptx)},
		{"pdf", false, Strategy(FormatPDF)},
		{"twb", false, Strategy(FormatTWB)},
		{"twbx", false, Strategy(FormatTWBX)},
		{"txt", false, Strategy(FormatTXT)},
		{"log", false, Strategy(FormatTXT)},
		{"md", false, Strategy(FormatTXT)},
		{"html", false, Strategy(FormatHTML)},
		{"htm", false, Strategy(FormatHTML)},
		{"xyz", false, StrategyUnsupported},
		{"xyz", true, StrategyFallback},
		{"", false, StrategyUnsupported},
		// Dedicated formats never route to the fallback.
		{"pdf", true, Strategy(FormatPDF)},
		{"csv", true, Strategy(FormatCSV)},
	}
	for _, tt := range tests {
		got := Route(tt.ext, tt.fallback)
		if got != tt.want {
			t.Errorf("Route(%q, %v) = %q, want %q", tt.ext, tt.fallback, got, tt.want)
		}
	}
}

func TestExtension(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/data/Report.PDF", "pdf"},
		{"file.tar.gz", "gz"},
		{"noext", ""},
		{"dir.d/noext", ""},
	}
	for _, tt := range tests {
		if got := Extension(tt.path); got != tt.want {
			t.Errorf("Extension(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestExtractText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.txt")
	os.WriteFile(path, []byte("hello world\nsecond line"), 0644)

	pipe := New(Config{})
	doc, err := pipe.Extract(context.Background(), path, pipe.Route(path))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Extractor != "txt" {
		t.Fatalf("expected txt extractor, got %q", doc.Extractor)
	}
	if !strings.Contains(doc.Text, "second line") {
		t.Fatalf("expected full text, got %q", doc.Text)
	}
}

func TestExtractCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	os.WriteFile(path, []byte("a,b,c\n\"x, y\",z,w\n"), 0644)

	text, err := extractCSV(path, 100_000)
	if err != nil {
		t.Fatal(err)
	}
	want := "a,b,c\nx, y,z,w"
	if text != want {
		t.Fatalf("extractCSV = %q, want %q", text, want)
	}
}

func TestExtractCSV_Empty(t *testing.T) {
	// WHAT: An empty CSV yields empty text, not an error.
	// WHY: Empty files are a valid extraction result.
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.csv")
	os.WriteFile(path, nil, 0644)

	text, err := extractCSV(path, 100_000)
	if err != nil {
		t.Fatal(err)
	}
	if text != "" {
		t.Fatalf("expected empty text, got %q", text)
	}
}

func TestExtractDocx(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "memo.docx")

	docXML := `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>Quarterly revenue summary</w:t></w:r></w:p>
<w:p><w:r><w:t>Totals by </w:t></w:r><w:r><w:t>region</w:t></w:r></w:p>
<w:p><w:r><w:t></w:t></w:r></w:p>
</w:body>
</w:document>`
	writeZip(t, path, map[string]string{"word/document.xml": docXML})

	text, err := extractDocx(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "Quarterly revenue summary\nTotals by region"
	if text != want {
		t.Fatalf("extractDocx = %q, want %q", text, want)
	}
}

func TestExtractDocx_NotZip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.docx")
	os.WriteFile(path, []byte("not a zip archive"), 0644)

	if _, err := extractDocx(path); err == nil {
		t.Fatal("expected error for corrupt archive")
	}
}

func TestExtractPptx(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deck.pptx")

	slide := func(text string) string {
		return `<?xml version="1.0"?>
<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"
  xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">
<p:cSld><p:spTree><p:sp><p:txBody>
<a:p><a:r><a:t>` + text + `</a:t></a:r></a:p>
</p:txBody></p:sp></p:spTree></p:cSld>
</p:sld>`
	}
	// Extraction must follow slide numbers, not archive member order.
	writeZip(t, path, map[string]string{
		"ppt/slides/slide2.xml": slide("Second slide"),
		"ppt/slides/slide1.xml": slide("First slide"),
	})

	text, err := extractPptx(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "First slide\nSecond slide"
	if text != want {
		t.Fatalf("extractPptx = %q, want %q", text, want)
	}
}

func TestExtractXLSX(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "book.xlsx")

	shared := `<?xml version="1.0"?>
<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" count="2" uniqueCount="2">
<si><t>invoice</t></si>
<si><t>amount</t></si>
</sst>`
	sheet := `<?xml version="1.0"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
<sheetData>
<row r="1"><c r="A1" t="s"><v>0</v></c><c r="B1" t="s"><v>1</v></c></row>
<row r="2"><c r="A2"><v>42</v></c><c r="B2"><v>19.5</v></c></row>
</sheetData>
</worksheet>`
	writeZip(t, path, map[string]string{
		"xl/sharedStrings.xml":     shared,
		"xl/worksheets/sheet1.xml": sheet,
	})

	text, err := extractXLSX(path, 100_000)
	if err != nil {
		t.Fatal(err)
	}
	want := "invoice,amount\n42,19.5"
	if text != want {
		t.Fatalf("extractXLSX = %q, want %q", text, want)
	}
}

func TestReadWorkbook(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pairs.xlsx")

	shared := `<?xml version="1.0"?>
<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
<si><t>/data/a.pdf</t></si>
<si><t>finance</t></si>
</sst>`
	sheet := `<?xml version="1.0"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
<sheetData>
<row r="1"><c r="A1" t="s"><v>0</v></c><c r="B1" t="s"><v>1</v></c></row>
</sheetData>
</worksheet>`
	writeZip(t, path, map[string]string{
		"xl/sharedStrings.xml":     shared,
		"xl/worksheets/sheet1.xml": sheet,
	})

	rows, err := ReadWorkbook(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || len(rows[0]) != 2 {
		t.Fatalf("unexpected rows: %v", rows)
	}
	if rows[0][0] != "/data/a.pdf" || rows[0][1] != "finance" {
		t.Fatalf("unexpected cells: %v", rows[0])
	}
}

func TestExtractTWB(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dash.twb")

	twb := `<?xml version="1.0"?>
<workbook>
<worksheet name="Sales by Region">
<datasource caption="Orders Extract"/>
</worksheet>
</workbook>`
	os.WriteFile(path, []byte(twb), 0644)

	text, err := extractTWB(path, 100_000)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "Sales by Region") || !strings.Contains(text, "Orders Extract") {
		t.Fatalf("expected harvested attributes, got %q", text)
	}
}

func TestExtractTWBX(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dash.twbx")

	twb := `<?xml version="1.0"?>
<workbook><worksheet name="Churn Overview"/></workbook>`
	writeZip(t, path, map[string]string{
		"dash.twb":        twb,
		"Data/extract.bin": "binary payload ignored",
	})

	text, err := extractTWBX(path, 100_000)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "Churn Overview") {
		t.Fatalf("expected workbook text, got %q", text)
	}
}

func TestExtractHTML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.html")
	page := `<!DOCTYPE html><html><head>
<title>Contract Terms</title>
<script>var x = "never extracted";</script>
<style>p { color: red }</style>
</head><body>
<p>Visible paragraph</p>
<div style="display:none">hidden text</div>
</body></html>`
	os.WriteFile(path, []byte(page), 0644)

	text, err := extractHTML(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "Visible paragraph") {
		t.Fatalf("expected visible text, got %q", text)
	}
	if strings.Contains(text, "never extracted") || strings.Contains(text, "hidden text") {
		t.Fatalf("hidden content leaked: %q", text)
	}
}

func TestExtract_Unsupported(t *testing.T) {
	pipe := New(Config{})
	_, err := pipe.Extract(context.Background(), "file.xyz", pipe.Route("file.xyz"))
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestCapText(t *testing.T) {
	// WHAT: Truncation never splits a multi-byte rune.
	// WHY: Stored text must stay valid UTF-8.
	text := "abécd" // é is 2 bytes: a b é é c d
	got := capText(text, 3)
	if got != "ab" {
		t.Fatalf("capText = %q, want %q", got, "ab")
	}
	if capText("short", 100) != "short" {
		t.Fatal("text under the cap must pass through unchanged")
	}
}

func TestStat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Report.XLSX")
	os.WriteFile(path, []byte("content"), 0644)

	fi, err := Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if fi.SizeBytes != 7 {
		t.Fatalf("expected size 7, got %d", fi.SizeBytes)
	}
	if fi.Extension != "xlsx" {
		t.Fatalf("expected xlsx extension, got %q", fi.Extension)
	}
	if fi.ModifiedAt.IsZero() {
		t.Fatal("expected non-zero modification time")
	}
}

func TestStat_Missing(t *testing.T) {
	_, err := Stat(filepath.Join(t.TempDir(), "gone.pdf"))
	if !errors.Is(err, ErrMissingFile) {
		t.Fatalf("expected ErrMissingFile, got %v", err)
	}
}

func TestStat_Directory(t *testing.T) {
	_, err := Stat(t.TempDir())
	if !errors.Is(err, ErrMissingFile) {
		t.Fatalf("expected ErrMissingFile for directory, got %v", err)
	}
}

// writeZip builds a zip archive at path with the given members.
func writeZip(t *testing.T, path string, members map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w := zip.NewWriter(f)
	for name, content := range members {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write([]byte(content))
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()
}
