package reader

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
)

// extractTWB harvests descriptive text from a Tableau workbook, which is a
// plain XML document. Sheet names, captions, field labels and formulas carry
// most of the classification signal; layout geometry is skipped.
func extractTWB(path string, maxBytes int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return harvestTableauXML(f, maxBytes)
}

// extractTWBX unpacks a packaged workbook (a zip archive) and harvests the
// embedded .twb. Extracts, data files and thumbnails are ignored.
func extractTWBX(path string, maxBytes int) (string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if !strings.HasSuffix(strings.ToLower(f.Name), ".twb") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open %s: %w", f.Name, err)
		}
		text, err := harvestTableauXML(rc, maxBytes)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("%s: %w", f.Name, err)
		}
		return text, nil
	}
	return "", fmt.Errorf("no .twb workbook found in archive")
}

// tableauAttrs are the attribute names whose values are worth keeping.
var tableauAttrs = map[string]bool{
	"name":    true,
	"caption": true,
	"label":   true,
	"value":   true,
	"formula": true,
}

func harvestTableauXML(r io.Reader, maxBytes int) (string, error) {
	var sb strings.Builder
	write := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(s)
	}

	err := walkXML(r, func(tok xml.Token) error {
		if maxBytes > 0 && sb.Len() > maxBytes {
			return errHarvestDone
		}
		switch t := tok.(type) {
		case xml.StartElement:
			for _, attr := range t.Attr {
				if tableauAttrs[attr.Name.Local] {
					write(attr.Value)
				}
			}
		case xml.CharData:
			write(string(t))
		}
		return nil
	})
	if err != nil && err != errHarvestDone {
		return "", err
	}
	return sb.String(), nil
}

var errHarvestDone = fmt.Errorf("harvest size limit reached")
