package reader

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// extractDocx parses a .docx file by reading word/document.xml from the ZIP
// archive. Paragraphs are flattened to newline-separated plain text; styles
// and headings carry no weight for classification.
func extractDocx(path string) (string, error) {
	rc, err := zipMember(path, "word/document.xml")
	if err != nil {
		return "", err
	}
	defer rc.Close()

	var sb strings.Builder
	var current strings.Builder
	var inParagraph bool

	err = walkXML(rc, func(tok xml.Token) error {
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "p" {
				inParagraph = true
				current.Reset()
			}
		case xml.CharData:
			if inParagraph {
				current.Write(t)
			}
		case xml.EndElement:
			if t.Name.Local == "p" && inParagraph {
				inParagraph = false
				text := strings.TrimSpace(current.String())
				if text == "" {
					return nil
				}
				if sb.Len() > 0 {
					sb.WriteByte('\n')
				}
				sb.WriteString(text)
			}
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("word/document.xml: %w", err)
	}
	return sb.String(), nil
}
