package reader

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// extractPptx parses a .pptx file by reading every ppt/slides/slideN.xml part
// from the ZIP archive, in slide order. Each <a:t> text run contributes one
// fragment; runs are joined with newlines.
func extractPptx(path string) (string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	type slide struct {
		num  int
		file *zip.File
	}
	var slides []slide
	for _, f := range r.File {
		n, ok := slideNumber(f.Name)
		if !ok {
			continue
		}
		slides = append(slides, slide{num: n, file: f})
	}
	if len(slides) == 0 {
		return "", fmt.Errorf("no slides found in archive")
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].num < slides[j].num })

	var sb strings.Builder
	for _, s := range slides {
		if err := harvestSlide(s.file, &sb); err != nil {
			return "", fmt.Errorf("%s: %w", s.file.Name, err)
		}
	}
	return sb.String(), nil
}

// slideNumber matches ppt/slides/slideN.xml and returns N.
func slideNumber(name string) (int, bool) {
	rest, ok := strings.CutPrefix(name, "ppt/slides/slide")
	if !ok {
		return 0, false
	}
	rest, ok = strings.CutSuffix(rest, ".xml")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return n, true
}

func harvestSlide(f *zip.File, sb *strings.Builder) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	var inRun bool
	return walkXML(rc, func(tok xml.Token) error {
		switch t := tok.(type) {
		case xml.StartElement:
			// <a:t> wraps one text run.
			if t.Name.Local == "t" {
				inRun = true
			}
		case xml.CharData:
			if inRun {
				text := strings.TrimSpace(string(t))
				if text == "" {
					return nil
				}
				if sb.Len() > 0 {
					sb.WriteByte('\n')
				}
				sb.WriteString(text)
			}
		case xml.EndElement:
			if t.Name.Local == "t" {
				inRun = false
			}
		}
		return nil
	})
}
