package reader

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
)

// maxXMLDepth bounds element nesting in archive XML parts.
// XML bomb / billion laughs defense.
const maxXMLDepth = 256

// zipMember returns a reader for the named member of a zip archive.
// The returned closer closes both the member and the archive.
func zipMember(path, name string) (io.ReadCloser, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	for _, f := range r.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				r.Close()
				return nil, fmt.Errorf("open %s: %w", name, err)
			}
			return &memberCloser{rc: rc, zr: r}, nil
		}
	}
	r.Close()
	return nil, fmt.Errorf("%s not found in archive", name)
}

type memberCloser struct {
	rc io.ReadCloser
	zr *zip.ReadCloser
}

func (m *memberCloser) Read(p []byte) (int, error) { return m.rc.Read(p) }

func (m *memberCloser) Close() error {
	m.rc.Close()
	return m.zr.Close()
}

// depthGuard tracks element nesting during a token walk.
type depthGuard int

func (d *depthGuard) push() error {
	*d++
	if *d > maxXMLDepth {
		return fmt.Errorf("xml nesting depth exceeds %d", maxXMLDepth)
	}
	return nil
}

func (d *depthGuard) pop() {
	if *d > 0 {
		*d--
	}
}

// walkXML streams tokens from r through fn, enforcing the depth bound.
// fn receives every token; walk stops at EOF or on the first error.
func walkXML(r io.Reader, fn func(tok xml.Token) error) error {
	dec := xml.NewDecoder(r)
	var depth depthGuard
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("xml decode: %w", err)
		}
		switch tok.(type) {
		case xml.StartElement:
			if err := depth.push(); err != nil {
				return err
			}
		case xml.EndElement:
			depth.pop()
		}
		if err := fn(tok); err != nil {
			return err
		}
	}
}
