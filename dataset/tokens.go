package dataset

import (
	"path/filepath"
	"regexp"
	"strings"
)

var tokenRe = regexp.MustCompile(`[a-z0-9]+`)

// PathTokens splits a file path into lower-cased alphanumeric runs. The
// extension is dropped first so it never doubles as a path token; it is a
// separate feature with its own weight.
func PathTokens(path string) []string {
	if ext := filepath.Ext(path); ext != "" {
		path = path[:len(path)-len(ext)]
	}
	return tokenRe.FindAllString(strings.ToLower(path), -1)
}
