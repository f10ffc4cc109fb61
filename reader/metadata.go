package reader

import (
	"fmt"
	"os"
	"time"
)

// FileInfo is stat-derived metadata for one path. Content is never opened.
type FileInfo struct {
	Path       string    `json:"path"`
	SizeBytes  int64     `json:"size_bytes"`
	ModifiedAt time.Time `json:"modified_at"`
	Extension  string    `json:"extension"`
}

// Stat returns size, modification time and extension for path.
// A stat failure wraps ErrMissingFile; directories are rejected the same way.
func Stat(path string) (*FileInfo, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, ErrMissingFile)
	}
	if st.IsDir() {
		return nil, fmt.Errorf("stat %s: is a directory: %w", path, ErrMissingFile)
	}
	return &FileInfo{
		Path:       path,
		SizeBytes:  st.Size(),
		ModifiedAt: st.ModTime().UTC(),
		Extension:  Extension(path),
	}, nil
}
