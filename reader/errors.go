package reader

import "errors"

// ErrUnsupported is returned when no extractor can handle a file's format.
var ErrUnsupported = errors.New("reader: unsupported format")

// ErrFallbackUnavailable is returned when a file routes to the generic
// fallback service but none is configured or reachable.
var ErrFallbackUnavailable = errors.New("reader: fallback service unavailable")

// ErrMissingFile is returned when a path does not exist or cannot be stat'ed.
var ErrMissingFile = errors.New("reader: missing file")
