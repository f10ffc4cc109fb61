// Package reader extracts metadata and plain text from business documents.
//
// Supported dedicated formats:
//   - .csv          — delimited text (rows re-joined with commas)
//   - .xlsx, .xlsm  — spreadsheet (archive/zip → sharedStrings + sheet cells)
//   - .docx         — Microsoft Word (archive/zip → word/document.xml)
//   - .pptx         — PowerPoint (archive/zip → ppt/slides/*.xml text runs)
//   - .pdf          — PDF text extraction via pdfcpu content streams
//   - .twb          — Tableau workbook (XML attribute/text harvest)
//   - .twbx         — packaged Tableau workbook (zip containing a .twb)
//   - .txt, .log, .md — plain text passthrough
//   - .html, .htm   — HTML visible-text extraction
//
// Anything else routes to an injected generic fallback service when one is
// configured, and to unsupported otherwise. Dedicated extractors always win
// over the fallback for their own extensions.
//
// Usage:
//
//	pipe := reader.New(reader.Config{})
//	strat := pipe.Route("/data/q3.xlsx")
//	doc, err := pipe.Extract(ctx, "/data/q3.xlsx", strat)
package reader

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
)

// Pipeline is the content extraction engine.
type Pipeline struct {
	cfg      Config
	fallback Fallback
	logger   *slog.Logger
}

// Config configures the reader pipeline.
type Config struct {
	// MaxTextBytes caps stored text per file (default: 100 KB).
	MaxTextBytes int `json:"max_text_bytes" yaml:"max_text_bytes"`

	// Fallback is the generic extraction collaborator. Nil means no
	// fallback is available and unknown formats are unsupported.
	Fallback Fallback `json:"-" yaml:"-"`

	// Logger for debug/error messages.
	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if c.MaxTextBytes <= 0 {
		c.MaxTextBytes = 100_000
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// New creates a Pipeline with the given configuration.
func New(cfg Config) *Pipeline {
	cfg.defaults()
	return &Pipeline{
		cfg:      cfg,
		fallback: cfg.Fallback,
		logger:   cfg.Logger,
	}
}

// FallbackAvailable reports whether a generic fallback service is configured.
func (p *Pipeline) FallbackAvailable() bool {
	return p.fallback != nil && p.fallback.Available()
}

// Route maps a file path to an extraction strategy from its extension.
// Pure dispatch: it never touches the filesystem.
func (p *Pipeline) Route(path string) Strategy {
	return Route(Extension(path), p.FallbackAvailable())
}

// Route maps a lower-cased extension (without dot) to a strategy.
// Dedicated extractors take precedence over the fallback; unknown extensions
// go to the fallback only when one is available.
func Route(ext string, fallbackAvailable bool) Strategy {
	switch ext {
	case "csv":
		return Strategy(FormatCSV)
	case "xlsx", "xlsm":
		return Strategy(FormatXLSX)
	case "docx":
		return Strategy(FormatDocx)
	case "pptx":
		return Strategy(FormatPptx)
	case "pdf":
		return Strategy(FormatPDF)
	case "twb":
		return Strategy(FormatTWB)
	case "twbx":
		return Strategy(FormatTWBX)
	case "txt", "log", "md":
		return Strategy(FormatTXT)
	case "html", "htm":
		return Strategy(FormatHTML)
	}
	if fallbackAvailable {
		return StrategyFallback
	}
	return StrategyUnsupported
}

// Extension returns the lower-cased extension of path without the dot.
func Extension(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

// Extract produces plain text for path using the given strategy.
// A failure is scoped to this file only; callers record it and continue.
func (p *Pipeline) Extract(ctx context.Context, path string, strat Strategy) (*Document, error) {
	if strat == StrategyUnsupported {
		return nil, ErrUnsupported
	}

	p.logger.Debug("extracting document", "path", path, "strategy", strat)

	if strat == StrategyFallback {
		if p.fallback == nil {
			return nil, ErrFallbackUnavailable
		}
		text, err := p.fallback.Extract(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("fallback %s: %w", p.fallback.Name(), err)
		}
		return p.document(path, text, p.fallback.Name()), nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var text string
	var err error
	switch Format(strat) {
	case FormatCSV:
		text, err = extractCSV(path, p.cfg.MaxTextBytes)
	case FormatXLSX:
		text, err = extractXLSX(path, p.cfg.MaxTextBytes)
	case FormatDocx:
		text, err = extractDocx(path)
	case FormatPptx:
		text, err = extractPptx(path)
	case FormatPDF:
		text, err = extractPDF(path)
	case FormatTWB:
		text, err = extractTWB(path, p.cfg.MaxTextBytes)
	case FormatTWBX:
		text, err = extractTWBX(path, p.cfg.MaxTextBytes)
	case FormatTXT:
		text, err = extractText(path)
	case FormatHTML:
		text, err = extractHTML(path)
	default:
		return nil, fmt.Errorf("no extractor for strategy %q: %w", strat, ErrUnsupported)
	}
	if err != nil {
		return nil, fmt.Errorf("extract %s (%s): %w", path, strat, err)
	}

	return p.document(path, text, string(strat)), nil
}

func (p *Pipeline) document(path, text, extractor string) *Document {
	return &Document{
		Path:      path,
		Text:      capText(text, p.cfg.MaxTextBytes),
		Extractor: extractor,
	}
}

// SupportedFormats returns the dedicated format extensions.
func SupportedFormats() []string {
	return []string{"csv", "xlsx", "docx", "pptx", "pdf", "twb", "twbx", "txt", "html"}
}

// capText truncates text to max bytes on a rune boundary.
func capText(text string, max int) string {
	if max <= 0 || len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && !isRuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }
