package reader

// Format identifies a business-document family handled by a dedicated extractor.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatDocx Format = "docx"
	FormatPptx Format = "pptx"
	FormatPDF  Format = "pdf"
	FormatTWB  Format = "twb"
	FormatTWBX Format = "twbx"
	FormatTXT  Format = "txt"
	FormatHTML Format = "html"
)

// Strategy is the routing decision for one file: a dedicated format,
// the generic fallback service, or unsupported.
type Strategy string

const (
	StrategyFallback    Strategy = "fallback"
	StrategyUnsupported Strategy = "unsupported"
)

// Dedicated returns true when the strategy is a format-specific extractor.
func (s Strategy) Dedicated() bool {
	return s != StrategyFallback && s != StrategyUnsupported
}

// Document is the result of extracting content from one file.
// Text is best-effort plain text, used as-is; empty is a valid result.
type Document struct {
	Path      string `json:"path"`
	Text      string `json:"text"`
	Extractor string `json:"extractor"`
}
