package reader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// Fallback is a generic content extraction collaborator for formats without
// a dedicated extractor. Implementations are typically external services
// that may take time to become reachable after startup.
type Fallback interface {
	// Name identifies the service in Document.Extractor and logs.
	Name() string

	// Extract produces plain text for path. A failure affects only the
	// file being extracted.
	Extract(ctx context.Context, path string) (string, error)

	// Available reports whether the service is currently reachable.
	// Routing consults this so unknown formats degrade to unsupported
	// instead of queueing doomed requests.
	Available() bool
}

// TikaClient extracts text through an Apache Tika server. The file body is
// PUT to /tika and the response is the extracted plain text.
type TikaClient struct {
	baseURL string
	client  *http.Client
}

// TikaOption configures a TikaClient.
type TikaOption func(*TikaClient)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) TikaOption {
	return func(t *TikaClient) { t.client = c }
}

// NewTikaClient creates a client for the Tika server at baseURL,
// e.g. "http://localhost:9998".
func NewTikaClient(baseURL string, opts ...TikaOption) *TikaClient {
	t := &TikaClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *TikaClient) Name() string { return "tika" }

// Available probes the server version endpoint with a short timeout.
// Tika runs on the JVM and can take a while to accept connections.
func (t *TikaClient) Available() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", t.baseURL+"/version", nil)
	if err != nil {
		return false
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Extract streams the file to the server and returns the plain text body.
func (t *TikaClient) Extract(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	req, err := http.NewRequestWithContext(ctx, "PUT", t.baseURL+"/tika", f)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/plain")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("tika request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("tika returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read tika response: %w", err)
	}
	return string(data), nil
}
