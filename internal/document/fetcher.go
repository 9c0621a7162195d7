package document

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Fetcher downloads documents over HTTP.
type Fetcher struct {
	httpClient *http.Client
	maxBytes   int64
}

func NewFetcher(timeout time.Duration, maxBytes int64) *Fetcher {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Fetcher{
		httpClient: &http.Client{Timeout: timeout},
		maxBytes:   maxBytes,
	}
}

// Download fetches the document at url and returns its raw bytes.
func (f *Fetcher) Download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download document %s: status %d", url, resp.StatusCode)
	}

	limit := f.maxBytes
	if limit <= 0 {
		limit = 50 << 20
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read document body: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("document exceeds max size (%d bytes)", limit)
	}
	return data, nil
}

// Close releases idle connections.
func (f *Fetcher) Close() {
	f.httpClient.CloseIdleConnections()
}
