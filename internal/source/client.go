// Package source drains cursor-paginated upstream catalog feeds.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultPageTimeout bounds a single page request.
const DefaultPageTimeout = 15 * time.Second

// FetchError reports a failed or malformed page during a drain. The drain
// aborts at the first failing page; no partial results are returned.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Client fetches paginated collections from the upstream catalog API.
type Client struct {
	HTTP *http.Client
}

// New creates a Client with the given per-page timeout. A non-positive
// timeout falls back to DefaultPageTimeout.
func New(pageTimeout time.Duration) *Client {
	if pageTimeout <= 0 {
		pageTimeout = DefaultPageTimeout
	}
	return &Client{HTTP: &http.Client{Timeout: pageTimeout}}
}

// envelope is the upstream page shape. Results is a pointer so a response
// missing the field entirely is distinguishable from an empty page.
type envelope struct {
	Results *[]map[string]any `json:"results"`
	Next    *string           `json:"next"`
}

// FetchAll drains the feed starting at startURL: request the current URL,
// append its results, follow next until it is null. The sequence is
// materialized fully before returning so callers can refuse to mutate state
// on a partial drain. Any page error, malformed envelope, or context
// cancellation aborts the drain with a *FetchError.
func (c *Client) FetchAll(ctx context.Context, startURL string) ([]map[string]any, error) {
	var records []map[string]any
	seen := make(map[string]bool)

	url := startURL
	for url != "" {
		if err := ctx.Err(); err != nil {
			return nil, &FetchError{URL: url, Err: err}
		}
		if seen[url] {
			return nil, &FetchError{URL: url, Err: fmt.Errorf("pagination cycle")}
		}
		seen[url] = true

		page, err := c.fetchPage(ctx, url)
		if err != nil {
			return nil, &FetchError{URL: url, Err: err}
		}
		records = append(records, *page.Results...)

		if page.Next == nil {
			break
		}
		url = *page.Next
	}

	return records, nil
}

func (c *Client) fetchPage(ctx context.Context, url string) (*envelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var page envelope
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode page: %w", err)
	}
	if page.Results == nil {
		return nil, fmt.Errorf("malformed envelope: missing results")
	}
	return &page, nil
}
