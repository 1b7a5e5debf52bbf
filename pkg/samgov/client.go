// Package samgov fetches contract attachments from the upstream document
// host. The same client backs the user-facing proxy download and summarizer
// ingestion, so headers are passed through untouched.
package samgov

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"
)

// Document is a fetched attachment. Body must be closed by the caller.
type Document struct {
	Body        io.ReadCloser
	ContentType string
	Disposition string
	FileName    string
}

type Client struct {
	apiKey string
	client *http.Client
}

func NewClient(apiKey string, timeout time.Duration) *Client {
	return &Client{
		apiKey: apiKey,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Fetch downloads the document at url. One attempt, bounded by the client
// timeout; callers decide what a failure means for their pipeline.
func (c *Client) Fetch(ctx context.Context, url string) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}
	req.Header.Set("Accept", "*/*")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("document fetch failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("document host error: status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	disposition := resp.Header.Get("Content-Disposition")

	return &Document{
		Body:        resp.Body,
		ContentType: contentType,
		Disposition: disposition,
		FileName:    FileNameFromDisposition(disposition),
	}, nil
}

// FileNameFromDisposition extracts the filename hint from a
// Content-Disposition header. Empty when the header carries none or
// cannot be parsed.
func FileNameFromDisposition(disposition string) string {
	if disposition == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}
	return params["filename"]
}
