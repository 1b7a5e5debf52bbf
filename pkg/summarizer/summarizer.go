// Package summarizer sends document bytes to an external summarization
// backend and returns the reply text.
package summarizer

import "context"

// Summarizer defines the contract for any summarization backend.
type Summarizer interface {
	// Summarize sends a base64-encoded document and returns the summary text.
	Summarize(ctx context.Context, contentBase64 string, contentType string) (string, error)
}
