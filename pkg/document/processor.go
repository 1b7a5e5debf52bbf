// Package document turns contract attachments into cached summaries and
// tracks per-record processing state.
package document

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
	"time"

	"contract-assistant-be/pkg/samgov"
	"contract-assistant-be/pkg/summarizer"
)

// JobStatus is the outcome of a single document job.
type JobStatus string

const (
	JobSuccess     JobStatus = "success"
	JobUnsupported JobStatus = "unsupported"
	JobError       JobStatus = "error"
)

// JobResult is immutable once produced.
type JobResult struct {
	URL     string    `json:"url"`
	Summary string    `json:"summary,omitempty"`
	Status  JobStatus `json:"status"`
	Message string    `json:"message,omitempty"`
}

// Fetcher retrieves a document through the proxy collaborator.
// *samgov.Client satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*samgov.Document, error)
}

// Processor fetches, classifies and summarizes one document at a time.
// Only PDF documents are summarized; anything else settles as unsupported
// without touching the summarization backend.
type Processor struct {
	fetcher          Fetcher
	summarizer       summarizer.Summarizer
	fetchTimeout     time.Duration
	summarizeTimeout time.Duration
}

func NewProcessor(fetcher Fetcher, summ summarizer.Summarizer, fetchTimeout, summarizeTimeout time.Duration) *Processor {
	return &Processor{
		fetcher:          fetcher,
		summarizer:       summ,
		fetchTimeout:     fetchTimeout,
		summarizeTimeout: summarizeTimeout,
	}
}

// IsPDF classifies by response content type with the filename hint as a
// fallback, matching how the document host labels attachments.
func IsPDF(contentType, fileName string) bool {
	mediaType := contentType
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = mediaType[:i]
	}
	if strings.TrimSpace(mediaType) == "application/pdf" {
		return true
	}
	return strings.HasSuffix(strings.ToLower(fileName), ".pdf")
}

// Process runs the full fetch-classify-summarize pipeline for one URL.
// It never panics or returns an error: every failure mode is captured in
// the result so callers can aggregate without exception paths.
func (p *Processor) Process(ctx context.Context, url string) JobResult {
	fetchCtx, cancel := context.WithTimeout(ctx, p.fetchTimeout)
	defer cancel()

	doc, err := p.fetcher.Fetch(fetchCtx, url)
	if err != nil {
		return JobResult{
			URL:     url,
			Status:  JobError,
			Message: fmt.Sprintf("failed to fetch document: %v", err),
		}
	}
	defer doc.Body.Close()

	if !IsPDF(doc.ContentType, doc.FileName) {
		return JobResult{
			URL:    url,
			Status: JobUnsupported,
			Message: fmt.Sprintf("document type %s (%s) not yet supported for AI analysis",
				doc.ContentType, doc.FileName),
		}
	}

	raw, err := io.ReadAll(doc.Body)
	if err != nil {
		return JobResult{
			URL:     url,
			Status:  JobError,
			Message: fmt.Sprintf("failed to read document body: %v", err),
		}
	}

	sumCtx, cancel := context.WithTimeout(ctx, p.summarizeTimeout)
	defer cancel()

	summary, err := p.summarizer.Summarize(sumCtx, base64.StdEncoding.EncodeToString(raw), "application/pdf")
	if err != nil {
		return JobResult{
			URL:     url,
			Status:  JobError,
			Message: fmt.Sprintf("failed to summarize document: %v", err),
		}
	}

	return JobResult{
		URL:     url,
		Summary: summary,
		Status:  JobSuccess,
	}
}
