package document

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"contract-assistant-be/pkg/samgov"

	"github.com/stretchr/testify/assert"
)

type stubFetcher struct {
	mu      sync.Mutex
	calls   int
	docs    map[string]*samgov.Document
	failErr error
}

func (f *stubFetcher) Fetch(ctx context.Context, url string) (*samgov.Document, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.failErr != nil {
		return nil, f.failErr
	}
	doc, ok := f.docs[url]
	if !ok {
		return nil, errors.New("not found")
	}
	// Re-arm the body so repeated fetches behave like real requests.
	return &samgov.Document{
		Body:        io.NopCloser(strings.NewReader("%PDF-1.4 body")),
		ContentType: doc.ContentType,
		FileName:    doc.FileName,
	}, nil
}

func (f *stubFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type stubSummarizer struct {
	mu      sync.Mutex
	calls   int
	summary string
	err     error
	lastB64 string
}

func (s *stubSummarizer) Summarize(ctx context.Context, contentBase64, contentType string) (string, error) {
	s.mu.Lock()
	s.calls++
	s.lastB64 = contentBase64
	s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	return s.summary, nil
}

func (s *stubSummarizer) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func pdfDoc() *samgov.Document {
	return &samgov.Document{ContentType: "application/pdf", FileName: "sow.pdf"}
}

func newTestProcessor(f *stubFetcher, s *stubSummarizer) *Processor {
	return NewProcessor(f, s, time.Second, time.Second)
}

func TestProcessSuccess(t *testing.T) {
	fetcher := &stubFetcher{docs: map[string]*samgov.Document{"u1": pdfDoc()}}
	summ := &stubSummarizer{summary: "deliverables: stuff"}

	result := newTestProcessor(fetcher, summ).Process(context.Background(), "u1")

	assert.Equal(t, JobSuccess, result.Status)
	assert.Equal(t, "deliverables: stuff", result.Summary)
	assert.Equal(t, "u1", result.URL)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 body")), summ.lastB64)
}

func TestProcessUnsupportedType(t *testing.T) {
	fetcher := &stubFetcher{docs: map[string]*samgov.Document{
		"u1": {ContentType: "application/msword", FileName: "req.docx"},
	}}
	summ := &stubSummarizer{}

	result := newTestProcessor(fetcher, summ).Process(context.Background(), "u1")

	assert.Equal(t, JobUnsupported, result.Status)
	assert.Contains(t, result.Message, "not yet supported")
	assert.Zero(t, summ.callCount(), "unsupported documents must not reach the backend")
}

func TestProcessPDFByFilenameHint(t *testing.T) {
	fetcher := &stubFetcher{docs: map[string]*samgov.Document{
		"u1": {ContentType: "application/octet-stream", FileName: "Attachment_1.PDF"},
	}}
	summ := &stubSummarizer{summary: "ok"}

	result := newTestProcessor(fetcher, summ).Process(context.Background(), "u1")
	assert.Equal(t, JobSuccess, result.Status)
}

func TestProcessFetchFailure(t *testing.T) {
	fetcher := &stubFetcher{failErr: errors.New("connection refused")}
	result := newTestProcessor(fetcher, &stubSummarizer{}).Process(context.Background(), "u1")

	assert.Equal(t, JobError, result.Status)
	assert.Contains(t, result.Message, "connection refused")
}

func TestProcessBackendFailure(t *testing.T) {
	fetcher := &stubFetcher{docs: map[string]*samgov.Document{"u1": pdfDoc()}}
	summ := &stubSummarizer{err: errors.New("backend down")}

	result := newTestProcessor(fetcher, summ).Process(context.Background(), "u1")

	assert.Equal(t, JobError, result.Status)
	assert.Contains(t, result.Message, "backend down")
}

func TestIsPDF(t *testing.T) {
	assert.True(t, IsPDF("application/pdf", ""))
	assert.True(t, IsPDF("application/pdf; charset=binary", ""))
	assert.True(t, IsPDF("application/octet-stream", "notice.pdf"))
	assert.False(t, IsPDF("text/html", "index.html"))
	assert.False(t, IsPDF("", ""))
}

func TestDeriveAggregate(t *testing.T) {
	t.Run("mixed outcomes complete with partial message", func(t *testing.T) {
		status := DeriveAggregate([]JobResult{
			{Status: JobSuccess},
			{Status: JobError, Message: "boom"},
			{Status: JobUnsupported},
		})
		assert.Equal(t, StateCompleted, status.Status)
		assert.Equal(t, 3, status.DocumentCount)
		assert.Equal(t, 3, status.ProcessedCount)
		assert.Contains(t, status.Message, "1 of 3")
	})

	t.Run("all unsupported", func(t *testing.T) {
		status := DeriveAggregate([]JobResult{
			{Status: JobUnsupported},
			{Status: JobUnsupported},
		})
		assert.Equal(t, StateUnsupported, status.Status)
	})

	t.Run("errors outweigh unsupported", func(t *testing.T) {
		status := DeriveAggregate([]JobResult{
			{Status: JobError, Message: "fetch failed"},
			{Status: JobError, Message: "other"},
			{Status: JobUnsupported},
		})
		assert.Equal(t, StateError, status.Status)
		assert.Equal(t, "fetch failed", status.Message)
	})

	t.Run("clean success has no message", func(t *testing.T) {
		status := DeriveAggregate([]JobResult{{Status: JobSuccess}})
		assert.Equal(t, StateCompleted, status.Status)
		assert.Empty(t, status.Message)
	})
}
