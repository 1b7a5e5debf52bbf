package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	deltas    []string
	errors    []string
	completes []string
}

func newRecordingParser() (*Parser, *recorder) {
	rec := &recorder{}
	p := NewParser(Handlers{
		OnDelta:    func(c string) { rec.deltas = append(rec.deltas, c) },
		OnError:    func(m string) { rec.errors = append(rec.errors, m) },
		OnComplete: func(acc string) { rec.completes = append(rec.completes, acc) },
	})
	return p, rec
}

const helloWorldStream = "data: {\"content\":\"Hello\"}\n\n" +
	"data: {\"content\":\" world\"}\n\n" +
	"data: [DONE]\n\n"

func TestParserWholeStream(t *testing.T) {
	p, rec := newRecordingParser()
	p.Feed([]byte(helloWorldStream))

	assert.Equal(t, StateDone, p.State())
	assert.Equal(t, []string{"Hello", " world"}, rec.deltas)
	assert.Equal(t, []string{"Hello world"}, rec.completes)
	assert.Empty(t, rec.errors)
}

func TestParserArbitraryChunkSplits(t *testing.T) {
	raw := []byte(helloWorldStream)

	// Split the stream at every possible byte boundary. Frame reassembly must
	// not depend on frames arriving whole.
	for cut := 1; cut < len(raw); cut++ {
		p, rec := newRecordingParser()
		p.Feed(raw[:cut])
		p.Feed(raw[cut:])

		assert.Equal(t, "Hello world", p.Accumulated(), "cut=%d", cut)
		assert.Len(t, rec.deltas, 2, "cut=%d", cut)
		assert.Len(t, rec.completes, 1, "cut=%d", cut)
	}
}

func TestParserByteAtATime(t *testing.T) {
	p, rec := newRecordingParser()
	for _, b := range []byte(helloWorldStream) {
		p.Feed([]byte{b})
	}

	assert.Equal(t, []string{"Hello", " world"}, rec.deltas)
	assert.Equal(t, []string{"Hello world"}, rec.completes)
}

func TestParserMalformedFrameIsSkipped(t *testing.T) {
	p, rec := newRecordingParser()
	p.Feed([]byte("data: {\"content\":\"a\"}\n\n"))
	p.Feed([]byte("data: {not json at all\n\n"))
	p.Feed([]byte("data: {\"content\":\"b\"}\n\n"))
	p.Feed([]byte("data: [DONE]\n\n"))

	assert.Equal(t, []string{"a", "b"}, rec.deltas)
	assert.Equal(t, []string{"ab"}, rec.completes)
	assert.Empty(t, rec.errors)
}

func TestParserErrorFrameAborts(t *testing.T) {
	p, rec := newRecordingParser()
	p.Feed([]byte("data: {\"content\":\"partial\"}\n\n"))
	p.Feed([]byte("data: {\"error\":\"model overloaded\"}\n\n"))
	// Anything after the error frame must be ignored.
	p.Feed([]byte("data: {\"content\":\"late\"}\n\ndata: [DONE]\n\n"))

	assert.Equal(t, StateAborted, p.State())
	assert.Equal(t, []string{"partial"}, rec.deltas)
	assert.Equal(t, []string{"model overloaded"}, rec.errors)
	assert.Empty(t, rec.completes)
	assert.Equal(t, "partial", p.Accumulated())
}

func TestParserDoneFiresOnce(t *testing.T) {
	p, rec := newRecordingParser()
	p.Feed([]byte("data: [DONE]\n\ndata: [DONE]\n\n"))
	p.Feed([]byte("data: [DONE]\n\n"))

	assert.Len(t, rec.completes, 1)
	assert.Equal(t, StateDone, p.State())
}

func TestParserAbortIsIdempotent(t *testing.T) {
	p, rec := newRecordingParser()
	p.Feed([]byte("data: {\"content\":\"keep\"}\n\n"))
	p.Abort()
	p.Abort()
	p.Feed([]byte("data: {\"content\":\"dropped\"}\n\ndata: [DONE]\n\n"))

	assert.Equal(t, StateAborted, p.State())
	assert.Equal(t, []string{"keep"}, rec.deltas)
	assert.Empty(t, rec.completes)
	assert.Equal(t, "keep", p.Accumulated())
}

func TestParserCRLFLines(t *testing.T) {
	p, rec := newRecordingParser()
	p.Feed([]byte("data: {\"content\":\"x\"}\r\n\r\ndata: [DONE]\r\n\r\n"))

	assert.Equal(t, []string{"x"}, rec.deltas)
	assert.Equal(t, []string{"x"}, rec.completes)
}

func TestParserIgnoresCommentsAndUnknownFields(t *testing.T) {
	p, rec := newRecordingParser()
	p.Feed([]byte(": keepalive\nevent: message\ndata: {\"content\":\"y\"}\n\ndata: [DONE]\n\n"))

	assert.Equal(t, []string{"y"}, rec.deltas)
	assert.Len(t, rec.completes, 1)
}
