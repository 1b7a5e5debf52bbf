// Package sse implements the incremental parser for model response streams
// framed as server-sent events.
package sse

import (
	"bytes"
	"encoding/json"
	"log"
	"strings"
)

// DoneSentinel terminates a well-formed stream.
const DoneSentinel = "[DONE]"

// State tracks parser progress across frames.
type State int

const (
	// StateAwaitingFrame means the parser is collecting bytes for the next frame.
	StateAwaitingFrame State = iota
	// StateFrameComplete means at least one frame has been delivered and the
	// parser loops back to collecting the next one.
	StateFrameComplete
	// StateDone is terminal: the [DONE] sentinel was consumed.
	StateDone
	// StateAborted is terminal: an error frame arrived or the caller aborted.
	StateAborted
)

// Handlers receive parse events. Nil handlers are skipped.
type Handlers struct {
	// OnDelta fires once per valid content frame.
	OnDelta func(content string)
	// OnError fires once when an error frame arrives; parsing stops after it.
	OnError func(message string)
	// OnComplete fires exactly once, with the full accumulated text, when the
	// [DONE] sentinel is consumed.
	OnComplete func(accumulated string)
}

// Parser reassembles "data: <json>" frames from arbitrarily-chunked input.
// It is not safe for concurrent use; feed it from a single reader loop.
type Parser struct {
	state    State
	pending  []byte
	acc      strings.Builder
	handlers Handlers
}

type frame struct {
	Content *string `json:"content"`
	Error   *string `json:"error"`
}

func NewParser(handlers Handlers) *Parser {
	return &Parser{
		state:    StateAwaitingFrame,
		handlers: handlers,
	}
}

// Feed consumes the next chunk of the stream. Frames split across chunk
// boundaries are buffered until their terminating newline arrives.
func (p *Parser) Feed(chunk []byte) {
	if p.terminal() {
		return
	}

	p.pending = append(p.pending, chunk...)
	for {
		i := bytes.IndexByte(p.pending, '\n')
		if i < 0 {
			return
		}
		line := strings.TrimSuffix(string(p.pending[:i]), "\r")
		p.pending = p.pending[i+1:]

		p.consumeLine(line)
		if p.terminal() {
			return
		}
	}
}

// Abort stops the parser from the caller's side: no further deltas are
// delivered and no completion fires. Safe to call more than once, and a
// no-op once the stream already finished.
func (p *Parser) Abort() {
	if p.state == StateDone {
		return
	}
	p.state = StateAborted
}

// State returns the current parser state.
func (p *Parser) State() State {
	return p.state
}

// Accumulated returns the content gathered so far. After an abort this is
// the partial text the caller should finalize with.
func (p *Parser) Accumulated() string {
	return p.acc.String()
}

func (p *Parser) terminal() bool {
	return p.state == StateDone || p.state == StateAborted
}

func (p *Parser) consumeLine(line string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		// Blank separator between frames.
		return
	}

	data, ok := strings.CutPrefix(trimmed, "data:")
	if !ok {
		// Comment or unknown field; SSE allows these, we don't use them.
		return
	}
	data = strings.TrimSpace(data)

	if data == DoneSentinel {
		p.state = StateDone
		if p.handlers.OnComplete != nil {
			p.handlers.OnComplete(p.acc.String())
		}
		return
	}

	var f frame
	if err := json.Unmarshal([]byte(data), &f); err != nil {
		// One bad frame must not kill the stream.
		log.Printf("[WARN] sse: skipping malformed frame: %v", err)
		return
	}

	switch {
	case f.Error != nil:
		p.state = StateAborted
		if p.handlers.OnError != nil {
			p.handlers.OnError(*f.Error)
		}
	case f.Content != nil:
		p.acc.WriteString(*f.Content)
		p.state = StateFrameComplete
		if p.handlers.OnDelta != nil {
			p.handlers.OnDelta(*f.Content)
		}
	default:
		log.Printf("[WARN] sse: skipping frame with neither content nor error: %q", data)
	}
}
