package llm

import (
	"context"
	"io"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// LLMProvider defines the contract for any chat model backend.
//
// ChatStream returns a normalized event stream: frames of the form
//
//	data: {"content":"<fragment>"}\n\n
//
// terminated by `data: [DONE]\n\n`, with a mid-stream failure signaled as
// `data: {"error":"<msg>"}\n\n`. Providers transcode their native wire
// format into this shape so callers only ever parse one framing.
type LLMProvider interface {
	// Chat sends a chat history to the model and returns the full response
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// ChatStream sends a chat history and streams the reply incrementally
	ChatStream(ctx context.Context, history []Message, options ...Option) (io.ReadCloser, error)
}

// BuildOptions folds functional options over provider defaults.
func BuildOptions(opts []Option) *Options {
	options := &Options{
		Temperature: 0.7,
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}
