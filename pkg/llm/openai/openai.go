// Package openai implements the LLMProvider contract against any
// OpenAI-compatible chat completions endpoint (OpenAI itself, x.ai, a
// vLLM gateway, ...).
package openai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"contract-assistant-be/pkg/llm"
)

const maxScanTokenSize = 5 * 1024 * 1024 // 5MB per SSE line

type Provider struct {
	BaseURL   string
	APIKey    string
	ModelName string
	Client    *http.Client
}

// Ensure Provider implements LLMProvider
var _ llm.LLMProvider = &Provider{}

func NewProvider(baseURL, apiKey, modelName string, timeout time.Duration) *Provider {
	return &Provider{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		APIKey:    apiKey,
		ModelName: modelName,
		Client: &http.Client{
			Timeout: timeout,
		},
	}
}

// --- Request/Response structs (internal to this package) ---

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Stream      bool          `json:"stream"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *apiError `json:"error"`
}

type chatChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
	Error *apiError `json:"error"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// --- Interface Implementation ---

func (p *Provider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := llm.BuildOptions(opts)

	resp, err := p.send(ctx, history, options, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(bodyBytes, &parsed); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil {
			return "", fmt.Errorf("chat backend error: %s", parsed.Error.Message)
		}
		return "", fmt.Errorf("chat backend error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("chat backend returned no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}

// ChatStream transcodes the upstream SSE chunks into the normalized
// `data: {"content": ...}` framing as they arrive. The returned reader
// is terminated by the [DONE] sentinel; closing it tears down the
// upstream request.
func (p *Provider) ChatStream(ctx context.Context, history []llm.Message, opts ...llm.Option) (io.ReadCloser, error) {
	options := llm.BuildOptions(opts)

	resp, err := p.send(ctx, history, options, true)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		bodyBytes, _ := io.ReadAll(resp.Body)
		var parsed chatResponse
		if json.Unmarshal(bodyBytes, &parsed) == nil && parsed.Error != nil {
			return nil, fmt.Errorf("chat backend error: %s", parsed.Error.Message)
		}
		return nil, fmt.Errorf("chat backend error: status %d", resp.StatusCode)
	}

	pr, pw := io.Pipe()
	go transcode(resp.Body, pw)

	return &streamBody{pr: pr, upstream: resp.Body}, nil
}

func (p *Provider) send(ctx context.Context, history []llm.Message, options *llm.Options, stream bool) (*http.Response, error) {
	messages := make([]chatMessage, len(history))
	for i, msg := range history {
		role := msg.Role
		if role == "model" {
			role = "assistant"
		}
		messages[i] = chatMessage{Role: role, Content: msg.Content}
	}

	model := p.ModelName
	if options.Model != "" {
		model = options.Model
	}

	reqPayload := chatRequest{
		Model:       model,
		Messages:    messages,
		Stream:      stream,
		Temperature: options.Temperature,
		MaxTokens:   options.MaxTokens,
	}

	payloadBytes, err := json.Marshal(reqPayload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := p.BaseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.APIKey)
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat request failed: %w", err)
	}
	return resp, nil
}

// transcode reads upstream OpenAI SSE chunks and rewrites them into the
// normalized framing on the pipe.
func transcode(upstream io.ReadCloser, pw *io.PipeWriter) {
	defer upstream.Close()

	scanner := bufio.NewScanner(upstream)
	scanner.Buffer(make([]byte, maxScanTokenSize), maxScanTokenSize)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		data, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}
		data = strings.TrimSpace(data)

		if data == "[DONE]" {
			llm.WriteDoneFrame(pw)
			pw.Close()
			return
		}

		var chunk chatChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			// Skip frames we cannot read; the stream may still recover.
			continue
		}
		if chunk.Error != nil {
			llm.WriteErrorFrame(pw, chunk.Error.Message)
			pw.Close()
			return
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		if content := chunk.Choices[0].Delta.Content; content != "" {
			if err := llm.WriteContentFrame(pw, content); err != nil {
				return // reader went away
			}
		}
	}

	if err := scanner.Err(); err != nil {
		llm.WriteErrorFrame(pw, fmt.Sprintf("stream read failed: %v", err))
	} else {
		// Upstream ended without a sentinel; finish the stream anyway so
		// consumers can finalize what they accumulated.
		llm.WriteDoneFrame(pw)
	}
	pw.Close()
}

type streamBody struct {
	pr       *io.PipeReader
	upstream io.ReadCloser
}

func (s *streamBody) Read(p []byte) (int, error) {
	return s.pr.Read(p)
}

func (s *streamBody) Close() error {
	s.upstream.Close()
	return s.pr.Close()
}
