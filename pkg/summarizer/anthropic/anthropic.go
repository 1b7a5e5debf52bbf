package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"contract-assistant-be/pkg/summarizer"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	defaultModel   = "claude-3-5-sonnet-20241022"
	apiVersion     = "2023-06-01"
	maxTokens      = 1024
)

// summaryPrompt asks for the points a contractor needs to evaluate an
// opportunity, skipping boilerplate.
const summaryPrompt = `Analyze this contract document and provide a concise summary focusing on:
1. Key deliverables and requirements
2. Important deadlines and submission dates
3. Technical specifications or standards that must be met
4. Qualification requirements (certifications, clearances, etc.)
5. Evaluation criteria
6. Any unique or special requirements (set-asides, restrictions, etc.)

Format the summary in clear, concise points focusing only on the most critical information a contractor would need to understand the opportunity. Leave out any standard boilerplate or administrative details unless they are unusually important for this specific contract.`

type Client struct {
	BaseURL   string
	APIKey    string
	ModelName string
	HTTP      *http.Client
}

var _ summarizer.Summarizer = &Client{}

func NewClient(apiKey, baseURL, model string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if model == "" {
		model = defaultModel
	}
	return &Client{
		BaseURL:   baseURL,
		APIKey:    apiKey,
		ModelName: model,
		HTTP: &http.Client{
			Timeout: timeout,
		},
	}
}

// --- Request/Response structs (internal to this package) ---

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type   string          `json:"type"`
	Text   string          `json:"text,omitempty"`
	Source *documentSource `json:"source,omitempty"`
}

type documentSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Summarize sends the document as a base64 block alongside the analysis
// prompt. One attempt, bounded by the client timeout.
func (c *Client) Summarize(ctx context.Context, contentBase64, contentType string) (string, error) {
	reqPayload := messagesRequest{
		Model:     c.ModelName,
		MaxTokens: maxTokens,
		Messages: []message{{
			Role: "user",
			Content: []contentBlock{
				{
					Type: "document",
					Source: &documentSource{
						Type:      "base64",
						MediaType: contentType,
						Data:      contentBase64,
					},
				},
				{
					Type: "text",
					Text: summaryPrompt,
				},
			},
		}},
	}

	payloadBytes, err := json.Marshal(reqPayload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := c.BaseURL + "/v1/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("summarization request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var parsed messagesResponse
	if err := json.Unmarshal(bodyBytes, &parsed); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil {
			return "", fmt.Errorf("summarization backend error: %s (%s)", parsed.Error.Message, parsed.Error.Type)
		}
		return "", fmt.Errorf("summarization backend error: status %d", resp.StatusCode)
	}

	for _, block := range parsed.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}

	return "", fmt.Errorf("summarization backend returned no text content")
}
