package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeSendsDocumentBlock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		assert.Equal(t, apiVersion, r.Header.Get("anthropic-version"))

		var req messagesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 1)
		require.Len(t, req.Messages[0].Content, 2)
		assert.Equal(t, "document", req.Messages[0].Content[0].Type)
		assert.Equal(t, "application/pdf", req.Messages[0].Content[0].Source.MediaType)
		assert.Equal(t, "QkFTRTY0", req.Messages[0].Content[0].Source.Data)
		assert.Equal(t, "text", req.Messages[0].Content[1].Type)

		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{
				{"type": "text", "text": "Key deliverables: widgets."},
			},
		})
	}))
	defer srv.Close()

	c := NewClient("secret", srv.URL, "", 5*time.Second)
	summary, err := c.Summarize(context.Background(), "QkFTRTY0", "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "Key deliverables: widgets.", summary)
}

func TestSummarizeBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient("secret", srv.URL, "", 5*time.Second)
	_, err := c.Summarize(context.Background(), "QkFTRTY0", "application/pdf")
	assert.Error(t, err)
}

func TestSummarizeErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"type": "rate_limit_error", "message": "slow down"},
		})
	}))
	defer srv.Close()

	c := NewClient("secret", srv.URL, "", 5*time.Second)
	_, err := c.Summarize(context.Background(), "QkFTRTY0", "application/pdf")
	assert.ErrorContains(t, err, "slow down")
}

func TestSummarizeNoTextContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"content": []map[string]string{}})
	}))
	defer srv.Close()

	c := NewClient("secret", srv.URL, "", 5*time.Second)
	_, err := c.Summarize(context.Background(), "QkFTRTY0", "application/pdf")
	assert.ErrorContains(t, err, "no text content")
}
