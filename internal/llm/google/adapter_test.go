package google

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nulzo/butler/internal/config"
	"github.com/nulzo/butler/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShape_SimpleText(t *testing.T) {
	geminiReq := Shape(&llm.Request{
		Model:       "gemini-pro",
		Message:     "Hello!",
		MaxTokens:   1000,
		Temperature: 0.7,
	})

	assert.Len(t, geminiReq.Contents, 1)
	assert.Equal(t, "user", geminiReq.Contents[0].Role)
	assert.Equal(t, "Hello!", geminiReq.Contents[0].Parts[0].Text)

	require.NotNil(t, geminiReq.GenerationConfig)
	assert.Equal(t, 1000, geminiReq.GenerationConfig.MaxOutputTokens)
	assert.Equal(t, 0.7, geminiReq.GenerationConfig.Temperature)
}

func newTestAdapter(t *testing.T, handler http.HandlerFunc) llm.Provider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	adapter, err := NewAdapter(config.ProviderConfig{APIKey: "g-key", BaseURL: server.URL + "/v1beta"})
	require.NoError(t, err)
	return adapter
}

func TestGenerate(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-pro:generateContent", r.URL.Path)
		assert.Equal(t, "g-key", r.Header.Get("x-goog-api-key"))
		assert.Empty(t, r.URL.Query().Get("key"))

		_, _ = w.Write([]byte(`{
			"candidates": [{
				"content": {"role": "model", "parts": [{"text": "Hi "}, {"text": "there"}]},
				"finishReason": "STOP"
			}],
			"usageMetadata": {"promptTokenCount": 4, "candidatesTokenCount": 6, "totalTokenCount": 13}
		}`))
	})

	resp, err := adapter.Generate(context.Background(), &llm.Request{Model: "gemini-pro", Message: "Hello"})

	require.NoError(t, err)
	assert.Equal(t, "Hi there", resp.Message)
	// total is recomputed from prompt + completion
	assert.Equal(t, llm.Usage{PromptTokens: 4, CompletionTokens: 6, TotalTokens: 10}, resp.Usage)
}

func TestGenerate_NoUsageMetadata(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates": [{"content": {"parts": [{"text": "ok"}]}}]}`))
	})

	resp, err := adapter.Generate(context.Background(), &llm.Request{Model: "gemini-pro", Message: "Hello"})

	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Message)
	assert.Equal(t, llm.Usage{}, resp.Usage)
}

func TestGenerate_Blocked(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"promptFeedback": {"blockReason": "SAFETY"}}`))
	})

	_, err := adapter.Generate(context.Background(), &llm.Request{Model: "gemini-pro", Message: "Hello"})
	assert.ErrorContains(t, err, "SAFETY")
}

func TestGenerate_UpstreamError(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": {"code": 403, "message": "API key not valid", "status": "PERMISSION_DENIED"}}`))
	})

	_, err := adapter.Generate(context.Background(), &llm.Request{Model: "gemini-pro", Message: "Hello"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key not valid")
	assert.Contains(t, err.Error(), "PERMISSION_DENIED")
}

func TestNewAdapter_NoClientTimeout(t *testing.T) {
	adapter, err := NewAdapter(config.ProviderConfig{APIKey: "g-key"})
	require.NoError(t, err)
	assert.Zero(t, adapter.(*Adapter).client.Timeout)
}

func TestGenerate_ContextDeadline(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(server.Close)
	t.Cleanup(func() { close(release) })

	adapter, err := NewAdapter(config.ProviderConfig{APIKey: "g-key", BaseURL: server.URL + "/v1beta"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = adapter.Generate(ctx, &llm.Request{Model: "gemini-pro", Message: "Hi"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
