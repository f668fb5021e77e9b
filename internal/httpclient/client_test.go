package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendRequest_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "v", r.Header.Get("X-Test"))

		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "hi", in["message"])

		_, _ = w.Write([]byte(`{"reply":"hello"}`))
	}))
	defer server.Close()

	var out struct {
		Reply string `json:"reply"`
	}
	err := SendRequest(context.Background(), server.Client(), http.MethodPost, server.URL,
		map[string]string{"X-Test": "v"}, map[string]string{"message": "hi"}, &out)

	require.NoError(t, err)
	assert.Equal(t, "hello", out.Reply)
}

func TestSendRequest_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down"}}`))
	}))
	defer server.Close()

	err := SendRequest(context.Background(), server.Client(), http.MethodPost, server.URL+"/x?key=secret", nil, nil, nil)

	var upstreamErr *UpstreamError
	require.True(t, errors.As(err, &upstreamErr))
	assert.Equal(t, http.StatusTooManyRequests, upstreamErr.StatusCode)
	assert.Contains(t, string(upstreamErr.Body), "slow down")
	assert.Contains(t, upstreamErr.Error(), "429")
}

func TestSendRequest_MalformedReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer server.Close()

	var out map[string]any
	err := SendRequest(context.Background(), server.Client(), http.MethodGet, server.URL, nil, nil, &out)
	assert.ErrorContains(t, err, "failed to decode response")
}
