package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestAnthropicClient_Complete(t *testing.T) {
	var got map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-ant-test", r.Header.Get("X-Api-Key"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"msg_1","type":"message","role":"assistant","model":"claude-test","content":[{"type":"text","text":"SELECT TOP 100 * FROM sctcrb.members"}],"stop_reason":"end_turn","usage":{"input_tokens":40,"output_tokens":9}}`)
	}))
	defer server.Close()

	client, err := NewAnthropicClient(&Config{
		Endpoint: server.URL + "/v1",
		Model:    "claude-test",
		APIKey:   "sk-ant-test",
	}, zaptest.NewLogger(t))
	require.NoError(t, err)

	text, err := client.Complete(context.Background(), CompletionRequest{
		SystemPrompt: "You are a SQL expert.",
		UserPrompt:   "list members",
		Temperature:  0.1,
		MaxTokens:    256,
	})
	require.NoError(t, err)
	assert.Equal(t, "SELECT TOP 100 * FROM sctcrb.members", text)

	assert.Equal(t, "claude-test", got["model"])
	assert.Equal(t, float64(256), got["max_tokens"])
	assert.NotNil(t, got["system"])
}

func TestAnthropicClient_Complete_AuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`)
	}))
	defer server.Close()

	client, err := NewAnthropicClient(&Config{Endpoint: server.URL, Model: "claude-test", APIKey: "bad"}, zaptest.NewLogger(t))
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), CompletionRequest{UserPrompt: "q"})
	require.Error(t, err)
	assert.Equal(t, ErrorTypeAuth, GetErrorType(err))
}

func TestNewAnthropicClient_RequiresKey(t *testing.T) {
	_, err := NewAnthropicClient(&Config{Model: "claude-test"}, nil)
	assert.EqualError(t, err, "api key is required")
}
