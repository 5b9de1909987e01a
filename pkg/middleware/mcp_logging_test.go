package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMCPRequestLogger(t *testing.T) {
	t.Run("logs successful tool call", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"content":[{"type":"text","text":"{}"}]}}`))
		})
		wrapped := MCPRequestLogger(zap.New(core))(handler)

		reqBody := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"ask","arguments":{"question":"how many tables are there"}}}`
		req := httptest.NewRequest(http.MethodPost, "/mcp", bytes.NewBufferString(reqBody))
		rec := httptest.NewRecorder()

		wrapped.ServeHTTP(rec, req)

		require.Equal(t, 2, logs.Len(), "Should log request and response")

		requestLog := logs.All()[0]
		assert.Equal(t, "MCP request", requestLog.Message)
		assert.Equal(t, "tools/call", requestLog.ContextMap()["method"])
		assert.Equal(t, "ask", requestLog.ContextMap()["tool"])

		responseLog := logs.All()[1]
		assert.Equal(t, "MCP response success", responseLog.Message)
		assert.Equal(t, false, responseLog.ContextMap()["tool_error"])
	})

	t.Run("logs JSON-RPC error at warn", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32602,"message":"missing question"}}`))
		})
		wrapped := MCPRequestLogger(zap.New(core))(handler)

		reqBody := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"ask","arguments":{}}}`
		req := httptest.NewRequest(http.MethodPost, "/mcp", bytes.NewBufferString(reqBody))
		rec := httptest.NewRecorder()

		wrapped.ServeHTTP(rec, req)

		require.Equal(t, 2, logs.Len())
		responseLog := logs.All()[1]
		assert.Equal(t, "MCP response error", responseLog.Message)
		assert.Equal(t, zapcore.WarnLevel, responseLog.Level)
		assert.Equal(t, int64(-32602), responseLog.ContextMap()["error_code"])
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("passes body through to the handler", func(t *testing.T) {
		core, _ := observer.New(zapcore.DebugLevel)
		var seen string
		wrapped := MCPRequestLogger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			b := new(bytes.Buffer)
			_, _ = b.ReadFrom(r.Body)
			seen = b.String()
		}))

		req := httptest.NewRequest(http.MethodPost, "/mcp", bytes.NewBufferString(`{"method":"ping"}`))
		wrapped.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, `{"method":"ping"}`, seen)
	})

	t.Run("nil logger passes through", func(t *testing.T) {
		called := false
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

		MCPRequestLogger(nil)(handler).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/mcp", nil))

		assert.True(t, called)
	})
}

func TestSanitizeArguments(t *testing.T) {
	t.Run("redacts sensitive keys", func(t *testing.T) {
		result := sanitizeArguments(map[string]any{
			"api_key":      "abc123",
			"access_token": "xyz789",
			"question":     "what is my password",
		})

		assert.Equal(t, "[REDACTED]", result["api_key"])
		assert.Equal(t, "[REDACTED]", result["access_token"])
		assert.Equal(t, "what is my password", result["question"])
	})

	t.Run("truncates long strings", func(t *testing.T) {
		result := sanitizeArguments(map[string]any{"question": strings.Repeat("x", 250)})

		truncated := result["question"].(string)
		assert.Len(t, truncated, 203)
		assert.True(t, strings.HasSuffix(truncated, "..."))
	})

	t.Run("keeps non-string values and nil maps", func(t *testing.T) {
		result := sanitizeArguments(map[string]any{"ai_enabled": false})
		assert.Equal(t, false, result["ai_enabled"])
		assert.Nil(t, sanitizeArguments(nil))
	})
}
