package main

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

func TestClient_Ask(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/ask", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Query failed","details":"Invalid object name 'sctcrb.members'.","suggestion":"\n\n TIP: x","sql":"SELECT TOP 5 * FROM sctcrb.members"}`))
	}))
	defer srv.Close()

	disabled := false
	resp, err := newClient(srv.URL+"/", time.Second).Ask(context.Background(), "show 5 members", &disabled)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"question": "show 5 members", "ai_enabled": false}, got)
	assert.Equal(t, http.StatusInternalServerError, resp.Status)
	assert.Equal(t, "Query failed", resp.Error)
	require.NotNil(t, resp.SQL)
	assert.Equal(t, "SELECT TOP 5 * FROM sctcrb.members", *resp.SQL)
}

func TestClient_AskOmitsAIEnabled(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"answer":"ok","data":[],"row_count":0,"is_meta_question":true}`))
	}))
	defer srv.Close()

	resp, err := newClient(srv.URL, time.Second).Ask(context.Background(), "which server", nil)
	require.NoError(t, err)

	assert.NotContains(t, got, "ai_enabled")
	assert.True(t, resp.IsMetaQuestion)
	assert.Nil(t, resp.SQL)
}

func TestClient_SchemaError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Schema lookup failed","details":"login failed"}`))
	}))
	defer srv.Close()

	_, err := newClient(srv.URL, time.Second).Schema(context.Background())
	require.Error(t, err)
	assert.Equal(t, "/api/schema: Schema lookup failed (login failed)", err.Error())
}

func TestClient_PingAndConnection(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok","version":"1.2.3","service":"ekaya-ask"}`))
	})
	mux.HandleFunc("GET /api/db/test", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"error":"connection refused"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newClient(srv.URL, time.Second)

	ping, err := c.Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", ping.Version)

	conn, err := c.TestConnection(context.Background())
	require.NoError(t, err)
	assert.False(t, conn.Success)
	assert.Equal(t, "connection refused", conn.Error)
}

func TestClient_UnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newClient(srv.URL, time.Second).Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 502")
}
