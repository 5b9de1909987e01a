package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-ask/pkg/middleware"
	"github.com/ekaya-inc/ekaya-ask/pkg/models"
)

func serveAsk(t *testing.T, svc *mockAskService, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	mux := http.NewServeMux()
	NewAskHandler(svc, zap.NewNop()).RegisterRoutes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader(body)))

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec, out
}

func TestAskHandler_InvalidBody(t *testing.T) {
	svc := &mockAskService{}

	rec, body := serveAsk(t, svc, `{"question":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", body["error"])
	assert.NotEmpty(t, body["details"])
	assert.Nil(t, svc.got)
}

func TestAskHandler_PassesAIEnabled(t *testing.T) {
	svc := &mockAskService{result: &models.AskResult{
		Route:   models.RouteAIDisabled,
		Error:   "AI Agent is disabled",
		Details: "Please enable the AI Agent to generate SQL queries automatically, or write SQL manually.",
	}}

	rec, body := serveAsk(t, svc, `{"question":"show members","ai_enabled":false}`)

	require.NotNil(t, svc.got)
	require.NotNil(t, svc.got.AIEnabled)
	assert.False(t, *svc.got.AIEnabled)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "AI Agent is disabled", body["error"])
}

func TestAskHandler_StatusAndBody(t *testing.T) {
	tests := []struct {
		name   string
		result *models.AskResult
		status int
		check  func(t *testing.T, body map[string]any)
	}{
		{
			name:   "empty question",
			result: &models.AskResult{Route: models.RouteEmpty, Error: "Empty question", Details: "Please provide a question."},
			status: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "Empty question", body["error"])
			},
		},
		{
			name:   "security block",
			result: &models.AskResult{Route: models.RouteSecurityBlock, Error: "Security Restriction", Details: "no"},
			status: http.StatusForbidden,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, true, body["is_meta_question"])
			},
		},
		{
			name: "meta answer",
			result: &models.AskResult{
				Route: models.RouteMeta,
				Meta:  &models.MetaAnswer{Answer: "The database **sctcrb** contains **3 table(s)**.", RowCount: 1, Data: []map[string]any{{"table_count": 3}}},
			},
			status: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Contains(t, body, "sql")
				assert.Nil(t, body["sql"])
				assert.Equal(t, float64(1), body["row_count"])
			},
		},
		{
			name: "sql answer",
			result: &models.AskResult{
				Route:  models.RouteSQL,
				SQL:    "SELECT TOP 5 * FROM sctcrb.tbl_members",
				Result: &models.QueryResult{Summary: "Found 1 row(s).\nColumns: name", RowCount: 1, Rows: []map[string]any{{"name": "Ann"}}},
			},
			status: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "SELECT TOP 5 * FROM sctcrb.tbl_members", body["sql"])
				assert.Equal(t, false, body["is_meta_question"])
			},
		},
		{
			name:   "pipeline failure",
			result: &models.AskResult{Route: models.RouteError, Error: "Query failed", Details: "AI did not return SQL"},
			status: http.StatusInternalServerError,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "Query failed", body["error"])
				assert.Equal(t, "", body["suggestion"])
				assert.Nil(t, body["sql"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := serveAsk(t, &mockAskService{result: tt.result}, `{"question":"q"}`)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			tt.check(t, body)
		})
	}
}

func TestAskHandler_RejectsGet(t *testing.T) {
	mux := http.NewServeMux()
	NewAskHandler(&mockAskService{}, zap.NewNop()).RegisterRoutes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ask", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestAskHandler_ForwardsRequestID(t *testing.T) {
	svc := &mockAskService{result: &models.AskResult{Route: models.RouteEmpty, Error: "Empty question"}}

	mux := http.NewServeMux()
	NewAskHandler(svc, zap.NewNop()).RegisterRoutes(mux)

	req := httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader(`{"question":""}`))
	req.Header.Set(middleware.RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	middleware.RequestID(mux).ServeHTTP(rec, req)

	require.NotNil(t, svc.got)
	assert.Equal(t, "req-123", svc.got.RequestID)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
