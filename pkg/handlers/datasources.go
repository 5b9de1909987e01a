package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-ask/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-ask/pkg/logging"
)

// ConnectionTestResponse reports whether the database answered.
type ConnectionTestResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// DatasourceHandler serves the connection test endpoint.
type DatasourceHandler struct {
	tester datasource.ConnectionTester
	logger *zap.Logger
}

// NewDatasourceHandler creates a DatasourceHandler over tester.
func NewDatasourceHandler(tester datasource.ConnectionTester, logger *zap.Logger) *DatasourceHandler {
	return &DatasourceHandler{tester: tester, logger: logging.OrNop(logger).Named("datasource-handler")}
}

// RegisterRoutes registers GET /api/db/test.
func (h *DatasourceHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/db/test", h.TestConnection)
}

// TestConnection handles GET /api/db/test. A failed test is still a 200
// with success false; the body carries the sanitized driver error.
func (h *DatasourceHandler) TestConnection(w http.ResponseWriter, r *http.Request) {
	response := ConnectionTestResponse{Success: true}
	if err := h.tester.TestConnection(r.Context()); err != nil {
		response = ConnectionTestResponse{Error: logging.SanitizeError(err)}
		h.logger.Warn("Connection test failed", zap.String("error", response.Error))
	}

	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode connection test response", zap.Error(err))
	}
}
