package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-ask/pkg/logging"
	"github.com/ekaya-inc/ekaya-ask/pkg/middleware"
	"github.com/ekaya-inc/ekaya-ask/pkg/models"
	"github.com/ekaya-inc/ekaya-ask/pkg/services"
)

// maxAskBodyBytes bounds the request body of POST /api/ask.
const maxAskBodyBytes = 64 << 10

// AskHandler serves the question endpoint.
type AskHandler struct {
	service services.AskService
	logger  *zap.Logger
}

// NewAskHandler creates an AskHandler over service.
func NewAskHandler(service services.AskService, logger *zap.Logger) *AskHandler {
	return &AskHandler{service: service, logger: logging.OrNop(logger).Named("ask-handler")}
}

// RegisterRoutes registers POST /api/ask.
func (h *AskHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/ask", h.Ask)
}

// Ask handles POST /api/ask with body {question, ai_enabled?}.
func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req models.AskRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAskBodyBytes)).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "Invalid request body", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	req.RequestID = middleware.RequestIDFromContext(r.Context())
	result := h.service.Ask(r.Context(), &req)

	h.logger.Debug("Question handled",
		zap.String("request_id", result.RequestID),
		zap.String("route", string(result.Route)),
		zap.String("intent", result.Intent.String()))

	if err := WriteJSON(w, result.Status(), result.Body()); err != nil {
		h.logger.Error("Failed to encode ask response", zap.Error(err))
	}
}
