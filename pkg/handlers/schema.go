package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-ask/pkg/logging"
	"github.com/ekaya-inc/ekaya-ask/pkg/models"
	"github.com/ekaya-inc/ekaya-ask/pkg/services"
)

// SchemaResponse is the schema debugging view: the exact text given to the
// model, and the tables of the default schema.
type SchemaResponse struct {
	Success    bool              `json:"success"`
	SchemaText string            `json:"schema_text"`
	Tables     []models.TableRef `json:"tables"`
	TableCount int               `json:"table_count"`
}

// SchemaHandler serves GET /api/schema.
type SchemaHandler struct {
	inspector services.SchemaInspector
	logger    *zap.Logger
}

// NewSchemaHandler creates a SchemaHandler.
func NewSchemaHandler(inspector services.SchemaInspector, logger *zap.Logger) *SchemaHandler {
	return &SchemaHandler{inspector: inspector, logger: logging.OrNop(logger).Named("schema-handler")}
}

// RegisterRoutes registers GET /api/schema.
func (h *SchemaHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/schema", h.GetSchema)
}

// GetSchema handles GET /api/schema.
func (h *SchemaHandler) GetSchema(w http.ResponseWriter, r *http.Request) {
	text, _, err := h.inspector.DescribeSchema(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}

	tables, err := h.inspector.ListSchemaTables(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	if tables == nil {
		tables = []models.TableRef{}
	}

	response := SchemaResponse{
		Success:    true,
		SchemaText: text,
		Tables:     tables,
		TableCount: len(tables),
	}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode schema response", zap.Error(err))
	}
}

func (h *SchemaHandler) fail(w http.ResponseWriter, err error) {
	details := logging.SanitizeError(err)
	h.logger.Error("Schema lookup failed", zap.String("error", details))
	if err := ErrorResponse(w, http.StatusInternalServerError, "Schema lookup failed", details); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}
