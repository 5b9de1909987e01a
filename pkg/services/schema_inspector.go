package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-ask/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-ask/pkg/logging"
	"github.com/ekaya-inc/ekaya-ask/pkg/models"
	"github.com/ekaya-inc/ekaya-ask/pkg/prompts"
)

// SchemaInspector renders the catalog as grounding text for SQL synthesis.
// Nothing is cached; every call reads the catalog.
type SchemaInspector interface {
	// DescribeSchema returns the schema text and the description it was built from.
	DescribeSchema(ctx context.Context) (string, *models.SchemaDescription, error)

	// ListSchemaTables returns the base tables of the default schema ordered by name.
	ListSchemaTables(ctx context.Context) ([]models.TableRef, error)

	// DefaultSchema returns the schema used for qualification and suggestions.
	DefaultSchema() string
}

type schemaInspector struct {
	catalog       datasource.Catalog
	defaultSchema string
	logger        *zap.Logger
}

// NewSchemaInspector creates an inspector over catalog.
func NewSchemaInspector(catalog datasource.Catalog, defaultSchema string, logger *zap.Logger) SchemaInspector {
	return &schemaInspector{
		catalog:       catalog,
		defaultSchema: defaultSchema,
		logger:        logging.OrNop(logger).Named("schema"),
	}
}

func (s *schemaInspector) DescribeSchema(ctx context.Context) (string, *models.SchemaDescription, error) {
	columns, err := s.catalog.ListColumns(ctx)
	if err != nil {
		s.logger.Error("Schema fetch failed", zap.String("error", logging.SanitizeError(err)))
		return "", nil, err
	}

	desc := models.NewSchemaDescription(columns)
	text := prompts.BuildSchemaText(desc)

	s.logger.Debug("Schema described",
		zap.Int("tables", len(desc.Tables)),
		zap.Int("columns", len(columns)),
		zap.Int("text_len", len(text)))

	return text, desc, nil
}

func (s *schemaInspector) ListSchemaTables(ctx context.Context) ([]models.TableRef, error) {
	return s.catalog.ListTablesInSchema(ctx, s.defaultSchema)
}

func (s *schemaInspector) DefaultSchema() string {
	return s.defaultSchema
}
