package datasource

import (
	"context"

	"github.com/ekaya-inc/ekaya-ask/pkg/models"
)

// ConnectionTester tests database connectivity.
// Each implementation owns its connection and must be closed when done.
type ConnectionTester interface {
	// TestConnection verifies the database is reachable with valid credentials.
	// Returns nil if connection is healthy, error otherwise.
	TestConnection(ctx context.Context) error

	// Close releases the database connection.
	Close() error
}

// Catalog answers questions about the database from its system catalog.
// Every method is a small, fixed, read-only query. User schemas only:
// sys and INFORMATION_SCHEMA are always excluded.
type Catalog interface {
	// ListColumns returns every column of every base table ordered by
	// schema, table and ordinal position.
	ListColumns(ctx context.Context) ([]models.SchemaColumn, error)

	// ListTables returns all base tables ordered by schema then table.
	ListTables(ctx context.Context) ([]models.TableRef, error)

	// ListTablesInSchema returns the base tables of one schema ordered by name.
	ListTablesInSchema(ctx context.Context, schema string) ([]models.TableRef, error)

	// CurrentDatabase returns the name of the connected database.
	CurrentDatabase(ctx context.Context) (string, error)

	// ServerName returns the server's configured instance name.
	ServerName(ctx context.Context) (string, error)

	// ServerVersion returns the full, multi-line server version banner.
	ServerVersion(ctx context.Context) (string, error)

	// ConnectionIdentity returns the database, server, login and user of the session.
	ConnectionIdentity(ctx context.Context) (*ConnectionIdentity, error)

	CountTables(ctx context.Context) (int, error)
	CountViews(ctx context.Context) (int, error)
	CountProcedures(ctx context.Context) (int, error)
}

// QueryRunner executes a vetted SELECT statement as-is.
// It does not wrap or limit the statement; row caps are the caller's job.
type QueryRunner interface {
	Query(ctx context.Context, sqlQuery string) (*QueryExecutionResult, error)
}

// Datasource is everything the question pipeline needs from one database.
type Datasource interface {
	Catalog
	QueryRunner
	ConnectionTester
}

// ConnectionIdentity describes the current session. JSON keys match the
// aliases of the catalog query so answers render the same data shape.
type ConnectionIdentity struct {
	DatabaseName string `json:"DatabaseName"`
	ServerName   string `json:"ServerName"`
	LoginName    string `json:"LoginName"`
	UserName     string `json:"UserName"`
}

// ColumnInfo describes a result column with database-agnostic type information.
type ColumnInfo struct {
	Name string `json:"name"`
	Type string `json:"type"` // Database type name (e.g., "TEXT", "INTEGER", "VARCHAR")
}

// QueryExecutionResult holds the results from executing a query.
type QueryExecutionResult struct {
	Columns  []ColumnInfo     `json:"columns"`
	Rows     []map[string]any `json:"rows"`
	RowCount int              `json:"row_count"`
}

// ColumnNames returns the result column names in order.
func (r *QueryExecutionResult) ColumnNames() []string {
	names := make([]string, len(r.Columns))
	for i, c := range r.Columns {
		names[i] = c.Name
	}
	return names
}
