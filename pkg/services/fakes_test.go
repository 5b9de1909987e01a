package services

import (
	"context"
	"sync"

	"github.com/ekaya-inc/ekaya-ask/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-ask/pkg/audit"
	"github.com/ekaya-inc/ekaya-ask/pkg/models"
)

// mockCatalog is a datasource.Catalog backed by fixed values. Any method
// returns err when it is set. calls counts every catalog method invocation.
type mockCatalog struct {
	mu    sync.Mutex
	calls int

	columns   []models.SchemaColumn
	tables    []models.TableRef
	database  string
	server    string
	version   string
	identity  *datasource.ConnectionIdentity
	numTables int
	numViews  int
	numProcs  int
	err       error

	// schemaTablesErr fails only ListTablesInSchema.
	schemaTablesErr error
}

func newMockCatalog() *mockCatalog {
	return &mockCatalog{
		columns: []models.SchemaColumn{
			{SchemaName: "sctcrb", TableName: "tbl_members", ColumnName: "id", DataType: "int"},
			{SchemaName: "sctcrb", TableName: "tbl_members", ColumnName: "name", DataType: "nvarchar", MaxLength: int64Ptr(100)},
			{SchemaName: "sctcrb", TableName: "tbl_orders", ColumnName: "amount", DataType: "decimal"},
		},
		tables: []models.TableRef{
			models.NewTableRef("dbo", "audit_log"),
			models.NewTableRef("sctcrb", "tbl_members"),
			models.NewTableRef("sctcrb", "tbl_orders"),
		},
		database: "sctcrb",
		server:   "SQL01",
		version:  "Microsoft SQL Server 2022 (RTM) - 16.0.1000.6 (X64)\n\tOct  8 2022 05:58:25\n\tDeveloper Edition",
		identity: &datasource.ConnectionIdentity{
			DatabaseName: "sctcrb",
			ServerName:   "SQL01",
			LoginName:    "app_reader",
			UserName:     "dbo",
		},
		numTables: 3,
		numViews:  1,
		numProcs:  2,
	}
}

func int64Ptr(v int64) *int64 { return &v }

func (m *mockCatalog) hit() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.err
}

func (m *mockCatalog) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *mockCatalog) ListColumns(ctx context.Context) ([]models.SchemaColumn, error) {
	if err := m.hit(); err != nil {
		return nil, err
	}
	return m.columns, nil
}

func (m *mockCatalog) ListTables(ctx context.Context) ([]models.TableRef, error) {
	if err := m.hit(); err != nil {
		return nil, err
	}
	return m.tables, nil
}

func (m *mockCatalog) ListTablesInSchema(ctx context.Context, schema string) ([]models.TableRef, error) {
	if err := m.hit(); err != nil {
		return nil, err
	}
	if m.schemaTablesErr != nil {
		return nil, m.schemaTablesErr
	}
	var out []models.TableRef
	for _, t := range m.tables {
		if t.SchemaName == schema {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockCatalog) CurrentDatabase(ctx context.Context) (string, error) {
	return m.database, m.hit()
}

func (m *mockCatalog) ServerName(ctx context.Context) (string, error) {
	return m.server, m.hit()
}

func (m *mockCatalog) ServerVersion(ctx context.Context) (string, error) {
	return m.version, m.hit()
}

func (m *mockCatalog) ConnectionIdentity(ctx context.Context) (*datasource.ConnectionIdentity, error) {
	if err := m.hit(); err != nil {
		return nil, err
	}
	return m.identity, nil
}

func (m *mockCatalog) CountTables(ctx context.Context) (int, error) {
	return m.numTables, m.hit()
}

func (m *mockCatalog) CountViews(ctx context.Context) (int, error) {
	return m.numViews, m.hit()
}

func (m *mockCatalog) CountProcedures(ctx context.Context) (int, error) {
	return m.numProcs, m.hit()
}

var _ datasource.Catalog = (*mockCatalog)(nil)

// mockRunner records the statements it is asked to run.
type mockRunner struct {
	mu      sync.Mutex
	queries []string

	result *datasource.QueryExecutionResult
	err    error
}

func (m *mockRunner) Query(ctx context.Context, sqlQuery string) (*datasource.QueryExecutionResult, error) {
	m.mu.Lock()
	m.queries = append(m.queries, sqlQuery)
	m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	if m.result == nil {
		return &datasource.QueryExecutionResult{}, nil
	}
	return m.result, nil
}

func (m *mockRunner) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.queries...)
}

var _ datasource.QueryRunner = (*mockRunner)(nil)

// recordingSink keeps audit events in memory.
type recordingSink struct {
	mu     sync.Mutex
	events []audit.Event
}

func (s *recordingSink) Record(_ context.Context, event audit.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *recordingSink) Types() []audit.EventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	types := make([]audit.EventType, len(s.events))
	for i, e := range s.events {
		types[i] = e.Type
	}
	return types
}

func (s *recordingSink) Find(eventType audit.EventType) (audit.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.events {
		if e.Type == eventType {
			return e, true
		}
	}
	return audit.Event{}, false
}
