package handlers

import (
	"context"
	"errors"

	"github.com/ekaya-inc/ekaya-ask/pkg/models"
)

// mockAskService returns a fixed result and records the request it saw.
type mockAskService struct {
	result *models.AskResult
	got    *models.AskRequest
}

func (m *mockAskService) Ask(ctx context.Context, req *models.AskRequest) *models.AskResult {
	m.got = req
	return m.result
}

// mockSchemaInspector serves fixed schema text and tables.
type mockSchemaInspector struct {
	text      string
	tables    []models.TableRef
	err       error
	tablesErr error
}

func (m *mockSchemaInspector) DescribeSchema(ctx context.Context) (string, *models.SchemaDescription, error) {
	if m.err != nil {
		return "", nil, m.err
	}
	return m.text, &models.SchemaDescription{}, nil
}

func (m *mockSchemaInspector) ListSchemaTables(ctx context.Context) ([]models.TableRef, error) {
	if m.tablesErr != nil {
		return nil, m.tablesErr
	}
	return m.tables, nil
}

func (m *mockSchemaInspector) DefaultSchema() string { return "sctcrb" }

// mockTester is a datasource.ConnectionTester.
type mockTester struct {
	err error
}

func (m *mockTester) TestConnection(ctx context.Context) error { return m.err }
func (m *mockTester) Close() error { return nil }

var errLoginFailed = errors.New("ping failed: Login failed for user 'sa'. password=hunter2")
