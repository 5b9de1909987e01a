package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-ask/pkg/models"
	"github.com/ekaya-inc/ekaya-ask/pkg/prompts"
)

func TestSchemaInspector_DescribeSchema(t *testing.T) {
	catalog := newMockCatalog()
	inspector := NewSchemaInspector(catalog, "sctcrb", zap.NewNop())

	text, desc, err := inspector.DescribeSchema(context.Background())
	require.NoError(t, err)

	require.Len(t, desc.Tables, 2)
	assert.Equal(t, "sctcrb.tbl_members", desc.Tables[0].FullName)
	assert.Contains(t, text, "AVAILABLE TABLES (2 total):")
	assert.Contains(t, text, "TABLE: sctcrb.tbl_members\nColumns: id (int), name (nvarchar(100))\n")
	assert.Contains(t, text, "TABLE: sctcrb.tbl_orders\nColumns: amount (decimal)\n")
}

func TestSchemaInspector_DescribeSchemaReadsCatalogEachCall(t *testing.T) {
	catalog := newMockCatalog()
	inspector := NewSchemaInspector(catalog, "sctcrb", nil)

	_, _, err := inspector.DescribeSchema(context.Background())
	require.NoError(t, err)
	_, _, err = inspector.DescribeSchema(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, catalog.Calls())
}

func TestSchemaInspector_EmptyCatalog(t *testing.T) {
	catalog := newMockCatalog()
	catalog.columns = nil
	inspector := NewSchemaInspector(catalog, "sctcrb", zap.NewNop())

	text, desc, err := inspector.DescribeSchema(context.Background())
	require.NoError(t, err)

	assert.Equal(t, prompts.NoTablesFound, text)
	assert.True(t, desc.IsEmpty())
}

func TestSchemaInspector_CatalogError(t *testing.T) {
	catalog := newMockCatalog()
	catalog.err = errors.New("login failed for user 'app_reader'")
	inspector := NewSchemaInspector(catalog, "sctcrb", zap.NewNop())

	text, desc, err := inspector.DescribeSchema(context.Background())
	require.Error(t, err)
	assert.Empty(t, text)
	assert.Nil(t, desc)
}

func TestSchemaInspector_ListSchemaTables(t *testing.T) {
	inspector := NewSchemaInspector(newMockCatalog(), "sctcrb", zap.NewNop())

	tables, err := inspector.ListSchemaTables(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []models.TableRef{
		models.NewTableRef("sctcrb", "tbl_members"),
		models.NewTableRef("sctcrb", "tbl_orders"),
	}, tables)
	assert.Equal(t, "sctcrb", inspector.DefaultSchema())
}
