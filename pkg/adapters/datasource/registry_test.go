package datasource

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-ask/pkg/config"
)

func TestRegistry_OpenUnknownType(t *testing.T) {
	_, err := Open(context.Background(), "oracle-test-unknown", &config.DatabaseConfig{}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported datasource type")
	assert.False(t, IsRegistered("oracle-test-unknown"))
}

func TestRegistry_RegisterAndOpen(t *testing.T) {
	called := false
	Register(DatasourceAdapterRegistration{
		Info: DatasourceAdapterInfo{Type: "zz-test", DisplayName: "Test"},
		Factory: func(ctx context.Context, cfg *config.DatabaseConfig, logger *zap.Logger) (Datasource, error) {
			called = true
			assert.Equal(t, "sctcrb", cfg.Database)
			return nil, nil
		},
	})

	assert.True(t, IsRegistered("zz-test"))
	_, err := Open(context.Background(), "zz-test", &config.DatabaseConfig{Database: "sctcrb"}, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, called)

	infos := RegisteredAdapters()
	require.NotEmpty(t, infos)
	assert.Equal(t, "zz-test", infos[len(infos)-1].Type)
}

func TestQueryExecutionResult_ColumnNames(t *testing.T) {
	r := &QueryExecutionResult{Columns: []ColumnInfo{{Name: "b"}, {Name: "a"}}}
	assert.Equal(t, []string{"b", "a"}, r.ColumnNames())
}
