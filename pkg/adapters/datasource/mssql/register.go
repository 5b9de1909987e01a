package mssql

import (
	"context"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-ask/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-ask/pkg/config"
)

// Type is the registry key for this adapter.
const Type = "mssql"

func init() {
	datasource.Register(datasource.DatasourceAdapterRegistration{
		Info: datasource.DatasourceAdapterInfo{
			Type:        Type,
			DisplayName: "Microsoft SQL Server",
			Description: "Connect to SQL Server 2017+ with SQL authentication",
		},
		Factory: func(ctx context.Context, cfg *config.DatabaseConfig, logger *zap.Logger) (datasource.Datasource, error) {
			return NewAdapter(FromAppConfig(cfg), logger)
		},
	})
}
