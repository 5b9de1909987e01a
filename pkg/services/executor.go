package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-ask/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-ask/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-ask/pkg/logging"
	"github.com/ekaya-inc/ekaya-ask/pkg/models"
	sqlgate "github.com/ekaya-inc/ekaya-ask/pkg/sql"
)

// QueryExecutor runs vetted statements.
type QueryExecutor interface {
	// Execute re-checks the read-only rules, runs sql and summarizes the rows.
	// Database failures are returned as *apperrors.QueryExecutionError.
	Execute(ctx context.Context, sql string) (*models.QueryResult, error)
}

type queryExecutor struct {
	runner datasource.QueryRunner
	logger *zap.Logger
}

// NewQueryExecutor creates an executor over runner.
func NewQueryExecutor(runner datasource.QueryRunner, logger *zap.Logger) QueryExecutor {
	return &queryExecutor{
		runner: runner,
		logger: logging.OrNop(logger).Named("executor"),
	}
}

func (e *queryExecutor) Execute(ctx context.Context, sql string) (*models.QueryResult, error) {
	sql = strings.TrimSpace(sql)

	// Must hold even for callers that skipped the gate.
	if err := sqlgate.CheckReadOnly(sql); err != nil {
		return nil, err
	}

	res, err := e.runner.Query(ctx, sql)
	if err != nil {
		e.logger.Warn("Query execution failed",
			zap.String("sql", logging.SanitizeQuery(sql)),
			zap.String("error", logging.SanitizeError(err)))
		return nil, apperrors.NewQueryExecutionError(err)
	}

	result := &models.QueryResult{
		Columns:  res.ColumnNames(),
		Rows:     res.Rows,
		RowCount: len(res.Rows),
	}
	result.Summary = Summarize(result)
	return result, nil
}

// Summarize renders the row count and column list of a result.
func Summarize(result *models.QueryResult) string {
	if result.RowCount == 0 {
		return "Query executed successfully, but no rows were returned."
	}
	return fmt.Sprintf("Found %d row(s).\nColumns: %s", result.RowCount, strings.Join(result.Columns, ", "))
}
