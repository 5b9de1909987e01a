package mssql

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-ask/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-ask/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-ask/pkg/models"
)

const (
	listColumnsQuery = `
	SELECT
	    t.TABLE_SCHEMA,
	    t.TABLE_NAME,
	    c.COLUMN_NAME,
	    c.DATA_TYPE,
	    c.IS_NULLABLE,
	    c.CHARACTER_MAXIMUM_LENGTH
	FROM INFORMATION_SCHEMA.TABLES t
	INNER JOIN INFORMATION_SCHEMA.COLUMNS c
	    ON t.TABLE_NAME = c.TABLE_NAME
	    AND t.TABLE_SCHEMA = c.TABLE_SCHEMA
	WHERE t.TABLE_TYPE = 'BASE TABLE'
	    AND t.TABLE_SCHEMA NOT IN ('sys', 'INFORMATION_SCHEMA')
	ORDER BY t.TABLE_SCHEMA, t.TABLE_NAME, c.ORDINAL_POSITION`

	listTablesQuery = `
	SELECT
	    TABLE_SCHEMA + '.' + TABLE_NAME AS FullTableName,
	    TABLE_NAME AS TableName,
	    TABLE_SCHEMA AS SchemaName
	FROM INFORMATION_SCHEMA.TABLES
	WHERE TABLE_TYPE = 'BASE TABLE'
	    AND TABLE_SCHEMA NOT IN ('sys', 'INFORMATION_SCHEMA')
	ORDER BY TABLE_SCHEMA, TABLE_NAME`

	listTablesInSchemaQuery = `
	SELECT
	    TABLE_SCHEMA + '.' + TABLE_NAME AS FullTableName,
	    TABLE_NAME AS TableName,
	    TABLE_SCHEMA AS SchemaName
	FROM INFORMATION_SCHEMA.TABLES
	WHERE TABLE_TYPE = 'BASE TABLE'
	    AND TABLE_SCHEMA = @p1
	ORDER BY TABLE_NAME`

	countTablesQuery = `
	SELECT COUNT(*) AS TableCount
	FROM INFORMATION_SCHEMA.TABLES
	WHERE TABLE_TYPE = 'BASE TABLE'
	    AND TABLE_SCHEMA NOT IN ('sys', 'INFORMATION_SCHEMA')`

	countViewsQuery = `
	SELECT COUNT(*) AS ViewCount
	FROM INFORMATION_SCHEMA.VIEWS
	WHERE TABLE_SCHEMA NOT IN ('sys', 'INFORMATION_SCHEMA')`

	countProceduresQuery = `
	SELECT COUNT(*) AS ProcCount
	FROM INFORMATION_SCHEMA.ROUTINES
	WHERE ROUTINE_TYPE = 'PROCEDURE'
	    AND ROUTINE_SCHEMA NOT IN ('sys', 'INFORMATION_SCHEMA')`

	currentDatabaseQuery = `SELECT DB_NAME() AS CurrentDatabase`
	serverNameQuery      = `SELECT @@SERVERNAME AS ServerName`
	serverVersionQuery   = `SELECT @@VERSION AS Version`

	connectionIdentityQuery = `
	SELECT
	    DB_NAME() AS DatabaseName,
	    @@SERVERNAME AS ServerName,
	    SUSER_SNAME() AS LoginName,
	    USER_NAME() AS UserName`
)

// catalogError wraps err as a CatalogQueryError for operation.
func catalogError(operation string, err error) error {
	return &apperrors.CatalogQueryError{Operation: operation, Cause: err}
}

// ListColumns returns every column of every base table ordered by schema,
// table and ordinal position.
func (a *Adapter) ListColumns(ctx context.Context) ([]models.SchemaColumn, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	rows, err := a.db.QueryContext(ctx, listColumnsQuery)
	if err != nil {
		return nil, catalogError("list columns", err)
	}
	defer rows.Close()

	var columns []models.SchemaColumn
	for rows.Next() {
		var (
			col       models.SchemaColumn
			nullable  string
			maxLength sql.NullInt64
		)
		if err := rows.Scan(&col.SchemaName, &col.TableName, &col.ColumnName, &col.DataType, &nullable, &maxLength); err != nil {
			return nil, catalogError("list columns", fmt.Errorf("scan column row: %w", err))
		}
		col.IsNullable = nullable == "YES"
		// -1 is (max); 0 never describes a real length
		if maxLength.Valid && maxLength.Int64 != 0 {
			n := maxLength.Int64
			col.MaxLength = &n
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, catalogError("list columns", fmt.Errorf("iterate column rows: %w", err))
	}

	a.logger.Debug("Listed catalog columns", zap.Int("columns", len(columns)))
	return columns, nil
}

// ListTables returns all base tables ordered by schema then table.
func (a *Adapter) ListTables(ctx context.Context) ([]models.TableRef, error) {
	return a.queryTables(ctx, "list tables", listTablesQuery)
}

// ListTablesInSchema returns the base tables of schema ordered by name.
func (a *Adapter) ListTablesInSchema(ctx context.Context, schema string) ([]models.TableRef, error) {
	return a.queryTables(ctx, "list tables in schema", listTablesInSchemaQuery, schema)
}

func (a *Adapter) queryTables(ctx context.Context, operation, query string, args ...any) ([]models.TableRef, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, catalogError(operation, err)
	}
	defer rows.Close()

	tables := make([]models.TableRef, 0)
	for rows.Next() {
		var t models.TableRef
		if err := rows.Scan(&t.FullTableName, &t.TableName, &t.SchemaName); err != nil {
			return nil, catalogError(operation, fmt.Errorf("scan table row: %w", err))
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, catalogError(operation, fmt.Errorf("iterate table rows: %w", err))
	}
	return tables, nil
}

// CurrentDatabase returns DB_NAME().
func (a *Adapter) CurrentDatabase(ctx context.Context) (string, error) {
	return a.queryString(ctx, "current database", currentDatabaseQuery)
}

// ServerName returns @@SERVERNAME.
func (a *Adapter) ServerName(ctx context.Context) (string, error) {
	return a.queryString(ctx, "server name", serverNameQuery)
}

// ServerVersion returns the full @@VERSION banner.
func (a *Adapter) ServerVersion(ctx context.Context) (string, error) {
	return a.queryString(ctx, "server version", serverVersionQuery)
}

// ConnectionIdentity returns database, server, login and database user in one round trip.
func (a *Adapter) ConnectionIdentity(ctx context.Context) (*datasource.ConnectionIdentity, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	var dbName, server, login, user sql.NullString
	if err := a.db.QueryRowContext(ctx, connectionIdentityQuery).Scan(&dbName, &server, &login, &user); err != nil {
		return nil, catalogError("connection identity", err)
	}
	return &datasource.ConnectionIdentity{
		DatabaseName: dbName.String,
		ServerName:   server.String,
		LoginName:    login.String,
		UserName:     user.String,
	}, nil
}

func (a *Adapter) CountTables(ctx context.Context) (int, error) {
	return a.queryCount(ctx, "count tables", countTablesQuery)
}

func (a *Adapter) CountViews(ctx context.Context) (int, error) {
	return a.queryCount(ctx, "count views", countViewsQuery)
}

func (a *Adapter) CountProcedures(ctx context.Context) (int, error) {
	return a.queryCount(ctx, "count procedures", countProceduresQuery)
}

// queryString scans a single nullable string; NULL becomes "".
func (a *Adapter) queryString(ctx context.Context, operation, query string) (string, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	var v sql.NullString
	if err := a.db.QueryRowContext(ctx, query).Scan(&v); err != nil {
		return "", catalogError(operation, err)
	}
	return v.String, nil
}

func (a *Adapter) queryCount(ctx context.Context, operation, query string) (int, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	var n int
	if err := a.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, catalogError(operation, err)
	}
	return n, nil
}
