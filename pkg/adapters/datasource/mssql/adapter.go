package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/microsoft/go-mssqldb" // SQL Server driver
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-ask/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-ask/pkg/logging"
)

// Adapter provides SQL Server catalog access and read-only query execution
// over one shared *sql.DB pool.
type Adapter struct {
	config  *Config
	db      *sql.DB
	logger  *zap.Logger
	ownedDB bool // true if we opened the DB and must close it
}

// NewAdapter opens a connection pool for cfg. The pool connects lazily;
// use TestConnection to verify reachability.
func NewAdapter(cfg *Config, logger *zap.Logger) (*Adapter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	db, err := sql.Open("sqlserver", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("open SQL auth connection: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxOpenConns)
	}
	db.SetConnMaxIdleTime(5 * time.Minute)

	a := NewAdapterWithDB(cfg, db, logger)
	a.ownedDB = true

	a.logger.Info("SQL Server pool configured",
		zap.String("dsn", logging.SanitizeConnectionString(cfg.ConnectionString())),
		zap.Int("max_open_conns", cfg.MaxOpenConns))

	return a, nil
}

// NewAdapterWithDB wraps an existing pool. The caller keeps ownership of db.
// If logger is nil, a no-op logger is used.
func NewAdapterWithDB(cfg *Config, db *sql.DB, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = DefaultQueryTimeout
	}
	return &Adapter{
		config: cfg,
		db:     db,
		logger: logger.Named("mssql"),
	}
}

// withTimeout bounds a single database call by the configured query timeout.
func (a *Adapter) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.config.QueryTimeout)
}

// TestConnection verifies the database is reachable with valid credentials.
func (a *Adapter) TestConnection(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}

	// Run a simple query to ensure we have database access
	var result int
	err := a.db.QueryRowContext(ctx, "SELECT 1").Scan(&result)
	if err != nil {
		return fmt.Errorf("test query failed: %w", err)
	}

	return nil
}

// Close releases the pool if the adapter opened it.
func (a *Adapter) Close() error {
	if a.ownedDB && a.db != nil {
		return a.db.Close()
	}
	return nil
}

// DB returns the underlying *sql.DB.
func (a *Adapter) DB() *sql.DB {
	return a.db
}

// Ensure Adapter implements Datasource at compile time.
var _ datasource.Datasource = (*Adapter)(nil)
