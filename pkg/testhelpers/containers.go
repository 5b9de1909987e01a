package testhelpers

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	_ "github.com/microsoft/go-mssqldb" // SQL Server driver
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/ekaya-inc/ekaya-ask/pkg/config"
)

// MSSQLImage is the SQL Server image used for integration tests.
const MSSQLImage = "mcr.microsoft.com/mssql/server:2022-latest"

const (
	testSAPassword = "Ekaya_Test_Pass1!"
	testDatabase   = "sctcrb"
)

// seedStatements create the sctcrb database the question pipeline is tested against.
var seedStatements = []string{
	`CREATE SCHEMA sctcrb`,
	`CREATE TABLE sctcrb.tbl_members (
	    member_id INT PRIMARY KEY,
	    name NVARCHAR(100) NOT NULL,
	    email NVARCHAR(200) NULL,
	    joined_on DATE NULL
	)`,
	`CREATE TABLE sctcrb.tbl_orders (
	    order_id INT PRIMARY KEY,
	    member_id INT NOT NULL,
	    amount DECIMAL(10, 2) NOT NULL
	)`,
	`CREATE VIEW sctcrb.v_member_totals AS
	    SELECT m.member_id, m.name, SUM(o.amount) AS total
	    FROM sctcrb.tbl_members m
	    JOIN sctcrb.tbl_orders o ON o.member_id = m.member_id
	    GROUP BY m.member_id, m.name`,
	`INSERT INTO sctcrb.tbl_members (member_id, name, email, joined_on) VALUES
	    (1, N'Ann', N'ann@example.com', '2024-01-05'),
	    (2, N'Bob', NULL, '2024-02-11'),
	    (3, N'Chen', N'chen@example.com', NULL)`,
	`INSERT INTO sctcrb.tbl_orders (order_id, member_id, amount) VALUES
	    (10, 1, 12.50), (11, 1, 7.25), (12, 3, 100.00)`,
}

// TestMSSQL holds a shared SQL Server container with the seeded sctcrb database.
type TestMSSQL struct {
	Container testcontainers.Container
	DB        *sql.DB
	Config    config.DatabaseConfig
}

var (
	sharedMSSQL     *TestMSSQL
	sharedMSSQLOnce sync.Once
	sharedMSSQLErr  error
)

// GetTestMSSQL returns a shared SQL Server container for integration tests.
// The container is created once and reused across all tests in the run.
func GetTestMSSQL(t *testing.T) *TestMSSQL {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	sharedMSSQLOnce.Do(func() {
		sharedMSSQL, sharedMSSQLErr = setupTestMSSQL()
	})

	if sharedMSSQLErr != nil {
		t.Fatalf("Failed to setup test SQL Server: %v", sharedMSSQLErr)
	}

	return sharedMSSQL
}

func setupTestMSSQL() (*TestMSSQL, error) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        MSSQLImage,
		ExposedPorts: []string{"1433/tcp"},
		Env: map[string]string{
			"ACCEPT_EULA":       "Y",
			"MSSQL_SA_PASSWORD": testSAPassword,
			"MSSQL_PID":         "Developer",
		},
		WaitingFor: wait.ForLog("SQL Server is now ready for client connections").
			WithStartupTimeout(120 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start test container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "1433")
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	portNum, err := strconv.Atoi(port.Port())
	if err != nil {
		return nil, fmt.Errorf("invalid mapped port %q: %w", port.Port(), err)
	}

	master, err := sql.Open("sqlserver", dsn(host, portNum, "master"))
	if err != nil {
		return nil, fmt.Errorf("failed to open master connection: %w", err)
	}
	defer master.Close()

	// The ready log line can precede accepting logins by a few seconds
	if err := pingWithRetry(ctx, master); err != nil {
		return nil, err
	}

	if _, err := master.ExecContext(ctx, "IF DB_ID(N'"+testDatabase+"') IS NULL CREATE DATABASE "+testDatabase); err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}

	db, err := sql.Open("sqlserver", dsn(host, portNum, testDatabase))
	if err != nil {
		return nil, fmt.Errorf("failed to open test database: %w", err)
	}
	if err := pingWithRetry(ctx, db); err != nil {
		return nil, err
	}

	for _, stmt := range seedStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("failed to seed test database: %w", err)
		}
	}

	return &TestMSSQL{
		Container: container,
		DB:        db,
		Config: config.DatabaseConfig{
			Host:                   host,
			Port:                   portNum,
			Database:               testDatabase,
			User:                   "sa",
			Password:               testSAPassword,
			TrustServerCertificate: true,
			ConnectionTimeout:      30,
			QueryTimeout:           30 * time.Second,
			MaxOpenConns:           5,
		},
	}, nil
}

func dsn(host string, port int, database string) string {
	return fmt.Sprintf("sqlserver://sa:%s@%s:%d?database=%s&encrypt=disable&TrustServerCertificate=true",
		testSAPassword, host, port, database)
}

func pingWithRetry(ctx context.Context, db *sql.DB) error {
	var err error
	for i := 0; i < 30; i++ {
		if err = db.PingContext(ctx); err == nil {
			return nil
		}
		time.Sleep(time.Second)
	}
	return fmt.Errorf("SQL Server did not accept connections: %w", err)
}
