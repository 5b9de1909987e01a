package mssql

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	appconfig "github.com/ekaya-inc/ekaya-ask/pkg/config"
)

// Config contains SQL Server connection options. Only SQL authentication
// is supported.
type Config struct {
	Host     string
	Port     int
	Database string

	Username string
	Password string

	// Connection options
	Encrypt                bool
	TrustServerCertificate bool
	ConnectionTimeout      int // seconds

	// QueryTimeout bounds every catalog and user query.
	QueryTimeout time.Duration
	MaxOpenConns int
}

// DefaultPort returns the default SQL Server port.
func DefaultPort() int {
	return 1433
}

// DefaultConnectionTimeout returns the default connection timeout in seconds.
func DefaultConnectionTimeout() int {
	return 30
}

// DefaultQueryTimeout is used when QueryTimeout is unset.
const DefaultQueryTimeout = 30 * time.Second

// FromAppConfig builds a Config from the database section of the
// application configuration. Loopback hosts are remapped when running in Docker.
func FromAppConfig(c *appconfig.DatabaseConfig) *Config {
	cfg := &Config{
		Host:                   appconfig.ResolveHostForDocker(c.Host),
		Port:                   c.Port,
		Database:               c.Database,
		Username:               c.User,
		Password:               c.Password,
		Encrypt:                c.Encrypt,
		TrustServerCertificate: c.TrustServerCertificate,
		ConnectionTimeout:      c.ConnectionTimeout,
		QueryTimeout:           c.QueryTimeout,
		MaxOpenConns:           c.MaxOpenConns,
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort()
	}
	if cfg.ConnectionTimeout == 0 {
		cfg.ConnectionTimeout = DefaultConnectionTimeout()
	}
	if cfg.QueryTimeout == 0 {
		cfg.QueryTimeout = DefaultQueryTimeout
	}
	return cfg
}

// Validate checks if the config has all required fields.
func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.Database == "" {
		return fmt.Errorf("database is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.Username == "" {
		return fmt.Errorf("username is required for SQL authentication")
	}
	return nil
}

// ConnectionString returns the sqlserver:// DSN for SQL authentication.
func (c *Config) ConnectionString() string {
	query := url.Values{}
	query.Add("database", c.Database)

	if c.Encrypt {
		query.Add("encrypt", "true")
	} else {
		query.Add("encrypt", "false")
	}

	if c.TrustServerCertificate {
		query.Add("TrustServerCertificate", "true")
	}

	if c.ConnectionTimeout > 0 {
		query.Add("connection timeout", fmt.Sprintf("%d", c.ConnectionTimeout))
	}

	u := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(c.Username, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		RawQuery: query.Encode(),
	}
	return u.String()
}
