package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultConfigFile is read when present; a missing file means env-only configuration.
const DefaultConfigFile = "config.yaml"

// Config holds all configuration for ekaya-ask.
// Values come from config.yaml and/or environment variables; environment
// variables win. Secrets (database password, LLM API key) are env-only.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	LogJSON  bool   `yaml:"log_json" env:"LOG_JSON" env-default:"false"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Database is the SQL Server instance questions are answered against.
	Database DatabaseConfig `yaml:"database"`

	// LLM is the completion endpoint used for SQL synthesis.
	LLM LLMConfig `yaml:"llm"`

	Ask AskConfig `yaml:"ask"`
}

// DatabaseConfig holds SQL Server connection settings.
type DatabaseConfig struct {
	Host                   string        `yaml:"host" env:"MSSQL_HOST" env-default:"localhost"`
	Port                   int           `yaml:"port" env:"MSSQL_PORT" env-default:"1433"`
	Database               string        `yaml:"database" env:"MSSQL_DATABASE" env-default:"sctcrb"`
	User                   string        `yaml:"user" env:"MSSQL_USER" env-default:"sa"`
	Password               string        `yaml:"-" env:"MSSQL_PASSWORD"` // Secret - not in YAML
	Encrypt                bool          `yaml:"encrypt" env:"MSSQL_ENCRYPT" env-default:"false"`
	TrustServerCertificate bool          `yaml:"trust_server_certificate" env:"MSSQL_TRUST_SERVER_CERTIFICATE" env-default:"true"`
	ConnectionTimeout      int           `yaml:"connection_timeout" env:"MSSQL_CONNECTION_TIMEOUT" env-default:"30"` // seconds
	QueryTimeout           time.Duration `yaml:"query_timeout" env:"MSSQL_QUERY_TIMEOUT" env-default:"30s"`
	MaxOpenConns           int           `yaml:"max_open_conns" env:"MSSQL_MAX_OPEN_CONNS" env-default:"10"`
}

// LLMConfig holds completion endpoint settings.
type LLMConfig struct {
	// Provider is "openai" (any OpenAI-compatible endpoint) or "anthropic".
	Provider    string        `yaml:"provider" env:"LLM_PROVIDER" env-default:"openai"`
	BaseURL     string        `yaml:"base_url" env:"LLM_BASE_URL" env-default:""`
	Model       string        `yaml:"model" env:"LLM_MODEL" env-default:"meta-llama/Meta-Llama-3-8B-Instruct"`
	APIKey      string        `yaml:"-" env:"LLM_API_KEY"` // Secret - not in YAML
	Temperature float64       `yaml:"temperature" env:"LLM_TEMPERATURE" env-default:"0.1"`
	MaxTokens   int           `yaml:"max_tokens" env:"LLM_MAX_TOKENS" env-default:"512"`
	Timeout     time.Duration `yaml:"timeout" env:"LLM_TIMEOUT" env-default:"120s"`
}

// AskConfig holds question-pipeline settings.
type AskConfig struct {
	// DefaultSchema prefixes unqualified FROM/JOIN targets and scopes the
	// table suggestions shown when a query references a missing object.
	DefaultSchema string `yaml:"default_schema" env:"ASK_DEFAULT_SCHEMA" env-default:"sctcrb"`

	// AIEnabledDefault applies when a request omits ai_enabled.
	AIEnabledDefault bool `yaml:"ai_enabled_default" env:"ASK_AI_ENABLED_DEFAULT" env-default:"true"`
}

// Load reads configuration from config.yaml (when it exists) with environment
// variable overrides, then validates it.
func Load(version string) (*Config, error) {
	return LoadFile(DefaultConfigFile, version)
}

// LoadFile is Load with an explicit config file path.
func LoadFile(path, version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else if errors.Is(err, os.ErrNotExist) {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	} else {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	cfg.LLM.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.LLM.BaseURL), "/")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the loaded configuration is usable.
func (c *Config) Validate() error {
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.LLM.Validate(); err != nil {
		return fmt.Errorf("llm: %w", err)
	}
	if strings.TrimSpace(c.Ask.DefaultSchema) == "" {
		return fmt.Errorf("ask: default_schema is required")
	}
	return nil
}

// Validate checks the database settings.
func (c *DatabaseConfig) Validate() error {
	if strings.TrimSpace(c.Host) == "" {
		return fmt.Errorf("host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if strings.TrimSpace(c.Database) == "" {
		return fmt.Errorf("database name is required")
	}
	if c.ConnectionTimeout <= 0 {
		return fmt.Errorf("connection_timeout must be positive")
	}
	if c.QueryTimeout <= 0 {
		return fmt.Errorf("query_timeout must be positive")
	}
	return nil
}

// Validate checks the completion endpoint settings.
func (c *LLMConfig) Validate() error {
	switch c.Provider {
	case "openai":
		if c.BaseURL == "" {
			return fmt.Errorf("base_url is required for provider %q", c.Provider)
		}
	case "anthropic":
	default:
		return fmt.Errorf("unsupported provider %q (want openai or anthropic)", c.Provider)
	}
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive")
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return c.BindAddr + ":" + c.Port
}
