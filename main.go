package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-ask/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-ask/pkg/adapters/datasource/mssql"
	"github.com/ekaya-inc/ekaya-ask/pkg/audit"
	"github.com/ekaya-inc/ekaya-ask/pkg/config"
	"github.com/ekaya-inc/ekaya-ask/pkg/handlers"
	"github.com/ekaya-inc/ekaya-ask/pkg/llm"
	"github.com/ekaya-inc/ekaya-ask/pkg/logging"
	"github.com/ekaya-inc/ekaya-ask/pkg/mcp"
	"github.com/ekaya-inc/ekaya-ask/pkg/mcp/tools"
	"github.com/ekaya-inc/ekaya-ask/pkg/middleware"
	"github.com/ekaya-inc/ekaya-ask/pkg/services"
	sqlgate "github.com/ekaya-inc/ekaya-ask/pkg/sql"
)

// Version is set at build time via ldflags
var Version = "dev"

const shutdownTimeout = 15 * time.Second

func main() {
	// .env is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Ignoring .env: %v", err)
	}

	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.NewLogger(cfg.LogLevel, cfg.LogJSON)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("version", cfg.Version),
		zap.String("environment", cfg.Env),
		zap.String("database", cfg.Database.User+"@"+cfg.Database.Host+"/"+cfg.Database.Database),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("llm_model", cfg.LLM.Model),
		zap.String("default_schema", cfg.Ask.DefaultSchema))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Debug("Datasource adapters registered", zap.Any("adapters", datasource.RegisteredAdapters()))
	ds, err := datasource.Open(ctx, mssql.Type, &cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to open datasource", zap.String("error", logging.SanitizeError(err)))
	}
	defer ds.Close()

	completer, err := llm.NewCompleter(&cfg.LLM, logger)
	if err != nil {
		logger.Fatal("Failed to create completion client", zap.Error(err))
	}

	auditSink := audit.NewLogSink(logger)
	inspector := services.NewSchemaInspector(ds, cfg.Ask.DefaultSchema, logger)
	askService := services.NewAskService(services.AskDeps{
		Classifier: services.NewClassifier(),
		Meta:       services.NewMetaService(ds, logger),
		Schema:     inspector,
		Synthesizer: services.NewSQLSynthesizer(completer, services.SynthesizerConfig{
			DefaultSchema: cfg.Ask.DefaultSchema,
			Temperature:   cfg.LLM.Temperature,
			MaxTokens:     cfg.LLM.MaxTokens,
		}, logger),
		Gate:     sqlgate.NewGate(cfg.Ask.DefaultSchema),
		Executor: services.NewQueryExecutor(ds, logger),
		Audit:    auditSink,
	}, cfg.Ask.AIEnabledDefault, logger)

	mux := http.NewServeMux()

	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewAskHandler(askService, logger).RegisterRoutes(mux)
	handlers.NewSchemaHandler(inspector, logger).RegisterRoutes(mux)
	handlers.NewDatasourceHandler(ds, logger).RegisterRoutes(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	auditor := mcp.NewToolCallAuditor(auditSink, logger)
	mcpServer := mcp.NewServer(handlers.ServiceName, cfg.Version, auditor.Hooks(), logger)
	tools.RegisterAskTool(mcpServer.MCP(), askService)
	tools.RegisterHealthTool(mcpServer.MCP(), cfg.Version, ds)
	mux.Handle("/mcp", middleware.MCPRequestLogger(logger)(mcpServer.NewStreamableHTTPServer()))

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: middleware.Chain(mux,
			middleware.RequestID,
			middleware.RequestLogger(logger),
			middleware.Metrics),
		ReadHeaderTimeout: 10 * time.Second,

		// Completions can take up to llm.timeout; leave room for the query after it.
		WriteTimeout: cfg.LLM.Timeout + cfg.Database.QueryTimeout + 10*time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting ekaya-ask", zap.String("addr", srv.Addr), zap.String("version", cfg.Version))
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Graceful shutdown failed", zap.Error(err))
		}
	}
}
