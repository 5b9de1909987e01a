package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-ask/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-ask/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-ask/pkg/logging"
	"github.com/ekaya-inc/ekaya-ask/pkg/models"
)

const (
	managementTool = "SQL Server Management Studio (SSMS)"
	databaseSystem = "Microsoft SQL Server"

	securityRestrictionError   = "Security Restriction"
	securityRestrictionDetails = "Cannot provide passwords, credentials, or other sensitive security information. This is a protected operation for security reasons."

	unsupportedMetaError = "Unsupported meta question"
)

// metaFailureMessages is the user-facing error per intent when a catalog lookup fails.
var metaFailureMessages = map[models.Intent]string{
	models.IntentDatabaseName:     "Could not retrieve database information",
	models.IntentConnectionInfo:   "Could not retrieve connection details",
	models.IntentCountTables:      "Could not count tables",
	models.IntentListTables:       "Could not list tables",
	models.IntentDatabaseStats:    "Could not retrieve statistics",
	models.IntentServerInfo:       "Could not retrieve server information",
	models.IntentTableLocation:    "Could not retrieve table location",
	models.IntentDatabaseLocation: "Could not retrieve database location",
}

// MetaService answers meta-questions from the system catalog.
type MetaService interface {
	// Answer runs the fixed catalog lookups for intent and renders the answer.
	// Catalog failures and intents without a catalog answer come back as a
	// MetaAnswer with Error set, never as a Go error. IntentNone yields nil.
	Answer(ctx context.Context, intent models.Intent) *models.MetaAnswer
}

type metaService struct {
	catalog datasource.Catalog
	logger  *zap.Logger
}

// NewMetaService creates a meta-question answerer over catalog.
func NewMetaService(catalog datasource.Catalog, logger *zap.Logger) MetaService {
	return &metaService{
		catalog: catalog,
		logger:  logging.OrNop(logger).Named("meta"),
	}
}

type metaAnswerFunc func(ctx context.Context) (*models.MetaAnswer, error)

func (s *metaService) Answer(ctx context.Context, intent models.Intent) *models.MetaAnswer {
	if intent == models.IntentSecurityBlock {
		return SecurityBlockAnswer()
	}

	var answer metaAnswerFunc
	switch intent {
	case models.IntentTableLocation:
		answer = s.tableLocation
	case models.IntentDatabaseLocation:
		answer = s.databaseLocation
	case models.IntentListTables:
		answer = s.listTables
	case models.IntentCountTables:
		answer = s.countTables
	case models.IntentDatabaseStats:
		answer = s.databaseStats
	case models.IntentServerInfo:
		answer = s.serverInfo
	case models.IntentConnectionInfo:
		answer = s.connectionInfo
	case models.IntentDatabaseName:
		answer = s.databaseName
	case models.IntentNone:
		return nil
	default:
		s.logger.Warn("No catalog answer for intent", zap.String("intent", intent.String()))
		return &models.MetaAnswer{
			Intent:  intent,
			Error:   unsupportedMetaError,
			Details: fmt.Sprintf("No catalog answer is available for %s questions.", intent),
		}
	}

	result, err := answer(ctx)
	if err != nil {
		s.logger.Error("Meta answer failed",
			zap.String("intent", intent.String()),
			zap.String("error", logging.SanitizeError(err)))
		return &models.MetaAnswer{
			Intent:  intent,
			Error:   metaFailureMessages[intent],
			Details: failureDetails(err),
		}
	}

	result.Intent = intent
	if result.Data == nil {
		result.Data = []map[string]any{}
	}
	if result.RowCount == 0 {
		result.RowCount = len(result.Data)
	}
	return result
}

// SecurityBlockAnswer is returned for questions about credentials. It runs no queries.
func SecurityBlockAnswer() *models.MetaAnswer {
	return &models.MetaAnswer{
		Intent:  models.IntentSecurityBlock,
		Error:   securityRestrictionError,
		Details: securityRestrictionDetails,
	}
}

// failureDetails is the driver message behind a catalog failure.
func failureDetails(err error) string {
	var ce *apperrors.CatalogQueryError
	if errors.As(err, &ce) && ce.Cause != nil {
		return logging.SanitizeError(ce.Cause)
	}
	return logging.SanitizeError(err)
}

func (s *metaService) databaseAndServer(ctx context.Context) (string, string, error) {
	dbName, err := s.catalog.CurrentDatabase(ctx)
	if err != nil {
		return "", "", err
	}
	server, err := s.catalog.ServerName(ctx)
	if err != nil {
		return "", "", err
	}
	return dbName, server, nil
}

func (s *metaService) databaseName(ctx context.Context) (*models.MetaAnswer, error) {
	dbName, server, err := s.databaseAndServer(ctx)
	if err != nil {
		return nil, err
	}
	return &models.MetaAnswer{
		Answer: fmt.Sprintf("You are currently connected to database: **%s**\n\nServer: %s", dbName, server),
		Data:   []map[string]any{{"database": dbName, "server": server}},
	}, nil
}

func (s *metaService) connectionInfo(ctx context.Context) (*models.MetaAnswer, error) {
	id, err := s.catalog.ConnectionIdentity(ctx)
	if err != nil {
		return nil, err
	}

	var answer strings.Builder
	answer.WriteString("Current Connection Details:\n\n")
	answer.WriteString(fmt.Sprintf("• Database: **%s**\n", id.DatabaseName))
	answer.WriteString(fmt.Sprintf("• Server: %s\n", id.ServerName))
	answer.WriteString(fmt.Sprintf("• Login User: %s\n", id.LoginName))
	answer.WriteString(fmt.Sprintf("• Database User: %s", id.UserName))

	return &models.MetaAnswer{
		Answer: answer.String(),
		Data: []map[string]any{{
			"DatabaseName": id.DatabaseName,
			"ServerName":   id.ServerName,
			"LoginName":    id.LoginName,
			"UserName":     id.UserName,
		}},
	}, nil
}

func (s *metaService) countTables(ctx context.Context) (*models.MetaAnswer, error) {
	count, err := s.catalog.CountTables(ctx)
	if err != nil {
		return nil, err
	}
	dbName, err := s.catalog.CurrentDatabase(ctx)
	if err != nil {
		return nil, err
	}
	return &models.MetaAnswer{
		Answer: fmt.Sprintf("The database **%s** contains **%d table(s)**.", dbName, count),
		Data:   []map[string]any{{"database": dbName, "table_count": count}},
	}, nil
}

func (s *metaService) listTables(ctx context.Context) (*models.MetaAnswer, error) {
	tables, err := s.catalog.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	dbName, err := s.catalog.CurrentDatabase(ctx)
	if err != nil {
		return nil, err
	}

	if len(tables) == 0 {
		return &models.MetaAnswer{
			Answer: fmt.Sprintf("No tables found in database **%s**.", dbName),
			Data:   []map[string]any{},
		}, nil
	}

	var answer strings.Builder
	answer.WriteString(fmt.Sprintf("Tables in database **%s** (%d total):\n\n", dbName, len(tables)))

	// Tables arrive ordered by schema, so each schema is one contiguous run.
	data := make([]map[string]any, 0, len(tables))
	current := ""
	for i, t := range tables {
		if i == 0 || t.SchemaName != current {
			if i > 0 {
				answer.WriteString("\n")
			}
			current = t.SchemaName
			answer.WriteString(fmt.Sprintf("**Schema: %s**\n", current))
		}
		answer.WriteString(fmt.Sprintf("  • %s\n", t.TableName))
		data = append(data, map[string]any{
			"FullTableName": t.FullTableName,
			"TableName":     t.TableName,
			"SchemaName":    t.SchemaName,
		})
	}
	answer.WriteString("\n")

	return &models.MetaAnswer{
		Answer:   answer.String(),
		Data:     data,
		RowCount: len(tables),
	}, nil
}

func (s *metaService) databaseStats(ctx context.Context) (*models.MetaAnswer, error) {
	dbName, err := s.catalog.CurrentDatabase(ctx)
	if err != nil {
		return nil, err
	}
	tables, err := s.catalog.CountTables(ctx)
	if err != nil {
		return nil, err
	}
	views, err := s.catalog.CountViews(ctx)
	if err != nil {
		return nil, err
	}
	procs, err := s.catalog.CountProcedures(ctx)
	if err != nil {
		return nil, err
	}

	answer := fmt.Sprintf("Database Statistics for **%s**:\n\n• Tables: %d\n• Views: %d\n• Stored Procedures: %d",
		dbName, tables, views, procs)

	return &models.MetaAnswer{
		Answer: answer,
		Data: []map[string]any{{
			"database":   dbName,
			"tables":     tables,
			"views":      views,
			"procedures": procs,
		}},
	}, nil
}

func (s *metaService) serverInfo(ctx context.Context) (*models.MetaAnswer, error) {
	version, err := s.catalog.ServerVersion(ctx)
	if err != nil {
		return nil, err
	}
	server, err := s.catalog.ServerName(ctx)
	if err != nil {
		return nil, err
	}

	shortVersion := ShortServerVersion(version)

	return &models.MetaAnswer{
		Answer: fmt.Sprintf("SQL Server Information:\n\n• Server Name: %s\n• Version: %s", server, shortVersion),
		Data: []map[string]any{{
			"server_name":  server,
			"version":      shortVersion,
			"full_version": version,
		}},
	}, nil
}

// ShortServerVersion returns the first line of an @@VERSION banner, trimmed.
func ShortServerVersion(version string) string {
	first, _, _ := strings.Cut(version, "\n")
	return strings.TrimSpace(first)
}

func (s *metaService) tableLocation(ctx context.Context) (*models.MetaAnswer, error) {
	dbName, server, err := s.databaseAndServer(ctx)
	if err != nil {
		return nil, err
	}

	answer := fmt.Sprintf("All tables are located in database: **%s**\n\nServer: %s\nManagement Tool: **%s**",
		dbName, server, managementTool)

	return &models.MetaAnswer{
		Answer: answer,
		Data: []map[string]any{{
			"database":        dbName,
			"server":          server,
			"management_tool": managementTool,
			"location_type":   "tables",
		}},
	}, nil
}

// databaseLocation never reports data file paths.
func (s *metaService) databaseLocation(ctx context.Context) (*models.MetaAnswer, error) {
	dbName, server, err := s.databaseAndServer(ctx)
	if err != nil {
		return nil, err
	}

	var answer strings.Builder
	answer.WriteString("Database Location Information:\n\n")
	answer.WriteString(fmt.Sprintf("• Database Name: **%s**\n", dbName))
	answer.WriteString(fmt.Sprintf("• Server: %s\n", server))
	answer.WriteString(fmt.Sprintf("• Database System: **%s**\n", databaseSystem))
	answer.WriteString(fmt.Sprintf("• Management Tool: **%s**\n\n", managementTool))
	answer.WriteString("_Note: Database file path information is restricted for security purposes._")

	return &models.MetaAnswer{
		Answer: answer.String(),
		Data: []map[string]any{{
			"database":        dbName,
			"server":          server,
			"database_system": databaseSystem,
			"management_tool": managementTool,
		}},
	}, nil
}
