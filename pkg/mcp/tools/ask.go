package tools

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ekaya-inc/ekaya-ask/pkg/middleware"
	"github.com/ekaya-inc/ekaya-ask/pkg/models"
	"github.com/ekaya-inc/ekaya-ask/pkg/services"
)

const askToolDescription = "Answer a natural-language question about the connected SQL Server database. " +
	"Questions about the database itself (tables, server, connection) are answered from the catalog; " +
	"other questions are translated to a read-only SELECT and executed. " +
	"Returns the same JSON body as POST /api/ask, plus the HTTP status it maps to."

// AskToolResult wraps the /api/ask body with its HTTP status.
type AskToolResult struct {
	Status int `json:"status"`
	Body   any `json:"body"`
}

// RegisterAskTool adds the ask tool backed by svc.
func RegisterAskTool(s *server.MCPServer, svc services.AskService) {
	tool := mcp.NewTool(
		"ask",
		mcp.WithDescription(askToolDescription),
		mcp.WithString(
			"question",
			mcp.Required(),
			mcp.Description("The question, e.g. \"how many tables are there\" or \"show 5 members\""),
		),
		mcp.WithBoolean(
			"ai_enabled",
			mcp.Description("Set false to answer only catalog questions without generating SQL"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question, err := req.RequireString("question")
		if err != nil || strings.TrimSpace(question) == "" {
			return NewErrorResult("invalid_parameters", "question is required"), nil
		}

		askReq := &models.AskRequest{
			Question:  question,
			RequestID: middleware.RequestIDFromContext(ctx),
		}
		if v, ok := req.GetArguments()["ai_enabled"]; ok {
			enabled, isBool := v.(bool)
			if !isBool {
				return NewErrorResult("invalid_parameters", fmt.Sprintf("ai_enabled must be a boolean, got %T", v)), nil
			}
			askReq.AIEnabled = &enabled
		}

		res := svc.Ask(ctx, askReq)

		result, err := jsonResult(AskToolResult{Status: res.Status(), Body: res.Body()})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal ask result: %w", err)
		}
		result.IsError = res.Status() >= http.StatusBadRequest
		return result, nil
	})
}
