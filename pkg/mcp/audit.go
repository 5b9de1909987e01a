package mcp

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-ask/pkg/audit"
	"github.com/ekaya-inc/ekaya-ask/pkg/logging"
	"github.com/ekaya-inc/ekaya-ask/pkg/middleware"
)

const (
	// maxParamSize caps string parameters kept in audit events.
	maxParamSize = 10240

	maxPreviewLength = 200
)

// sqlStringLiteralPattern matches SQL string literals, including '' escapes.
var sqlStringLiteralPattern = regexp.MustCompile(`'(?:[^']*(?:'')?)*[^']*'`)

var sensitiveParamKeys = []string{"password", "passwd", "secret", "token", "api_key", "apikey", "credential"}

// ToolCallAuditor records every MCP tool call to an audit sink and logs it.
type ToolCallAuditor struct {
	sink   audit.Sink
	logger *zap.Logger

	// startTimes is keyed by the *CallToolRequest mcp-go passes to every
	// hook of one call. JSON-RPC IDs repeat across stateless clients.
	startTimes sync.Map
}

// NewToolCallAuditor creates an auditor. A nil sink discards events.
func NewToolCallAuditor(sink audit.Sink, logger *zap.Logger) *ToolCallAuditor {
	if sink == nil {
		sink = audit.NopSink{}
	}
	return &ToolCallAuditor{
		sink:   sink,
		logger: logging.OrNop(logger).Named("mcp-audit"),
	}
}

// Hooks returns mcp-go Hooks configured to capture tool call events.
func (a *ToolCallAuditor) Hooks() *server.Hooks {
	hooks := &server.Hooks{}
	hooks.AddBeforeCallTool(a.beforeCallTool)
	hooks.AddAfterCallTool(a.afterCallTool)
	hooks.AddOnError(a.onError)
	return hooks
}

func (a *ToolCallAuditor) beforeCallTool(_ context.Context, _ any, req *mcplib.CallToolRequest) {
	a.startTimes.Store(req, time.Now())
}

func (a *ToolCallAuditor) afterCallTool(ctx context.Context, _ any, req *mcplib.CallToolRequest, result *mcplib.CallToolResult) {
	details := a.buildDetails(req)
	summarizeResult(result, &details)

	severity := audit.SeverityInfo
	if details.IsError {
		severity = audit.SeverityWarning
	}

	a.logger.Debug("Tool call completed",
		zap.String("tool", details.Tool),
		zap.Int64("duration_ms", details.DurationMS),
		zap.Bool("is_error", details.IsError))

	a.sink.Record(ctx, audit.NewEvent(audit.EventToolCall, middleware.RequestIDFromContext(ctx), severity, details))
}

func (a *ToolCallAuditor) onError(ctx context.Context, _ any, method mcplib.MCPMethod, message any, err error) {
	if method != mcplib.MethodToolsCall {
		return
	}

	req, ok := message.(*mcplib.CallToolRequest)
	if !ok {
		return
	}

	details := a.buildDetails(req)
	details.IsError = true
	details.Error = logging.SanitizeError(err)

	a.logger.Warn("Tool call failed",
		zap.String("tool", details.Tool),
		zap.Int64("duration_ms", details.DurationMS),
		zap.String("error", details.Error))

	a.sink.Record(ctx, audit.NewEvent(audit.EventToolError, middleware.RequestIDFromContext(ctx), audit.SeverityWarning, details))
}

func (a *ToolCallAuditor) buildDetails(req *mcplib.CallToolRequest) audit.ToolCallDetails {
	var elapsed time.Duration
	if v, ok := a.startTimes.LoadAndDelete(req); ok {
		elapsed = time.Since(v.(time.Time))
	}
	return audit.ToolCallDetails{
		Tool:       req.Params.Name,
		Params:     sanitizeParams(req.Params.Arguments),
		DurationMS: elapsed.Milliseconds(),
	}
}

// sanitizeParams truncates long strings, redacts SQL literals and hashes
// values of credential-like keys.
func sanitizeParams(args any) map[string]any {
	params, ok := args.(map[string]any)
	if !ok || len(params) == 0 {
		return nil
	}

	sanitized := make(map[string]any, len(params))
	for k, v := range params {
		sanitized[k] = sanitizeValue(k, v)
	}
	return sanitized
}

func sanitizeValue(key string, value any) any {
	if isSensitiveParam(key) {
		return hashSensitiveValue(value)
	}

	switch val := value.(type) {
	case string:
		if len(val) > maxParamSize {
			val = val[:maxParamSize] + "...[truncated]"
		}
		if isSQLParam(key) {
			val = sqlStringLiteralPattern.ReplaceAllString(val, "'***'")
		}
		return val
	case map[string]any:
		return sanitizeParams(val)
	default:
		return value
	}
}

func isSensitiveParam(key string) bool {
	lower := strings.ToLower(key)
	for _, kw := range sensitiveParamKeys {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func isSQLParam(key string) bool {
	lower := strings.ToLower(key)
	return lower == "sql" || lower == "query" || strings.HasSuffix(lower, "_sql") || strings.HasSuffix(lower, "_query")
}

// hashSensitiveValue keeps a 16 hex char SHA-256 prefix so repeated values
// correlate across events.
func hashSensitiveValue(value any) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%v", value)))
	return "sha256:" + hex.EncodeToString(hash[:8])
}

// summarizeResult copies the error flag, a text preview and the status and
// row_count fields of the ask tool's JSON into details.
func summarizeResult(result *mcplib.CallToolResult, details *audit.ToolCallDetails) {
	if result == nil {
		return
	}
	details.IsError = result.IsError

	for _, c := range result.Content {
		tc, ok := c.(mcplib.TextContent)
		if !ok {
			continue
		}
		extractCounts(tc.Text, details)
		details.Preview = logging.TruncateString(tc.Text, maxPreviewLength)
		return
	}
}

func extractCounts(text string, details *audit.ToolCallDetails) {
	var partial struct {
		Status int `json:"status"`
		Body   struct {
			RowCount *int `json:"row_count"`
		} `json:"body"`
		RowCount *int `json:"row_count"`
	}
	if err := json.Unmarshal([]byte(text), &partial); err != nil {
		return
	}
	details.Status = partial.Status
	details.RowCount = partial.RowCount
	if partial.Body.RowCount != nil {
		details.RowCount = partial.Body.RowCount
	}
}
