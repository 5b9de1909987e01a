// Package audit records pipeline decisions as structured events.
// Sinks receive every completion exchange, gate decision and security
// rejection; the default sink writes them through a "security_audit"
// named zap logger so they can be filtered and shipped on their own.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// EventType categorizes audit events for filtering and alerting.
type EventType string

const (
	EventCompletionExchange EventType = "completion_exchange"
	EventSQLSanitized       EventType = "sql_sanitized"
	EventSQLRejected        EventType = "sql_rejected"
	EventSecurityBlock      EventType = "security_block"
	// EventSuspiciousInput is logged when libinjection flags the question text.
	EventSuspiciousInput EventType = "suspicious_input"
	EventMetaAnswered    EventType = "meta_answered"

	// MCP tool calls, recorded by the mcp server hooks.
	EventToolCall  EventType = "mcp_tool_call"
	EventToolError EventType = "mcp_tool_error"
)

// Severity levels. They select the log level in LogSink.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Event is one auditable step of a request.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"event_type"`
	RequestID string    `json:"request_id"`
	Severity  string    `json:"severity"`
	Details   any       `json:"details"`
}

// CompletionExchangeDetails is what was sent to and received from the
// completion service.
type CompletionExchangeDetails struct {
	Question        string `json:"question"`
	Hint            string `json:"hint"`
	Model           string `json:"model"`
	SystemPromptLen int    `json:"system_prompt_len"`
	UserPromptLen   int    `json:"user_prompt_len"`
	Completion      string `json:"completion,omitempty"`
	DurationMS      int64  `json:"duration_ms"`
	Error           string `json:"error,omitempty"`
}

// SQLSanitizedDetails records the raw completion and the statement that will run.
type SQLSanitizedDetails struct {
	Raw               string `json:"raw"`
	Cleaned           string `json:"cleaned"`
	SafetyCapApplied  bool   `json:"safety_cap_applied"`
	SchemaQualified   bool   `json:"schema_qualified"`
	DroppedStatements bool   `json:"dropped_statements"`
}

// SQLRejectedDetails records why the gate or executor refused a statement.
type SQLRejectedDetails struct {
	Raw     string `json:"raw"`
	Reason  string `json:"reason"`
	Keyword string `json:"keyword,omitempty"`
}

type SecurityBlockDetails struct {
	Question string `json:"question"`
}

// SuspiciousInputDetails carries the libinjection fingerprint for pattern analysis.
type SuspiciousInputDetails struct {
	Question    string `json:"question"`
	Fingerprint string `json:"fingerprint"`
}

type MetaAnsweredDetails struct {
	Intent string `json:"intent"`
	Failed bool   `json:"failed"`
}

// ToolCallDetails summarizes one MCP tool invocation. Params are sanitized
// before they reach the event.
type ToolCallDetails struct {
	Tool       string         `json:"tool"`
	Params     map[string]any `json:"params,omitempty"`
	DurationMS int64          `json:"duration_ms"`
	IsError    bool           `json:"is_error"`
	Status     int            `json:"status,omitempty"`
	RowCount   *int           `json:"row_count,omitempty"`
	Preview    string         `json:"preview,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// Sink receives audit events. Implementations must not block the request.
type Sink interface {
	Record(ctx context.Context, event Event)
}

// NewEvent stamps an event with the current UTC time.
func NewEvent(eventType EventType, requestID, severity string, details any) Event {
	return Event{
		Timestamp: time.Now().UTC(),
		Type:      eventType,
		RequestID: requestID,
		Severity:  severity,
		Details:   details,
	}
}

// LogSink writes events as structured log entries.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a sink with a dedicated "security_audit" logger namespace.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger.Named("security_audit")}
}

// Record logs the event at a level chosen by its severity. The full event
// is included as JSON for SIEM ingestion.
func (s *LogSink) Record(_ context.Context, event Event) {
	// Marshaling known detail types does not fail.
	eventJSON, _ := json.Marshal(event)

	fields := []zap.Field{
		zap.String("event_type", string(event.Type)),
		zap.String("request_id", event.RequestID),
		zap.String("severity", event.Severity),
		zap.String("event_json", string(eventJSON)),
	}

	switch event.Severity {
	case SeverityCritical:
		s.logger.Error("audit event", fields...)
	case SeverityWarning:
		s.logger.Warn("audit event", fields...)
	default:
		s.logger.Info("audit event", fields...)
	}
}

// NopSink discards events.
type NopSink struct{}

func (NopSink) Record(context.Context, Event) {}

var (
	_ Sink = (*LogSink)(nil)
	_ Sink = NopSink{}
)
