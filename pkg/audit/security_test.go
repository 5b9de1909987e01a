package audit

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// setupTestLogger creates a test logger with an observer to capture log entries.
func setupTestLogger(t *testing.T) (*zap.Logger, *observer.ObservedLogs) {
	t.Helper()
	core, recorded := observer.New(zapcore.DebugLevel)
	return zap.New(core), recorded
}

func TestLogSink_Record_LevelBySeverity(t *testing.T) {
	tests := []struct {
		severity string
		want     zapcore.Level
	}{
		{SeverityInfo, zapcore.InfoLevel},
		{SeverityWarning, zapcore.WarnLevel},
		{SeverityCritical, zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.severity, func(t *testing.T) {
			logger, recorded := setupTestLogger(t)
			sink := NewLogSink(logger)

			sink.Record(context.Background(), NewEvent(EventSQLRejected, "req-1", tt.severity,
				SQLRejectedDetails{Raw: "DROP TABLE x", Reason: "only_select"}))

			entries := recorded.All()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.want, entries[0].Level)
			assert.Equal(t, "security_audit", entries[0].LoggerName)
		})
	}
}

func TestLogSink_Record_EventJSON(t *testing.T) {
	logger, recorded := setupTestLogger(t)
	sink := NewLogSink(logger)

	sink.Record(context.Background(), NewEvent(EventSuspiciousInput, "req-42", SeverityCritical,
		SuspiciousInputDetails{Question: "' OR 1=1--", Fingerprint: "s&1c"}))

	entries := recorded.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "suspicious_input", fields["event_type"])
	assert.Equal(t, "req-42", fields["request_id"])

	var event struct {
		Type      string                 `json:"event_type"`
		RequestID string                 `json:"request_id"`
		Details   SuspiciousInputDetails `json:"details"`
	}
	require.NoError(t, json.Unmarshal([]byte(fields["event_json"].(string)), &event))
	assert.Equal(t, "suspicious_input", event.Type)
	assert.Equal(t, "s&1c", event.Details.Fingerprint)
}

func TestNopSink(t *testing.T) {
	var sink Sink = NopSink{}
	sink.Record(context.Background(), NewEvent(EventMetaAnswered, "r", SeverityInfo, nil))
}

func TestNewLogSink_NilLogger(t *testing.T) {
	sink := NewLogSink(nil)
	sink.Record(context.Background(), NewEvent(EventSecurityBlock, "r", SeverityWarning, SecurityBlockDetails{Question: "q"}))
}
