package models

import "net/http"

// AskRequest is the body of POST /api/ask and the MCP ask tool.
type AskRequest struct {
	Question  string `json:"question"`
	AIEnabled *bool  `json:"ai_enabled,omitempty"` // nil means use the configured default

	// RequestID correlates logs and audit events; generated when empty.
	RequestID string `json:"-"`
}

// Route names the path a question took through the pipeline.
type Route string

const (
	RouteEmpty         Route = "empty"
	RouteSecurityBlock Route = "security_block"
	RouteMeta          Route = "meta"
	RouteMetaError     Route = "meta_error"
	RouteAIDisabled    Route = "ai_disabled"
	RouteSQL           Route = "sql"
	RouteError         Route = "error"
)

// AskResult is the outcome of one question. Status and Body render it
// into the JSON contract shared by HTTP and MCP.
type AskResult struct {
	RequestID string
	Question  Question
	Route     Route
	Intent    Intent

	Meta *MetaAnswer

	// RawSQL is the cleaned completion text; SQL is the gated statement.
	RawSQL string
	SQL    string
	Result *QueryResult

	Err        error
	Error      string
	Details    string
	Suggestion string
}

// ErrorBody is the minimal failure shape: empty question, AI disabled.
type ErrorBody struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// MetaErrorBody is a security block or a failed catalog lookup.
type MetaErrorBody struct {
	Error          string `json:"error"`
	Details        string `json:"details"`
	IsMetaQuestion bool   `json:"is_meta_question"`
}

// MetaBody is a meta-question answered from the catalog.
type MetaBody struct {
	Answer         string           `json:"answer"`
	Data           []map[string]any `json:"data"`
	RowCount       int              `json:"row_count"`
	IsMetaQuestion bool             `json:"is_meta_question"`
	SQL            *string          `json:"sql"`
}

// SQLBody is a successfully synthesized and executed query.
type SQLBody struct {
	SQL            string           `json:"sql"`
	Answer         string           `json:"answer"`
	Data           []map[string]any `json:"data"`
	RowCount       int              `json:"row_count"`
	IsMetaQuestion bool             `json:"is_meta_question"`
}

// FailureBody is a pipeline failure after classification.
type FailureBody struct {
	Error      string  `json:"error"`
	Details    string  `json:"details"`
	Suggestion string  `json:"suggestion"`
	SQL        *string `json:"sql"`
}

// Status returns the HTTP status code for the result.
func (r *AskResult) Status() int {
	switch r.Route {
	case RouteEmpty:
		return http.StatusBadRequest
	case RouteSecurityBlock:
		return http.StatusForbidden
	case RouteMetaError, RouteError:
		return http.StatusInternalServerError
	default:
		return http.StatusOK
	}
}

// Body returns the JSON response body for the result.
func (r *AskResult) Body() any {
	switch r.Route {
	case RouteEmpty, RouteAIDisabled:
		return ErrorBody{Error: r.Error, Details: r.Details}
	case RouteSecurityBlock, RouteMetaError:
		return MetaErrorBody{Error: r.Error, Details: r.Details, IsMetaQuestion: true}
	case RouteMeta:
		return MetaBody{
			Answer:         r.Meta.Answer,
			Data:           nonNilRows(r.Meta.Data),
			RowCount:       r.Meta.RowCount,
			IsMetaQuestion: true,
		}
	case RouteSQL:
		return SQLBody{
			SQL:      r.SQL,
			Answer:   r.Result.Summary,
			Data:     nonNilRows(r.Result.Rows),
			RowCount: r.Result.RowCount,
		}
	default:
		body := FailureBody{Error: r.Error, Details: r.Details, Suggestion: r.Suggestion}
		switch {
		case r.SQL != "":
			sql := r.SQL
			body.SQL = &sql
		case r.RawSQL != "":
			sql := r.RawSQL
			body.SQL = &sql
		}
		return body
	}
}

func nonNilRows(rows []map[string]any) []map[string]any {
	if rows == nil {
		return []map[string]any{}
	}
	return rows
}
