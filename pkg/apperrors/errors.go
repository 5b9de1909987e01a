package apperrors

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrEmptyQuestion     = errors.New("empty question")
	ErrSecurityBlocked   = errors.New("security restriction")
	ErrAIDisabled        = errors.New("AI agent is disabled")
	ErrNoSelectFound     = errors.New("No valid SELECT statement generated")
	ErrOnlySelectAllowed = errors.New("Only SELECT queries are allowed")
	ErrNoSQLGenerated    = errors.New("AI did not return SQL")
)

// ForbiddenKeywordError reports a write/DDL keyword found in a statement.
type ForbiddenKeywordError struct {
	Keyword string
}

func (e *ForbiddenKeywordError) Error() string {
	return "Query contains forbidden keyword: " + e.Keyword
}

// QueryExecutionError wraps a database failure while running a vetted statement.
type QueryExecutionError struct {
	Message string
	Cause   error
}

func (e *QueryExecutionError) Error() string {
	return "Query execution failed: " + e.Message
}

func (e *QueryExecutionError) Unwrap() error {
	return e.Cause
}

// invalidObjectPattern matches SQL Server error 208 text.
var invalidObjectPattern = regexp.MustCompile(`'([^']+)'`)

// IsObjectNotFound reports whether the database rejected the statement
// because a referenced table or view does not exist.
func (e *QueryExecutionError) IsObjectNotFound() bool {
	return strings.Contains(e.Message, "Invalid object name")
}

// MissingObject returns the quoted object name from an "Invalid object name"
// error, or "" when the message carries none.
func (e *QueryExecutionError) MissingObject() string {
	if !e.IsObjectNotFound() {
		return ""
	}
	m := invalidObjectPattern.FindStringSubmatch(e.Message)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

// NewQueryExecutionError wraps cause with its message preserved.
func NewQueryExecutionError(cause error) *QueryExecutionError {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return &QueryExecutionError{Message: msg, Cause: cause}
}

// CatalogQueryError reports a failed system catalog lookup.
type CatalogQueryError struct {
	Operation string
	Cause     error
}

func (e *CatalogQueryError) Error() string {
	return fmt.Sprintf("catalog %s: %v", e.Operation, e.Cause)
}

func (e *CatalogQueryError) Unwrap() error {
	return e.Cause
}

// IsObjectNotFound reports whether err is a QueryExecutionError caused by a
// missing table or view, returning it when so.
func IsObjectNotFound(err error) (*QueryExecutionError, bool) {
	var qe *QueryExecutionError
	if errors.As(err, &qe) && qe.IsObjectNotFound() {
		return qe, true
	}
	return nil, false
}
