package sql

import (
	"regexp"
	"strings"

	"github.com/ekaya-inc/ekaya-ask/pkg/apperrors"
)

// ForbiddenKeywords are rejected anywhere in a statement, case-insensitively,
// as plain substrings. A column such as update_time is rejected too.
var ForbiddenKeywords = []string{"INSERT", "UPDATE", "DELETE", "DROP", "CREATE", "ALTER", "TRUNCATE", "EXEC"}

var startsWithSelect = regexp.MustCompile(`(?i)^\s*select`)

// CheckReadOnly rejects statements that do not start with SELECT or that
// contain a forbidden keyword. The executor calls it again on every
// statement it runs.
func CheckReadOnly(sql string) error {
	sql = strings.TrimSpace(sql)
	if !startsWithSelect.MatchString(sql) {
		return apperrors.ErrOnlySelectAllowed
	}

	upper := strings.ToUpper(sql)
	for _, kw := range ForbiddenKeywords {
		if strings.Contains(upper, kw) {
			return &apperrors.ForbiddenKeywordError{Keyword: kw}
		}
	}
	return nil
}

// HasMultipleStatements reports whether sql contains a semicolon outside
// string literals and quoted identifiers, ignoring one trailing terminator.
func HasMultipleStatements(sql string) bool {
	sql = strings.TrimRight(strings.TrimSpace(sql), ";")

	const (
		normal = iota
		inSingle
		inDouble
		inBracket
	)

	state := normal
	for _, r := range sql {
		switch state {
		case normal:
			switch r {
			case ';':
				return true
			case '\'':
				state = inSingle
			case '"':
				state = inDouble
			case '[':
				state = inBracket
			}
		case inSingle:
			// '' re-enters on the next quote, keeping doubled quotes inside the literal
			if r == '\'' {
				state = normal
			}
		case inDouble:
			if r == '"' {
				state = normal
			}
		case inBracket:
			if r == ']' {
				state = normal
			}
		}
	}
	return false
}
