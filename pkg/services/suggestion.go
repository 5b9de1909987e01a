package services

import (
	"strings"

	"github.com/jinzhu/inflection"

	"github.com/ekaya-inc/ekaya-ask/pkg/models"
)

const tableListUnavailable = "  (Could not fetch table list)"

// BuildNotFoundSuggestion lists the available tables after an "Invalid
// object name" failure. tables is ignored when listErr is set. A "Did you
// mean" line is added when a singular or plural form of the missing name
// exists.
func BuildNotFoundSuggestion(missing string, tables []models.TableRef, listErr error) string {
	if missing == "" {
		missing = "unknown"
	}

	var b strings.Builder
	b.WriteString("\n\n TIP: The table '" + missing + "' doesn't exist.\n")
	b.WriteString("Available tables:\n")

	if listErr != nil {
		b.WriteString(tableListUnavailable)
		return b.String()
	}

	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.FullTableName
	}
	b.WriteString("  • " + strings.Join(names, "\n  • "))

	if match, ok := closestTable(missing, tables); ok {
		b.WriteString("\nDid you mean: " + match + "?")
	}
	return b.String()
}

// closestTable finds a table whose name is the singular or plural of the
// missing one, with or without a tbl_ prefix on either side.
func closestTable(missing string, tables []models.TableRef) (string, bool) {
	bare := missing
	if i := strings.LastIndex(bare, "."); i >= 0 {
		bare = bare[i+1:]
	}
	bare = strings.ToLower(strings.Trim(bare, "[]\""))
	bare = strings.TrimPrefix(bare, "tbl_")
	if bare == "" {
		return "", false
	}

	candidates := map[string]bool{}
	for _, form := range []string{bare, inflection.Plural(bare), inflection.Singular(bare)} {
		candidates[form] = true
		candidates["tbl_"+form] = true
	}

	for _, t := range tables {
		name := strings.ToLower(t.TableName)
		if candidates[name] && !strings.EqualFold(t.FullTableName, missing) {
			return t.FullTableName, true
		}
	}
	return "", false
}
