// Package sql screens model-generated SQL before it reaches the database.
//
// All checks are textual. Nothing here parses SQL; the gate extracts the
// first SELECT statement, backstops unbounded queries with a row cap,
// repairs unqualified table references and enforces read-only access.
package sql

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/ekaya-inc/ekaya-ask/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-ask/pkg/models"
)

var (
	selectSpanPattern = regexp.MustCompile(`(?is)SELECT\s.+?(?:;|$)`)
	leadingSelect     = regexp.MustCompile(`(?i)^SELECT\s+(?:(DISTINCT|ALL)\s+)?`)
	leadingTop        = regexp.MustCompile(`(?i)^SELECT\s+(?:(?:DISTINCT|ALL)\s+)?TOP\b`)
	offsetFetch       = regexp.MustCompile(`(?i)\bOFFSET\s+\S+\s+ROWS?\b`)
	wantsAllRows      = regexp.MustCompile(`\b(all|every|complete|entire|full)\b`)
	qualifiedName     = regexp.MustCompile(`\w+\.\w+`)
	unqualifiedFrom   = regexp.MustCompile(`(?i)\bFROM\s+([a-zA-Z_][a-zA-Z0-9_]*)`)
	unqualifiedJoin   = regexp.MustCompile(`(?i)\bJOIN\s+([a-zA-Z_][a-zA-Z0-9_]*)`)
)

// reservedTargets are words that can follow FROM or JOIN without naming a table.
var reservedTargets = map[string]bool{
	"select": true,
	"where":  true,
	"on":     true,
	"join":   true,
	"inner":  true,
	"left":   true,
	"right":  true,
	"full":   true,
	"outer":  true,
	"cross":  true,
	"group":  true,
	"order":  true,
	"having": true,
	"as":     true,
	"with":   true,
	"values": true,
}

// Gate outcomes, used as metric labels and audit reasons.
const (
	OutcomeAccepted         = "accepted"
	OutcomeNoSelect         = "no_select"
	OutcomeOnlySelect       = "only_select"
	OutcomeForbiddenKeyword = "forbidden_keyword"
)

// GateResult is a statement that passed the gate, with the repairs applied to it.
type GateResult struct {
	SQL               string
	SafetyCapApplied  bool
	SchemaQualified   bool
	DroppedStatements bool // the candidate had more text after the first statement terminator
}

// Gate turns a candidate completion into an executable SELECT.
type Gate struct {
	defaultSchema string
	rowCap        int
}

// NewGate returns a gate that qualifies bare table names with defaultSchema.
func NewGate(defaultSchema string) *Gate {
	return &Gate{defaultSchema: defaultSchema, rowCap: models.SafetyRowCap}
}

// Sanitize runs the gate steps in order: extract the first SELECT, apply the
// safety cap when the question asks for everything, qualify bare FROM/JOIN
// targets, then enforce read-only access.
func (g *Gate) Sanitize(candidate, rawQuestion string) (*GateResult, error) {
	sql, ok := ExtractSelect(candidate)
	if !ok {
		return nil, apperrors.ErrNoSelectFound
	}

	res := &GateResult{DroppedStatements: HasMultipleStatements(candidate)}

	if WantsAllRows(rawQuestion) {
		sql, res.SafetyCapApplied = ApplySafetyCap(sql, g.rowCap)
	}

	sql, res.SchemaQualified = QualifySchema(sql, g.defaultSchema)

	if err := CheckReadOnly(sql); err != nil {
		return nil, err
	}

	res.SQL = sql
	return res, nil
}

// ExtractSelect returns the first "SELECT ..." span up to a statement
// terminator or end of text, trimmed and without the terminator.
func ExtractSelect(candidate string) (string, bool) {
	span := selectSpanPattern.FindString(candidate)
	span = strings.TrimSpace(strings.TrimSuffix(span, ";"))
	return span, span != ""
}

// WantsAllRows reports whether the question asks for every row.
func WantsAllRows(rawQuestion string) bool {
	return wantsAllRows.MatchString(strings.ToLower(rawQuestion))
}

// ApplySafetyCap inserts TOP rowCap after the leading SELECT (and DISTINCT or
// ALL, if present) unless the statement already limits its rows with TOP or
// OFFSET ... FETCH.
func ApplySafetyCap(sql string, rowCap int) (string, bool) {
	if leadingTop.MatchString(sql) || offsetFetch.MatchString(sql) {
		return sql, false
	}
	m := leadingSelect.FindStringSubmatch(sql)
	if m == nil {
		return sql, false
	}

	prefix := "SELECT "
	if m[1] != "" {
		prefix += strings.ToUpper(m[1]) + " "
	}
	return prefix + "TOP " + strconv.Itoa(rowCap) + " " + sql[len(m[0]):], true
}

// QualifySchema prefixes bare FROM and JOIN targets with schema when the
// statement contains no dotted identifier at all. Statements that already
// qualify any name are left alone.
func QualifySchema(sql, schema string) (string, bool) {
	if schema == "" || qualifiedName.MatchString(sql) {
		return sql, false
	}
	out := qualifyTargets(sql, unqualifiedFrom, "FROM", schema)
	out = qualifyTargets(out, unqualifiedJoin, "JOIN", schema)
	return out, out != sql
}

func qualifyTargets(sql string, pattern *regexp.Regexp, keyword, schema string) string {
	return pattern.ReplaceAllStringFunc(sql, func(match string) string {
		target := pattern.FindStringSubmatch(match)[1]
		if reservedTargets[strings.ToLower(target)] {
			return match
		}
		return keyword + " " + schema + "." + target
	})
}

// Outcome maps a Sanitize or CheckReadOnly error to its outcome label.
func Outcome(err error) string {
	var fk *apperrors.ForbiddenKeywordError
	switch {
	case err == nil:
		return OutcomeAccepted
	case errors.Is(err, apperrors.ErrNoSelectFound):
		return OutcomeNoSelect
	case errors.Is(err, apperrors.ErrOnlySelectAllowed):
		return OutcomeOnlySelect
	case errors.As(err, &fk):
		return OutcomeForbiddenKeyword
	default:
		return "error"
	}
}
