// Package prompts holds the text sent to the completion service when a
// question has to be turned into SQL.
package prompts

import (
	"fmt"
	"strings"

	"github.com/ekaya-inc/ekaya-ask/pkg/models"
)

const sqlSystemPromptTemplate = `You are an expert Microsoft SQL Server developer.

CRITICAL RULES:
1. ALWAYS use the FULL table name format: schema.tablename (e.g., {{schema}}.tbl_members)
2. NEVER use just the table name without the schema prefix
3. Use ONLY tables and columns exactly as listed in the schema
4. Return ONLY the SQL SELECT query - no explanations, no markdown blocks, no code fences

IMPORTANT - When to use TOP clause:
- If user asks for 'all', 'show all', 'list all', 'every', 'complete': DO NOT use TOP
- If user asks for specific number (e.g., '5 members', 'top 10', 'first 20'): Use TOP with that number
- If user asks for 'some', 'few', or doesn't specify: Use TOP 100 as default
- Examples:
  * 'Show all members' → SELECT * FROM {{schema}}.tbl_members (NO TOP)
  * 'Show 5 members' → SELECT TOP 5 * FROM {{schema}}.tbl_members
  * 'Show members' → SELECT TOP 100 * FROM {{schema}}.tbl_members

SQL SERVER SYNTAX:
- Use TOP instead of LIMIT
- Use single quotes for strings
- Example: SELECT TOP 10 * FROM {{schema}}.tbl_members WHERE name = 'John'

FORBIDDEN: `

// SQLSystemPrompt returns the persona and rules for SQL generation. schema is
// the name used in the worked examples.
func SQLSystemPrompt(schema string, forbidden []string) string {
	return strings.ReplaceAll(sqlSystemPromptTemplate, "{{schema}}", schema) + strings.Join(forbidden, ", ")
}

// QuantityHintText tells the model how to size its TOP clause.
func QuantityHintText(hint models.QuantityHint) string {
	switch hint.Kind {
	case models.QuantityAll:
		return "IMPORTANT: User wants ALL records - do NOT use TOP clause."
	case models.QuantityExact:
		return fmt.Sprintf("IMPORTANT: User wants exactly %d records - use TOP %d.", hint.N, hint.N)
	default:
		return fmt.Sprintf("IMPORTANT: User didn't specify quantity - use TOP %d as safe default.", models.DefaultRowLimit)
	}
}

// BuildSQLUserPrompt combines the schema text, the raw question and the
// quantity hint into the user message.
func BuildSQLUserPrompt(schemaText, question string, hint models.QuantityHint) string {
	var prompt strings.Builder

	prompt.WriteString(schemaText)
	prompt.WriteString("\n\nUser Question: ")
	prompt.WriteString(question)
	prompt.WriteString("\n")
	prompt.WriteString(QuantityHintText(hint))
	prompt.WriteString("\n\nGenerate SQL query using FULL table names (schema.table):")

	return prompt.String()
}
