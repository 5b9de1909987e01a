package prompts

import (
	"fmt"
	"strings"

	"github.com/ekaya-inc/ekaya-ask/pkg/models"
)

// NoTablesFound is the schema text when the catalog has no base tables.
const NoTablesFound = "No tables found in database"

// BuildSchemaText renders tables and columns as grounding context:
//
//	TABLE: sctcrb.tbl_members
//	Columns: member_id (int), name (nvarchar(100))
func BuildSchemaText(desc *models.SchemaDescription) string {
	if desc == nil || desc.IsEmpty() {
		return NoTablesFound
	}

	var text strings.Builder

	text.WriteString("IMPORTANT: Always use the full table name format 'schema.tablename' in your SQL queries.\n\n")
	text.WriteString(fmt.Sprintf("AVAILABLE TABLES (%d total):\n", len(desc.Tables)))
	text.WriteString(strings.Repeat("=", 27))
	text.WriteString("\n\n")

	for _, table := range desc.Tables {
		columns := make([]string, 0, len(table.Columns))
		for _, col := range table.Columns {
			columns = append(columns, formatColumn(col))
		}
		text.WriteString("TABLE: " + table.FullName + "\n")
		text.WriteString("Columns: " + strings.Join(columns, ", ") + "\n\n")
	}

	return text.String()
}

func formatColumn(col models.SchemaColumn) string {
	if col.MaxLength != nil && *col.MaxLength != 0 {
		return fmt.Sprintf("%s (%s(%d))", col.ColumnName, col.DataType, *col.MaxLength)
	}
	return fmt.Sprintf("%s (%s)", col.ColumnName, col.DataType)
}
