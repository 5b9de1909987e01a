package models

import "strings"

// SchemaColumn describes one catalog column as seen by the schema inspector.
type SchemaColumn struct {
	SchemaName string `json:"schema_name"`
	TableName  string `json:"table_name"`
	ColumnName string `json:"column_name"`
	DataType   string `json:"data_type"`
	IsNullable bool   `json:"is_nullable"`
	MaxLength  *int64 `json:"max_length,omitempty"` // CHARACTER_MAXIMUM_LENGTH; nil for non-character types
}

// TableRef identifies a base table. JSON keys match the catalog column aliases.
type TableRef struct {
	FullTableName string `json:"FullTableName"`
	TableName     string `json:"TableName"`
	SchemaName    string `json:"SchemaName"`
}

// NewTableRef builds a TableRef with FullTableName set to schema.table.
func NewTableRef(schema, table string) TableRef {
	return TableRef{FullTableName: schema + "." + table, TableName: table, SchemaName: schema}
}

// TableSchema is a table and its columns in ordinal order.
type TableSchema struct {
	FullName string
	Columns  []SchemaColumn
}

// SchemaDescription maps schema.table to ordered columns, preserving the
// catalog's schema/table ordering.
type SchemaDescription struct {
	Tables []TableSchema
}

// NewSchemaDescription groups columns (already ordered by schema, table and
// ordinal position) under their schema.table key.
func NewSchemaDescription(columns []SchemaColumn) *SchemaDescription {
	desc := &SchemaDescription{}
	index := make(map[string]int)
	for _, col := range columns {
		full := col.SchemaName + "." + col.TableName
		i, ok := index[full]
		if !ok {
			i = len(desc.Tables)
			index[full] = i
			desc.Tables = append(desc.Tables, TableSchema{FullName: full})
		}
		desc.Tables[i].Columns = append(desc.Tables[i].Columns, col)
	}
	return desc
}

// Table returns the columns for a schema.table name, matched case-insensitively.
func (d *SchemaDescription) Table(fullName string) (TableSchema, bool) {
	for _, t := range d.Tables {
		if strings.EqualFold(t.FullName, fullName) {
			return t, true
		}
	}
	return TableSchema{}, false
}

// IsEmpty reports whether the catalog returned no tables.
func (d *SchemaDescription) IsEmpty() bool {
	return d == nil || len(d.Tables) == 0
}
