package models

// QueryResult holds rows returned by an executed statement.
// Columns preserves the result-set column order that row maps lose.
type QueryResult struct {
	Columns  []string         `json:"columns"`
	Rows     []map[string]any `json:"rows"`
	RowCount int              `json:"row_count"`
	Summary  string           `json:"summary"`
}
