package models

// MetaAnswer is the result of answering a meta-question from the catalog.
// Exactly one of Answer or Error is set.
type MetaAnswer struct {
	Intent   Intent           `json:"intent"`
	Answer   string           `json:"answer,omitempty"`
	Data     []map[string]any `json:"data"`
	RowCount int              `json:"row_count"`
	Error    string           `json:"error,omitempty"`
	Details  string           `json:"details,omitempty"`
}

// Failed reports whether the meta answer carries an error.
func (m *MetaAnswer) Failed() bool {
	return m.Error != ""
}
