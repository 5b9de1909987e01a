package models

// Intent is the meta-question category a question was classified into.
type Intent string

const (
	IntentNone             Intent = ""
	IntentSecurityBlock    Intent = "SECURITY_BLOCK"
	IntentTableLocation    Intent = "TABLE_LOCATION"
	IntentDatabaseLocation Intent = "DATABASE_LOCATION"
	IntentListTables       Intent = "LIST_TABLES"
	IntentCountTables      Intent = "COUNT_TABLES"
	IntentDatabaseStats    Intent = "DATABASE_STATS"
	IntentServerInfo       Intent = "SERVER_INFO"
	IntentConnectionInfo   Intent = "CONNECTION_INFO"
	IntentDatabaseName     Intent = "DATABASE_NAME"
)

// IsMeta reports whether the intent is answered from catalog metadata
// instead of generated SQL.
func (i Intent) IsMeta() bool {
	return i != IntentNone
}

// String returns the intent name, or "NONE" for IntentNone.
func (i Intent) String() string {
	if i == IntentNone {
		return "NONE"
	}
	return string(i)
}
