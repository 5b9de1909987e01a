package mssql

import (
	"strings"

	mssqldb "github.com/microsoft/go-mssqldb"
)

// mapSQLServerType maps SQL Server type names to standard type names.
func mapSQLServerType(sqlServerType string) string {
	sqlServerType = strings.ToUpper(sqlServerType)

	switch sqlServerType {
	case "INT":
		return "INTEGER"
	case "DECIMAL", "NUMERIC":
		return "NUMERIC"
	case "MONEY", "SMALLMONEY":
		return "MONEY"
	case "FLOAT":
		return "DOUBLE PRECISION"
	case "CHAR", "NCHAR":
		return "CHAR"
	case "VARCHAR", "NVARCHAR":
		return "VARCHAR"
	case "TEXT", "NTEXT":
		return "TEXT"
	case "BINARY", "VARBINARY":
		return "BYTEA"
	case "IMAGE":
		return "BLOB"
	case "DATETIME", "DATETIME2", "SMALLDATETIME":
		return "TIMESTAMP"
	case "DATETIMEOFFSET":
		return "TIMESTAMP WITH TIME ZONE"
	case "BIT":
		return "BOOLEAN"
	case "UNIQUEIDENTIFIER":
		return "UUID"
	default:
		// TINYINT, SMALLINT, BIGINT, REAL, DATE, TIME, XML and unknown types pass through
		return sqlServerType
	}
}

// isStringType returns true if the type is a string type in SQL Server.
func isStringType(sqlType string) bool {
	switch strings.ToUpper(sqlType) {
	case "CHAR", "NCHAR", "VARCHAR", "NVARCHAR", "TEXT", "NTEXT":
		return true
	}
	return false
}

// isDecimalType reports types the driver returns as textual []byte.
func isDecimalType(sqlType string) bool {
	switch strings.ToUpper(sqlType) {
	case "DECIMAL", "NUMERIC", "MONEY", "SMALLMONEY":
		return true
	}
	return false
}

// normalizeValue converts driver values into JSON-friendly ones: text and
// decimals become strings, uniqueidentifiers become canonical GUID strings.
// Binary columns stay []byte.
func normalizeValue(dbType string, val any) any {
	b, ok := val.([]byte)
	if !ok {
		return val
	}

	switch {
	case isStringType(dbType), isDecimalType(dbType):
		return string(b)
	case strings.EqualFold(dbType, "UNIQUEIDENTIFIER"):
		var id mssqldb.UniqueIdentifier
		if err := id.Scan(b); err == nil {
			return id.String()
		}
	}
	return b
}
