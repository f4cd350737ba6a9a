package mssql

import (
	"fmt"
	"strings"

	"eda/internal/storage"
)

// Dialect renders SQL Server DDL. SQL Server has no CREATE TABLE IF NOT
// EXISTS, so the statement is guarded by OBJECT_ID.
type Dialect struct{}

// CreateTableSQL implements storage.Dialect.
func (Dialect) CreateTableSQL(table string, cols []storage.Column) (string, error) {
	if err := storage.ValidateColumns(table, cols); err != nil {
		return "", err
	}
	defs := make([]string, len(cols))
	for i, c := range cols {
		typ := "NVARCHAR(MAX)"
		if c.Numeric {
			typ = "FLOAT"
		}
		defs[i] = fmt.Sprintf("  %s %s NULL", msIdent(c.Name), typ)
	}
	fqn := msFQN(table)
	return fmt.Sprintf("IF OBJECT_ID(%s, N'U') IS NULL\nBEGIN\nCREATE TABLE %s (\n%s\n);\nEND;",
		msLiteral(fqn), fqn, strings.Join(defs, ",\n")), nil
}
