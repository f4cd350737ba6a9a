package sqlite

import (
	"fmt"
	"strings"

	"eda/internal/storage"
)

// Dialect renders SQLite DDL: REAL for numeric columns, TEXT otherwise.
type Dialect struct{}

// CreateTableSQL implements storage.Dialect.
func (Dialect) CreateTableSQL(table string, cols []storage.Column) (string, error) {
	if err := storage.ValidateColumns(table, cols); err != nil {
		return "", err
	}
	defs := make([]string, len(cols))
	for i, c := range cols {
		typ := "TEXT"
		if c.Numeric {
			typ = "REAL"
		}
		defs[i] = fmt.Sprintf("  %s %s", quoteIdent(c.Name), typ)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n%s\n);", quoteFQN(table), strings.Join(defs, ",\n")), nil
}
