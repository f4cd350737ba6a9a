package postgres

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"eda/internal/storage"
)

// Dialect renders Postgres DDL.
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
			typ = "DOUBLE PRECISION"
		}
		defs[i] = fmt.Sprintf("  %s %s", pgx.Identifier{c.Name}.Sanitize(), typ)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n%s\n);", splitFQN(table).Sanitize(), strings.Join(defs, ",\n")), nil
}
