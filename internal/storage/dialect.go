package storage

import (
	"fmt"
	"sync"
)

// Column is one snapshot table column. Numeric columns hold numbers or
// NULL; the rest hold text or NULL.
type Column struct {
	Name    string
	Numeric bool
}

// Dialect renders backend-specific DDL.
type Dialect interface {
	// CreateTableSQL returns an idempotent CREATE TABLE statement.
	CreateTableSQL(table string, cols []Column) (string, error)
}

var (
	dialectMu sync.RWMutex
	dialects  = map[string]Dialect{}
)

// RegisterDialect installs (or replaces) the dialect for kind. Backends call
// it from init next to Register.
func RegisterDialect(kind string, d Dialect) {
	dialectMu.Lock()
	defer dialectMu.Unlock()
	dialects[kind] = d
}

// DialectFor returns the dialect registered for kind.
func DialectFor(kind string) (Dialect, error) {
	dialectMu.RLock()
	d, ok := dialects[kind]
	dialectMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no dialect registered for storage.kind=%q", kind)
	}
	return d, nil
}

// ValidateColumns checks a table definition before rendering it.
func ValidateColumns(table string, cols []Column) error {
	if table == "" {
		return fmt.Errorf("ddl: table name must not be empty")
	}
	if len(cols) == 0 {
		return fmt.Errorf("ddl: at least one column is required for %s", table)
	}
	for i, c := range cols {
		if c.Name == "" {
			return fmt.Errorf("ddl: column %d of %s has an empty name", i+1, table)
		}
	}
	return nil
}
