package sqlite

import (
	"context"
	"fmt"

	"flowprep/internal/ddl"
	"flowprep/internal/storage"
	"flowprep/internal/table"
)

// Dialect renders SQLite DDL: double-quoted identifiers and
// CREATE TABLE IF NOT EXISTS.
var Dialect = ddl.Dialect{
	Name:       "sqlite ddl",
	QuoteIdent: ddl.DoubleQuote,
	MapType:    MapType,
	Wrap: func(fqn, body string) string {
		return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n);", fqn, body)
	},
}

// MapType maps a column kind to a SQLite type affinity.
func MapType(k table.Kind) string {
	switch {
	case k.IsInteger():
		return "INTEGER"
	case k.IsFloat():
		return "REAL"
	}
	return "TEXT"
}

// EnsureTable creates name shaped like t when it does not exist.
func EnsureTable(ctx context.Context, repo storage.Repository, name string, t *table.Table) error {
	stmt, err := ddl.BuildCreateTableSQL(Dialect, ddl.FromTable(name, t, MapType))
	if err != nil {
		return err
	}
	return repo.Exec(ctx, stmt)
}
