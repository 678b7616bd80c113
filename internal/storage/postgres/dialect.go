package postgres

import (
	"context"
	"fmt"

	"flowprep/internal/ddl"
	"flowprep/internal/storage"
	"flowprep/internal/table"
)

// Dialect renders Postgres DDL.
var Dialect = ddl.Dialect{
	Name:       "postgres ddl",
	QuoteIdent: ddl.DoubleQuote,
	MapType:    MapType,
	Wrap: func(fqn, body string) string {
		return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n);", fqn, body)
	},
}

// MapType maps a column kind to a Postgres type. Postgres has no unsigned
// integers, so each unsigned kind takes the next wider signed type.
func MapType(k table.Kind) string {
	switch k {
	case table.Int8, table.Int16, table.Uint8:
		return "SMALLINT"
	case table.Int32, table.Uint16:
		return "INTEGER"
	case table.Int64, table.Uint32:
		return "BIGINT"
	case table.Uint64:
		return "NUMERIC(20)"
	case table.Float32:
		return "REAL"
	case table.Float64:
		return "DOUBLE PRECISION"
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
