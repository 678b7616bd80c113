package mssql

import (
	"context"
	"fmt"
	"strings"

	"flowprep/internal/ddl"
	"flowprep/internal/storage"
	"flowprep/internal/table"
)

// Dialect renders SQL Server DDL: bracketed identifiers and an
// OBJECT_ID guard in place of IF NOT EXISTS.
var Dialect = ddl.Dialect{
	Name:       "mssql ddl",
	QuoteIdent: quoteIdent,
	MapType:    MapType,
	Wrap: func(fqn, body string) string {
		return fmt.Sprintf(
			"IF OBJECT_ID(N'%s', N'U') IS NULL\nBEGIN\n  CREATE TABLE %s (\n  %s\n  );\nEND;",
			strings.ReplaceAll(fqn, "'", "''"), fqn, body,
		)
	},
}

func quoteIdent(id string) string {
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}

// MapType maps a column kind to a SQL Server type. TINYINT is unsigned in
// SQL Server, so only uint8 uses it.
func MapType(k table.Kind) string {
	switch k {
	case table.Uint8:
		return "TINYINT"
	case table.Int8, table.Int16:
		return "SMALLINT"
	case table.Int32, table.Uint16:
		return "INT"
	case table.Int64, table.Uint32:
		return "BIGINT"
	case table.Uint64:
		return "DECIMAL(20, 0)"
	case table.Float32:
		return "REAL"
	case table.Float64:
		return "FLOAT"
	}
	return "NVARCHAR(MAX)"
}

// EnsureTable creates name shaped like t when it does not exist.
func EnsureTable(ctx context.Context, repo storage.Repository, name string, t *table.Table) error {
	stmt, err := ddl.BuildCreateTableSQL(Dialect, ddl.FromTable(name, t, MapType))
	if err != nil {
		return err
	}
	return repo.Exec(ctx, stmt)
}
