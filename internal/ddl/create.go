// Package ddl defines a small, backend-agnostic model for SQL DDL and helpers
// to render CREATE TABLE statements for the tables the pipeline writes.
//
// A TableDef is inferred from an in-memory table with FromTable; a Dialect
// supplies identifier quoting, the type mapping and the statement wrapper
// (IF NOT EXISTS and friends). Backend packages under internal/storage
// declare their Dialect and reuse BuildCreateTableSQL.
package ddl

import (
	"fmt"
	"strings"

	"flowprep/internal/table"
)

// ColumnDef describes a single column in a table definition.
//
// Name is unquoted; quoting happens at render time. Default is emitted as a
// raw SQL expression.
type ColumnDef struct {
	Name     string
	SQLType  string
	Nullable bool
	Default  string
}

// TableDef holds the fully-qualified table name (FQN) and an ordered list of
// columns. The FQN is expected in dotted form (e.g., "schema.table").
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// Dialect describes how a backend spells DDL.
type Dialect struct {
	// Name prefixes error messages, e.g. "sqlite ddl".
	Name string

	// QuoteIdent quotes one identifier segment. Nil emits names verbatim.
	QuoteIdent func(string) string

	// MapType maps a column kind to a SQL type.
	MapType func(table.Kind) string

	// Wrap turns the quoted FQN and the rendered column list into the final
	// statement. Nil renders a plain CREATE TABLE.
	Wrap func(fqn, body string) string
}

// Generic emits unquoted identifiers and ANSI-ish types. It is what
// BuildCreateTableSQL falls back to for zero Dialect fields.
var Generic = Dialect{
	Name:    "ddl",
	MapType: GenericType,
}

// GenericType maps kinds to portable SQL types.
func GenericType(k table.Kind) string {
	switch {
	case k == table.String:
		return "TEXT"
	case k.IsFloat() && k.Bits() == 32:
		return "REAL"
	case k.IsFloat():
		return "DOUBLE PRECISION"
	case k == table.Uint64:
		return "NUMERIC(20)"
	case k.IsInteger() && k.Bits() == 64, k == table.Uint32:
		return "BIGINT"
	case k.IsInteger() && k.Bits() == 32, k == table.Uint16:
		return "INTEGER"
	case k.IsInteger():
		return "SMALLINT"
	}
	return "TEXT"
}

// FromTable infers a TableDef for t under the given FQN using mapType.
// Every column is NOT NULL: the reduced tables carry no missing cells.
func FromTable(fqn string, t *table.Table, mapType func(table.Kind) string) TableDef {
	if mapType == nil {
		mapType = GenericType
	}
	cols := make([]ColumnDef, 0, t.NumCols())
	for _, c := range t.Columns() {
		cols = append(cols, ColumnDef{Name: c.Name(), SQLType: mapType(c.Kind())})
	}
	return TableDef{FQN: fqn, Columns: cols}
}

// BuildCreateTableSQL renders a CREATE TABLE statement for t in dialect d.
//
// A column renders as
//
//	<Name> <SQLType> [NOT NULL] [DEFAULT <Default>]
//
// and the column list is joined with ",\n  ".
func BuildCreateTableSQL(d Dialect, t TableDef) (string, error) {
	name := d.Name
	if name == "" {
		name = Generic.Name
	}
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("%s: table FQN must not be empty", name)
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("%s: at least one column is required", name)
	}

	cols := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		col := strings.TrimSpace(c.Name)
		if col == "" {
			return "", fmt.Errorf("%s: column with empty name in table %s", name, fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", fmt.Errorf("%s: column %s missing SQLType", name, col)
		}

		var sb strings.Builder
		sb.WriteString(d.quote(col))
		sb.WriteByte(' ')
		sb.WriteString(typ)
		if !c.Nullable {
			sb.WriteString(" NOT NULL")
		}
		if def := strings.TrimSpace(c.Default); def != "" {
			sb.WriteString(" DEFAULT ")
			sb.WriteString(def)
		}
		cols = append(cols, sb.String())
	}

	body := strings.Join(cols, ",\n  ")
	quoted := d.QuoteFQN(fqn)
	if d.Wrap != nil {
		return d.Wrap(quoted, body), nil
	}
	return fmt.Sprintf("CREATE TABLE %s (\n  %s\n);", quoted, body), nil
}

// QuoteFQN quotes each non-empty dotted segment of fqn.
func (d Dialect) QuoteFQN(fqn string) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, d.quote(p))
	}
	return strings.Join(out, ".")
}

func (d Dialect) quote(id string) string {
	if d.QuoteIdent == nil {
		return id
	}
	return d.QuoteIdent(id)
}

// DoubleQuote is the ANSI identifier quote shared by SQLite and Postgres.
func DoubleQuote(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
