// Package builtin contains the reduction stages of the pipeline. Every stage
// implements transformer.Transformer and returns a fresh table.
package builtin

import (
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"

	"flowprep/internal/schema"
	"flowprep/internal/table"
	"flowprep/internal/transformer"
)

// Coerce parses raw text columns into the types declared by Schema.
//
// Rows whose SentinelColumn holds the column's own name are dropped first:
// they are header lines re-embedded by naive concatenation of CSV exports.
// Columns absent from the schema pass through untouched.
type Coerce struct {
	Schema schema.Schema

	// SentinelColumn defaults to schema.DefaultSentinelColumn.
	SentinelColumn string
}

func (c Coerce) Apply(in *table.Table) (*table.Table, error) {
	sentinel := c.SentinelColumn
	if sentinel == "" {
		sentinel = schema.DefaultSentinelColumn
	}
	key, ok := in.Column(sentinel)
	if !ok {
		return nil, fmt.Errorf("%w: sentinel column %q absent", transformer.ErrSchemaViolation, sentinel)
	}
	for _, f := range c.Schema {
		if _, ok := in.Column(f.Name); !ok {
			return nil, fmt.Errorf("%w: column %q absent", transformer.ErrSchemaViolation, f.Name)
		}
	}

	keep := make([]int, 0, in.NumRows())
	for i := 0; i < key.Len(); i++ {
		if strings.TrimSpace(key.Format(i)) != sentinel {
			keep = append(keep, i)
		}
	}
	if dropped := in.NumRows() - len(keep); dropped > 0 {
		log.Printf("coerce: dropped %d re-embedded header rows", dropped)
		in = in.Take(keep)
	}

	types := make(map[string]schema.FieldType, len(c.Schema))
	for _, f := range c.Schema {
		types[f.Name] = f.Type
	}

	cols := in.Columns()
	for i, col := range cols {
		typ, declared := types[col.Name()]
		if !declared {
			continue
		}
		var err error
		switch typ {
		case schema.Int:
			cols[i], err = parseInts(col)
		case schema.Float:
			cols[i], err = parseFloats(col)
		default:
			err = fmt.Errorf("%w: column %q: unknown type %q", transformer.ErrSchemaViolation, col.Name(), typ)
		}
		if err != nil {
			return nil, err
		}
	}
	return table.New(cols...)
}

func parseInts(col table.Column) (table.Column, error) {
	out := make([]int64, col.Len())
	for i := range out {
		raw := strings.TrimSpace(col.Format(i))
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, violation(col.Name(), i, raw, schema.Int)
		}
		out[i] = v
	}
	return table.NewNumeric(col.Name(), out), nil
}

// parseFloats accepts decimal floats including the inf/infinity/nan
// spellings. Empty cells become NaN, and overflowing literals become ±Inf;
// the sanitizer removes both later. Hex literals are violations.
func parseFloats(col table.Column) (table.Column, error) {
	out := make([]float64, col.Len())
	for i := range out {
		raw := strings.TrimSpace(col.Format(i))
		if raw == "" {
			out[i] = math.NaN()
			continue
		}
		if isHex(raw) {
			return nil, violation(col.Name(), i, raw, schema.Float)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return nil, violation(col.Name(), i, raw, schema.Float)
		}
		out[i] = v
	}
	return table.NewNumeric(col.Name(), out), nil
}

func isHex(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

func violation(col string, row int, raw string, typ schema.FieldType) error {
	return fmt.Errorf("%w: column %q row %d: %q is not %s", transformer.ErrSchemaViolation, col, row, raw, typ)
}
