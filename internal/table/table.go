package table

import "fmt"

// Table is an ordered set of uniquely named columns of equal length.
// Tables are immutable once built: every operation returns a new Table,
// sharing column data that is passed through unchanged.
type Table struct {
	cols  []Column
	index map[string]int
	rows  int
}

// New builds a table, enforcing equal column lengths and unique names.
func New(cols ...Column) (*Table, error) {
	t := &Table{cols: cols, index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if _, dup := t.index[c.Name()]; dup {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrShape, c.Name())
		}
		if i == 0 {
			t.rows = c.Len()
		} else if c.Len() != t.rows {
			return nil, fmt.Errorf("%w: column %q has %d rows, want %d", ErrShape, c.Name(), c.Len(), t.rows)
		}
		t.index[c.Name()] = i
	}
	return t, nil
}

// MustNew is New for callers that construct tables from known-good parts.
// It panics on invariant violations.
func MustNew(cols ...Column) *Table {
	t, err := New(cols...)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Table) NumRows() int { return t.rows }
func (t *Table) NumCols() int { return len(t.cols) }

// Columns returns the columns in order. The returned slice is a copy.
func (t *Table) Columns() []Column {
	return append([]Column(nil), t.cols...)
}

// Column looks a column up by name.
func (t *Table) Column(name string) (Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.cols[i], true
}

// Index returns the position of name, or -1.
func (t *Table) Index(name string) int {
	if i, ok := t.index[name]; ok {
		return i
	}
	return -1
}

// Names returns the column names in order.
func (t *Table) Names() []string {
	out := make([]string, len(t.cols))
	for i, c := range t.cols {
		out[i] = c.Name()
	}
	return out
}

// Take returns a table holding the rows at idx, in idx order.
func (t *Table) Take(idx []int) *Table {
	cols := make([]Column, len(t.cols))
	for i, c := range t.cols {
		cols[i] = c.Take(idx)
	}
	out := MustNew(cols...)
	out.rows = len(idx)
	return out
}

// Drop returns a table without the named columns. Unknown names are ignored.
func (t *Table) Drop(names ...string) *Table {
	skip := make(map[string]struct{}, len(names))
	for _, n := range names {
		skip[n] = struct{}{}
	}
	cols := make([]Column, 0, len(t.cols))
	for _, c := range t.cols {
		if _, ok := skip[c.Name()]; !ok {
			cols = append(cols, c)
		}
	}
	out := MustNew(cols...)
	if len(cols) == 0 {
		out.rows = t.rows
	}
	return out
}

// With returns a table where c replaces the column of the same name, or is
// appended when no such column exists.
func (t *Table) With(c Column) (*Table, error) {
	cols := t.Columns()
	if i, ok := t.index[c.Name()]; ok {
		cols[i] = c
	} else {
		cols = append(cols, c)
	}
	return New(cols...)
}

// Row returns row i as driver-friendly values in column order.
func (t *Table) Row(i int) []any {
	out := make([]any, len(t.cols))
	for j, c := range t.cols {
		out[j] = c.Value(i)
	}
	return out
}

// MemoryBytes approximates the memory held by column data.
func (t *Table) MemoryBytes() int {
	n := 0
	for _, c := range t.cols {
		n += c.Size()
	}
	return n
}
