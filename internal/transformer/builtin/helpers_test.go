package builtin

import (
	"reflect"
	"testing"

	"flowprep/internal/table"
)

func ints(name string, v ...int64) table.Column { return table.NewNumeric(name, v) }
func f64s(name string, v ...float64) table.Column { return table.NewNumeric(name, v) }
func texts(name string, v ...string) table.Column { return table.NewText(name, v) }
func mustTable(cols ...table.Column) *table.Table { return table.MustNew(cols...) }
func seed(v uint64) *uint64 { return &v }

func formatted(t *testing.T, tb *table.Table, name string) []string {
	t.Helper()
	c, ok := tb.Column(name)
	if !ok {
		t.Fatalf("column %q absent; have %v", name, tb.Names())
	}
	out := make([]string, c.Len())
	for i := range out {
		out[i] = c.Format(i)
	}
	return out
}

func floatsOf(t *testing.T, tb *table.Table, name string) []float64 {
	t.Helper()
	c, ok := tb.Column(name)
	if !ok {
		t.Fatalf("column %q absent; have %v", name, tb.Names())
	}
	v := floatValues(c)
	if v == nil {
		t.Fatalf("column %q is %v, not numeric", name, c.Kind())
	}
	return v
}

func assertNames(t *testing.T, tb *table.Table, want ...string) {
	t.Helper()
	if got := tb.Names(); !reflect.DeepEqual(got, want) {
		t.Fatalf("names=%v; want %v", got, want)
	}
}
