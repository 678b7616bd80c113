package builtin

import (
	"flowprep/internal/table"

	"gonum.org/v1/gonum/floats"
)

// DropConstant removes every numeric column whose values are all equal,
// i.e. whose variance is exactly zero. Text columns and columns named in
// protect are kept.
func DropConstant(t *table.Table, protect ...string) (*table.Table, []string) {
	skip := nameSet(protect)
	var dropped []string
	for _, c := range t.Columns() {
		if _, ok := skip[c.Name()]; ok || !c.Kind().IsNumeric() || c.Len() == 0 {
			continue
		}
		v := floatValues(c)
		if floats.Min(v) == floats.Max(v) {
			dropped = append(dropped, c.Name())
		}
	}
	if len(dropped) == 0 {
		return t, nil
	}
	return t.Drop(dropped...), dropped
}

func nameSet(names []string) map[string]struct{} {
	out := make(map[string]struct{}, len(names))
	for _, n := range names {
		out[n] = struct{}{}
	}
	return out
}

// floatValues widens a numeric column to float64.
func floatValues(c table.Column) []float64 {
	if f, ok := c.(interface{ Floats() []float64 }); ok {
		return f.Floats()
	}
	return nil
}
