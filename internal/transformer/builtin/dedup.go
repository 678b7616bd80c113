package builtin

import (
	"flowprep/internal/table"

	"github.com/zeebo/xxh3"
)

// cellSep separates cells in a column fingerprint so that "1","23" and
// "12","3" hash differently.
const cellSep = "\x1f"

// DropDuplicate removes columns whose content repeats an earlier column.
//
// Each column is fingerprinted with a 128-bit xxh3 hash over its kind family
// and the canonical text of its cells in row order. Columns sharing a
// fingerprint are compared cell by cell before one is dropped, so a hash
// collision never removes data. The leftmost column of each group survives.
func DropDuplicate(t *table.Table, protect ...string) (*table.Table, []string) {
	skip := nameSet(protect)
	groups := map[xxh3.Uint128][]table.Column{}
	var dropped []string
	for _, c := range t.Columns() {
		if _, ok := skip[c.Name()]; ok {
			continue
		}
		fp := fingerprint(c)
		dup := false
		for _, prev := range groups[fp] {
			if identical(prev, c) {
				dup = true
				break
			}
		}
		if dup {
			dropped = append(dropped, c.Name())
			continue
		}
		groups[fp] = append(groups[fp], c)
	}
	if len(dropped) == 0 {
		return t, nil
	}
	return t.Drop(dropped...), dropped
}

func fingerprint(c table.Column) xxh3.Uint128 {
	h := xxh3.New()
	_, _ = h.WriteString(family(c.Kind()))
	for i := 0; i < c.Len(); i++ {
		_, _ = h.WriteString(cellSep)
		_, _ = h.WriteString(c.Format(i))
	}
	return h.Sum128()
}

func identical(a, b table.Column) bool {
	if family(a.Kind()) != family(b.Kind()) || a.Len() != b.Len() {
		return false
	}
	for i := 0; i < a.Len(); i++ {
		if a.Format(i) != b.Format(i) {
			return false
		}
	}
	return true
}

func family(k table.Kind) string {
	if k.IsNumeric() {
		return "num"
	}
	return "text"
}
