package builtin

import (
	"strings"

	"flowprep/internal/table"

	"golang.org/x/text/unicode/norm"
)

const nbspace = "\u00a0"

// Normalize cleans text cells before coercion: no-break spaces become
// spaces, surrounding whitespace is trimmed and the result is put in NFC
// form, so labels spelled with composed and decomposed accents compare
// equal. Numeric columns pass through.
type Normalize struct{}

func (Normalize) Apply(in *table.Table) (*table.Table, error) {
	cols := in.Columns()
	changed := false
	for i, c := range cols {
		t, ok := c.(*table.Text)
		if !ok {
			continue
		}
		vals := t.Values()
		var out []string
		for j, s := range vals {
			ns := normalizeCell(s)
			if ns == s {
				continue
			}
			if out == nil {
				out = append([]string(nil), vals...)
			}
			out[j] = ns
		}
		if out != nil {
			cols[i] = table.NewText(t.Name(), out)
			changed = true
		}
	}
	if !changed {
		return in, nil
	}
	return table.New(cols...)
}

func normalizeCell(s string) string {
	if strings.Contains(s, nbspace) {
		s = strings.ReplaceAll(s, nbspace, " ")
	}
	s = strings.TrimSpace(s)
	if !norm.NFC.IsNormalString(s) {
		s = norm.NFC.String(s)
	}
	return s
}
