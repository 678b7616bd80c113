package builtin

import (
	"fmt"
	"log"
	"math"
	"strings"

	"flowprep/internal/bitmap"
	"flowprep/internal/table"
	"flowprep/internal/transformer"
)

// Sanitize drops every row holding a missing or non-finite cell.
//
// A text cell is missing when empty or when it spells infinity in any case,
// with an optional sign. A float cell is missing when NaN or ±Inf. Rows are
// removed rather than imputed.
type Sanitize struct{}

func (Sanitize) Apply(in *table.Table) (*table.Table, error) {
	n := in.NumRows()
	bad := bitmap.New(n)
	for _, c := range in.Columns() {
		switch v := c.(type) {
		case *table.Text:
			for i, s := range v.Values() {
				if !bad.Has(i) && isMissingText(s) {
					bad.Add(i)
				}
			}
		case *table.Numeric[float64]:
			markNonFinite(bad, v.Values())
		case *table.Numeric[float32]:
			markNonFinite(bad, v.Values())
		}
	}

	keep := bad.Unmarked()
	if len(keep) == 0 {
		return nil, fmt.Errorf("%w: sanitize: every row holds a missing or non-finite value", transformer.ErrEmptyResult)
	}
	if len(keep) == n {
		return in, nil
	}
	log.Printf("sanitize: dropped %d of %d rows", n-len(keep), n)
	return in.Take(keep), nil
}

func markNonFinite[T float32 | float64](bad *bitmap.Bitmap, vals []T) {
	for i, v := range vals {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			bad.Add(i)
		}
	}
}

func isMissingText(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return true
	}
	s = strings.TrimLeft(s, "+-")
	return strings.EqualFold(s, "infinity")
}
