package builtin

import (
	"log"
	"math"
	"runtime"

	"flowprep/internal/table"

	"golang.org/x/sync/errgroup"
)

// integralEpsilon bounds the accumulated rounding error of a column that is
// treated as integer valued.
const integralEpsilon = 0.01

// Downcast stores every numeric column in the narrowest kind that holds all
// of its values.
//
// NaN cells are replaced by min-1, a sentinel strictly below the observed
// range, so the column can become integral. Where |min| >= 2^53 min-1 rounds
// back to min, and the next float64 below min is used instead. ±Inf cells are left in place and
// keep the column in a float kind; the sanitizer drops those rows.
type Downcast struct{}

func (d Downcast) Apply(in *table.Table) (*table.Table, error) {
	out, _, err := d.Reduce(in)
	return out, err
}

// Reduce is Apply that also returns the names of the columns that held
// non-finite values, in column order.
func (Downcast) Reduce(in *table.Table) (*table.Table, []string, error) {
	cols := in.Columns()
	missing := make([]bool, len(cols))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, c := range cols {
		if !c.Kind().IsNumeric() {
			continue
		}
		g.Go(func() error {
			cols[i], missing[i] = downcastColumn(c)
			return nil
		})
	}
	_ = g.Wait()

	var hadMissing []string
	for i, m := range missing {
		if m {
			hadMissing = append(hadMissing, cols[i].Name())
		}
	}

	out, err := table.New(cols...)
	if err != nil {
		return nil, nil, err
	}
	before, after := in.MemoryBytes(), out.MemoryBytes()
	if before > 0 {
		log.Printf("downcast: memory %d -> %d bytes (%.1f%%), had_missing=%d",
			before, after, 100*float64(after)/float64(before), len(hadMissing))
	}
	return out, hadMissing, nil
}

func downcastColumn(c table.Column) (table.Column, bool) {
	switch v := c.(type) {
	case *table.Numeric[int8]:
		return signedDowncast(c, v.Values()), false
	case *table.Numeric[int16]:
		return signedDowncast(c, v.Values()), false
	case *table.Numeric[int32]:
		return signedDowncast(c, v.Values()), false
	case *table.Numeric[int64]:
		return signedDowncast(c, v.Values()), false
	case *table.Numeric[uint8]:
		return unsignedDowncast(c, v.Values()), false
	case *table.Numeric[uint16]:
		return unsignedDowncast(c, v.Values()), false
	case *table.Numeric[uint32]:
		return unsignedDowncast(c, v.Values()), false
	case *table.Numeric[uint64]:
		return unsignedDowncast(c, v.Values()), false
	case *table.Numeric[float32]:
		return floatDowncast(c, v.Floats())
	case *table.Numeric[float64]:
		return floatDowncast(c, v.Floats())
	}
	return c, false
}

func signedDowncast[T int8 | int16 | int32 | int64](c table.Column, vals []T) table.Column {
	if len(vals) == 0 {
		return c
	}
	lo, hi := int64(vals[0]), int64(vals[0])
	for _, v := range vals[1:] {
		lo, hi = min(lo, int64(v)), max(hi, int64(v))
	}
	if lo >= 0 {
		return castOr(c, unsignedFor(uint64(hi)))
	}
	return castOr(c, signedFor(lo, hi))
}

func unsignedDowncast[T uint8 | uint16 | uint32 | uint64](c table.Column, vals []T) table.Column {
	if len(vals) == 0 {
		return c
	}
	var hi uint64
	for _, v := range vals {
		hi = max(hi, uint64(v))
	}
	return castOr(c, unsignedFor(hi))
}

// unsignedFor picks the smallest unsigned kind whose maximum exceeds hi.
func unsignedFor(hi uint64) table.Kind {
	switch {
	case hi < math.MaxUint8:
		return table.Uint8
	case hi < math.MaxUint16:
		return table.Uint16
	case hi < math.MaxUint32:
		return table.Uint32
	}
	return table.Uint64
}

// signedFor picks the smallest signed kind whose range strictly contains
// [lo, hi]. Int64 is returned even for the boundary values, where the cast
// is a no-op for int64 input.
func signedFor(lo, hi int64) table.Kind {
	switch {
	case lo > math.MinInt8 && hi < math.MaxInt8:
		return table.Int8
	case lo > math.MinInt16 && hi < math.MaxInt16:
		return table.Int16
	case lo > math.MinInt32 && hi < math.MaxInt32:
		return table.Int32
	}
	return table.Int64
}

func floatDowncast(c table.Column, vals []float64) (table.Column, bool) {
	lo, hi := math.Inf(1), math.Inf(-1)
	nonFinite := false
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			nonFinite = true
			continue
		}
		lo, hi = min(lo, v), max(hi, v)
	}
	if lo > hi {
		// No finite value at all; nothing to base a kind on.
		return c, nonFinite
	}

	src := c
	if nonFinite {
		fill, filled := lo-1, false
		if fill == lo {
			fill = math.Nextafter(lo, math.Inf(-1))
		}
		for i, v := range vals {
			if math.IsNaN(v) {
				vals[i], filled = fill, true
			}
		}
		if filled {
			lo = fill
			src = table.NewNumeric(c.Name(), vals)
		}
	}

	if isIntegral(vals) {
		if k, ok := floatIntegerKind(lo, hi); ok {
			if out, err := table.Cast(src, k); err == nil {
				return out, nonFinite
			}
		}
		// Whole-valued by the rounding test but not castable: either out of
		// every integer range or only balanced by opposite-signed fractions.
		if hi >= math.Ldexp(1, 63) || lo < -math.Ldexp(1, 63) {
			return src, nonFinite
		}
	}
	return castOr(src, table.Float32), nonFinite
}

// isIntegral sums the signed distance of every value to its nearest integer.
func isIntegral(vals []float64) bool {
	var sum float64
	for _, v := range vals {
		sum += v - math.Round(v)
	}
	return sum > -integralEpsilon && sum < integralEpsilon
}

func floatIntegerKind(lo, hi float64) (table.Kind, bool) {
	if lo >= 0 {
		switch {
		case hi < math.MaxUint8:
			return table.Uint8, true
		case hi < math.MaxUint16:
			return table.Uint16, true
		case hi < math.MaxUint32:
			return table.Uint32, true
		case hi < math.Ldexp(1, 64):
			return table.Uint64, true
		}
		return 0, false
	}
	switch {
	case lo > math.MinInt8 && hi < math.MaxInt8:
		return table.Int8, true
	case lo > math.MinInt16 && hi < math.MaxInt16:
		return table.Int16, true
	case lo > math.MinInt32 && hi < math.MaxInt32:
		return table.Int32, true
	case lo > -math.Ldexp(1, 63) && hi < math.Ldexp(1, 63):
		return table.Int64, true
	}
	return 0, false
}

// castOr returns c cast to k, or c unchanged when the cast is not total.
func castOr(c table.Column, k table.Kind) table.Column {
	out, err := table.Cast(c, k)
	if err != nil {
		return c
	}
	return out
}
