package builtin

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"flowprep/internal/table"
	"flowprep/internal/transformer"
)

/*
TestSanitize_DropsNonFiniteRows verifies that every row holding a NaN,
±Inf, an infinity token in any case, or an empty text cell is removed.
*/
func TestSanitize_DropsNonFiniteRows(t *testing.T) {
	in := mustTable(
		ints("id", 0, 1, 2, 3, 4, 5, 6),
		f64s("f", 1, math.NaN(), 3, math.Inf(1), 5, 6, 7),
		table.NewNumeric("g", []float32{1, 2, 3, 4, float32(math.Inf(-1)), 6, 7}),
		texts("t", "a", "b", "c", "d", "e", "INFINITY", "-Infinity"),
	)
	out, err := Sanitize{}.Apply(in)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got := formatted(t, out, "id"); !reflect.DeepEqual(got, []string{"0", "2"}) {
		t.Fatalf("surviving ids=%v; want [0 2]", got)
	}
}

/*
TestSanitize_Totality checks that no NaN or infinity survives for inputs that
mix IEEE and textual infinities with finite values.
*/
func TestSanitize_Totality(t *testing.T) {
	vals := []float64{0, math.Inf(1), 2, math.Inf(-1), math.NaN(), 5, -1e308, 1e308}
	in := mustTable(f64s("f", vals...), texts("t", "x", "y", "infinity", "z", "w", "Infinity", "k", "+infinity"))
	out, err := Sanitize{}.Apply(in)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	for _, v := range floatsOf(t, out, "f") {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("non-finite value %v survived", v)
		}
	}
	for _, s := range formatted(t, out, "t") {
		if isMissingText(s) {
			t.Fatalf("missing text %q survived", s)
		}
	}
	if out.NumRows() != 2 {
		t.Fatalf("rows=%d; want 2", out.NumRows())
	}
}

func TestSanitize_CleanTableUnchanged(t *testing.T) {
	in := mustTable(f64s("f", 1, 2), texts("t", "a", "b"))
	out, err := Sanitize{}.Apply(in)
	if err != nil || out != in {
		t.Fatalf("clean table: out=%p err=%v; want input back", out, err)
	}
}

func TestSanitize_AllRowsDropped(t *testing.T) {
	in := mustTable(f64s("f", math.NaN(), math.Inf(1)))
	if _, err := (Sanitize{}).Apply(in); !errors.Is(err, transformer.ErrEmptyResult) {
		t.Fatalf("err=%v; want ErrEmptyResult", err)
	}
}
