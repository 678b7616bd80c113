package builtin

import (
	"reflect"
	"testing"
)

/*
TestNormalizeApply_TableDriven verifies the text cleanup applied before
coercion:

  - U+00A0 NO-BREAK SPACE becomes an ASCII space.
  - Leading and trailing whitespace is trimmed.
  - Decomposed accents are composed (NFC).
  - Numeric columns are left alone.
*/
func TestNormalizeApply_TableDriven(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"no change", []string{"Benign", "80"}, []string{"Benign", "80"}},
		{"trim spaces", []string{" foo ", "\tbar\n"}, []string{"foo", "bar"}},
		{"nbsp replaced and trimmed", []string{" " + nbspace + "foo" + nbspace + " "}, []string{"foo"}},
		{"internal nbsp kept as space", []string{"foo" + nbspace + "bar"}, []string{"foo bar"}},
		{"decomposed accent", []string{"Cafe\u0301"}, []string{"Caf\u00e9"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := mustTable(texts("s", tt.in...))
			out, err := Normalize{}.Apply(in)
			if err != nil {
				t.Fatalf("Apply: %v", err)
			}
			if got := formatted(t, out, "s"); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %q; want %q", got, tt.want)
			}
		})
	}
}

func TestNormalize_NoCopyWhenClean(t *testing.T) {
	in := mustTable(texts("s", "a", "b"), f64s("x", 1, 2))
	out, err := Normalize{}.Apply(in)
	if err != nil || out != in {
		t.Fatalf("clean table: out=%p err=%v; want input back", out, err)
	}
}

/*
TestNormalize_InputUntouched verifies that cleaning copies the column
instead of writing through to the input.
*/
func TestNormalize_InputUntouched(t *testing.T) {
	in := mustTable(texts("s", " a ", "b"))
	if _, err := (Normalize{}).Apply(in); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got := formatted(t, in, "s"); !reflect.DeepEqual(got, []string{" a ", "b"}) {
		t.Fatalf("input modified: %q", got)
	}
}
