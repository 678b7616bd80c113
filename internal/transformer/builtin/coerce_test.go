package builtin

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"flowprep/internal/schema"
	"flowprep/internal/table"
	"flowprep/internal/transformer"
)

var portSchema = schema.Schema{
	{Name: "Dst Port", Type: schema.Int},
	{Name: "Flow Byts/s", Type: schema.Float},
}

/*
TestCoerce_DropsSentinelAndParses verifies that re-embedded header rows are
removed, declared columns are typed and undeclared columns pass through.
*/
func TestCoerce_DropsSentinelAndParses(t *testing.T) {
	in := mustTable(
		texts("Dst Port", "80", "Dst Port", " 443 "),
		texts("Flow Byts/s", "1.5", "Flow Byts/s", "Infinity"),
		texts("Label", "Benign", "Label", "DoS attacks-Hulk"),
	)
	out, err := Coerce{Schema: portSchema}.Apply(in)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.NumRows() != 2 {
		t.Fatalf("rows=%d; want 2", out.NumRows())
	}

	port, _ := out.Column("Dst Port")
	if port.Kind() != table.Int64 {
		t.Fatalf("Dst Port kind=%v; want int64", port.Kind())
	}
	if got := port.(*table.Numeric[int64]).Values(); !reflect.DeepEqual(got, []int64{80, 443}) {
		t.Fatalf("Dst Port=%v", got)
	}

	rate := floatsOf(t, out, "Flow Byts/s")
	if rate[0] != 1.5 || !math.IsInf(rate[1], 1) {
		t.Fatalf("Flow Byts/s=%v; want [1.5 +Inf]", rate)
	}

	if got := formatted(t, out, "Label"); !reflect.DeepEqual(got, []string{"Benign", "DoS attacks-Hulk"}) {
		t.Fatalf("Label=%v", got)
	}
}

func TestCoerce_EmptyFloatIsNaN(t *testing.T) {
	in := mustTable(texts("Dst Port", "1"), texts("Flow Byts/s", ""))
	out, err := Coerce{Schema: portSchema}.Apply(in)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if v := floatsOf(t, out, "Flow Byts/s"); !math.IsNaN(v[0]) {
		t.Fatalf("empty float cell=%v; want NaN", v[0])
	}
}

/*
TestCoerce_Violations verifies that coercion is all-or-nothing: any absent
column or unparseable value fails with ErrSchemaViolation.
*/
func TestCoerce_Violations(t *testing.T) {
	tests := []struct {
		name string
		in   *table.Table
	}{
		{"absent declared column", mustTable(texts("Dst Port", "1"))},
		{"absent sentinel column", mustTable(texts("Flow Byts/s", "1"))},
		{"float in int column", mustTable(texts("Dst Port", "1.5"), texts("Flow Byts/s", "1"))},
		{"empty int cell", mustTable(texts("Dst Port", ""), texts("Flow Byts/s", "1"))},
		{"garbage float", mustTable(texts("Dst Port", "1"), texts("Flow Byts/s", "fast"))},
		{"hex float", mustTable(texts("Dst Port", "1"), texts("Flow Byts/s", "0x1p4"))},
		{"signed hex float", mustTable(texts("Dst Port", "1"), texts("Flow Byts/s", "-0X1.8p1"))},
		{"int overflow", mustTable(texts("Dst Port", "99999999999999999999"), texts("Flow Byts/s", "1"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Coerce{Schema: portSchema}.Apply(tt.in)
			if !errors.Is(err, transformer.ErrSchemaViolation) {
				t.Fatalf("err=%v; want ErrSchemaViolation", err)
			}
		})
	}
}

func TestCoerce_CustomSentinel(t *testing.T) {
	s := schema.Schema{{Name: "Protocol", Type: schema.Int}}
	in := mustTable(texts("Protocol", "6", "Protocol", "17"))
	out, err := Coerce{Schema: s, SentinelColumn: "Protocol"}.Apply(in)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got := formatted(t, out, "Protocol"); !reflect.DeepEqual(got, []string{"6", "17"}) {
		t.Fatalf("Protocol=%v", got)
	}
}

func TestCoerce_FlowSchemaIsValid(t *testing.T) {
	s := schema.FlowSchema()
	if err := s.Validate(); err != nil {
		t.Fatalf("FlowSchema invalid: %v", err)
	}
	if s[0].Name != schema.DefaultSentinelColumn {
		t.Fatalf("first field=%q; want sentinel column", s[0].Name)
	}
}
