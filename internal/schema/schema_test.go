package schema

import (
	"reflect"
	"strings"
	"testing"
)

/*
TestSchema_Validate checks the structural rules: at least one field, non-empty
unique names and a known type.
*/
func TestSchema_Validate(t *testing.T) {
	tests := []struct {
		name    string
		s       Schema
		wantErr string
	}{
		{"ok", Schema{{Name: "a", Type: Int}, {Name: "b", Type: Float}}, ""},
		{"no fields", nil, "no fields"},
		{"empty name", Schema{{Name: "", Type: Int}}, "empty name"},
		{"duplicate", Schema{{Name: "a", Type: Int}, {Name: "a", Type: Float}}, "duplicate field"},
		{"unknown type", Schema{{Name: "a", Type: FieldType("text")}}, "unknown type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.s.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestFlowSchema(t *testing.T) {
	s := FlowSchema()
	if len(s) != 78 {
		t.Fatalf("len = %d, want 78", len(s))
	}
	if s[0].Name != DefaultSentinelColumn {
		t.Fatalf("first field = %q, want %q", s[0].Name, DefaultSentinelColumn)
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if names := s.Names(); len(names) != len(s) || names[0] != s[0].Name {
		t.Fatalf("Names() = %v", names)
	}

	s[0].Name = "mutated"
	if FlowSchema()[0].Name != DefaultSentinelColumn {
		t.Fatal("FlowSchema shares its backing array")
	}
}

/*
TestLabelMapping_Lookup covers mapped, pass-through and unknown labels.
*/
func TestLabelMapping_Lookup(t *testing.T) {
	m := LabelMapping{
		Coarse:      map[string]string{"x1": "X", "x2": "X", "y": "Y"},
		PassThrough: []string{"keep"},
	}

	tests := []struct {
		fine   string
		want   string
		wantOK bool
	}{
		{"x1", "X", true},
		{"y", "Y", true},
		{"keep", "keep", true},
		{"other", "", false},
	}
	for _, tt := range tests {
		got, ok := m.Lookup(tt.fine)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Lookup(%q) = (%q, %v), want (%q, %v)", tt.fine, got, ok, tt.want, tt.wantOK)
		}
	}

	if got := m.CoarseLabels(); !reflect.DeepEqual(got, []string{"X", "Y"}) {
		t.Fatalf("CoarseLabels() = %v", got)
	}
}

func TestAttackMapping(t *testing.T) {
	m := AttackMapping()

	for fine, want := range map[string]string{
		"Bot":                  "Botnet",
		"Infilteration":        "Infiltration",
		"SQL Injection":        "Web attack",
		"DDOS attack-LOIC-UDP": "DDoS attack",
		"Label":                "Benign",
	} {
		if got, ok := m.Lookup(fine); !ok || got != want {
			t.Errorf("Lookup(%q) = (%q, %v), want %q", fine, got, ok, want)
		}
	}

	want := []string{"Benign", "Botnet", "Brute-force", "DDoS attack", "DoS attack", "Infiltration", "Web attack"}
	if got := m.CoarseLabels(); !reflect.DeepEqual(got, want) {
		t.Fatalf("CoarseLabels() = %v, want %v", got, want)
	}

	coarse := map[string]bool{}
	for _, c := range want {
		coarse[c] = true
	}
	for _, u := range UnwantedCategories() {
		if !coarse[u] {
			t.Errorf("unwanted category %q is never produced by AttackMapping", u)
		}
	}
}
