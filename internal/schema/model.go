// Package schema holds the static configuration data the reduction pipeline
// is driven by: the declared column types of raw flow records and the
// fine-to-coarse attack label mapping. Values returned from this package are
// fresh copies; callers may modify them without affecting other callers.
package schema

import (
	"fmt"
	"strings"
)

// FieldType is the declared logical type of a schema column.
type FieldType string

const (
	Int   FieldType = "int"
	Float FieldType = "float"
)

// Field declares one column of the raw input.
type Field struct {
	Name string    `json:"name" yaml:"name"`
	Type FieldType `json:"type" yaml:"type"`
}

// Schema is an ordered list of declared columns.
type Schema []Field

// Validate checks names are unique and non-empty and types are known.
func (s Schema) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("schema: no fields")
	}
	seen := make(map[string]struct{}, len(s))
	for i, f := range s {
		if strings.TrimSpace(f.Name) == "" {
			return fmt.Errorf("schema: field %d: empty name", i)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("schema: duplicate field %q", f.Name)
		}
		seen[f.Name] = struct{}{}
		switch f.Type {
		case Int, Float:
		default:
			return fmt.Errorf("schema: field %q: unknown type %q", f.Name, f.Type)
		}
	}
	return nil
}

// Names returns the declared column names in order.
func (s Schema) Names() []string {
	out := make([]string, len(s))
	for i, f := range s {
		out[i] = f.Name
	}
	return out
}

// DefaultSentinelColumn is the column checked for header rows re-embedded
// by naive concatenation of CSV exports.
const DefaultSentinelColumn = "Dst Port"

// FlowSchema returns the declared types of the CSE-CIC-IDS2018 flow features.
func FlowSchema() Schema {
	out := make(Schema, 0, len(flowFields))
	for _, f := range flowFields {
		out = append(out, Field{Name: f[0], Type: FieldType(f[1])})
	}
	return out
}

var flowFields = [...][2]string{
	{"Dst Port", "int"},
	{"Protocol", "int"},
	{"Flow Duration", "int"},
	{"Tot Fwd Pkts", "int"},
	{"Tot Bwd Pkts", "int"},
	{"TotLen Fwd Pkts", "int"},
	{"TotLen Bwd Pkts", "int"},
	{"Fwd Pkt Len Max", "int"},
	{"Fwd Pkt Len Min", "int"},
	{"Fwd Pkt Len Mean", "float"},
	{"Fwd Pkt Len Std", "float"},
	{"Bwd Pkt Len Max", "int"},
	{"Bwd Pkt Len Min", "int"},
	{"Bwd Pkt Len Mean", "float"},
	{"Bwd Pkt Len Std", "float"},
	{"Flow Byts/s", "float"},
	{"Flow Pkts/s", "float"},
	{"Flow IAT Mean", "float"},
	{"Flow IAT Std", "float"},
	{"Flow IAT Max", "int"},
	{"Flow IAT Min", "int"},
	{"Fwd IAT Tot", "int"},
	{"Fwd IAT Mean", "float"},
	{"Fwd IAT Std", "float"},
	{"Fwd IAT Max", "int"},
	{"Fwd IAT Min", "int"},
	{"Bwd IAT Tot", "int"},
	{"Bwd IAT Mean", "float"},
	{"Bwd IAT Std", "float"},
	{"Bwd IAT Max", "int"},
	{"Bwd IAT Min", "int"},
	{"Fwd PSH Flags", "int"},
	{"Bwd PSH Flags", "int"},
	{"Fwd URG Flags", "int"},
	{"Bwd URG Flags", "int"},
	{"Fwd Header Len", "int"},
	{"Bwd Header Len", "int"},
	{"Fwd Pkts/s", "float"},
	{"Bwd Pkts/s", "float"},
	{"Pkt Len Min", "int"},
	{"Pkt Len Max", "int"},
	{"Pkt Len Mean", "float"},
	{"Pkt Len Std", "float"},
	{"Pkt Len Var", "float"},
	{"FIN Flag Cnt", "int"},
	{"SYN Flag Cnt", "int"},
	{"RST Flag Cnt", "int"},
	{"PSH Flag Cnt", "int"},
	{"ACK Flag Cnt", "int"},
	{"URG Flag Cnt", "int"},
	{"CWE Flag Count", "int"},
	{"ECE Flag Cnt", "int"},
	{"Down/Up Ratio", "int"},
	{"Pkt Size Avg", "float"},
	{"Fwd Seg Size Avg", "float"},
	{"Bwd Seg Size Avg", "float"},
	{"Fwd Byts/b Avg", "int"},
	{"Fwd Pkts/b Avg", "int"},
	{"Fwd Blk Rate Avg", "int"},
	{"Bwd Byts/b Avg", "int"},
	{"Bwd Pkts/b Avg", "int"},
	{"Bwd Blk Rate Avg", "int"},
	{"Subflow Fwd Pkts", "int"},
	{"Subflow Fwd Byts", "int"},
	{"Subflow Bwd Pkts", "int"},
	{"Subflow Bwd Byts", "int"},
	{"Init Fwd Win Byts", "int"},
	{"Init Bwd Win Byts", "int"},
	{"Fwd Act Data Pkts", "int"},
	{"Fwd Seg Size Min", "int"},
	{"Active Mean", "float"},
	{"Active Std", "float"},
	{"Active Max", "int"},
	{"Active Min", "int"},
	{"Idle Mean", "float"},
	{"Idle Std", "float"},
	{"Idle Max", "int"},
	{"Idle Min", "int"},
}
