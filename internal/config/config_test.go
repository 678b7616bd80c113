package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"unicode/utf8"
)

// -----------------------------------------------------------------------------
// Pipeline decoding tests
// -----------------------------------------------------------------------------
//
// These tests validate that pipeline files in both JSON and YAML decode into
// the intended Go struct graph. They parse from strings to stay hermetic;
// the Load tests below cover filesystem and environment wiring.

const pipelineJSON = `{
  "job": "ids2018",
  "sources": [ { "path": "data/a.csv" }, { "list": "data/days.txt" } ],
  "parser": { "kind": "csv", "options": { "comma": ",", "trim_space": true, "header_map": { "Dst Port ": "Dst Port" } } },
  "schema": { "sentinel_column": "Dst Port", "fields": [ { "name": "Dst Port", "type": "int" }, { "name": "Flow Byts/s", "type": "float" } ] },
  "labels": { "column": "Label", "unwanted_categories": ["Botnet", "Infiltration"] },
  "reduce": { "drop_columns": ["Timestamp"], "excluded_labels": ["Benign"], "threshold": 0.9, "test_fraction": 0.25, "random_seed": 7 },
  "storage": { "kind": "sqlite", "dsn": "out/flows.db", "table_prefix": "ids_", "batch_size": 1000, "auto_create_table": true },
  "artifacts": { "dir": "out" },
  "runtime": { "workers": 4, "channel_buffer": 64 },
  "metrics": { "backend": "prometheus", "pushgateway_url": "http://pgw:9091" }
}`

const pipelineYAML = `
job: ids2018
sources:
  - path: data/a.csv
  - list: data/days.txt
parser:
  kind: csv
  options:
    comma: ","
    trim_space: true
    header_map:
      "Dst Port ": Dst Port
schema:
  sentinel_column: Dst Port
  fields:
    - { name: Dst Port, type: int }
    - { name: Flow Byts/s, type: float }
labels:
  column: Label
  unwanted_categories: [Botnet, Infiltration]
reduce:
  drop_columns: [Timestamp]
  excluded_labels: [Benign]
  threshold: 0.9
  test_fraction: 0.25
  random_seed: 7
storage:
  kind: sqlite
  dsn: out/flows.db
  table_prefix: ids_
  batch_size: 1000
  auto_create_table: true
artifacts:
  dir: out
runtime:
  workers: 4
  channel_buffer: 64
metrics:
  backend: prometheus
  pushgateway_url: http://pgw:9091
`

func checkDecodedPipeline(t *testing.T, p Pipeline) {
	t.Helper()

	if p.Job != "ids2018" {
		t.Fatalf("job = %q, want ids2018", p.Job)
	}
	if !reflect.DeepEqual(p.Sources, []Source{{Path: "data/a.csv"}, {List: "data/days.txt"}}) {
		t.Fatalf("sources = %#v", p.Sources)
	}
	if p.Parser.Kind != "csv" || p.Parser.Options.Rune("comma", ';') != ',' || !p.Parser.Options.Bool("trim_space", false) {
		t.Fatalf("parser = %#v", p.Parser)
	}
	if hm := p.Parser.Options.StringMap("header_map"); hm["Dst Port "] != "Dst Port" {
		t.Fatalf("header_map = %#v", hm)
	}
	if len(p.Schema.Fields) != 2 || p.Schema.Fields[1].Name != "Flow Byts/s" || p.Schema.Fields[1].Type != "float" {
		t.Fatalf("schema = %#v", p.Schema)
	}
	if !reflect.DeepEqual(p.Labels.UnwantedCategories, []string{"Botnet", "Infiltration"}) {
		t.Fatalf("unwanted = %#v", p.Labels.UnwantedCategories)
	}
	r := p.Reduce
	if r.Threshold != 0.9 || r.TestFraction != 0.25 || r.RandomSeed == nil || *r.RandomSeed != 7 {
		t.Fatalf("reduce = %#v", r)
	}
	if !reflect.DeepEqual(r.DropColumns, []string{"Timestamp"}) || !reflect.DeepEqual(r.ExcludedLabels, []string{"Benign"}) {
		t.Fatalf("reduce lists = %#v", r)
	}
	want := Storage{Kind: "sqlite", DSN: "out/flows.db", TablePrefix: "ids_", BatchSize: 1000, AutoCreateTable: true}
	if p.Storage != want {
		t.Fatalf("storage = %#v, want %#v", p.Storage, want)
	}
	if p.Artifacts.Dir != "out" || p.Runtime != (Runtime{Workers: 4, ChannelBuffer: 64}) {
		t.Fatalf("artifacts/runtime = %#v %#v", p.Artifacts, p.Runtime)
	}
	if p.Metrics.Backend != "prometheus" || p.Metrics.PushgatewayURL != "http://pgw:9091" {
		t.Fatalf("metrics = %#v", p.Metrics)
	}
}

func TestDecode_JSONAndYAML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ext  string
		src  string
	}{
		{"json", ".json", pipelineJSON},
		{"yaml", ".yaml", pipelineYAML},
		{"yml upper", ".YML", pipelineYAML},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var p Pipeline
			if err := Decode([]byte(tt.src), tt.ext, &p); err != nil {
				t.Fatalf("Decode: %v", err)
			}
			checkDecodedPipeline(t, p)
		})
	}
}

func TestDecode_RejectsUnknownFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ext, src string
	}{
		{".json", `{"job":"x","bogus":1}`},
		{".yaml", "job: x\nbogus: 1\n"},
	}
	for _, tt := range tests {
		var p Pipeline
		if err := Decode([]byte(tt.src), tt.ext, &p); err == nil {
			t.Fatalf("Decode(%s) accepted unknown field", tt.ext)
		}
	}
}

/*
TestLoad_DefaultsAndEnv verifies Load fills defaults for zero values and that
FLOWPREP_* variables override the file.
*/
func TestLoad_DefaultsAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "p.json")
	if err := os.WriteFile(path, []byte(`{"sources":[{"path":"a.csv"}],"storage":{"kind":"csv","dsn":"file-dsn"}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("FLOWPREP_STORAGE_DSN", "env-dsn")
	t.Setenv("FLOWPREP_RANDOM_SEED", "99")
	t.Setenv("FLOWPREP_METRICS_BACKEND", "datadog")
	t.Setenv("FLOWPREP_DATADOG_ADDR", "127.0.0.1:8125")

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Job != DefaultJob || p.Parser.Kind != "csv" || p.Parser.Options == nil {
		t.Fatalf("defaults not applied: %#v", p)
	}
	if p.Schema.SentinelColumn != "Dst Port" || p.Labels.Column != DefaultLabelColumn {
		t.Fatalf("schema/labels defaults: %#v %#v", p.Schema, p.Labels)
	}
	if p.Reduce.Threshold != DefaultThreshold || p.Reduce.TestFraction != DefaultTestFraction {
		t.Fatalf("reduce defaults: %#v", p.Reduce)
	}
	if p.Storage.DSN != "env-dsn" {
		t.Fatalf("dsn = %q, want env-dsn", p.Storage.DSN)
	}
	if p.Reduce.RandomSeed == nil || *p.Reduce.RandomSeed != 99 {
		t.Fatalf("seed = %v, want 99", p.Reduce.RandomSeed)
	}
	if p.Metrics.Backend != "datadog" || p.Metrics.DatadogAddr != "127.0.0.1:8125" {
		t.Fatalf("metrics = %#v", p.Metrics)
	}
	if !reflect.DeepEqual(p.Labels.UnwantedCategories, []string{"Botnet", "Infiltration", "Web attack"}) {
		t.Fatalf("unwanted default = %v", p.Labels.UnwantedCategories)
	}
	if HasErrors(ValidatePipeline(p)) {
		t.Fatalf("loaded pipeline has errors: %v", ValidatePipeline(p))
	}
}

func TestApplyDefaults_ExplicitEmptyUnwantedKept(t *testing.T) {
	t.Parallel()

	var p Pipeline
	if err := Decode([]byte(`{"labels":{"unwanted_categories":[]}}`), ".json", &p); err != nil {
		t.Fatal(err)
	}
	p.ApplyDefaults()
	if p.Labels.UnwantedCategories == nil || len(p.Labels.UnwantedCategories) != 0 {
		t.Fatalf("unwanted = %#v, want explicit empty list", p.Labels.UnwantedCategories)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("job: [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{filepath.Join(dir, "missing.json"), bad} {
		if _, err := Load(path); err == nil {
			t.Fatalf("Load(%s) = nil error", filepath.Base(path))
		}
	}
}

func TestLabelMapping_DefaultsToAttackFamilies(t *testing.T) {
	t.Parallel()

	p := Pipeline{Labels: Labels{PassThrough: []string{"Heartbleed"}}}
	m := p.LabelMapping()
	if len(m.Coarse) == 0 {
		t.Fatal("default mapping is empty")
	}
	found := false
	for _, l := range m.PassThrough {
		if l == "Heartbleed" {
			found = true
		}
	}
	if !found {
		t.Fatalf("pass-through %v misses configured label", m.PassThrough)
	}

	custom := Pipeline{Labels: Labels{Mapping: map[string]string{"a": "A"}}}
	if got := custom.LabelMapping().Coarse; !reflect.DeepEqual(got, map[string]string{"a": "A"}) {
		t.Fatalf("custom mapping = %#v", got)
	}
}

func TestOptions_UnmarshalYAML_NestedMaps(t *testing.T) {
	t.Parallel()

	var p Pipeline
	if err := Decode([]byte(pipelineYAML), ".yaml", &p); err != nil {
		t.Fatal(err)
	}
	if _, ok := p.Parser.Options.Any("header_map").(map[string]any); !ok {
		t.Fatalf("header_map = %T, want map[string]any", p.Parser.Options.Any("header_map"))
	}
}

// -----------------------------------------------------------------------------
// Options helper tests (hermetic).
// -----------------------------------------------------------------------------
//
// These tests validate minimal, deliberate coercion behavior and defaults. This
// protects against accidental changes in helper semantics that would silently
// alter pipeline behavior across the application.

func TestOptions_String_Bool_Int_Rune_DefaultsAndCoercion(t *testing.T) {
	t.Parallel()

	o := Options{
		"s": "hello",
		"b": true,
		"i": float64(42), // encoding/json decodes numbers as float64
		"r": ",",         // first rune will be used
	}

	// String
	if got := o.String("s", "def"); got != "hello" {
		t.Fatalf("String(s) = %q, want hello", got)
	}
	if got := o.String("missing", "def"); got != "def" {
		t.Fatalf("String(missing) = %q, want def", got)
	}

	// Bool
	if got := o.Bool("b", false); got != true {
		t.Fatalf("Bool(b) = %v, want true", got)
	}
	if got := o.Bool("missing", true); got != true {
		t.Fatalf("Bool(missing) = %v, want true", got)
	}

	// Int (float64 → int)
	if got := o.Int("i", 0); got != 42 {
		t.Fatalf("Int(i) = %d, want 42", got)
	}
	if got := o.Int("missing", 7); got != 7 {
		t.Fatalf("Int(missing) = %d, want 7", got)
	}

	// Rune (first rune from string)
	if got := o.Rune("r", ';'); got != ',' {
		t.Fatalf("Rune(r) = %q, want ','", got)
	}
	if got := o.Rune("missing", 'X'); got != 'X' {
		t.Fatalf("Rune(missing) = %q, want 'X'", got)
	}

	// Validate that Rune picks the FIRST rune (not byte) for multi-byte char.
	o["r2"] = "ž" // multi-byte UTF-8 rune
	r := o.Rune("r2", 'x')
	if r == 0 || !utf8.ValidRune(r) {
		t.Fatalf("Rune(r2) = %#U, want valid rune", r)
	}
	if string(r) != "ž" {
		t.Fatalf("Rune(r2) = %#U (%q), want ž", r, string(r))
	}
}

func TestOptions_StringMap_Any(t *testing.T) {
	t.Parallel()

	o := Options{
		"m": map[string]any{"A": "a", "B": "b", "X": 1}, // non-string value "X" must be ignored
		"nested": map[string]any{
			"k": "v",
		},
	}

	// StringMap should include only string values and skip non-strings.
	sm := o.StringMap("m")
	if !reflect.DeepEqual(sm, map[string]string{"A": "a", "B": "b"}) {
		t.Fatalf("StringMap(m) = %#v, want {A:a B:b}", sm)
	}
	// Missing key → empty map (not nil).
	sm2 := o.StringMap("missing")
	if sm2 == nil || len(sm2) != 0 {
		t.Fatalf("StringMap(missing) = %#v, want empty map", sm2)
	}

	// Any returns raw nested values for callers to inspect.
	anyv := o.Any("nested")
	m, ok := anyv.(map[string]any)
	if !ok || m["k"] != "v" {
		t.Fatalf("Any(nested) = %#v, want map with k=v", anyv)
	}
	if o.Any("missing") != nil {
		t.Fatalf("Any(missing) should be nil when key absent")
	}
}

// -----------------------------------------------------------------------------
// Options.UnmarshalJSON behavior tests
// -----------------------------------------------------------------------------
//
// These tests ensure that decoding Options from JSON yields a non-nil, empty
// map when the field is explicitly null. A missing field stays nil until
// ApplyDefaults runs.

func TestOptions_UnmarshalJSON_NullYieldsEmptyMap(t *testing.T) {
	t.Parallel()

	type wrapper struct {
		Opts Options `json:"options"`
	}

	// options is explicitly null → non-nil, empty Options.
	const jsNull = `{"options": null}`
	var w wrapper
	if err := json.Unmarshal([]byte(jsNull), &w); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if w.Opts == nil || len(w.Opts) != 0 {
		t.Fatalf("Opts after null unmarshal = %#v, want non-nil empty map", w.Opts)
	}
}

func TestOptions_UnmarshalJSON_ObjectDecodesAsMap(t *testing.T) {
	t.Parallel()

	type wrapper struct {
		Opts Options `json:"options"`
	}

	const jsObj = `{"options": {"a":"x","b":true,"n": 3}}`
	var w wrapper
	if err := json.Unmarshal([]byte(jsObj), &w); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if w.Opts.String("a", "") != "x" {
		t.Fatalf("Opts.String(a) = %q, want x", w.Opts.String("a", ""))
	}
	if w.Opts.Bool("b", false) != true {
		t.Fatalf("Opts.Bool(b) = %v, want true", w.Opts.Bool("b", false))
	}
	if w.Opts.Int("n", 0) != 3 {
		t.Fatalf("Opts.Int(n) = %d, want 3", w.Opts.Int("n", 0))
	}
}
