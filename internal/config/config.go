// Package config defines the pipeline file model for flowprep: where the
// raw flow exports come from, how they are parsed, the schema and label
// mapping they are reduced with, and where the outputs go.
//
// Pipeline files are JSON, or YAML when the file ends in .yaml/.yml. A small
// set of FLOWPREP_* environment variables overrides deployment-specific
// values (see Env).
//
// Example (trimmed):
//
//	{
//	  "job": "ids2018",
//	  "sources": [ { "list": "data/days.txt" } ],
//	  "parser": { "kind": "csv", "options": { "trim_space": true } },
//	  "labels": { "unwanted_categories": ["Botnet", "Infiltration", "Web attack"] },
//	  "reduce": { "drop_columns": ["Timestamp"], "threshold": 0.92, "random_seed": 42 },
//	  "storage": { "kind": "sqlite", "dsn": "out/flows.db", "auto_create_table": true },
//	  "artifacts": { "dir": "out" }
//	}
package config

import (
	"encoding/json"
	"fmt"

	"flowprep/internal/schema"
)

// Pipeline is the top-level object decoded from a pipeline file.
type Pipeline struct {
	// Job names the run in logs and metrics.
	Job string `json:"job" yaml:"job"`

	// Sources lists the raw exports, reduced independently before merging.
	Sources []Source `json:"sources" yaml:"sources"`

	// Parser configures how raw bytes become raw tables.
	Parser Parser `json:"parser" yaml:"parser"`

	// Schema declares column types. Empty fields select the built-in
	// CSE-CIC-IDS2018 flow schema.
	Schema Schema `json:"schema" yaml:"schema"`

	Labels    Labels    `json:"labels" yaml:"labels"`
	Reduce    Reduce    `json:"reduce" yaml:"reduce"`
	Storage   Storage   `json:"storage" yaml:"storage"`
	Artifacts Artifacts `json:"artifacts" yaml:"artifacts"`
	Runtime   Runtime   `json:"runtime" yaml:"runtime"`
	HTTP      HTTP      `json:"http" yaml:"http"`
	Metrics   Metrics   `json:"metrics" yaml:"metrics"`
}

// Source is one input: a single export or a list file naming several. An
// http(s) URL in path or in the list is fetched over HTTP.
type Source struct {
	Path string `json:"path" yaml:"path"`
	List string `json:"list" yaml:"list"`
}

// Parser selects how to parse the raw source into columns.
type Parser struct {
	// Kind selects the parser implementation. Current value: "csv".
	Kind string `json:"kind" yaml:"kind"`

	// Options is a free-form map interpreted by the parser implementation.
	// For CSV: comma (string), trim_space (bool), lazy_quotes (bool),
	// header_map (object).
	Options Options `json:"options" yaml:"options"`
}

// Schema overrides the declared column types.
type Schema struct {
	// SentinelColumn is checked for embedded header rows. Defaults to
	// schema.DefaultSentinelColumn.
	SentinelColumn string         `json:"sentinel_column" yaml:"sentinel_column"`
	Fields         []schema.Field `json:"fields" yaml:"fields"`
}

// Labels configures label consolidation.
type Labels struct {
	// Column holds the class label. Defaults to "Label".
	Column string `json:"column" yaml:"column"`

	// Mapping maps fine labels to coarse ones. Empty selects the built-in
	// attack family mapping.
	Mapping     map[string]string `json:"mapping" yaml:"mapping"`
	PassThrough []string          `json:"pass_through" yaml:"pass_through"`

	// UnwantedCategories are coarse labels whose rows are dropped. Absent
	// with the built-in mapping, it defaults to schema.UnwantedCategories.
	UnwantedCategories []string `json:"unwanted_categories" yaml:"unwanted_categories"`
}

// Reduce tunes the stages after merging.
type Reduce struct {
	// DropColumns are removed right after merging (e.g. "Timestamp").
	DropColumns []string `json:"drop_columns" yaml:"drop_columns"`

	// ExcludedLabels are left out of class balancing.
	ExcludedLabels []string `json:"excluded_labels" yaml:"excluded_labels"`

	// Threshold is the absolute Pearson correlation at which a feature is
	// pruned. Zero selects 0.92.
	Threshold float64 `json:"threshold" yaml:"threshold"`

	// TestFraction is the share of rows held out. Zero selects 0.2.
	TestFraction float64 `json:"test_fraction" yaml:"test_fraction"`

	// RandomSeed makes balancing and splitting reproducible. Nil draws a
	// random seed.
	RandomSeed *uint64 `json:"random_seed" yaml:"random_seed"`
}

// Storage selects the sink for the five output tables.
type Storage struct {
	// Kind is one of "sqlite", "postgres", "mssql", "csv". Empty disables
	// table output.
	Kind string `json:"kind" yaml:"kind"`

	// DSN is the connection string; for "csv" it is the output directory.
	DSN string `json:"dsn" yaml:"dsn"`

	// TablePrefix is prepended to each output table name.
	TablePrefix string `json:"table_prefix" yaml:"table_prefix"`

	BatchSize       int  `json:"batch_size" yaml:"batch_size"`
	AutoCreateTable bool `json:"auto_create_table" yaml:"auto_create_table"`
}

// Artifacts configures where the label encoding and scaling parameters are
// written. Empty Dir disables them.
type Artifacts struct {
	Dir string `json:"dir" yaml:"dir"`
}

// Runtime controls concurrency and buffering.
type Runtime struct {
	// Workers bounds how many sources are loaded and reduced at once.
	// Zero selects GOMAXPROCS.
	Workers       int `json:"workers" yaml:"workers"`
	ChannelBuffer int `json:"channel_buffer" yaml:"channel_buffer"`
}

// HTTP tunes fetching of URL sources.
type HTTP struct {
	// TimeoutSeconds bounds one whole download. Zero means no limit.
	TimeoutSeconds     int  `json:"timeout_seconds" yaml:"timeout_seconds"`
	MaxRetries         int  `json:"max_retries" yaml:"max_retries"`
	InsecureSkipVerify bool `json:"insecure_skip_verify" yaml:"insecure_skip_verify"`
}

// Metrics selects the operational metrics backend.
type Metrics struct {
	// Backend is "", "none", "prometheus" or "datadog".
	Backend        string `json:"backend" yaml:"backend"`
	PushgatewayURL string `json:"pushgateway_url" yaml:"pushgateway_url"`
	DatadogAddr    string `json:"datadog_addr" yaml:"datadog_addr"`
}

// Options is a small helper to fetch typed values from free-form maps. It
// performs only minimal type coercion and returns provided defaults when a
// key is absent or of an unexpected type.
//
// Options is used for parser-specific configuration where the shape varies by
// implementation.
type Options map[string]any

// String returns the string value for key or def if key is missing or not a string.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def if key is missing or not a bool.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the int value for key or def. JSON numbers decode as float64
// and YAML numbers as int, so both are accepted.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return def
}

// Rune returns the first rune of a string value for key, or def if key is
// missing or empty. This is useful for single-character parser settings such as
// a CSV delimiter.
func (o Options) Rune(key string, def rune) rune {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok && len(s) > 0 {
			return []rune(s)[0]
		}
	}
	return def
}

// StringMap returns a map[string]string for key when the value is an object
// whose values are strings. Non-string values are ignored. Returns an empty map
// when the key is missing or the value is not an object.
func (o Options) StringMap(key string) map[string]string {
	res := map[string]string{}
	if v, ok := o[key]; ok {
		if m, ok := v.(map[string]any); ok {
			for k, vv := range m {
				if s, ok := vv.(string); ok {
					res[k] = s
				}
			}
		}
	}
	return res
}

// Any returns the raw value for key (which may itself be a nested
// map[string]any, []any, or primitive).
func (o Options) Any(key string) any {
	if v, ok := o[key]; ok {
		return v
	}
	return nil
}

// UnmarshalJSON decodes a null "options" object to a non-nil, empty map.
func (o *Options) UnmarshalJSON(b []byte) error {
	var tmp map[string]any
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}

// UnmarshalYAML converts the map[interface{}]interface{} values yaml.v2
// produces into the map[string]any shape the accessors expect.
func (o *Options) UnmarshalYAML(unmarshal func(any) error) error {
	var tmp map[string]any
	if err := unmarshal(&tmp); err != nil {
		return err
	}
	out := make(Options, len(tmp))
	for k, v := range tmp {
		out[k] = normalizeYAML(v)
	}
	*o = out
	return nil
}

func normalizeYAML(v any) any {
	switch x := v.(type) {
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, vv := range x {
			m[fmt.Sprint(k)] = normalizeYAML(vv)
		}
		return m
	case []any:
		for i, vv := range x {
			x[i] = normalizeYAML(vv)
		}
		return x
	}
	return v
}
