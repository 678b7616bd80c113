package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"flowprep/internal/schema"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Defaults applied by Load when the pipeline file leaves a value zero.
const (
	DefaultJob          = "flowprep"
	DefaultThreshold    = 0.92
	DefaultTestFraction = 0.2
	DefaultLabelColumn  = "Label"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FLOWPREP"

// Env holds the environment overrides. Unset variables leave the pipeline
// file's values alone.
type Env struct {
	MetricsBackend string  `envconfig:"METRICS_BACKEND"`
	PushgatewayURL string  `envconfig:"PUSHGATEWAY_URL"`
	DatadogAddr    string  `envconfig:"DATADOG_ADDR"`
	StorageDSN     string  `envconfig:"STORAGE_DSN"`
	RandomSeed     *uint64 `envconfig:"RANDOM_SEED"`
}

// Load reads a pipeline file, applies FLOWPREP_* environment overrides and
// fills defaults. Files ending in .yaml or .yml are decoded as YAML, anything
// else as JSON with unknown fields rejected.
func Load(path string) (Pipeline, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Pipeline{}, fmt.Errorf("config: %w", err)
	}
	var p Pipeline
	if err := Decode(b, filepath.Ext(path), &p); err != nil {
		return Pipeline{}, fmt.Errorf("config: %s: %w", path, err)
	}
	var env Env
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return Pipeline{}, fmt.Errorf("config: env: %w", err)
	}
	p.ApplyEnv(env)
	p.ApplyDefaults()
	return p, nil
}

// Decode decodes b into p, choosing YAML for ".yaml"/".yml" and JSON
// otherwise.
func Decode(b []byte, ext string, p *Pipeline) error {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		return yaml.UnmarshalStrict(b, p)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	return dec.Decode(p)
}

// ApplyEnv overrides p with every variable set in env.
func (p *Pipeline) ApplyEnv(env Env) {
	if env.MetricsBackend != "" {
		p.Metrics.Backend = env.MetricsBackend
	}
	if env.PushgatewayURL != "" {
		p.Metrics.PushgatewayURL = env.PushgatewayURL
	}
	if env.DatadogAddr != "" {
		p.Metrics.DatadogAddr = env.DatadogAddr
	}
	if env.StorageDSN != "" {
		p.Storage.DSN = env.StorageDSN
	}
	if env.RandomSeed != nil {
		seed := *env.RandomSeed
		p.Reduce.RandomSeed = &seed
	}
}

// ApplyDefaults fills zero values. Out-of-range values are left for
// ValidatePipeline to report.
func (p *Pipeline) ApplyDefaults() {
	if strings.TrimSpace(p.Job) == "" {
		p.Job = DefaultJob
	}
	if p.Parser.Kind == "" {
		p.Parser.Kind = "csv"
	}
	if p.Parser.Options == nil {
		p.Parser.Options = Options{}
	}
	if p.Schema.SentinelColumn == "" {
		p.Schema.SentinelColumn = schema.DefaultSentinelColumn
	}
	if p.Labels.Column == "" {
		p.Labels.Column = DefaultLabelColumn
	}
	// An absent list with the built-in mapping drops the reference
	// categories; an explicit empty list keeps every category.
	if p.Labels.UnwantedCategories == nil && len(p.Labels.Mapping) == 0 {
		p.Labels.UnwantedCategories = schema.UnwantedCategories()
	}
	if p.Reduce.Threshold == 0 {
		p.Reduce.Threshold = DefaultThreshold
	}
	if p.Reduce.TestFraction == 0 {
		p.Reduce.TestFraction = DefaultTestFraction
	}
}

// SchemaFields returns the declared schema, or the built-in flow schema when
// the pipeline declares none.
func (p Pipeline) SchemaFields() schema.Schema {
	if len(p.Schema.Fields) == 0 {
		return schema.FlowSchema()
	}
	return schema.Schema(p.Schema.Fields)
}

// LabelMapping returns the configured mapping, or the built-in attack family
// mapping when none is configured.
func (p Pipeline) LabelMapping() schema.LabelMapping {
	if len(p.Labels.Mapping) == 0 {
		m := schema.AttackMapping()
		m.PassThrough = append(m.PassThrough, p.Labels.PassThrough...)
		return m
	}
	return schema.LabelMapping{Coarse: p.Labels.Mapping, PassThrough: p.Labels.PassThrough}
}
