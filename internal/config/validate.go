package config

// This file adds a lightweight linter for Pipeline values. It performs
// static checks over a decoded Pipeline and returns a list of issues (errors
// and warnings) that the CLI surfaces with -validate and before every run.

import (
	"fmt"
	"strings"

	"flowprep/internal/schema"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that blocks execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced to users but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding for a Pipeline.
//
// Path is a dotted path into the config (e.g. "storage.kind",
// "sources[1].path"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidatePipeline performs static validation of a Pipeline. It does not
// mutate the pipeline; callers decide whether warnings are fatal.
//
// Example:
//
//	p, err := config.Load(path)
//	if err != nil { ... }
//	for _, iss := range config.ValidatePipeline(p) {
//	    fmt.Printf("%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
//	}
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it is used for metrics labeling and identifying runs",
		})
	}
	issues = append(issues, validateSources(p.Sources)...)
	issues = append(issues, validateParser(p.Parser)...)
	issues = append(issues, validateSchema(p.Schema)...)
	issues = append(issues, validateLabels(p)...)
	issues = append(issues, validateReduce(p.Reduce)...)
	issues = append(issues, validateStorage(p.Storage)...)
	issues = append(issues, validateRuntime(p.Runtime)...)
	issues = append(issues, validateHTTP(p.HTTP)...)
	issues = append(issues, validateMetrics(p.Metrics)...)
	if p.Storage.Kind == "" && p.Artifacts.Dir == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.kind",
			Message:  "neither storage nor artifacts are configured; the run produces only logs",
		})
	}
	return issues
}

func validateSources(ss []Source) []Issue {
	if len(ss) == 0 {
		return []Issue{{
			Severity: SeverityError,
			Path:     "sources",
			Message:  "at least one source is required",
		}}
	}
	var issues []Issue
	for i, s := range ss {
		path := fmt.Sprintf("sources[%d]", i)
		hasPath, hasList := strings.TrimSpace(s.Path) != "", strings.TrimSpace(s.List) != ""
		switch {
		case hasPath && hasList:
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path,
				Message:  "set either path or list, not both",
			})
		case !hasPath && !hasList:
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path,
				Message:  "source requires a path or a list",
			})
		}
	}
	return issues
}

func validateParser(p Parser) []Issue {
	var issues []Issue
	if p.Kind != "" && p.Kind != "csv" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.kind",
			Message:  fmt.Sprintf("unsupported parser kind %q; only csv is available", p.Kind),
		})
	}
	if v := p.Options.Any("comma"); v != nil {
		if _, ok := v.(string); !ok {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "parser.options.comma",
				Message:  fmt.Sprintf("comma must be a string, got %T", v),
			})
		}
	}
	if n := p.Options.Int("expected_fields", 0); n < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.options.expected_fields",
			Message:  "expected_fields must not be negative",
		})
	}
	if c := p.Options.String("comma", ","); len([]rune(c)) != 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.options.comma",
			Message:  fmt.Sprintf("comma must be a single character, got %q", c),
		})
	}
	return issues
}

func validateSchema(s Schema) []Issue {
	if len(s.Fields) == 0 {
		return nil
	}
	var issues []Issue
	if err := schema.Schema(s.Fields).Validate(); err != nil {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "schema.fields",
			Message:  err.Error(),
		})
	}
	found := false
	for _, f := range s.Fields {
		if f.Name == s.SentinelColumn {
			found = true
			break
		}
	}
	if s.SentinelColumn != "" && !found {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "schema.sentinel_column",
			Message:  fmt.Sprintf("sentinel column %q is not a declared field", s.SentinelColumn),
		})
	}
	return issues
}

func validateLabels(p Pipeline) []Issue {
	var issues []Issue
	for fine, coarse := range p.Labels.Mapping {
		if strings.TrimSpace(coarse) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     fmt.Sprintf("labels.mapping[%q]", fine),
				Message:  "coarse label must not be empty",
			})
		}
	}

	// Filters naming a label the mapping never yields select nothing.
	m := p.LabelMapping()
	known := map[string]bool{}
	for _, c := range m.CoarseLabels() {
		known[c] = true
	}
	for _, pt := range m.PassThrough {
		known[pt] = true
	}
	unknown := func(path string, labels []string, what string) {
		for i, l := range labels {
			if !known[l] {
				issues = append(issues, Issue{
					Severity: SeverityWarning,
					Path:     fmt.Sprintf("%s[%d]", path, i),
					Message:  fmt.Sprintf("%q is not produced by the mapping; %s has no effect", l, what),
				})
			}
		}
	}
	unknown("labels.unwanted_categories", p.Labels.UnwantedCategories, "the filter")
	unknown("reduce.excluded_labels", p.Reduce.ExcludedLabels, "the exclusion")
	return issues
}

func validateReduce(r Reduce) []Issue {
	var issues []Issue
	if r.Threshold <= 0 || r.Threshold > 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "reduce.threshold",
			Message:  fmt.Sprintf("threshold=%v; must be within (0, 1]", r.Threshold),
		})
	}
	if r.TestFraction < 0 || r.TestFraction >= 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "reduce.test_fraction",
			Message:  fmt.Sprintf("test_fraction=%v; must be within [0, 1)", r.TestFraction),
		})
	}
	if r.RandomSeed == nil {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "reduce.random_seed",
			Message:  "no random_seed; balancing and splitting will not be reproducible",
		})
	}
	return issues
}

func validateStorage(s Storage) []Issue {
	var issues []Issue
	if strings.TrimSpace(s.Kind) == "" {
		return nil
	}
	known := map[string]struct{}{
		"postgres": {},
		"mssql":    {},
		"sqlite":   {},
		"csv":      {},
	}
	if _, ok := known[s.Kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q; ensure a matching backend is registered", s.Kind),
		})
	}
	if strings.TrimSpace(s.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.dsn",
			Message:  "storage.dsn must not be empty",
		})
	}
	if s.BatchSize < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.batch_size",
			Message:  "batch_size must not be negative",
		})
	}
	return issues
}

func validateRuntime(r Runtime) []Issue {
	var issues []Issue
	if r.Workers < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.workers",
			Message:  "workers must not be negative",
		})
	}
	if r.ChannelBuffer < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.channel_buffer",
			Message:  "channel_buffer must not be negative",
		})
	}
	return issues
}

func validateHTTP(h HTTP) []Issue {
	var issues []Issue
	if h.TimeoutSeconds < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "http.timeout_seconds",
			Message:  "timeout_seconds must not be negative",
		})
	}
	if h.MaxRetries < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "http.max_retries",
			Message:  "max_retries must not be negative",
		})
	}
	if h.InsecureSkipVerify {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "http.insecure_skip_verify",
			Message:  "TLS certificate verification is disabled for URL sources",
		})
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	switch m.Backend {
	case "", "none":
	case "prometheus":
		if m.PushgatewayURL == "" {
			return []Issue{{
				Severity: SeverityError,
				Path:     "metrics.pushgateway_url",
				Message:  "prometheus backend requires a pushgateway_url",
			}}
		}
	case "datadog":
		if m.DatadogAddr == "" {
			return []Issue{{
				Severity: SeverityError,
				Path:     "metrics.datadog_addr",
				Message:  "datadog backend requires a datadog_addr",
			}}
		}
	default:
		return []Issue{{
			Severity: SeverityError,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q", m.Backend),
		}}
	}
	return nil
}
