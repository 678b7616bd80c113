// Package datadog ships pipeline metrics to a DogStatsD agent.
//
// Metric names are rewritten to Datadog's dotted form (flowprep_rows_total
// becomes flowprep.rows) and labels become sorted "key:value" tags. Stage
// durations are sent as distributions so percentiles aggregate across hosts.
package datadog

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"flowprep/internal/metrics"

	"github.com/DataDog/datadog-go/v5/statsd"
)

// Config holds Datadog backend configuration.
type Config struct {
	// Addr is the DogStatsD address, "127.0.0.1:8125" or "unix:///path".
	Addr string

	// Namespace prefixes every metric name, e.g. "lab.".
	Namespace string

	// GlobalTags are attached to every sample.
	GlobalTags []string
}

// client is the part of *statsd.Client the backend uses.
type client interface {
	Count(name string, value int64, tags []string, rate float64) error
	Distribution(name string, value float64, tags []string, rate float64) error
	Flush() error
}

// Backend implements metrics.Backend on DogStatsD. The zero value drops
// every sample.
type Backend struct {
	c client
}

// NewBackend dials DogStatsD at cfg.Addr.
func NewBackend(cfg Config) (*Backend, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("datadog: addr is required")
	}
	var opts []statsd.Option
	if cfg.Namespace != "" {
		opts = append(opts, statsd.WithNamespace(cfg.Namespace))
	}
	if len(cfg.GlobalTags) > 0 {
		opts = append(opts, statsd.WithTags(cfg.GlobalTags))
	}
	c, err := statsd.New(cfg.Addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("datadog: dial %s: %w", cfg.Addr, err)
	}
	return &Backend{c: c}, nil
}

// Names sent to Datadog for the pipeline's metrics.
var names = map[string]string{
	metrics.StepTotal:      "flowprep.step.count",
	metrics.StepDuration:   "flowprep.step.duration",
	metrics.RowsTotal:      "flowprep.rows",
	metrics.ColumnsDropped: "flowprep.columns.dropped",
	metrics.BatchesTotal:   "flowprep.batches",
}

// metricName maps a backend-neutral name to its Datadog name. Unknown names
// have underscores turned into dots.
func metricName(name string) string {
	if n, ok := names[name]; ok {
		return n
	}
	return strings.ReplaceAll(name, "_", ".")
}

// IncCounter sends delta, rounded to a whole count.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	if b.c == nil {
		return
	}
	_ = b.c.Count(metricName(name), int64(math.Round(delta)), tags(labels), 1)
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if b.c == nil {
		return
	}
	_ = b.c.Distribution(metricName(name), value, tags(labels), 1)
}

// Flush sends buffered samples; the client stays usable.
func (b *Backend) Flush() error {
	if b.c == nil {
		return nil
	}
	if err := b.c.Flush(); err != nil {
		return fmt.Errorf("datadog: flush: %w", err)
	}
	return nil
}

// tags renders labels as sorted "key:value" tags; an empty value yields the
// bare key.
func tags(labels metrics.Labels) []string {
	if len(labels) == 0 {
		return nil
	}
	out := make([]string, 0, len(labels))
	for k, v := range labels {
		if v == "" {
			out = append(out, k)
			continue
		}
		out = append(out, k+":"+v)
	}
	sort.Strings(out)
	return out
}
