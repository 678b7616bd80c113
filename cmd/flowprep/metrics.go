package main

import (
	"log"
	"sync"

	"flowprep/internal/config"
	"flowprep/internal/metrics"
	"flowprep/internal/metrics/datadog"
	"flowprep/internal/metrics/prompush"
)

// newBackend builds the configured metrics backend. A nil backend with a nil
// error means metrics are disabled.
func newBackend(m config.Metrics, job string) (metrics.Backend, error) {
	switch m.Backend {
	case "prometheus":
		b, err := prompush.NewBackend(job, m.PushgatewayURL)
		if err != nil {
			return nil, err
		}
		return b, nil
	case "datadog":
		b, err := datadog.NewBackend(datadog.Config{
			Addr:       m.DatadogAddr,
			GlobalTags: []string{"service:flowprep", "job:" + job},
		})
		if err != nil {
			return nil, err
		}
		return b, nil
	}
	return nil, nil
}

// setupMetrics installs the configured backend and returns a flush function
// that is safe to call more than once. Backend errors fall back to the nop
// backend.
func setupMetrics(p config.Pipeline, verbose bool) func() {
	b, err := newBackend(p.Metrics, p.Job)
	switch {
	case err != nil:
		log.Printf("metrics: failed to init %s backend: %v; using nop", p.Metrics.Backend, err)
		return func() {}
	case b == nil:
		if verbose {
			log.Printf("metrics: disabled (backend=%q)", p.Metrics.Backend)
		}
		return func() {}
	}

	log.Printf("metrics: backend=%s job_name=%s", p.Metrics.Backend, p.Job)
	metrics.SetBackend(b)
	var once sync.Once
	return func() {
		once.Do(func() {
			if err := metrics.Flush(); err != nil {
				log.Printf("metrics: flush error: %v", err)
			}
		})
	}
}
