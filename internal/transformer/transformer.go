// Package transformer defines the stage contract of the reduction pipeline.
//
// A stage consumes one table and returns a new one. Stages never mutate
// their input; unchanged columns may be shared between input and output.
package transformer

import (
	"log"
	"time"

	"flowprep/internal/metrics"
	"flowprep/internal/table"
)

// Transformer is one reduction stage.
type Transformer interface {
	Apply(*table.Table) (*table.Table, error)
}

// Func adapts a plain function to Transformer.
type Func func(*table.Table) (*table.Table, error)

func (f Func) Apply(in *table.Table) (*table.Table, error) { return f(in) }

// Chain is an ordered list of transformers. Apply stops at the first error.
type Chain []Transformer

func (c Chain) Apply(in *table.Table) (*table.Table, error) {
	out := in
	for _, t := range c {
		var err error
		if out, err = t.Apply(out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Step names a transformer for logs and metrics.
type Step struct {
	Job  string
	Name string
	T    Transformer
}

// Apply runs the wrapped transformer, records its duration and outcome, and
// logs the table shape before and after.
func (s Step) Apply(in *table.Table) (*table.Table, error) {
	start := time.Now()
	out, err := s.T.Apply(in)
	d := time.Since(start)
	metrics.RecordStep(s.Job, s.Name, err, d)
	if err != nil {
		log.Printf("transform: job=%s step=%s err=%v", s.Job, s.Name, err)
		return nil, err
	}
	log.Printf("transform: job=%s step=%s rows=%d->%d cols=%d->%d dur=%s",
		s.Job, s.Name, in.NumRows(), out.NumRows(), in.NumCols(), out.NumCols(), d.Round(time.Millisecond))
	return out, nil
}

// Steps wraps each named transformer in a Step for job and returns them as
// a Chain, preserving order.
func Steps(job string, named ...Step) Chain {
	c := make(Chain, len(named))
	for i, s := range named {
		s.Job = job
		c[i] = s
	}
	return c
}
