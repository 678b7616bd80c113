package builtin

import (
	"fmt"
	"log"

	"flowprep/internal/table"
	"flowprep/internal/transformer"
)

// Eliminate removes redundant feature columns in three passes: constant
// columns, then exact duplicates, then one column of every highly
// correlated pair. Protect columns (the label) are never examined.
type Eliminate struct {
	Threshold float64 // defaults to DefaultThreshold
	Protect   []string
}

// EliminationReport lists the columns each pass removed, in column order.
type EliminationReport struct {
	Constant   []string `json:"constant"`
	Duplicate  []string `json:"duplicate"`
	Correlated []string `json:"correlated"`
}

func (e Eliminate) Apply(in *table.Table) (*table.Table, error) {
	out, _, err := e.Reduce(in)
	return out, err
}

// Reduce is Apply that also reports what was dropped.
func (e Eliminate) Reduce(in *table.Table) (*table.Table, EliminationReport, error) {
	var rep EliminationReport
	threshold := e.Threshold
	if threshold == 0 {
		threshold = DefaultThreshold
	}

	out, dropped := DropConstant(in, e.Protect...)
	rep.Constant = dropped
	if err := e.checkFeatures(out, "constant"); err != nil {
		return nil, rep, err
	}

	out, dropped = DropDuplicate(out, e.Protect...)
	rep.Duplicate = dropped

	out, dropped, err := DropCorrelated(out, threshold, e.Protect...)
	if err != nil {
		return nil, rep, err
	}
	rep.Correlated = dropped

	log.Printf("eliminate: constant=%d duplicate=%d correlated=%d cols=%d->%d",
		len(rep.Constant), len(rep.Duplicate), len(rep.Correlated), in.NumCols(), out.NumCols())
	return out, rep, nil
}

// checkFeatures fails when only protected columns remain.
func (e Eliminate) checkFeatures(t *table.Table, pass string) error {
	protect := nameSet(e.Protect)
	for _, n := range t.Names() {
		if _, ok := protect[n]; !ok {
			return nil
		}
	}
	return fmt.Errorf("%w: eliminate: no feature column left after %s pass", transformer.ErrEmptyResult, pass)
}
