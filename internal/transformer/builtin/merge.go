package builtin

import (
	"fmt"
	"log"
	"sort"

	"flowprep/internal/table"
	"flowprep/internal/transformer"
)

// Merge concatenates tables row-wise over the columns they all share.
//
// Columns missing from any input (per-source identifiers such as Flow ID or
// Src IP) are dropped. Shared columns keep the order of the first table.
// Numeric columns whose widths differ across inputs are widened to a common
// kind; a column that is text in one input and numeric in another is an
// ErrSchemaMismatch.
func Merge(tables ...*table.Table) (*table.Table, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("%w: no tables to merge", transformer.ErrSchemaMismatch)
	}

	var common []string
	for _, name := range tables[0].Names() {
		shared := true
		for _, t := range tables[1:] {
			if t.Index(name) < 0 {
				shared = false
				break
			}
		}
		if shared {
			common = append(common, name)
		}
	}
	if len(common) == 0 {
		return nil, fmt.Errorf("%w: inputs share no column", transformer.ErrSchemaMismatch)
	}
	if dropped := unsharedColumns(tables, common); len(dropped) > 0 {
		log.Printf("merge: dropped columns not present in every source: %v", dropped)
	}

	cols := make([]table.Column, len(common))
	parts := make([]table.Column, len(tables))
	kinds := make([]table.Kind, len(tables))
	for i, name := range common {
		for j, t := range tables {
			parts[j], _ = t.Column(name)
			kinds[j] = parts[j].Kind()
		}
		k, err := table.CommonKind(kinds...)
		if err != nil {
			return nil, fmt.Errorf("%w: column %q: %v", transformer.ErrSchemaMismatch, name, err)
		}
		for j := range parts {
			if parts[j], err = table.Cast(parts[j], k); err != nil {
				return nil, fmt.Errorf("%w: column %q: %v", transformer.ErrSchemaMismatch, name, err)
			}
		}
		if cols[i], err = table.Concat(parts...); err != nil {
			return nil, err
		}
	}

	out, err := table.New(cols...)
	if err != nil {
		return nil, err
	}
	if out.NumRows() == 0 {
		return nil, fmt.Errorf("%w: merge: inputs hold no rows", transformer.ErrEmptyResult)
	}
	return out, nil
}

func unsharedColumns(tables []*table.Table, common []string) []string {
	keep := make(map[string]struct{}, len(common))
	for _, n := range common {
		keep[n] = struct{}{}
	}
	set := map[string]struct{}{}
	for _, t := range tables {
		for _, n := range t.Names() {
			if _, ok := keep[n]; !ok {
				set[n] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// DropColumns removes the named columns when present.
type DropColumns struct {
	Names []string
}

func (d DropColumns) Apply(in *table.Table) (*table.Table, error) {
	out := in.Drop(d.Names...)
	if out.NumCols() == 0 {
		return nil, fmt.Errorf("%w: drop: no column left", transformer.ErrEmptyResult)
	}
	return out, nil
}
