package builtin

import (
	"fmt"
	"log"

	"flowprep/internal/schema"
	"flowprep/internal/table"
	"flowprep/internal/transformer"
)

// DefaultLabelColumn is the label column of CIC-IDS style flow exports.
const DefaultLabelColumn = "Label"

// Consolidate rewrites the label column to coarse labels and drops rows
// whose coarse label is listed in Unwanted. No other column is touched.
type Consolidate struct {
	Column   string // defaults to DefaultLabelColumn
	Mapping  schema.LabelMapping
	Unwanted []string
}

func (c Consolidate) Apply(in *table.Table) (*table.Table, error) {
	name := c.Column
	if name == "" {
		name = DefaultLabelColumn
	}
	col, ok := in.Column(name)
	if !ok {
		return nil, fmt.Errorf("%w: label column %q absent", transformer.ErrSchemaViolation, name)
	}

	unwanted := make(map[string]struct{}, len(c.Unwanted))
	for _, u := range c.Unwanted {
		unwanted[u] = struct{}{}
	}

	seen := map[string]string{}
	labels := make([]string, 0, col.Len())
	keep := make([]int, 0, col.Len())
	for i := 0; i < col.Len(); i++ {
		fine := col.Format(i)
		coarse, ok := seen[fine]
		if !ok {
			if coarse, ok = c.Mapping.Lookup(fine); !ok {
				return nil, fmt.Errorf("%w: %q (row %d)", transformer.ErrUnmappedLabel, fine, i)
			}
			seen[fine] = coarse
		}
		if _, drop := unwanted[coarse]; drop {
			continue
		}
		labels = append(labels, coarse)
		keep = append(keep, i)
	}
	if len(keep) == 0 {
		return nil, fmt.Errorf("%w: consolidate: every row has an unwanted label", transformer.ErrEmptyResult)
	}

	out := in
	if len(keep) < in.NumRows() {
		log.Printf("consolidate: dropped %d rows with unwanted labels", in.NumRows()-len(keep))
		out = in.Take(keep)
	}
	return out.With(table.NewText(name, labels))
}
