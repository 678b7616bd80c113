package builtin

import (
	"fmt"
	"log"
	"math/rand/v2"
	"sort"

	"flowprep/internal/table"
	"flowprep/internal/transformer"
)

// NewRand returns the generator used by the randomized stages. A nil seed
// draws a random one, so results differ between runs; pass a seed to make
// a run reproducible.
func NewRand(seed *uint64) *rand.Rand {
	if seed == nil {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))
}

// Balance undersamples every label to the size of the rarest retained label.
//
// Labels in Exclude are removed from the output and do not take part in
// choosing the sample size. Rows are sampled without replacement per label,
// labels visited in sorted order; input row order is not preserved.
type Balance struct {
	Column  string // defaults to DefaultLabelColumn
	Exclude []string
	Rand    *rand.Rand // nil means unseeded
}

func (b Balance) Apply(in *table.Table) (*table.Table, error) {
	name := b.Column
	if name == "" {
		name = DefaultLabelColumn
	}
	col, ok := in.Column(name)
	if !ok {
		return nil, fmt.Errorf("%w: label column %q absent", transformer.ErrSchemaViolation, name)
	}
	r := b.Rand
	if r == nil {
		r = NewRand(nil)
	}

	excluded := make(map[string]struct{}, len(b.Exclude))
	for _, e := range b.Exclude {
		excluded[e] = struct{}{}
	}

	groups := groupRows(col)
	labels := make([]string, 0, len(groups))
	m := -1
	for l, rows := range groups {
		if _, skip := excluded[l]; skip {
			continue
		}
		labels = append(labels, l)
		if m < 0 || len(rows) < m {
			m = len(rows)
		}
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("%w: balance: no retained label", transformer.ErrEmptyResult)
	}
	sort.Strings(labels)

	idx := make([]int, 0, m*len(labels))
	for _, l := range labels {
		idx = append(idx, sample(r, groups[l], m)...)
	}
	log.Printf("balance: labels=%d per_label=%d rows=%d->%d", len(labels), m, in.NumRows(), len(idx))
	return in.Take(idx), nil
}

// groupRows maps each distinct cell value to its row indexes, in row order.
func groupRows(col table.Column) map[string][]int {
	groups := map[string][]int{}
	for i := 0; i < col.Len(); i++ {
		l := col.Format(i)
		groups[l] = append(groups[l], i)
	}
	return groups
}

// sample picks k of rows without replacement using a partial Fisher-Yates
// shuffle over a copy.
func sample(r *rand.Rand, rows []int, k int) []int {
	pool := append([]int(nil), rows...)
	for i := 0; i < k; i++ {
		j := i + r.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k]
}
