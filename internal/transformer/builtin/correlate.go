package builtin

import (
	"fmt"
	"math"
	"runtime"

	"flowprep/internal/table"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// DefaultThreshold is the absolute correlation at or above which one column
// of a pair is dropped.
const DefaultThreshold = 0.92

// CorrelationMatrix holds pairwise Pearson coefficients of named columns.
// Row and column i both refer to Names[i].
type CorrelationMatrix struct {
	Names []string
	Sym   *mat.SymDense
}

// NewCorrelationMatrix wraps a row-major n×n symmetric matrix.
func NewCorrelationMatrix(names []string, data []float64) (*CorrelationMatrix, error) {
	n := len(names)
	if len(data) != n*n {
		return nil, fmt.Errorf("correlation: %d names need %d values, got %d", n, n*n, len(data))
	}
	if n == 0 {
		return &CorrelationMatrix{}, nil
	}
	return &CorrelationMatrix{Names: names, Sym: mat.NewSymDense(n, data)}, nil
}

// At returns corr(Names[i], Names[j]).
func (m *CorrelationMatrix) At(i, j int) float64 { return m.Sym.At(i, j) }

// Correlations computes the Pearson matrix over the numeric columns of t
// not named in protect. Rows are filled concurrently; each cell is written
// by exactly one goroutine.
func Correlations(t *table.Table, protect ...string) (*CorrelationMatrix, error) {
	skip := nameSet(protect)
	var (
		names []string
		vecs  [][]float64
	)
	for _, c := range t.Columns() {
		if _, ok := skip[c.Name()]; ok || !c.Kind().IsNumeric() {
			continue
		}
		names = append(names, c.Name())
		vecs = append(vecs, floatValues(c))
	}

	n := len(names)
	data := make([]float64, n*n)
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < n; i++ {
		g.Go(func() error {
			data[i*n+i] = 1
			for j := 0; j < i; j++ {
				r := stat.Correlation(vecs[i], vecs[j], nil)
				data[i*n+j], data[j*n+i] = r, r
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return NewCorrelationMatrix(names, data)
}

// PruneCorrelated runs the greedy scan over m. For i ascending, while
// column i is still kept, every kept column j < i with |corr(i,j)| >=
// threshold is dropped. The traversal order fixes which column of a pair
// survives: the higher index wins. Returned names keep matrix order.
func PruneCorrelated(m *CorrelationMatrix, threshold float64) (kept, dropped []string) {
	n := len(m.Names)
	keep := make([]bool, n)
	for i := range keep {
		keep[i] = true
	}
	for i := 0; i < n; i++ {
		if !keep[i] {
			continue
		}
		for j := 0; j < i; j++ {
			if keep[j] && math.Abs(m.At(i, j)) >= threshold {
				keep[j] = false
			}
		}
	}
	for i, k := range keep {
		if k {
			kept = append(kept, m.Names[i])
		} else {
			dropped = append(dropped, m.Names[i])
		}
	}
	return kept, dropped
}

// DropCorrelated removes one column of every numeric pair whose absolute
// correlation reaches threshold, following PruneCorrelated.
func DropCorrelated(t *table.Table, threshold float64, protect ...string) (*table.Table, []string, error) {
	m, err := Correlations(t, protect...)
	if err != nil {
		return nil, nil, err
	}
	_, dropped := PruneCorrelated(m, threshold)
	if len(dropped) == 0 {
		return t, nil, nil
	}
	return t.Drop(dropped...), dropped, nil
}
