package builtin

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"flowprep/internal/table"
	"flowprep/internal/transformer"

	"gonum.org/v1/gonum/floats"
)

// DefaultTestFraction is the share of rows held out for testing.
const DefaultTestFraction = 0.2

// splitEpsilon absorbs float error in fraction*count, so 0.2*10 yields 2.
const splitEpsilon = 1e-9

// Split partitions a table into stratified train and test sets, scales the
// features with ranges fit on train only, and encodes labels.
type Split struct {
	Column       string  // defaults to DefaultLabelColumn
	TestFraction float64 // defaults to DefaultTestFraction
	Rand         *rand.Rand
}

// SplitDataset is the terminal output of the pipeline. TrainY and TestY are
// single-column int64 tables named after the label column.
type SplitDataset struct {
	TrainX, TrainY *table.Table
	TestX, TestY   *table.Table
	Encoding       LabelEncoding
	Scaling        ScalingParameters
}

func (s Split) Split(in *table.Table) (*SplitDataset, error) {
	name := s.Column
	if name == "" {
		name = DefaultLabelColumn
	}
	frac := s.TestFraction
	if frac == 0 {
		frac = DefaultTestFraction
	}
	if frac < 0 || frac >= 1 {
		return nil, fmt.Errorf("split: test fraction %v outside [0, 1)", frac)
	}
	labelCol, ok := in.Column(name)
	if !ok {
		return nil, fmt.Errorf("%w: label column %q absent", transformer.ErrSchemaViolation, name)
	}
	if in.NumRows() == 0 {
		return nil, fmt.Errorf("%w: split: no rows", transformer.ErrEmptyResult)
	}
	features := in.Drop(name)
	if features.NumCols() == 0 {
		return nil, fmt.Errorf("%w: split: no feature column", transformer.ErrEmptyResult)
	}
	for _, c := range features.Columns() {
		if !c.Kind().IsNumeric() {
			return nil, fmt.Errorf("%w: split: feature %q is %v", transformer.ErrSchemaViolation, c.Name(), c.Kind())
		}
	}
	r := s.Rand
	if r == nil {
		r = NewRand(nil)
	}

	trainIdx, testIdx := stratify(r, labelCol, frac)

	trainX := features.Take(trainIdx)
	scaling := fitScaling(trainX)
	trainX, err := scaling.Apply(trainX)
	if err != nil {
		return nil, err
	}
	testX, err := scaling.Apply(features.Take(testIdx))
	if err != nil {
		return nil, err
	}

	trainLabels := labelCol.Take(trainIdx)
	enc := LabelEncoding{Labels: distinct(trainLabels)}
	trainY, err := encodeLabels(enc, trainLabels)
	if err != nil {
		return nil, err
	}
	testY, err := encodeLabels(enc, labelCol.Take(testIdx))
	if err != nil {
		return nil, err
	}

	return &SplitDataset{
		TrainX:   trainX,
		TrainY:   trainY,
		TestX:    testX,
		TestY:    testY,
		Encoding: enc,
		Scaling:  scaling,
	}, nil
}

// stratify allots floor(frac*n) test rows across labels in proportion to
// their counts, handing leftover rows to the largest fractional shares
// (ties by label order). Both partitions are shuffled.
func stratify(r *rand.Rand, labels table.Column, frac float64) (train, test []int) {
	groups := groupRows(labels)
	names := make([]string, 0, len(groups))
	for l := range groups {
		names = append(names, l)
	}
	sort.Strings(names)

	n := labels.Len()
	nTest := int(math.Floor(frac*float64(n) + splitEpsilon))

	quota := make([]int, len(names))
	rem := make([]float64, len(names))
	assigned := 0
	for i, l := range names {
		exact := frac * float64(len(groups[l]))
		quota[i] = int(math.Floor(exact + splitEpsilon))
		rem[i] = exact - float64(quota[i])
		assigned += quota[i]
	}
	order := make([]int, len(names))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return rem[order[a]] > rem[order[b]] })
	for _, i := range order {
		if assigned >= nTest {
			break
		}
		if quota[i] < len(groups[names[i]]) {
			quota[i]++
			assigned++
		}
	}

	for i, l := range names {
		rows := sample(r, groups[l], len(groups[l]))
		test = append(test, rows[:quota[i]]...)
		train = append(train, rows[quota[i]:]...)
	}
	r.Shuffle(len(train), func(i, j int) { train[i], train[j] = train[j], train[i] })
	r.Shuffle(len(test), func(i, j int) { test[i], test[j] = test[j], test[i] })
	return train, test
}

func fitScaling(train *table.Table) ScalingParameters {
	p := ScalingParameters{
		Names:  train.Names(),
		Ranges: make(map[string]FeatureRange, train.NumCols()),
	}
	for _, c := range train.Columns() {
		v := floatValues(c)
		if len(v) == 0 {
			p.Ranges[c.Name()] = FeatureRange{}
			continue
		}
		p.Ranges[c.Name()] = FeatureRange{Min: floats.Min(v), Max: floats.Max(v)}
	}
	return p
}

func distinct(c table.Column) []string {
	seen := map[string]struct{}{}
	var out []string
	for i := 0; i < c.Len(); i++ {
		l := c.Format(i)
		if _, ok := seen[l]; !ok {
			seen[l] = struct{}{}
			out = append(out, l)
		}
	}
	sort.Strings(out)
	return out
}

func encodeLabels(enc LabelEncoding, c table.Column) (*table.Table, error) {
	codes := make([]int64, c.Len())
	for i := range codes {
		k, err := enc.Encode(c.Format(i))
		if err != nil {
			return nil, err
		}
		codes[i] = int64(k)
	}
	return table.New(table.NewNumeric(c.Name(), codes))
}
