package builtin

import (
	"encoding/json"
	"fmt"

	"flowprep/internal/table"
	"flowprep/internal/transformer"
)

// LabelEncoding maps labels to dense integers by their position in Labels.
// It serializes as {"<label>": <index>, ...}.
type LabelEncoding struct {
	Labels []string
}

// Encode returns the index of label, or ErrUnknownLabel.
func (e LabelEncoding) Encode(label string) (int, error) {
	for i, l := range e.Labels {
		if l == label {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", transformer.ErrUnknownLabel, label)
}

// Decode returns the label encoded as i.
func (e LabelEncoding) Decode(i int) (string, error) {
	if i < 0 || i >= len(e.Labels) {
		return "", fmt.Errorf("%w: index %d", transformer.ErrUnknownLabel, i)
	}
	return e.Labels[i], nil
}

func (e LabelEncoding) MarshalJSON() ([]byte, error) {
	m := make(map[string]int, len(e.Labels))
	for i, l := range e.Labels {
		m[l] = i
	}
	return json.Marshal(m)
}

func (e *LabelEncoding) UnmarshalJSON(b []byte) error {
	var m map[string]int
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	labels := make([]string, len(m))
	taken := make([]bool, len(m))
	for l, i := range m {
		if i < 0 || i >= len(m) || taken[i] {
			return fmt.Errorf("label encoding: index %d of %q is not dense", i, l)
		}
		labels[i], taken[i] = l, true
	}
	e.Labels = labels
	return nil
}

// FeatureRange is the train-partition range of one feature.
type FeatureRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ScalingParameters replays min-max scaling fit on a training partition.
// Names fixes feature order; Ranges holds one entry per name.
type ScalingParameters struct {
	Names  []string                `json:"features"`
	Ranges map[string]FeatureRange `json:"ranges"`
}

// Scale maps x into the unit interval of feature name. Values outside the
// training range map outside [0, 1]; nothing is clipped. A feature that was
// constant in training scales by 1.
func (p ScalingParameters) Scale(name string, x float64) float64 {
	r := p.Ranges[name]
	span := r.Max - r.Min
	if span == 0 {
		span = 1
	}
	return (x - r.Min) / span
}

// Apply scales every feature of p found in t into a float64 column. Columns
// not named in p pass through. A feature missing from t, or not numeric, is
// an ErrSchemaViolation.
func (p ScalingParameters) Apply(t *table.Table) (*table.Table, error) {
	out := t
	for _, name := range p.Names {
		c, ok := t.Column(name)
		if !ok {
			return nil, fmt.Errorf("%w: scaling: feature %q absent", transformer.ErrSchemaViolation, name)
		}
		vals := floatValues(c)
		if vals == nil {
			return nil, fmt.Errorf("%w: scaling: feature %q is %v", transformer.ErrSchemaViolation, name, c.Kind())
		}
		for i, x := range vals {
			vals[i] = p.Scale(name, x)
		}
		var err error
		if out, err = out.With(table.NewNumeric(name, vals)); err != nil {
			return nil, err
		}
	}
	return out, nil
}
