package table

import (
	"math"
	"strconv"
	"unsafe"
)

// Number is the set of Go types a numeric column can be backed by.
type Number interface {
	int8 | int16 | int32 | int64 | uint8 | uint16 | uint32 | uint64 | float32 | float64
}

// Column is a named sequence of values of one Kind.
type Column interface {
	Name() string
	Kind() Kind
	Len() int

	// Format returns the canonical text form of cell i. Integers print in
	// base 10 and floats in their shortest round-trip form for their width,
	// so equal values format equally regardless of the backing width.
	Format(i int) string

	// Missing reports whether cell i holds the missing marker.
	Missing(i int) bool

	// Value returns cell i as a driver-friendly Go value: int64, uint64,
	// float64, string, or nil for a missing cell.
	Value(i int) any

	// Take returns a new column holding the rows at idx, in idx order.
	Take(idx []int) Column

	// Rename returns the same data under another name.
	Rename(name string) Column

	// Size is the approximate number of bytes held by the column data.
	Size() int
}

// Numeric is a column backed by a []T.
type Numeric[T Number] struct {
	name string
	kind Kind
	data []T
}

// NewNumeric wraps data as a column. The slice is not copied; callers hand
// over ownership.
func NewNumeric[T Number](name string, data []T) *Numeric[T] {
	return &Numeric[T]{name: name, kind: kindOf[T](), data: data}
}

func (c *Numeric[T]) Name() string { return c.name }
func (c *Numeric[T]) Kind() Kind   { return c.kind }
func (c *Numeric[T]) Len() int     { return len(c.data) }

// Values exposes the backing slice. It must be treated as read-only.
func (c *Numeric[T]) Values() []T { return c.data }

// Float returns cell i widened to float64.
func (c *Numeric[T]) Float(i int) float64 { return float64(c.data[i]) }

// Floats returns a widened copy of the column.
func (c *Numeric[T]) Floats() []float64 {
	out := make([]float64, len(c.data))
	for i, v := range c.data {
		out[i] = float64(v)
	}
	return out
}

func (c *Numeric[T]) Format(i int) string {
	v := c.data[i]
	switch {
	case c.kind == Float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case c.kind == Float64:
		return strconv.FormatFloat(float64(v), 'g', -1, 64)
	case c.kind.IsSigned():
		return strconv.FormatInt(int64(v), 10)
	default:
		return strconv.FormatUint(uint64(v), 10)
	}
}

func (c *Numeric[T]) Missing(i int) bool {
	return c.kind.IsFloat() && math.IsNaN(float64(c.data[i]))
}

func (c *Numeric[T]) Value(i int) any {
	v := c.data[i]
	switch {
	case c.kind.IsFloat():
		f := float64(v)
		if math.IsNaN(f) {
			return nil
		}
		return f
	case c.kind.IsSigned():
		return int64(v)
	default:
		u := uint64(v)
		if u > math.MaxInt64 {
			return u
		}
		return int64(u)
	}
}

func (c *Numeric[T]) Take(idx []int) Column {
	return &Numeric[T]{name: c.name, kind: c.kind, data: take(c.data, idx)}
}

func (c *Numeric[T]) Rename(name string) Column {
	return &Numeric[T]{name: name, kind: c.kind, data: c.data}
}

func (c *Numeric[T]) Size() int {
	var z T
	return len(c.data) * int(unsafe.Sizeof(z))
}

// scalar returns cell i in the exact representation of its kind class.
func (c *Numeric[T]) scalar(i int) scalar {
	v := c.data[i]
	switch {
	case c.kind.IsFloat():
		return scalar{class: classFloat, f: float64(v)}
	case c.kind.IsSigned():
		return scalar{class: classSigned, i: int64(v)}
	default:
		return scalar{class: classUnsigned, u: uint64(v)}
	}
}

// Text is a column of strings. The empty string marks a missing cell.
type Text struct {
	name string
	data []string
}

// NewText wraps data as a text column without copying.
func NewText(name string, data []string) *Text {
	return &Text{name: name, data: data}
}

func (c *Text) Name() string { return c.name }
func (c *Text) Kind() Kind   { return String }
func (c *Text) Len() int     { return len(c.data) }

// Values exposes the backing slice. It must be treated as read-only.
func (c *Text) Values() []string { return c.data }

func (c *Text) Format(i int) string { return c.data[i] }
func (c *Text) Missing(i int) bool  { return c.data[i] == "" }

func (c *Text) Value(i int) any {
	if c.data[i] == "" {
		return nil
	}
	return c.data[i]
}

func (c *Text) Take(idx []int) Column {
	return &Text{name: c.name, data: take(c.data, idx)}
}

func (c *Text) Rename(name string) Column {
	return &Text{name: name, data: c.data}
}

func (c *Text) Size() int {
	n := len(c.data) * int(unsafe.Sizeof(""))
	for _, s := range c.data {
		n += len(s)
	}
	return n
}

func take[T any](src []T, idx []int) []T {
	out := make([]T, len(idx))
	for i, j := range idx {
		out[i] = src[j]
	}
	return out
}

func kindOf[T Number]() Kind {
	var z T
	switch any(z).(type) {
	case int8:
		return Int8
	case int16:
		return Int16
	case int32:
		return Int32
	case int64:
		return Int64
	case uint8:
		return Uint8
	case uint16:
		return Uint16
	case uint32:
		return Uint32
	case uint64:
		return Uint64
	case float32:
		return Float32
	default:
		return Float64
	}
}
