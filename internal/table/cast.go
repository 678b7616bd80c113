package table

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrCast reports a value that cannot be represented in the target kind.
	ErrCast = errors.New("table: cast")
	// ErrShape reports a violation of the table invariants.
	ErrShape = errors.New("table: shape")
)

type scalarClass uint8

const (
	classSigned scalarClass = iota
	classUnsigned
	classFloat
)

// scalar carries one numeric cell without losing precision.
type scalar struct {
	class scalarClass
	i     int64
	u     uint64
	f     float64
}

type scalarColumn interface {
	Column
	scalar(i int) scalar
}

// Cast converts a numeric column to kind k. The conversion is total: every
// value must fit the target range and, for integer targets, be a whole
// number, otherwise ErrCast is returned and no column is produced. Float
// targets accept any value; narrowing to float32 rounds to nearest.
func Cast(c Column, k Kind) (Column, error) {
	if c.Kind() == k {
		return c, nil
	}
	src, ok := c.(scalarColumn)
	if !ok || !k.IsNumeric() {
		return nil, fmt.Errorf("%w: column %q: %v to %v", ErrCast, c.Name(), c.Kind(), k)
	}
	switch k {
	case Int8:
		return castTo[int8](src, k)
	case Int16:
		return castTo[int16](src, k)
	case Int32:
		return castTo[int32](src, k)
	case Int64:
		return castTo[int64](src, k)
	case Uint8:
		return castTo[uint8](src, k)
	case Uint16:
		return castTo[uint16](src, k)
	case Uint32:
		return castTo[uint32](src, k)
	case Uint64:
		return castTo[uint64](src, k)
	case Float32:
		return castTo[float32](src, k)
	default:
		return castTo[float64](src, k)
	}
}

func castTo[U Number](src scalarColumn, k Kind) (Column, error) {
	out := make([]U, src.Len())
	for i := range out {
		s := src.scalar(i)
		if !fits(s, k) {
			return nil, fmt.Errorf("%w: column %q row %d: %s does not fit %v",
				ErrCast, src.Name(), i, src.Format(i), k)
		}
		switch s.class {
		case classSigned:
			out[i] = U(s.i)
		case classUnsigned:
			out[i] = U(s.u)
		default:
			out[i] = U(s.f)
		}
	}
	return NewNumeric(src.Name(), out), nil
}

// fits reports whether s is exactly representable in integer kind k, or
// within range for float kind k.
func fits(s scalar, k Kind) bool {
	if k.IsFloat() {
		if k == Float32 && s.class == classFloat &&
			!math.IsInf(s.f, 0) && !math.IsNaN(s.f) && math.Abs(s.f) > math.MaxFloat32 {
			return false
		}
		return true
	}
	bits := k.Bits()
	switch s.class {
	case classSigned:
		if k.IsSigned() {
			lo, hi := signedBounds(bits)
			return s.i >= lo && s.i <= hi
		}
		return s.i >= 0 && uint64(s.i) <= unsignedMax(bits)
	case classUnsigned:
		if k.IsSigned() {
			_, hi := signedBounds(bits)
			return s.u <= uint64(hi)
		}
		return s.u <= unsignedMax(bits)
	default:
		f := s.f
		if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
			return false
		}
		if k.IsSigned() {
			edge := math.Ldexp(1, bits-1)
			return f >= -edge && f < edge
		}
		return f >= 0 && f < math.Ldexp(1, bits)
	}
}

func signedBounds(bits int) (int64, int64) {
	switch bits {
	case 8:
		return math.MinInt8, math.MaxInt8
	case 16:
		return math.MinInt16, math.MaxInt16
	case 32:
		return math.MinInt32, math.MaxInt32
	default:
		return math.MinInt64, math.MaxInt64
	}
}

func unsignedMax(bits int) uint64 {
	switch bits {
	case 8:
		return math.MaxUint8
	case 16:
		return math.MaxUint16
	case 32:
		return math.MaxUint32
	default:
		return math.MaxUint64
	}
}

// Concat appends columns of one kind end to end under the first column's
// name.
func Concat(cols ...Column) (Column, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: nothing to concatenate", ErrShape)
	}
	k := cols[0].Kind()
	for _, c := range cols[1:] {
		if c.Kind() != k {
			return nil, fmt.Errorf("%w: concat %q: kind %v != %v", ErrShape, c.Name(), c.Kind(), k)
		}
	}
	name := cols[0].Name()
	switch k {
	case String:
		return NewText(name, concatValues(cols, func(c Column) []string { return c.(*Text).data })), nil
	case Int8:
		return concatNumeric[int8](name, cols), nil
	case Int16:
		return concatNumeric[int16](name, cols), nil
	case Int32:
		return concatNumeric[int32](name, cols), nil
	case Int64:
		return concatNumeric[int64](name, cols), nil
	case Uint8:
		return concatNumeric[uint8](name, cols), nil
	case Uint16:
		return concatNumeric[uint16](name, cols), nil
	case Uint32:
		return concatNumeric[uint32](name, cols), nil
	case Uint64:
		return concatNumeric[uint64](name, cols), nil
	case Float32:
		return concatNumeric[float32](name, cols), nil
	default:
		return concatNumeric[float64](name, cols), nil
	}
}

func concatNumeric[T Number](name string, cols []Column) Column {
	return NewNumeric(name, concatValues(cols, func(c Column) []T { return c.(*Numeric[T]).data }))
}

func concatValues[T any](cols []Column, values func(Column) []T) []T {
	n := 0
	for _, c := range cols {
		n += c.Len()
	}
	out := make([]T, 0, n)
	for _, c := range cols {
		out = append(out, values(c)...)
	}
	return out
}
