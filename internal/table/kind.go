// Package table holds the in-memory columnar model used by every reduction
// stage: typed columns of equal length collected into an ordered table.
//
// Numeric columns are generic over the concrete Go width (int8 … float64) so
// that downcasting actually shrinks the backing arrays. Text columns carry raw
// or categorical values; an empty string marks a missing text cell, NaN marks a
// missing float cell, and integer cells are never missing.
package table

import "fmt"

// Kind is the physical type of a column.
type Kind uint8

const (
	String Kind = iota
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float32
	Float64
)

var kindNames = [...]string{
	String:  "string",
	Int8:    "int8",
	Int16:   "int16",
	Int32:   "int32",
	Int64:   "int64",
	Uint8:   "uint8",
	Uint16:  "uint16",
	Uint32:  "uint32",
	Uint64:  "uint64",
	Float32: "float32",
	Float64: "float64",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// IsNumeric reports whether k is any integer or float kind.
func (k Kind) IsNumeric() bool { return k >= Int8 && k <= Float64 }

// IsInteger reports whether k is a signed or unsigned integer kind.
func (k Kind) IsInteger() bool { return k >= Int8 && k <= Uint64 }

// IsSigned reports whether k is a signed integer kind.
func (k Kind) IsSigned() bool { return k >= Int8 && k <= Int64 }

// IsUnsigned reports whether k is an unsigned integer kind.
func (k Kind) IsUnsigned() bool { return k >= Uint8 && k <= Uint64 }

// IsFloat reports whether k is float32 or float64.
func (k Kind) IsFloat() bool { return k == Float32 || k == Float64 }

// Bits returns the storage width of a numeric kind, 0 for String.
func (k Kind) Bits() int {
	switch k {
	case Int8, Uint8:
		return 8
	case Int16, Uint16:
		return 16
	case Int32, Uint32, Float32:
		return 32
	case Int64, Uint64, Float64:
		return 64
	}
	return 0
}

// SignedKind returns the signed integer kind of the given width.
func SignedKind(bits int) (Kind, bool) {
	switch bits {
	case 8:
		return Int8, true
	case 16:
		return Int16, true
	case 32:
		return Int32, true
	case 64:
		return Int64, true
	}
	return String, false
}

// UnsignedKind returns the unsigned integer kind of the given width.
func UnsignedKind(bits int) (Kind, bool) {
	switch bits {
	case 8:
		return Uint8, true
	case 16:
		return Uint16, true
	case 32:
		return Uint32, true
	case 64:
		return Uint64, true
	}
	return String, false
}

// CommonKind returns the narrowest kind able to hold every value of every
// input kind. Text only combines with text; any float yields a float; mixed
// signed/unsigned integers widen to a signed kind larger than the widest
// unsigned input, falling back to float64 past 64 bits.
func CommonKind(kinds ...Kind) (Kind, error) {
	if len(kinds) == 0 {
		return String, fmt.Errorf("%w: no kinds to combine", ErrShape)
	}
	var (
		text, num   int
		floats, f32 int
		maxS, maxU  int
	)
	for _, k := range kinds {
		switch {
		case k == String:
			text++
		case k.IsFloat():
			num++
			floats++
			if k == Float32 {
				f32++
			}
		case k.IsSigned():
			num++
			maxS = max(maxS, k.Bits())
		case k.IsUnsigned():
			num++
			maxU = max(maxU, k.Bits())
		default:
			return String, fmt.Errorf("%w: unknown kind %v", ErrShape, k)
		}
	}
	switch {
	case text > 0 && num > 0:
		return String, fmt.Errorf("%w: cannot combine text and numeric kinds %v", ErrShape, kinds)
	case text > 0:
		return String, nil
	case floats > 0:
		if f32 == len(kinds) {
			return Float32, nil
		}
		return Float64, nil
	case maxS == 0:
		k, _ := UnsignedKind(maxU)
		return k, nil
	case maxU == 0:
		k, _ := SignedKind(maxS)
		return k, nil
	}
	bits := max(maxS, maxU*2)
	if k, ok := SignedKind(bits); ok {
		return k, nil
	}
	return Float64, nil
}
