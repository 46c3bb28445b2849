// Package tensor provides the natural-tangent payload types for the Born
// tangent algebra: dense arrays with runtime element types, structured
// matrices (diagonal, symmetric, triangular), and sparse containers.
//
// These are the "types that already existed independent of AD" that rules
// and AD engines exchange as derivative values. The package is pure CPU
// value manipulation: no devices, no I/O, no goroutines.
package tensor

import "reflect"

// DataType represents runtime type information for dense buffers.
type DataType int

// Supported element types.
const (
	Float32 DataType = iota
	Float64
	Complex64
	Complex128
	Int32
	Int64
	Uint8
	Bool
)

// Size returns the byte size of one element of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float32, Int32:
		return 4
	case Float64, Complex64, Int64:
		return 8
	case Complex128:
		return 16
	case Uint8, Bool:
		return 1
	default:
		panic("tensor: unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Complex64:
		return "complex64"
	case Complex128:
		return "complex128"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Uint8:
		return "uint8"
	case Bool:
		return "bool"
	default:
		return "unknown"
	}
}

// IsFloat reports whether the data type is a real floating-point type.
func (dt DataType) IsFloat() bool {
	return dt == Float32 || dt == Float64
}

// IsComplex reports whether the data type is a complex floating-point type.
func (dt DataType) IsComplex() bool {
	return dt == Complex64 || dt == Complex128
}

// IsInteger reports whether the data type is an integer type (Bool excluded).
func (dt DataType) IsInteger() bool {
	return dt == Int32 || dt == Int64 || dt == Uint8
}

// Differentiable reports whether values of this element type admit nonzero
// tangents. Integer and boolean entries are categorically non-differentiable:
// projecting onto them produces NoTangent.
func (dt DataType) Differentiable() bool {
	return dt.IsFloat() || dt.IsComplex()
}

// Complexify returns the complex data type with the same part width.
// Integer types widen to Complex128. Bool does not complexify.
func (dt DataType) Complexify() (DataType, bool) {
	switch dt {
	case Float32, Complex64:
		return Complex64, true
	case Float64, Complex128, Int32, Int64, Uint8:
		return Complex128, true
	default:
		return dt, false
	}
}

// realWidth ranks the precision of the real part: 32-bit < 64-bit.
// Integers rank below floats of the same width so that int+float promotes
// to the float.
func realWidth(dt DataType) int {
	switch dt {
	case Uint8:
		return 1
	case Int32:
		return 2
	case Int64:
		return 3
	case Float32, Complex64:
		return 4
	case Float64, Complex128:
		return 5
	default:
		return 0
	}
}

// Promote returns the data type that the result of arithmetic combining
// operands of types a and b carries. The second result is false when the
// pair does not combine (Bool never participates in arithmetic).
//
// Rules: same type stays; complex wins over real; the wider real part wins;
// integers combined with floats yield the float type.
func Promote(a, b DataType) (DataType, bool) {
	if a == Bool || b == Bool {
		return Bool, false
	}
	if a == b {
		return a, true
	}
	cplx := a.IsComplex() || b.IsComplex()
	w := realWidth(a)
	if bw := realWidth(b); bw > w {
		w = bw
	}
	if cplx {
		if w >= 5 {
			return Complex128, true
		}
		return Complex64, true
	}
	switch w {
	case 5:
		return Float64, true
	case 4:
		return Float32, true
	case 3:
		return Int64, true
	case 2:
		return Int32, true
	default:
		return Uint8, true
	}
}

// inferDataType maps a Go element kind onto a DataType. reflect.Kind sees
// through named types, so FromSlice accepts e.g. a []Celsius with underlying
// float64.
func inferDataType(rt reflect.Type) (DataType, bool) {
	switch rt.Kind() {
	case reflect.Float32:
		return Float32, true
	case reflect.Float64:
		return Float64, true
	case reflect.Complex64:
		return Complex64, true
	case reflect.Complex128:
		return Complex128, true
	case reflect.Int32:
		return Int32, true
	case reflect.Int64:
		return Int64, true
	case reflect.Uint8:
		return Uint8, true
	case reflect.Bool:
		return Bool, true
	default:
		return Bool, false
	}
}
