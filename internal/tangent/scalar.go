package tangent

// scalarType ranks the Go scalar types the algebra treats as natural
// tangents. Promotion follows the usual lattice: complex beats real,
// wider beats narrower, floats beat integers.
type scalarType int

const (
	scalarInvalid scalarType = iota
	scalarInt
	scalarFloat32
	scalarFloat64
	scalarComplex64
	scalarComplex128
)

// asScalar reports whether t is a natural scalar tangent, returning its
// value widened to complex128. Booleans are not scalars here: a bool has
// no tangent.
func asScalar(t Tangent) (complex128, scalarType, bool) {
	switch v := t.(type) {
	case float64:
		return complex(v, 0), scalarFloat64, true
	case float32:
		return complex(float64(v), 0), scalarFloat32, true
	case complex128:
		return v, scalarComplex128, true
	case complex64:
		return complex128(v), scalarComplex64, true
	case int:
		return complex(float64(v), 0), scalarInt, true
	case int32:
		return complex(float64(v), 0), scalarInt, true
	case int64:
		return complex(float64(v), 0), scalarInt, true
	default:
		return 0, scalarInvalid, false
	}
}

// promoteScalar returns the scalar type carrying the result of arithmetic
// between a and b.
func promoteScalar(a, b scalarType) scalarType {
	if b > a {
		a, b = b, a
	}
	// a is now the higher-ranked operand. Complex64 combined with Float64
	// needs the full-width complex type.
	if a == scalarComplex64 && b == scalarFloat64 {
		return scalarComplex128
	}
	if a == scalarInt {
		return scalarInt
	}
	return a
}

// makeScalar narrows a complex128 back to a concrete Go scalar of type st.
// Real types drop the imaginary part; the dispatchers only call this after
// promotion guarantees the part is already zero.
func makeScalar(v complex128, st scalarType) Tangent {
	switch st {
	case scalarInt:
		return int(real(v))
	case scalarFloat32:
		return float32(real(v))
	case scalarFloat64:
		return real(v)
	case scalarComplex64:
		return complex64(v)
	default:
		return v
	}
}
