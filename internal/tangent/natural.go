// Natural-value kernels: the base cases the dispatchers land on once the
// sentinel, thunk and structural layers have been peeled off. Natural
// tangents are plain Go scalars, []float64/[]complex128 slices, and the
// tensor package's dense, structured and sparse arrays.

package tangent

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/cmplxs"
	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/tangent/internal/tensor"
)

// toDense materializes any natural array family as a dense tensor.
// Scalars are not arrays and report false.
func toDense(t Tangent) (*tensor.Dense, bool) {
	switch v := t.(type) {
	case *tensor.Dense:
		return v, true
	case []float64:
		d, err := tensor.FromSlice(v, tensor.Shape{len(v)})
		if err != nil {
			panic(err)
		}
		return d, true
	case []complex128:
		d, err := tensor.FromSlice(v, tensor.Shape{len(v)})
		if err != nil {
			panic(err)
		}
		return d, true
	case *tensor.Diagonal:
		return v.Dense(), true
	case *tensor.Symmetric:
		return v.Dense(), true
	case *tensor.Triangular:
		return v.Dense(), true
	case *tensor.SparseVector:
		return v.Dense(), true
	case *tensor.SparseCSC:
		return v.Dense(), true
	default:
		return nil, false
	}
}

// naturalAdd adds two natural values, keeping the result on the narrowest
// family that holds it: same-type structured operands stay structured,
// slices stay slices, everything else lands on a dense tensor.
func naturalAdd(a, b Tangent) Tangent {
	if va, ta, ok := asScalar(a); ok {
		if vb, tb, ok2 := asScalar(b); ok2 {
			return makeScalar(va+vb, promoteScalar(ta, tb))
		}
		if _, isArr := toDense(b); isArr {
			panic(&UsageError{Op: "Add", Detail: "cannot add a scalar to an array"})
		}
		panic(&UsageError{Op: "Add", Detail: fmt.Sprintf("no natural addition for %T + %T", a, b)})
	}

	switch x := a.(type) {
	case []float64:
		switch y := b.(type) {
		case []float64:
			checkLens("Add", len(x), len(y))
			out := append([]float64(nil), x...)
			floats.Add(out, y)
			return out
		case []complex128:
			checkLens("Add", len(x), len(y))
			out := append([]complex128(nil), y...)
			for i, v := range x {
				out[i] += complex(v, 0)
			}
			return out
		}
	case []complex128:
		switch y := b.(type) {
		case []complex128:
			checkLens("Add", len(x), len(y))
			out := append([]complex128(nil), x...)
			cmplxs.Add(out, y)
			return out
		case []float64:
			checkLens("Add", len(x), len(y))
			out := append([]complex128(nil), x...)
			for i, v := range y {
				out[i] += complex(v, 0)
			}
			return out
		}
	case *tensor.Diagonal:
		if y, ok := b.(*tensor.Diagonal); ok {
			return x.AddSame(y)
		}
	case *tensor.Symmetric:
		if y, ok := b.(*tensor.Symmetric); ok {
			return x.AddSame(y)
		}
	case *tensor.Triangular:
		if y, ok := b.(*tensor.Triangular); ok && x.Uplo() == y.Uplo() {
			return x.AddSame(y)
		}
	case *tensor.SparseVector:
		if y, ok := b.(*tensor.SparseVector); ok {
			return x.AddSame(y)
		}
	case *tensor.SparseCSC:
		if y, ok := b.(*tensor.SparseCSC); ok {
			return x.AddSame(y)
		}
	}

	da, aArr := toDense(a)
	db, bArr := toDense(b)
	if aArr && bArr {
		return tensor.Add(da, db)
	}
	if aArr || bArr {
		panic(&UsageError{Op: "Add", Detail: "cannot add a scalar to an array"})
	}
	panic(&UsageError{Op: "Add", Detail: fmt.Sprintf("no natural addition for %T + %T", a, b)})
}

// naturalScale scales a natural value by alpha, preserving the family and,
// for a real alpha, the element type.
func naturalScale(alpha complex128, t Tangent) (Tangent, bool) {
	if v, st, ok := asScalar(t); ok {
		if imag(alpha) == 0 {
			if st == scalarInt && real(alpha) != math.Trunc(real(alpha)) {
				return real(alpha) * real(v), true
			}
			return makeScalar(alpha*v, st), true
		}
		return makeScalar(alpha*v, complexifyScalar(st)), true
	}
	switch x := t.(type) {
	case []float64:
		if imag(alpha) == 0 {
			out := append([]float64(nil), x...)
			floats.Scale(real(alpha), out)
			return out, true
		}
		out := make([]complex128, len(x))
		for i, v := range x {
			out[i] = alpha * complex(v, 0)
		}
		return out, true
	case []complex128:
		out := append([]complex128(nil), x...)
		cmplxs.Scale(alpha, out)
		return out, true
	case *tensor.Dense:
		return tensor.Scale(alpha, x), true
	case *tensor.Diagonal:
		return x.Scale(alpha), true
	case *tensor.Symmetric:
		return x.Scale(alpha), true
	case *tensor.Triangular:
		return x.Scale(alpha), true
	case *tensor.SparseVector:
		return x.Scale(alpha), true
	case *tensor.SparseCSC:
		return x.Scale(alpha), true
	default:
		return nil, false
	}
}

// complexifyScalar widens a scalar type to the complex type with the same
// part width, matching the dense kernels' behavior.
func complexifyScalar(st scalarType) scalarType {
	if st == scalarFloat32 || st == scalarComplex64 {
		return scalarComplex64
	}
	return scalarComplex128
}

// naturalMul multiplies two natural values: scalar·scalar, scalar·array
// (scaling), or elementwise array·array of matching shape.
func naturalMul(a, b Tangent) Tangent {
	va, ta, aScalar := asScalar(a)
	vb, tb, bScalar := asScalar(b)
	switch {
	case aScalar && bScalar:
		return makeScalar(va*vb, promoteScalar(ta, tb))
	case aScalar:
		if out, ok := naturalScale(va, b); ok {
			return out
		}
		panic(&UsageError{Op: "Mul", Detail: fmt.Sprintf("no natural multiplication for %T * %T", a, b)})
	case bScalar:
		if out, ok := naturalScale(vb, a); ok {
			return out
		}
		panic(&UsageError{Op: "Mul", Detail: fmt.Sprintf("no natural multiplication for %T * %T", a, b)})
	}

	switch x := a.(type) {
	case []float64:
		if y, ok := b.([]float64); ok {
			checkLens("Mul", len(x), len(y))
			out := append([]float64(nil), x...)
			floats.Mul(out, y)
			return out
		}
	case []complex128:
		if y, ok := b.([]complex128); ok {
			checkLens("Mul", len(x), len(y))
			out := append([]complex128(nil), x...)
			cmplxs.Mul(out, y)
			return out
		}
	}

	da, aArr := toDense(a)
	db, bArr := toDense(b)
	if aArr && bArr {
		return tensor.Hadamard(da, db)
	}
	panic(&UsageError{Op: "Mul", Detail: fmt.Sprintf("no natural multiplication for %T * %T", a, b)})
}

// naturalDot computes the inner product conj(a)·b of two natural values.
func naturalDot(a, b Tangent) complex128 {
	va, _, aScalar := asScalar(a)
	vb, _, bScalar := asScalar(b)
	if aScalar && bScalar {
		return complex(real(va), -imag(va)) * vb
	}
	if aScalar != bScalar {
		panic(&UsageError{Op: "Dot", Detail: fmt.Sprintf("no inner product for %T and %T", a, b)})
	}

	if x, ok := a.([]float64); ok {
		if y, ok2 := b.([]float64); ok2 {
			checkLens("Dot", len(x), len(y))
			return complex(floats.Dot(x, y), 0)
		}
	}
	if x, ok := a.([]complex128); ok {
		if y, ok2 := b.([]complex128); ok2 {
			checkLens("Dot", len(x), len(y))
			var sum complex128
			for i, v := range x {
				sum += complex(real(v), -imag(v)) * y[i]
			}
			return sum
		}
	}

	da, aArr := toDense(a)
	db, bArr := toDense(b)
	if aArr && bArr {
		return tensor.Dot(da, db)
	}
	panic(&UsageError{Op: "Dot", Detail: fmt.Sprintf("no inner product for %T and %T", a, b)})
}

// naturalConj conjugates a natural value, preserving its family. Real
// payloads come back unchanged.
func naturalConj(t Tangent) (Tangent, bool) {
	if v, st, ok := asScalar(t); ok {
		switch st {
		case scalarComplex64, scalarComplex128:
			return makeScalar(complex(real(v), -imag(v)), st), true
		default:
			return t, true
		}
	}
	switch x := t.(type) {
	case []float64:
		return x, true
	case []complex128:
		out := make([]complex128, len(x))
		for i, v := range x {
			out[i] = complex(real(v), -imag(v))
		}
		return out, true
	case *tensor.Dense:
		return tensor.Conj(x), true
	case *tensor.Diagonal:
		return x.Conj(), true
	case *tensor.Symmetric:
		return x.Conj(), true
	case *tensor.Triangular:
		return x.Conj(), true
	case *tensor.SparseVector:
		return x.Conj(), true
	case *tensor.SparseCSC:
		return x.Conj(), true
	default:
		return nil, false
	}
}

// naturalTranspose transposes a natural value. Scalars are their own
// transpose; diagonal and symmetric matrices are fixed points; triangular
// matrices flip their triangle. Rank-1 values have no transpose here.
func naturalTranspose(t Tangent) (Tangent, bool) {
	if _, _, ok := asScalar(t); ok {
		return t, true
	}
	switch x := t.(type) {
	case *tensor.Dense:
		return tensor.Transpose2D(x), true
	case *tensor.Diagonal:
		return x, true
	case *tensor.Symmetric:
		return x, true
	case *tensor.Triangular:
		return x.Transpose(), true
	case *tensor.SparseCSC:
		return tensor.CSCFromDense(tensor.Transpose2D(x.Dense())), true
	default:
		return nil, false
	}
}

// checkLens panics with a shape error when two slice operands disagree.
func checkLens(op string, a, b int) {
	if a != b {
		panic(&tensor.ShapeError{Op: op, A: tensor.Shape{a}, B: tensor.Shape{b}})
	}
}
