// Dense arithmetic kernels. Mirrored pairs of operands are normalized to a
// common promoted dtype first, so each kernel body switches on one element
// type only. float64 and complex128 paths go through gonum; the remaining
// types use explicit loops.

package tensor

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/cmplxs"
	"gonum.org/v1/gonum/floats"
)

// Add returns a + b elementwise. Panics with *ShapeError or *DTypeError
// when the operands do not combine. The result carries the promoted dtype;
// operands are never mutated.
func Add(a, b *Dense) *Dense {
	if !a.shape.Equal(b.shape) {
		panic(&ShapeError{Op: "Add", A: a.shape, B: b.shape})
	}
	dt, ok := Promote(a.dtype, b.dtype)
	if !ok {
		panic(&DTypeError{Op: "Add", A: a.dtype, B: b.dtype})
	}
	out := convertCopy(a, dt, "Add")
	addAssign(out, convertView(b, dt, "Add"))
	return out
}

// AddInto accumulates src into dst in place: dst += src. dst must be a
// float or complex value that uniquely owns an unfrozen buffer, and src's
// dtype must promote into dst's without widening it. These are exactly the
// conditions under which the algebra's maybe-mutating accumulation may take
// the in-place path.
func AddInto(dst, src *Dense) {
	if dst.frozen {
		panic(fmt.Errorf("tensor: AddInto: %w", ErrFrozen))
	}
	if !dst.IsUnique() {
		panic(fmt.Errorf("tensor: AddInto: %w", ErrNotUnique))
	}
	if !dst.dtype.Differentiable() {
		panic(&DTypeError{Op: "AddInto", A: dst.dtype, B: src.dtype})
	}
	if !dst.shape.Equal(src.shape) {
		panic(&ShapeError{Op: "AddInto", A: dst.shape, B: src.shape})
	}
	if dt, ok := Promote(dst.dtype, src.dtype); !ok || dt != dst.dtype {
		panic(&DTypeError{Op: "AddInto", A: dst.dtype, B: src.dtype})
	}
	addAssign(dst, convertView(src, dst.dtype, "AddInto"))
}

// Scale returns alpha * x. A real alpha preserves x's dtype (integer
// dtypes stay integer only when alpha is integral, otherwise the result is
// Float64); a complex alpha complexifies the result. Panics on Bool.
func Scale(alpha complex128, x *Dense) *Dense {
	if x.dtype == Bool {
		panic(&DTypeError{Op: "Scale", A: x.dtype, B: Complex128})
	}
	if imag(alpha) == 0 {
		re := real(alpha)
		dt := x.dtype
		if dt.IsInteger() && re != math.Trunc(re) {
			dt = Float64
		}
		out := convertCopy(x, dt, "Scale")
		scaleAssign(out, complex(re, 0))
		return out
	}
	dt, _ := x.dtype.Complexify()
	out := convertCopy(x, dt, "Scale")
	scaleAssign(out, alpha)
	return out
}

// Hadamard returns the elementwise product a .* b with dtype promotion.
func Hadamard(a, b *Dense) *Dense {
	if !a.shape.Equal(b.shape) {
		panic(&ShapeError{Op: "Hadamard", A: a.shape, B: b.shape})
	}
	dt, ok := Promote(a.dtype, b.dtype)
	if !ok {
		panic(&DTypeError{Op: "Hadamard", A: a.dtype, B: b.dtype})
	}
	out := convertCopy(a, dt, "Hadamard")
	mulAssign(out, convertView(b, dt, "Hadamard"))
	return out
}

// Dot returns the inner product conj(a)·b as a complex128 (zero imaginary
// part for real operands).
func Dot(a, b *Dense) complex128 {
	if !a.shape.Equal(b.shape) {
		panic(&ShapeError{Op: "Dot", A: a.shape, B: b.shape})
	}
	dt, ok := Promote(a.dtype, b.dtype)
	if !ok {
		panic(&DTypeError{Op: "Dot", A: a.dtype, B: b.dtype})
	}
	aa := convertView(a, dt, "Dot")
	bb := convertView(b, dt, "Dot")
	switch dt {
	case Float64:
		return complex(floats.Dot(aa.AsFloat64(), bb.AsFloat64()), 0)
	case Float32:
		var sum float64
		as, bs := aa.AsFloat32(), bb.AsFloat32()
		for i := range as {
			sum += float64(as[i]) * float64(bs[i])
		}
		return complex(sum, 0)
	case Complex128:
		var sum complex128
		as, bs := aa.AsComplex128(), bb.AsComplex128()
		for i := range as {
			sum += complex(real(as[i]), -imag(as[i])) * bs[i]
		}
		return sum
	case Complex64:
		var sum complex128
		as, bs := aa.AsComplex64(), bb.AsComplex64()
		for i := range as {
			av := complex128(as[i])
			sum += complex(real(av), -imag(av)) * complex128(bs[i])
		}
		return sum
	default: // integer dtypes accumulate in float64
		var sum float64
		for i := 0; i < aa.NumElements(); i++ {
			sum += real(aa.element(i)) * real(bb.element(i))
		}
		return complex(sum, 0)
	}
}

// Conj returns the complex conjugate. Real and integer values are returned
// unchanged (the result aliases x); complex values are copied.
func Conj(x *Dense) *Dense {
	switch x.dtype {
	case Complex64:
		out := x.Clone()
		data := out.AsComplex64()
		for i, v := range data {
			data[i] = complex(real(v), -imag(v))
		}
		return out
	case Complex128:
		out := x.Clone()
		data := out.AsComplex128()
		for i, v := range data {
			data[i] = complex(real(v), -imag(v))
		}
		return out
	default:
		return x
	}
}

// Transpose2D returns the transpose of a rank-2 value.
func Transpose2D(x *Dense) *Dense {
	if len(x.shape) != 2 {
		panic(&ShapeError{Op: "Transpose2D", A: x.shape, B: nil})
	}
	rows, cols := x.shape[0], x.shape[1]
	out := Zeros(Shape{cols, rows}, x.dtype)
	sz := x.dtype.Size()
	src, dst := x.buffer.data, out.buffer.data
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			copy(dst[(j*rows+i)*sz:(j*rows+i+1)*sz], src[(i*cols+j)*sz:(i*cols+j+1)*sz])
		}
	}
	return out
}

// convertCopy returns an independent copy of x carrying dtype dt.
func convertCopy(x *Dense, dt DataType, op string) *Dense {
	if x.dtype == dt {
		return x.Clone()
	}
	out, err := x.Convert(dt)
	if err != nil {
		panic(&DTypeError{Op: op, A: x.dtype, B: dt})
	}
	return out
}

// convertView returns x itself when the dtype already matches (read-only
// use by the caller), otherwise a converted copy.
func convertView(x *Dense, dt DataType, op string) *Dense {
	if x.dtype == dt {
		return x
	}
	out, err := x.Convert(dt)
	if err != nil {
		panic(&DTypeError{Op: op, A: x.dtype, B: dt})
	}
	return out
}

// addAssign computes dst += src for equal shapes and dtypes.
func addAssign(dst, src *Dense) {
	switch dst.dtype {
	case Float64:
		floats.Add(dst.AsFloat64(), src.AsFloat64())
	case Complex128:
		cmplxs.Add(dst.AsComplex128(), src.AsComplex128())
	case Float32:
		d, s := dst.AsFloat32(), src.AsFloat32()
		for i := range d {
			d[i] += s[i]
		}
	case Complex64:
		d, s := dst.AsComplex64(), src.AsComplex64()
		for i := range d {
			d[i] += s[i]
		}
	case Int32:
		d, s := dst.AsInt32(), src.AsInt32()
		for i := range d {
			d[i] += s[i]
		}
	case Int64:
		d, s := dst.AsInt64(), src.AsInt64()
		for i := range d {
			d[i] += s[i]
		}
	case Uint8:
		d, s := dst.AsUint8(), src.AsUint8()
		for i := range d {
			d[i] += s[i]
		}
	default:
		panic(&DTypeError{Op: "addAssign", A: dst.dtype, B: src.dtype})
	}
}

// mulAssign computes dst *= src elementwise for equal shapes and dtypes.
func mulAssign(dst, src *Dense) {
	switch dst.dtype {
	case Float64:
		floats.Mul(dst.AsFloat64(), src.AsFloat64())
	case Complex128:
		cmplxs.Mul(dst.AsComplex128(), src.AsComplex128())
	case Float32:
		d, s := dst.AsFloat32(), src.AsFloat32()
		for i := range d {
			d[i] *= s[i]
		}
	case Complex64:
		d, s := dst.AsComplex64(), src.AsComplex64()
		for i := range d {
			d[i] *= s[i]
		}
	case Int32:
		d, s := dst.AsInt32(), src.AsInt32()
		for i := range d {
			d[i] *= s[i]
		}
	case Int64:
		d, s := dst.AsInt64(), src.AsInt64()
		for i := range d {
			d[i] *= s[i]
		}
	case Uint8:
		d, s := dst.AsUint8(), src.AsUint8()
		for i := range d {
			d[i] *= s[i]
		}
	default:
		panic(&DTypeError{Op: "mulAssign", A: dst.dtype, B: src.dtype})
	}
}

// scaleAssign computes dst *= alpha in place. dst's dtype must already
// accommodate alpha (Scale arranges that).
func scaleAssign(dst *Dense, alpha complex128) {
	switch dst.dtype {
	case Float64:
		floats.Scale(real(alpha), dst.AsFloat64())
	case Complex128:
		cmplxs.Scale(alpha, dst.AsComplex128())
	case Float32:
		a := float32(real(alpha))
		d := dst.AsFloat32()
		for i := range d {
			d[i] *= a
		}
	case Complex64:
		a := complex64(alpha)
		d := dst.AsComplex64()
		for i := range d {
			d[i] *= a
		}
	case Int32:
		a := int32(real(alpha))
		d := dst.AsInt32()
		for i := range d {
			d[i] *= a
		}
	case Int64:
		a := int64(real(alpha))
		d := dst.AsInt64()
		for i := range d {
			d[i] *= a
		}
	case Uint8:
		a := uint8(real(alpha))
		d := dst.AsUint8()
		for i := range d {
			d[i] *= a
		}
	default:
		panic(&DTypeError{Op: "scaleAssign", A: dst.dtype, B: Complex128})
	}
}
