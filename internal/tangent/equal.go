package tangent

import "math/cmplx"

// Equal reports whether two tangents are equal. Deferred operands are
// forced, scalars compare by value across widths, and array families
// compare by their dense materialization with matching element types.
// Kinds never cross-compare: ZeroTangent and NoTangent are distinct, and a
// structural tangent never equals a sentinel, however many zero entries it
// carries.
func Equal(a, b Tangent) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if d, ok := a.(Deferred); ok {
		return Equal(d.Unthunk(), b)
	}
	if d, ok := b.(Deferred); ok {
		return Equal(a, d.Unthunk())
	}
	switch x := a.(type) {
	case ZeroTangent:
		_, ok := b.(ZeroTangent)
		return ok
	case NoTangent:
		_, ok := b.(NoTangent)
		return ok
	case *NotImplemented:
		return b == Tangent(x)
	case *Structural:
		y, ok := b.(*Structural)
		return ok && x.equal(y)
	}
	switch b.(type) {
	case ZeroTangent, NoTangent, *NotImplemented, *Structural:
		return false
	}
	if va, _, ok := asScalar(a); ok {
		vb, _, ok2 := asScalar(b)
		return ok2 && va == vb
	}
	if _, _, ok := asScalar(b); ok {
		return false
	}
	da, aOK := toDense(a)
	db, bOK := toDense(b)
	if aOK && bOK {
		return da.Equal(db)
	}
	return false
}

// ApproxEqual is Equal with an absolute tolerance on numeric leaves.
func ApproxEqual(a, b Tangent, tol float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if d, ok := a.(Deferred); ok {
		return ApproxEqual(d.Unthunk(), b, tol)
	}
	if d, ok := b.(Deferred); ok {
		return ApproxEqual(a, d.Unthunk(), tol)
	}
	switch x := a.(type) {
	case ZeroTangent:
		_, ok := b.(ZeroTangent)
		return ok
	case NoTangent:
		_, ok := b.(NoTangent)
		return ok
	case *NotImplemented:
		return b == Tangent(x)
	case *Structural:
		y, ok := b.(*Structural)
		return ok && x.approxEqual(y, tol)
	}
	switch b.(type) {
	case ZeroTangent, NoTangent, *NotImplemented, *Structural:
		return false
	}
	if va, _, ok := asScalar(a); ok {
		vb, _, ok2 := asScalar(b)
		return ok2 && cmplx.Abs(va-vb) <= tol
	}
	if _, _, ok := asScalar(b); ok {
		return false
	}
	da, aOK := toDense(a)
	db, bOK := toDense(b)
	if aOK && bOK {
		return da.EqualApprox(db, tol)
	}
	return false
}
