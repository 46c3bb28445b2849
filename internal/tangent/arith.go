package tangent

import (
	"fmt"
	"reflect"
)

// sited is implemented by deferred tangents that remember where they were
// created.
type sited interface{ Site() Site }

// deferUnary wraps a deferred operand in a new thunk that applies fn once
// the operand is forced. The wrapper inherits the operand's creation site
// so panics still point at the original closure.
func deferUnary(d Deferred, fn func(Tangent) Tangent) Tangent {
	site := callerSite(2)
	if s, ok := d.(sited); ok {
		site = s.Site()
	}
	return newThunkAt(site, func() Tangent { return fn(d.Unthunk()) })
}

// samePrimal reports whether v is a value of the primal type a structural
// tangent differentiates, looking through pointers.
func samePrimal(s *Structural, v Tangent) bool {
	rt := reflect.TypeOf(v)
	for rt != nil && rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	return rt == s.primal
}

// Add sums two tangents. Every pairing of kinds is defined:
//
//   - a zero-like operand yields the other operand unchanged, the left
//     zero-like winning when both are;
//   - a NotImplemented operand propagates, the left one winning;
//   - deferred operands are forced;
//   - structural tangents merge entrywise, and adding one to a value of
//     its own primal type rebuilds the primal;
//   - natural operands are summed by the underlying kernels.
func Add(a, b Tangent) Tangent {
	checkOperands("Add", a, b)
	if IsZeroLike(a) {
		if IsZeroLike(b) {
			return a
		}
		return b
	}
	if IsZeroLike(b) {
		return a
	}
	if ni, ok := a.(*NotImplemented); ok {
		return ni
	}
	if ni, ok := b.(*NotImplemented); ok {
		return ni
	}
	if d, ok := a.(Deferred); ok {
		return Add(d.Unthunk(), b)
	}
	if d, ok := b.(Deferred); ok {
		return Add(a, d.Unthunk())
	}
	sa, aOK := a.(*Structural)
	sb, bOK := b.(*Structural)
	switch {
	case aOK && bOK:
		return sa.add(sb)
	case aOK:
		if samePrimal(sa, b) {
			return AddPrimal(b, sa)
		}
		panic(&UsageError{Op: "Add", Detail: fmt.Sprintf("cannot add a tangent for %v to %T", sa.primal, b)})
	case bOK:
		if samePrimal(sb, a) {
			return AddPrimal(a, sb)
		}
		panic(&UsageError{Op: "Add", Detail: fmt.Sprintf("cannot add a tangent for %v to %T", sb.primal, a)})
	}
	return naturalAdd(a, b)
}

// Sub subtracts b from a. Subtraction consumes its operands, so a
// NotImplemented on either side raises instead of propagating.
func Sub(a, b Tangent) Tangent {
	checkOperands("Sub", a, b)
	if ni, ok := a.(*NotImplemented); ok {
		panic(&NotImplementedError{Op: "Sub", NI: ni})
	}
	if ni, ok := b.(*NotImplemented); ok {
		panic(&NotImplementedError{Op: "Sub", NI: ni})
	}
	return Add(a, Neg(b))
}

// Neg negates a tangent, preserving its kind: zero-likes are their own
// negation, deferred operands stay deferred, structural tangents negate
// entrywise. Negating a NotImplemented raises, as subtraction does.
func Neg(t Tangent) Tangent {
	checkOperands("Neg", t)
	if IsZeroLike(t) {
		return t
	}
	if ni, ok := t.(*NotImplemented); ok {
		panic(&NotImplementedError{Op: "Neg", NI: ni})
	}
	if d, ok := t.(Deferred); ok {
		return deferUnary(d, Neg)
	}
	if s, ok := t.(*Structural); ok {
		return s.transform(Neg)
	}
	if out, ok := naturalScale(-1, t); ok {
		return out
	}
	panic(&UsageError{Op: "Neg", Detail: fmt.Sprintf("no negation for %T", t)})
}

// Mul multiplies two tangents. Zero-likes absorb before anything else, so
// a NotImplemented times a zero-like is the zero-like; otherwise
// NotImplemented propagates left-first. A structural tangent multiplies
// entrywise by a scalar operand.
func Mul(a, b Tangent) Tangent {
	checkOperands("Mul", a, b)
	if IsZeroLike(a) {
		return a
	}
	if IsZeroLike(b) {
		return b
	}
	if ni, ok := a.(*NotImplemented); ok {
		return ni
	}
	if ni, ok := b.(*NotImplemented); ok {
		return ni
	}
	if d, ok := a.(Deferred); ok {
		return Mul(d.Unthunk(), b)
	}
	if d, ok := b.(Deferred); ok {
		return Mul(a, d.Unthunk())
	}
	sa, aOK := a.(*Structural)
	sb, bOK := b.(*Structural)
	switch {
	case aOK && bOK:
		panic(&UsageError{Op: "Mul", Detail: fmt.Sprintf("no product of two tangents for %v and %v", sa.primal, sb.primal)})
	case aOK:
		if _, _, ok := asScalar(b); ok {
			return sa.transform(func(v Tangent) Tangent { return Mul(v, b) })
		}
		panic(&UsageError{Op: "Mul", Detail: fmt.Sprintf("cannot scale a tangent for %v by %T", sa.primal, b)})
	case bOK:
		if _, _, ok := asScalar(a); ok {
			return sb.transform(func(v Tangent) Tangent { return Mul(a, v) })
		}
		panic(&UsageError{Op: "Mul", Detail: fmt.Sprintf("cannot scale a tangent for %v by %T", sb.primal, a)})
	}
	return naturalMul(a, b)
}

// MulAdd returns x*y + z in one step. Through composition it keeps the
// sentinel semantics of Mul and Add: zero-likes absorb the product and a
// NotImplemented factor propagates instead of raising.
func MulAdd(x, y, z Tangent) Tangent {
	checkOperands("MulAdd", x, y, z)
	return Add(Mul(x, y), z)
}

// Dot returns the inner product of two tangents as a complex128,
// conjugating the left operand. Zero-like operands contribute zero;
// consuming a NotImplemented raises; structural operands pair their
// shared entries.
func Dot(a, b Tangent) complex128 {
	checkOperands("Dot", a, b)
	if IsZeroLike(a) || IsZeroLike(b) {
		return 0
	}
	if ni, ok := a.(*NotImplemented); ok {
		panic(&NotImplementedError{Op: "Dot", NI: ni})
	}
	if ni, ok := b.(*NotImplemented); ok {
		panic(&NotImplementedError{Op: "Dot", NI: ni})
	}
	if d, ok := a.(Deferred); ok {
		return Dot(d.Unthunk(), b)
	}
	if d, ok := b.(Deferred); ok {
		return Dot(a, d.Unthunk())
	}
	sa, aOK := a.(*Structural)
	sb, bOK := b.(*Structural)
	switch {
	case aOK && bOK:
		return sa.dot(sb)
	case aOK || bOK:
		panic(&UsageError{Op: "Dot", Detail: fmt.Sprintf("no inner product for %T and %T", a, b)})
	}
	return naturalDot(a, b)
}

// Conj conjugates a tangent. Conjugation does not consume its operand:
// zero-likes and NotImplemented pass through, deferred operands stay
// deferred, structural tangents conjugate entrywise.
func Conj(t Tangent) Tangent {
	checkOperands("Conj", t)
	if IsZeroLike(t) {
		return t
	}
	if _, ok := t.(*NotImplemented); ok {
		return t
	}
	if d, ok := t.(Deferred); ok {
		return deferUnary(d, Conj)
	}
	if s, ok := t.(*Structural); ok {
		return s.conj()
	}
	if out, ok := naturalConj(t); ok {
		return out
	}
	panic(&UsageError{Op: "Conj", Detail: fmt.Sprintf("no conjugate for %T", t)})
}

// Transpose transposes a matrix-shaped tangent. Zero-likes are their own
// transpose, deferred operands stay deferred, and a NotImplemented raises:
// reorienting an unknown tangent would silently produce a wrong shape.
func Transpose(t Tangent) Tangent {
	checkOperands("Transpose", t)
	if IsZeroLike(t) {
		return t
	}
	if ni, ok := t.(*NotImplemented); ok {
		panic(&NotImplementedError{Op: "Transpose", NI: ni})
	}
	if d, ok := t.(Deferred); ok {
		return deferUnary(d, Transpose)
	}
	if s, ok := t.(*Structural); ok {
		panic(&UsageError{Op: "Transpose", Detail: fmt.Sprintf("no transpose for a tangent of %v", s.primal)})
	}
	if out, ok := naturalTranspose(t); ok {
		return out
	}
	panic(&UsageError{Op: "Transpose", Detail: fmt.Sprintf("no transpose for %T", t)})
}

// Adjoint returns the conjugate transpose of a tangent.
func Adjoint(t Tangent) Tangent {
	checkOperands("Adjoint", t)
	if IsZeroLike(t) {
		return t
	}
	if ni, ok := t.(*NotImplemented); ok {
		panic(&NotImplementedError{Op: "Adjoint", NI: ni})
	}
	if d, ok := t.(Deferred); ok {
		return deferUnary(d, Adjoint)
	}
	if s, ok := t.(*Structural); ok {
		panic(&UsageError{Op: "Adjoint", Detail: fmt.Sprintf("no adjoint for a tangent of %v", s.primal)})
	}
	return Conj(Transpose(t))
}
