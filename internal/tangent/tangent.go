// Package tangent implements the derivative-value algebra shared by
// differentiation rules and the engines that call them.
//
// A tangent is any value usable as a derivative of a primal value. The
// algebra closes a small set of representations under +, *, dot and
// projection so that a rule may return whichever form is cheapest and the
// caller can still combine it with anything else:
//
// Architecture:
//   - ZeroTangent / NoTangent: zero-sized sentinels for "numerically zero"
//     and "no derivative exists"; arithmetic short-circuits on them.
//   - Thunk / InplaceableThunk: deferred tangents; forced only when an
//     operation actually consumes the value.
//   - NotImplemented: a recorded gap in rule coverage; poisons arithmetic
//     and raises only when something tries to read a number out of it.
//   - Structural: a field-wise tangent mirroring a primal's layout, with
//     absent fields treated as ZeroTangent.
//   - Natural values: plain Go numbers, []float64/[]complex128 slices, and
//     the tensor package's dense, structured and sparse arrays.
//
// One dispatcher function per operator (Add, Mul, Dot, ...) orders its
// checks sentinel → thunk → structural → natural, so every pair of
// representations hits exactly one code path.
//
// Usage:
//
//	dy := tangent.NewThunk(func() tangent.Tangent { return expensive() })
//	sum := tangent.Add(dx, dy)      // forces dy only because Add consumes it
//	p := tangent.ProjectTo(weights) // captures shape/dtype/pattern once
//	dw := p.Apply(sum)              // lands on weights' admissible subspace
package tangent

// Tangent is any value admissible as a derivative. It is an alias, not a
// wrapper, so natural values (float64, []float64, *tensor.Dense, ...) flow
// through the algebra without boxing.
type Tangent = any

// Deferred is the capability of removing one layer of deferral. Thunk and
// InplaceableThunk implement it; operators that consume values force
// through it, operators that are linear wrap it instead.
type Deferred interface {
	Unthunk() Tangent
}

// Kind classifies a tangent by representation. Every value maps to exactly
// one Kind, which is what keeps the operator dispatch ambiguity-free: the
// dispatchers branch on Kind pairs in a fixed order.
type Kind int

const (
	// KindNatural is any value outside the algebra's own types: numbers,
	// slices, tensors.
	KindNatural Kind = iota
	// KindZero is the ZeroTangent sentinel.
	KindZero
	// KindNoTangent is the NoTangent sentinel.
	KindNoTangent
	// KindThunk covers Thunk and InplaceableThunk.
	KindThunk
	// KindNotImplemented is the missing-derivative marker.
	KindNotImplemented
	// KindStructural is a field-wise composite tangent.
	KindStructural
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindNatural:
		return "natural"
	case KindZero:
		return "zero"
	case KindNoTangent:
		return "notangent"
	case KindThunk:
		return "thunk"
	case KindNotImplemented:
		return "notimplemented"
	case KindStructural:
		return "structural"
	default:
		return "unknown"
	}
}

// KindOf classifies t. A nil tangent classifies as natural; the operator
// entry points reject nil explicitly with a UsageError.
func KindOf(t Tangent) Kind {
	switch t.(type) {
	case ZeroTangent:
		return KindZero
	case NoTangent:
		return KindNoTangent
	case *Thunk, *InplaceableThunk:
		return KindThunk
	case *NotImplemented:
		return KindNotImplemented
	case *Structural:
		return KindStructural
	default:
		return KindNatural
	}
}

// IsZeroLike reports whether t is one of the two zero sentinels. Both
// behave as the additive identity; they differ only in externalization.
func IsZeroLike(t Tangent) bool {
	switch t.(type) {
	case ZeroTangent, NoTangent:
		return true
	default:
		return false
	}
}

// ZeroLike returns the additive identity for t's vector space, which is
// ZeroTangent for every representation. Asking for the zero of a
// NotImplemented raises: a missing derivative has no known zero.
func ZeroLike(t Tangent) Tangent {
	if ni, ok := t.(*NotImplemented); ok {
		panic(&NotImplementedError{Op: "ZeroLike", NI: ni})
	}
	return ZeroTangent{}
}

// checkOperands rejects nil tangents at the operator boundary so the
// dispatchers never have to guard against them mid-flight.
func checkOperands(op string, ts ...Tangent) {
	for _, t := range ts {
		if t == nil {
			panic(&UsageError{Op: op, Detail: "nil tangent operand"})
		}
	}
}
