package tangent

import "github.com/born-ml/tangent/internal/tensor"

// accumCheckTol bounds the drift tolerated between the in-place and the
// value-form result when debug checks are on. Both paths run the same
// kernels, so anything past rounding noise is a broken AddInto.
const accumCheckTol = 1e-9

// AccumAdd adds t into an accumulator, mutating the accumulator in place
// when that is provably safe and falling back to value-form Add otherwise.
// The in-place path requires an InplaceableThunk on the right and a dense,
// differentiable, unfrozen accumulator that holds the sole reference to
// its buffer. Callers must use the returned value and drop acc: the old
// binding may or may not alias the result.
//
// With dbg enabled, the in-place path is cross-checked against the
// value-form result and a disagreement panics with a
// MutationMismatchError.
func AccumAdd(dbg *Debug, acc, t Tangent) Tangent {
	checkOperands("AccumAdd", acc, t)
	ip, ok := t.(*InplaceableThunk)
	if !ok {
		return Add(acc, t)
	}
	dst, ok := inPlaceTarget(acc)
	if !ok {
		return Add(acc, t)
	}
	if dbg.Enabled() {
		expected := Add(dst.Clone(), ip.Unthunk())
		got := ip.AddInto(dst)
		if !ApproxEqual(expected, got, accumCheckTol) {
			panic(&MutationMismatchError{Expected: expected, Got: got})
		}
		return got
	}
	return ip.AddInto(dst)
}

// inPlaceTarget returns the accumulator as a mutable dense tensor, or
// false when mutating it could be observed elsewhere.
func inPlaceTarget(acc Tangent) (*tensor.Dense, bool) {
	d, ok := acc.(*tensor.Dense)
	if !ok || !d.DType().Differentiable() || d.Frozen() || !d.IsUnique() {
		return nil, false
	}
	return d, true
}
