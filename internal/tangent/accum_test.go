package tangent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/tangent/internal/tensor"
)

// inplaceAdding builds an InplaceableThunk whose value form and in-place
// form both add vals, as a correct rule would.
func inplaceAdding(t *testing.T, vals []float64) *InplaceableThunk {
	t.Helper()
	return NewInplaceableThunk(
		NewThunk(func() Tangent { return denseOf(t, vals, tensor.Shape{len(vals)}) }),
		func(acc Tangent) Tangent {
			d := acc.(*tensor.Dense)
			tensor.AddInto(d, denseOf(t, vals, tensor.Shape{len(vals)}))
			return d
		},
	)
}

// inplaceLying builds an InplaceableThunk whose in-place form adds twice
// what its value form claims.
func inplaceLying(t *testing.T, vals []float64) *InplaceableThunk {
	t.Helper()
	doubled := make([]float64, len(vals))
	for i, v := range vals {
		doubled[i] = 2 * v
	}
	return NewInplaceableThunk(
		NewThunk(func() Tangent { return denseOf(t, vals, tensor.Shape{len(vals)}) }),
		func(acc Tangent) Tangent {
			d := acc.(*tensor.Dense)
			tensor.AddInto(d, denseOf(t, doubled, tensor.Shape{len(doubled)}))
			return d
		},
	)
}

func TestAccumAddPlainTangents(t *testing.T) {
	assert.Equal(t, 5.0, AccumAdd(nil, 2.0, 3.0))
	assert.Equal(t, 3.0, AccumAdd(nil, ZeroTangent{}, 3.0))
}

func TestAccumAddMutatesInPlace(t *testing.T) {
	acc := denseOf(t, []float64{1, 2, 3}, tensor.Shape{3})
	ip := inplaceAdding(t, []float64{10, 20, 30})

	got := AccumAdd(nil, acc, ip)
	gd, ok := got.(*tensor.Dense)
	require.True(t, ok)
	assert.Equal(t, []float64{11, 22, 33}, gd.AsFloat64())
	assert.Same(t, &acc.AsFloat64()[0], &gd.AsFloat64()[0], "the accumulator buffer is reused")
}

func TestAccumAddSharedBufferFallsBack(t *testing.T) {
	acc := denseOf(t, []float64{1, 2, 3}, tensor.Shape{3})
	view := acc.View()
	defer view.Release()

	got := AccumAdd(nil, acc, inplaceAdding(t, []float64{10, 20, 30}))
	gd := got.(*tensor.Dense)
	assert.Equal(t, []float64{11, 22, 33}, gd.AsFloat64())
	assert.Equal(t, []float64{1, 2, 3}, acc.AsFloat64(), "a shared accumulator is never mutated")
	assert.NotSame(t, &acc.AsFloat64()[0], &gd.AsFloat64()[0])
}

func TestAccumAddFrozenFallsBack(t *testing.T) {
	acc := denseOf(t, []float64{1, 2}, tensor.Shape{2}).Freeze()

	got := AccumAdd(nil, acc, inplaceAdding(t, []float64{10, 20}))
	gd := got.(*tensor.Dense)
	assert.Equal(t, []float64{11, 22}, gd.AsFloat64())
	assert.Equal(t, []float64{1, 2}, acc.AsFloat64())
}

func TestAccumAddNonDenseAccumulator(t *testing.T) {
	// A zero-like accumulator cannot be mutated; the thunk flows through
	// unforced, exactly as a plain Add would leave it.
	ip := inplaceAdding(t, []float64{1})
	got := AccumAdd(nil, ZeroTangent{}, ip)
	assert.Same(t, ip, got)
}

func TestAccumAddDebugAcceptsHonestThunk(t *testing.T) {
	dbg := NewDebug().Enable()
	acc := denseOf(t, []float64{1, 2, 3}, tensor.Shape{3})

	got := AccumAdd(dbg, acc, inplaceAdding(t, []float64{10, 20, 30}))
	gd := got.(*tensor.Dense)
	assert.Equal(t, []float64{11, 22, 33}, gd.AsFloat64())
	assert.Same(t, &acc.AsFloat64()[0], &gd.AsFloat64()[0], "debug checks keep the in-place path")
}

func TestAccumAddDebugCatchesMismatch(t *testing.T) {
	dbg := NewDebug().Enable()
	acc := denseOf(t, []float64{1, 2, 3}, tensor.Shape{3})

	assertPanicsIs(t, ErrMutationMismatch, func() {
		AccumAdd(dbg, acc, inplaceLying(t, []float64{10, 20, 30}))
	})
}

func TestAccumAddDebugOffTrustsThunk(t *testing.T) {
	acc := denseOf(t, []float64{1, 2, 3}, tensor.Shape{3})

	// Without debug the inconsistency goes undetected; this is the cost
	// the check exists to surface.
	got := AccumAdd(nil, acc, inplaceLying(t, []float64{10, 20, 30}))
	assert.Equal(t, []float64{21, 42, 63}, got.(*tensor.Dense).AsFloat64())
}

func TestDebugToggle(t *testing.T) {
	var nilDbg *Debug
	assert.False(t, nilDbg.Enabled(), "nil means off")

	dbg := NewDebug()
	assert.False(t, dbg.Enabled())
	assert.True(t, dbg.Enable().Enabled())
	assert.False(t, dbg.Disable().Enabled())
}
