package tangent

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/tangent/internal/tensor"
)

func denseOf(t *testing.T, vals []float64, shape tensor.Shape) *tensor.Dense {
	t.Helper()
	d, err := tensor.FromSlice(vals, shape)
	require.NoError(t, err)
	return d
}

func TestAddZeroIdentity(t *testing.T) {
	assert.Equal(t, 2.5, Add(ZeroTangent{}, 2.5))
	assert.Equal(t, 2.5, Add(2.5, ZeroTangent{}))
	assert.Equal(t, 2.5, Add(NoTangent{}, 2.5))
	assert.Equal(t, 2.5, Add(2.5, NoTangent{}))

	// Two zero-likes: the left one wins, so the weaker claim survives a
	// ZeroTangent + NoTangent sum in either order.
	assert.Equal(t, Tangent(ZeroTangent{}), Add(ZeroTangent{}, NoTangent{}))
	assert.Equal(t, Tangent(NoTangent{}), Add(NoTangent{}, ZeroTangent{}))
	assert.Equal(t, Tangent(ZeroTangent{}), Add(ZeroTangent{}, ZeroTangent{}))
}

func TestAddScalars(t *testing.T) {
	assert.Equal(t, 5.75, Add(2.5, 3.25))
	assert.Equal(t, float32(4), Add(float32(1.5), float32(2.5)))
	assert.Equal(t, 3.75, Add(float32(1.5), 2.25), "widths promote to float64")
	assert.Equal(t, 5, Add(2, 3))
	assert.Equal(t, complex(3, 4), Add(complex(1, 1), complex(2, 3)))
	assert.Equal(t, complex(3.5, 1), Add(1.5, complex(2, 1)), "real + complex promotes")
}

func TestAddSlices(t *testing.T) {
	got := Add([]float64{1, 2, 3}, []float64{10, 20, 30})
	assert.Equal(t, []float64{11, 22, 33}, got)

	mixed := Add([]float64{1, 2}, []complex128{1i, 2i})
	assert.Equal(t, []complex128{1 + 1i, 2 + 2i}, mixed)

	assertPanicsIs(t, tensor.ErrShape, func() { Add([]float64{1}, []float64{1, 2}) })
}

func TestAddDense(t *testing.T) {
	a := denseOf(t, []float64{1, 2, 3, 4}, tensor.Shape{2, 2})
	b := denseOf(t, []float64{10, 20, 30, 40}, tensor.Shape{2, 2})

	got := Add(a, b).(*tensor.Dense)
	assert.Equal(t, []float64{11, 22, 33, 44}, got.AsFloat64())

	// Operands are never mutated.
	assert.Equal(t, []float64{1, 2, 3, 4}, a.AsFloat64())
}

func TestAddStructuredStaysStructured(t *testing.T) {
	d1, err := tensor.NewDiagonal(denseOf(t, []float64{1, 2}, tensor.Shape{2}))
	require.NoError(t, err)
	d2, err := tensor.NewDiagonal(denseOf(t, []float64{10, 20}, tensor.Shape{2}))
	require.NoError(t, err)

	got := Add(d1, d2)
	diag, ok := got.(*tensor.Diagonal)
	require.True(t, ok, "diagonal + diagonal should stay diagonal")
	assert.Equal(t, []float64{11, 22}, diag.Diag().AsFloat64())

	// Mixing families falls back to dense.
	full := denseOf(t, []float64{1, 1, 1, 1}, tensor.Shape{2, 2})
	mixed := Add(d1, full)
	dense, ok := mixed.(*tensor.Dense)
	require.True(t, ok)
	assert.Equal(t, []float64{2, 1, 1, 3}, dense.AsFloat64())
}

func TestAddNotImplementedPropagates(t *testing.T) {
	ni := NewNotImplemented("rules", "todo")
	assert.Equal(t, Tangent(ni), Add(ni, 2.5))
	assert.Equal(t, Tangent(ni), Add(2.5, ni))

	other := NewNotImplemented("rules", "also todo")
	assert.Equal(t, Tangent(ni), Add(ni, other), "left marker wins")

	// Zero-likes are checked first: zero + NI is still NI, but that comes
	// from the identity rule, not propagation.
	assert.Equal(t, Tangent(ni), Add(ZeroTangent{}, ni))
}

func TestAddForcesThunks(t *testing.T) {
	calls := 0
	th := NewThunk(func() Tangent {
		calls++
		return 2.0
	})

	assert.Equal(t, 5.0, Add(th, 3.0))
	assert.Equal(t, 1, calls)

	assert.Equal(t, 5.0, Add(3.0, th))
	assert.Equal(t, 2, calls)
}

func TestAddZeroDoesNotForce(t *testing.T) {
	calls := 0
	th := NewThunk(func() Tangent {
		calls++
		return 2.0
	})

	got := Add(ZeroTangent{}, th)
	assert.Equal(t, 0, calls, "zero short-circuits before forcing")
	assert.Same(t, th, got)
}

func TestSub(t *testing.T) {
	assert.Equal(t, 2.0, Sub(5.0, 3.0))
	assert.Equal(t, 2.5, Sub(2.5, ZeroTangent{}))
	assert.Equal(t, -3.0, Sub(ZeroTangent{}, 3.0))
	assert.Equal(t, []float64{9, 18}, Sub([]float64{10, 20}, []float64{1, 2}))

	ni := NewNotImplemented("rules", "todo")
	assertPanicsIs(t, ErrNotImplemented, func() { Sub(ni, 1.0) })
	assertPanicsIs(t, ErrNotImplemented, func() { Sub(1.0, ni) })
}

func TestNeg(t *testing.T) {
	assert.Equal(t, -2.5, Neg(2.5))
	assert.Equal(t, float32(-1.5), Neg(float32(1.5)), "negation preserves width")
	assert.Equal(t, Tangent(ZeroTangent{}), Neg(ZeroTangent{}))
	assert.Equal(t, Tangent(NoTangent{}), Neg(NoTangent{}))

	st := Neg(For[vec2](Fields{"X": 2.0}))
	assert.Equal(t, -2.0, st.(*Structural).Field("X"))

	deferred := Neg(NewThunk(func() Tangent { return 4.0 }))
	require.IsType(t, &Thunk{}, deferred, "negation stays lazy")
	assert.Equal(t, -4.0, Unthunk(deferred))

	assertPanicsIs(t, ErrNotImplemented, func() { Neg(NewNotImplemented("rules", "todo")) })
}

func TestMulZeroAbsorbs(t *testing.T) {
	assert.Equal(t, Tangent(ZeroTangent{}), Mul(ZeroTangent{}, 3.0))
	assert.Equal(t, Tangent(NoTangent{}), Mul(3.0, NoTangent{}))

	// Absorption beats propagation: a missing derivative times a hard zero
	// is a hard zero.
	ni := NewNotImplemented("rules", "todo")
	assert.Equal(t, Tangent(ZeroTangent{}), Mul(ni, ZeroTangent{}))
	assert.Equal(t, Tangent(ZeroTangent{}), Mul(ZeroTangent{}, ni))
}

func TestMulNotImplementedPropagates(t *testing.T) {
	ni := NewNotImplemented("rules", "todo")
	assert.Equal(t, Tangent(ni), Mul(ni, 2.0))
	assert.Equal(t, Tangent(ni), Mul(2.0, ni))
}

func TestMulScalarsSlicesDense(t *testing.T) {
	assert.Equal(t, 6.0, Mul(2.0, 3.0))
	assert.Equal(t, 2.0, Mul(0.5, 4), "fractional scaling of an int leaves the lattice")
	assert.Equal(t, complex(0, 2), Mul(1i, 2.0))

	assert.Equal(t, []float64{2, 4}, Mul(2.0, []float64{1, 2}))
	assert.Equal(t, []float64{10, 40}, Mul([]float64{1, 2}, []float64{10, 20}), "slices multiply elementwise")

	a := denseOf(t, []float64{1, 2}, tensor.Shape{2})
	b := denseOf(t, []float64{3, 4}, tensor.Shape{2})
	got := Mul(a, b).(*tensor.Dense)
	assert.Equal(t, []float64{3, 8}, got.AsFloat64())
}

func TestMulForcesThunks(t *testing.T) {
	th := NewThunk(func() Tangent { return 3.0 })
	assert.Equal(t, 6.0, Mul(th, 2.0))
}

func TestMulStructuralScales(t *testing.T) {
	st := For[vec2](Fields{"X": 3.0, "Y": []float64{1, 2}})

	got := Mul(2.0, st).(*Structural)
	assert.Equal(t, 6.0, got.Field("X"))
	assert.Equal(t, []float64{2, 4}, got.Field("Y"))

	// Scaling from the right works too.
	got = Mul(st, 2.0).(*Structural)
	assert.Equal(t, 6.0, got.Field("X"))

	other := For[vec2](Fields{"X": 1.0})
	assertPanicsIs(t, ErrUsage, func() { Mul(st, other) })
}

func TestMulAdd(t *testing.T) {
	assert.Equal(t, 10.0, MulAdd(2.0, 3.0, 4.0))
	assert.Equal(t, 4.0, MulAdd(ZeroTangent{}, 3.0, 4.0))

	// muladd supports NotImplemented by propagation rather than raising.
	ni := NewNotImplemented("rules", "todo")
	assert.Equal(t, Tangent(ni), MulAdd(ni, 3.0, 4.0))
	assert.Equal(t, 4.0, MulAdd(ni, ZeroTangent{}, 4.0), "zero absorbs the poisoned factor")
}

func TestDot(t *testing.T) {
	assert.Equal(t, complex(6, 0), Dot(2.0, 3.0))
	assert.Equal(t, complex(0, 0), Dot(ZeroTangent{}, 3.0))
	assert.Equal(t, complex(0, 0), Dot(3.0, NoTangent{}))

	assert.Equal(t, complex(32, 0), Dot([]float64{1, 2, 3}, []float64{4, 5, 6}))

	// The left operand is conjugated: <i, i> = 1, not -1.
	assert.Equal(t, complex(1, 0), Dot([]complex128{1i}, []complex128{1i}))

	a := denseOf(t, []float64{1, 2}, tensor.Shape{2})
	b := denseOf(t, []float64{3, 4}, tensor.Shape{2})
	assert.Equal(t, complex(11, 0), Dot(a, b))

	th := NewThunk(func() Tangent { return []float64{1, 2, 3} })
	assert.Equal(t, complex(32, 0), Dot(th, []float64{4, 5, 6}))

	ni := NewNotImplemented("rules", "todo")
	assertPanicsIs(t, ErrNotImplemented, func() { Dot(ni, 1.0) })
	assertPanicsIs(t, ErrUsage, func() { Dot(2.0, []float64{1}) })
}

func TestDotConjugateSymmetry(t *testing.T) {
	a := []complex128{2 + 1i, 1 - 1i}
	b := []complex128{1 + 3i, 2i}

	ab := Dot(a, b)
	ba := Dot(b, a)
	assert.Equal(t, complex(real(ab), -imag(ab)), ba)
}

func TestConj(t *testing.T) {
	assert.Equal(t, complex(2, -3), Conj(complex(2, 3)))
	assert.Equal(t, 2.5, Conj(2.5), "real scalars are self-conjugate")
	assert.Equal(t, Tangent(ZeroTangent{}), Conj(ZeroTangent{}))

	// conj is a supported operation for a missing derivative.
	ni := NewNotImplemented("rules", "todo")
	assert.Equal(t, Tangent(ni), Conj(ni))

	st := Conj(For[vec2](Fields{"X": complex(1, 2)})).(*Structural)
	assert.Equal(t, complex(1, -2), st.Field("X"))
}

func TestConjStaysLazy(t *testing.T) {
	calls := 0
	th := NewThunk(func() Tangent {
		calls++
		return complex(1, 2)
	})

	deferred := Conj(th)
	require.IsType(t, &Thunk{}, deferred)
	assert.Equal(t, 0, calls, "conj must not force")
	assert.Equal(t, complex(1, -2), Unthunk(deferred))
	assert.Equal(t, 1, calls)
}

func TestTranspose(t *testing.T) {
	d := denseOf(t, []float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	got := Transpose(d).(*tensor.Dense)
	assert.Equal(t, tensor.Shape{3, 2}, got.Shape())
	assert.Equal(t, []float64{1, 4, 2, 5, 3, 6}, got.AsFloat64())

	assert.Equal(t, 2.5, Transpose(2.5), "scalars are their own transpose")
	assert.Equal(t, Tangent(ZeroTangent{}), Transpose(ZeroTangent{}))

	assertPanicsIs(t, ErrNotImplemented, func() { Transpose(NewNotImplemented("rules", "todo")) })
	assertPanicsIs(t, ErrUsage, func() { Transpose(For[vec2](Fields{"X": 1.0})) })
	assertPanicsIs(t, ErrUsage, func() { Transpose([]float64{1, 2}) })
}

func TestAdjoint(t *testing.T) {
	d, err := tensor.FromSlice([]complex128{1 + 1i, 2, 3, 4 - 2i}, tensor.Shape{2, 2})
	require.NoError(t, err)

	got := Adjoint(d).(*tensor.Dense)
	assert.Equal(t, []complex128{1 - 1i, 3, 2, 4 + 2i}, got.AsComplex128())

	assert.Equal(t, Tangent(NoTangent{}), Adjoint(NoTangent{}))
	assertPanicsIs(t, ErrNotImplemented, func() { Adjoint(NewNotImplemented("rules", "todo")) })
}

// kindReps builds one fresh representative per kind. Thunks force to a
// plain scalar, so their row follows the natural row after one level of
// indirection.
func kindReps() map[Kind]func() Tangent {
	return map[Kind]func() Tangent{
		KindNatural:        func() Tangent { return 2.0 },
		KindZero:           func() Tangent { return ZeroTangent{} },
		KindNoTangent:      func() Tangent { return NoTangent{} },
		KindThunk:          func() Tangent { return NewThunk(func() Tangent { return 2.0 }) },
		KindNotImplemented: func() Tangent { return NewNotImplemented("rules", "todo") },
		KindStructural:     func() Tangent { return For[vec2](Fields{"X": 1.0}) },
	}
}

// TestAddCoversEveryKindPair enumerates all operand kind pairs: each one
// must either produce a value or raise the documented usage error. Nothing
// may fall through to an undefined combination.
func TestAddCoversEveryKindPair(t *testing.T) {
	reps := kindReps()

	// Adding a structural to a natural (or to a thunk forcing to one) is
	// the one undefined pairing: 2.0 is not a vec2.
	wantUsage := map[string]bool{
		"structural+natural": true,
		"natural+structural": true,
		"structural+thunk":   true,
		"thunk+structural":   true,
	}

	for ka, mka := range reps {
		for kb, mkb := range reps {
			name := fmt.Sprintf("%s+%s", ka, kb)
			t.Run(name, func(t *testing.T) {
				var res Tangent
				err := panicErr(func() { res = Add(mka(), mkb()) })
				if wantUsage[name] {
					assert.ErrorIs(t, err, ErrUsage)
					return
				}
				require.NoError(t, err, "pair %s must be defined", name)
				assert.NotNil(t, res)
			})
		}
	}
}

// TestMulCoversEveryKindPair is the multiplication half of the dispatch
// totality check. The natural representative is a scalar, so structural
// operands scale rather than raise; only two structurals have no product.
func TestMulCoversEveryKindPair(t *testing.T) {
	reps := kindReps()

	wantUsage := map[string]bool{
		"structural*structural": true,
	}

	for ka, mka := range reps {
		for kb, mkb := range reps {
			name := fmt.Sprintf("%s*%s", ka, kb)
			t.Run(name, func(t *testing.T) {
				var res Tangent
				err := panicErr(func() { res = Mul(mka(), mkb()) })
				if wantUsage[name] {
					assert.ErrorIs(t, err, ErrUsage)
					return
				}
				require.NoError(t, err, "pair %s must be defined", name)
				assert.NotNil(t, res)
			})
		}
	}
}

// TestVectorSpaceLaws spot-checks the algebraic identities the rest of the
// system leans on: commutativity and associativity of +, distributivity of
// scaling, and the zero laws, across representation mixes.
func TestVectorSpaceLaws(t *testing.T) {
	values := []Tangent{
		2.5,
		[]float64{1, 2},
		For[vec2](Fields{"X": 1.0, "Y": []float64{3, 4}}),
	}

	for i, x := range values {
		t.Run(fmt.Sprintf("value_%d", i), func(t *testing.T) {
			assert.True(t, Equal(Add(x, ZeroTangent{}), x), "x + 0 == x")
			assert.True(t, Equal(Mul(1.0, x), x), "1 * x == x")
			assert.True(t, Equal(
				Add(Mul(2.0, x), Mul(3.0, x)),
				Mul(5.0, x),
			), "(2+3)x == 2x + 3x")
		})
	}

	a := []float64{1, 2}
	b := []float64{10, 20}
	c := []float64{100, 200}
	assert.True(t, Equal(Add(a, b), Add(b, a)), "commutativity")
	assert.True(t, Equal(Add(Add(a, b), c), Add(a, Add(b, c))), "associativity")
}
