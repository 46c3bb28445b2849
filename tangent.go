// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tangent

import (
	"reflect"

	"github.com/born-ml/tangent/internal/tangent"
)

// Type aliases for the public API

// Tangent is any value used as the derivative of a primal value.
type Tangent = tangent.Tangent

// Deferred is implemented by tangents whose value is computed on
// demand (Thunk, InplaceableThunk).
type Deferred = tangent.Deferred

// Kind classifies a tangent for dispatch and diagnostics.
type Kind = tangent.Kind

// Tangent kinds.
const (
	KindNatural        Kind = tangent.KindNatural
	KindZero           Kind = tangent.KindZero
	KindNoTangent      Kind = tangent.KindNoTangent
	KindThunk          Kind = tangent.KindThunk
	KindNotImplemented Kind = tangent.KindNotImplemented
	KindStructural     Kind = tangent.KindStructural
)

// ZeroTangent is the hard zero of any tangent space.
type ZeroTangent = tangent.ZeroTangent

// NoTangent is the zero of a primal that has no tangent space
// (integers, booleans, strings, enumerations).
type NoTangent = tangent.NoTangent

// NotImplemented marks a derivative that no rule provides. It flows
// through arithmetic, poisoning results, and only raises when consumed.
type NotImplemented = tangent.NotImplemented

// Thunk is a lazily computed tangent.
type Thunk = tangent.Thunk

// InplaceableThunk is a Thunk that can additionally add itself into an
// existing accumulator.
type InplaceableThunk = tangent.InplaceableThunk

// Site records where a thunk was created, for blame when forcing
// panics.
type Site = tangent.Site

// Structural is a field-wise tangent for a composite primal.
type Structural = tangent.Structural

// Backing identifies how a Structural stores its entries.
type Backing = tangent.Backing

// Structural backings.
const (
	FieldsBacking    Backing = tangent.FieldsBacking
	ElementsBacking  Backing = tangent.ElementsBacking
	KeyValuesBacking Backing = tangent.KeyValuesBacking
)

// Fields is the literal form for field-backed structural tangents.
type Fields = tangent.Fields

// KeyValues is the literal form for key-value-backed structural
// tangents.
type KeyValues = tangent.KeyValues

// FieldReconstructor lets a primal type own its reconstruction from
// summed field values, e.g. to restore derived fields or enforce
// invariants AddPrimal cannot know about.
type FieldReconstructor = tangent.FieldReconstructor

// Projector coerces tangents onto the tangent space captured from a
// primal value.
type Projector = tangent.Projector

// Debug enables cross-checking of in-place accumulation.
type Debug = tangent.Debug

// Error sentinels, matched with errors.Is against the typed panic
// values below.
var (
	ErrUsage            = tangent.ErrUsage
	ErrPrimalMismatch   = tangent.ErrPrimalMismatch
	ErrProjection       = tangent.ErrProjection
	ErrMutationMismatch = tangent.ErrMutationMismatch
	ErrExtern           = tangent.ErrExtern
	ErrReconstruct      = tangent.ErrReconstruct
	ErrNotImplemented   = tangent.ErrNotImplemented
)

// Typed error values.
type (
	// UsageError reports operands no operation is defined for.
	UsageError = tangent.UsageError
	// PrimalMismatchError reports a structural tangent applied to the
	// wrong primal type.
	PrimalMismatchError = tangent.PrimalMismatchError
	// ProjectionError reports a tangent that cannot be coerced onto a
	// projector's space.
	ProjectionError = tangent.ProjectionError
	// MutationMismatchError reports an in-place accumulation that
	// disagrees with its value form (debug mode only).
	MutationMismatchError = tangent.MutationMismatchError
	// ExternError reports a sentinel with no external value.
	ExternError = tangent.ExternError
	// ReconstructError reports a failed primal reconstruction.
	ReconstructError = tangent.ReconstructError
	// NotImplementedError reports a NotImplemented marker being
	// consumed.
	NotImplementedError = tangent.NotImplementedError
	// ThunkPanicError wraps a panic raised while forcing a thunk,
	// carrying the thunk's creation site.
	ThunkPanicError = tangent.ThunkPanicError
)

// Classification

// KindOf classifies t.
func KindOf(t Tangent) Kind { return tangent.KindOf(t) }

// IsZeroLike reports whether t is ZeroTangent or NoTangent.
func IsZeroLike(t Tangent) bool { return tangent.IsZeroLike(t) }

// ZeroLike returns the zero of t's tangent space.
func ZeroLike(t Tangent) Tangent { return tangent.ZeroLike(t) }

// Thunks

// NewThunk wraps fn as a lazy tangent. fn runs on every force; callers
// needing the value more than once should keep the forced result.
//
// Example:
//
//	dx := tangent.NewThunk(func() tangent.Tangent {
//	    return tensor.Scale(2, w) // runs only if someone forces dx
//	})
func NewThunk(fn func() Tangent) *Thunk { return tangent.NewThunk(fn) }

// NewInplaceableThunk pairs a value-form thunk with an addInto form
// that accumulates the same tangent into an existing value.
func NewInplaceableThunk(val *Thunk, addInto func(acc Tangent) Tangent) *InplaceableThunk {
	return tangent.NewInplaceableThunk(val, addInto)
}

// Unthunk removes at most one layer of deferral.
func Unthunk(t Tangent) Tangent { return tangent.Unthunk(t) }

// NewNotImplemented returns a missing-derivative marker recording the
// package that declined and a note for diagnostics.
func NewNotImplemented(pkg, note string) *NotImplemented {
	return tangent.NewNotImplemented(pkg, note)
}

// Structural constructors

// For returns a field-backed structural tangent for primal type P.
//
// Example:
//
//	type Affine struct{ W, B float64 }
//	dt := tangent.For[Affine](tangent.Fields{"W": 0.5})
func For[P any](fields Fields) *Structural { return tangent.For[P](fields) }

// ForType is For with the primal type given at run time.
func ForType(primal reflect.Type, fields Fields) *Structural {
	return tangent.ForType(primal, fields)
}

// ElementsFor returns a position-backed structural tangent for primal
// type P.
func ElementsFor[P any](elems ...Tangent) *Structural { return tangent.ElementsFor[P](elems...) }

// ElementsForType is ElementsFor with the primal type given at run
// time.
func ElementsForType(primal reflect.Type, elems ...Tangent) *Structural {
	return tangent.ElementsForType(primal, elems...)
}

// KeyValuesFor returns a key-backed structural tangent for primal type
// P.
func KeyValuesFor[P any](kv KeyValues) *Structural { return tangent.KeyValuesFor[P](kv) }

// KeyValuesForType is KeyValuesFor with the primal type given at run
// time.
func KeyValuesForType(primal reflect.Type, kv KeyValues) *Structural {
	return tangent.KeyValuesForType(primal, kv)
}

// Arithmetic

// Add returns a + b. Total over all tangent kinds: zeros vanish,
// NotImplemented propagates, thunks are forced, structural tangents
// merge field-wise.
func Add(a, b Tangent) Tangent { return tangent.Add(a, b) }

// Sub returns a - b.
func Sub(a, b Tangent) Tangent { return tangent.Sub(a, b) }

// Neg returns -t.
func Neg(t Tangent) Tangent { return tangent.Neg(t) }

// Mul returns a * b, where at least one operand is a scalar. Zeros
// absorb even a NotImplemented factor.
func Mul(a, b Tangent) Tangent { return tangent.Mul(a, b) }

// MulAdd returns x*y + z.
func MulAdd(x, y, z Tangent) Tangent { return tangent.MulAdd(x, y, z) }

// Dot returns the inner product of a and b, conjugating a.
func Dot(a, b Tangent) complex128 { return tangent.Dot(a, b) }

// Conj returns the complex conjugate of t.
func Conj(t Tangent) Tangent { return tangent.Conj(t) }

// Transpose returns tᵀ for matrix-shaped tangents.
func Transpose(t Tangent) Tangent { return tangent.Transpose(t) }

// Adjoint returns the conjugate transpose of t.
func Adjoint(t Tangent) Tangent { return tangent.Adjoint(t) }

// Comparison

// Equal reports whether a and b are the same tangent: same kind, same
// value. Thunks are forced; a sentinel never equals a natural value.
func Equal(a, b Tangent) bool { return tangent.Equal(a, b) }

// ApproxEqual is Equal with an absolute tolerance on numeric payloads.
func ApproxEqual(a, b Tangent, tol float64) bool { return tangent.ApproxEqual(a, b, tol) }

// Projection

// ProjectTo captures the tangent space of primal and returns its
// projector.
//
// Example:
//
//	p := tangent.ProjectTo(weights) // *tensor.Dense, float32
//	dw := p.Apply(candidate)        // re-typed, reshaped, coerced
func ProjectTo(primal any) *Projector { return tangent.ProjectTo(primal) }

// Accumulation

// AccumAdd returns acc + t, mutating acc's buffer when t is an
// InplaceableThunk and acc is a dense value the caller provably owns.
// Passing a Debug with checks enabled cross-validates every in-place
// addition against its value form.
func AccumAdd(dbg *Debug, acc, t Tangent) Tangent { return tangent.AccumAdd(dbg, acc, t) }

// NewDebug returns a Debug with checks disabled.
func NewDebug() *Debug { return tangent.NewDebug() }

// Boundaries

// AddPrimal returns primal + t as a new primal value, reconstructing
// composite primals field by field. Panics ReconstructError when the
// primal cannot absorb t.
func AddPrimal(primal any, t Tangent) any { return tangent.AddPrimal(primal, t) }

// Extern converts t to a plain value for code outside the algebra.
func Extern(t Tangent) any { return tangent.Extern(t) }
