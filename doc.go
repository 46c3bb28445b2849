// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tangent provides the derivative-value algebra that
// differentiation rules and engines program against.
//
// # Overview
//
// A tangent is any Go value standing in for "the derivative of a primal
// value". Besides natural payloads (scalars, slices, tensor values),
// the algebra defines a small set of special kinds:
//   - ZeroTangent: a hard zero of any tangent space
//   - NoTangent: the zero of a primal that has no tangent space
//   - Thunk / InplaceableThunk: lazily computed tangents
//   - NotImplemented: a missing-derivative marker that poisons results
//   - Structural: a field-wise tangent for composite primals
//
// Arithmetic (Add, Mul, Dot, Conj, ...) is total over all kinds:
// sentinels absorb or pass through, thunks are forced on demand, and
// structural tangents combine field-wise with absent fields reading as
// zero.
//
// # Basic Usage
//
//	import "github.com/born-ml/tangent"
//
//	// Rules return cheap sentinels and lazy work.
//	dx := tangent.NewThunk(func() tangent.Tangent {
//	    return expensiveGradient()
//	})
//	acc := tangent.Add(tangent.ZeroTangent{}, dx) // still lazy
//
//	// Engines force and consume at the boundary.
//	grad := tangent.Extern(acc)
//
// # Projection
//
// ProjectTo(primal) captures the tangent space of a primal value and
// returns a projector that coerces any incoming tangent onto it:
// re-typing scalars, reshaping and converting dense arrays, and
// discarding components outside structured subspaces (off-diagonal
// entries for a Diagonal primal, the unstored triangle for a
// Triangular one).
//
// # Accumulation
//
// AccumAdd adds a tangent into an accumulator, mutating the
// accumulator's buffer when the tangent is an InplaceableThunk and the
// buffer is provably unshared. A Debug value cross-checks every
// in-place addition against its value form and panics
// MutationMismatchError on disagreement.
package tangent
