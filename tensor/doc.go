// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the array payloads carried by tangent values.
//
// # Overview
//
// Dense is the workhorse: a shaped, dtype-tagged buffer that reference
// counts its storage so accumulation can mutate a buffer it provably
// owns. Around it sit structured matrices that store only their
// defining entries (Diagonal, Symmetric, Triangular) and sparse
// containers that store an index pattern (SparseVector, SparseCSC).
//
// # Basic Usage
//
//	import "github.com/born-ml/tangent/tensor"
//
//	x, _ := tensor.FromSlice([]float64{1, 2, 3, 4}, tensor.Shape{2, 2})
//	y := tensor.Ones(tensor.Shape{2, 2}, tensor.Float64)
//	z := tensor.Add(x, y)
//
// # Supported Data Types
//
//   - float32, float64 (floating-point)
//   - complex64, complex128 (complex)
//   - int32, int64 (signed integers; no tangent space)
//   - uint8 (unsigned integers; no tangent space)
//   - bool (masks; no tangent space)
//
// Kernels promote mixed dtypes (Float32+Float64 → Float64,
// Float64+Complex64 → Complex128) and panic DTypeError on combinations
// with no common differentiable type.
package tensor
