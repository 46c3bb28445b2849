// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/tangent/internal/tensor"
)

// Type aliases for the public API

// Shape represents the dimensions of an array value.
// Example: Shape{2, 3} is a 2×3 matrix.
type Shape = tensor.Shape

// DataType tags the element type of a Dense buffer.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32    DataType = tensor.Float32
	Float64    DataType = tensor.Float64
	Complex64  DataType = tensor.Complex64
	Complex128 DataType = tensor.Complex128
	Int32      DataType = tensor.Int32
	Int64      DataType = tensor.Int64
	Uint8      DataType = tensor.Uint8
	Bool       DataType = tensor.Bool
)

// Elem constrains the Go element types FromSlice accepts.
type Elem = tensor.Elem

// Dense is a shaped buffer of one of the supported dtypes, with
// reference-counted storage.
type Dense = tensor.Dense

// Uplo selects the stored triangle of a Symmetric or Triangular
// matrix.
type Uplo = tensor.Uplo

// Triangle constants.
const (
	Upper Uplo = tensor.Upper
	Lower Uplo = tensor.Lower
)

// Diagonal is a square matrix storing only its diagonal.
type Diagonal = tensor.Diagonal

// Symmetric is a square matrix storing one triangle.
type Symmetric = tensor.Symmetric

// Triangular is a square matrix whose other triangle is zero.
type Triangular = tensor.Triangular

// SparseVector stores values at a fixed index pattern.
type SparseVector = tensor.SparseVector

// SparseCSC is a sparse matrix in compressed sparse column form.
type SparseCSC = tensor.SparseCSC

// Error sentinels.
var (
	ErrShape     = tensor.ErrShape
	ErrDType     = tensor.ErrDType
	ErrStructure = tensor.ErrStructure
)

// Typed error values.
type (
	// ShapeError reports mismatched or invalid dimensions.
	ShapeError = tensor.ShapeError
	// DTypeError reports element types that do not combine or convert.
	DTypeError = tensor.DTypeError
	// StructureError reports structured operands whose storage layouts
	// do not line up.
	StructureError = tensor.StructureError
)

// Creation functions

// NewDense returns a zero-filled buffer with the given shape and
// dtype.
func NewDense(shape Shape, dtype DataType) (*Dense, error) {
	return tensor.NewDense(shape, dtype)
}

// FromSlice copies a Go slice into a Dense of the matching dtype.
//
// Example:
//
//	x, err := tensor.FromSlice([]float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
func FromSlice[T Elem](data []T, shape Shape) (*Dense, error) {
	return tensor.FromSlice(data, shape)
}

// Zeros returns a zero-filled Dense. Panics on an invalid shape.
func Zeros(shape Shape, dtype DataType) *Dense {
	return tensor.Zeros(shape, dtype)
}

// ZerosLike returns a zero-filled Dense with d's shape and dtype.
func ZerosLike(d *Dense) *Dense {
	return tensor.ZerosLike(d)
}

// Ones returns a one-filled Dense.
func Ones(shape Shape, dtype DataType) *Dense {
	return tensor.Ones(shape, dtype)
}

// Eye returns the n×n identity matrix.
func Eye(n int, dtype DataType) *Dense {
	return tensor.Eye(n, dtype)
}

// Promote returns the common dtype two operands combine at, and
// whether one exists.
func Promote(a, b DataType) (DataType, bool) {
	return tensor.Promote(a, b)
}

// Kernels

// Add returns a + b element-wise, promoting dtypes.
func Add(a, b *Dense) *Dense { return tensor.Add(a, b) }

// AddInto accumulates src into dst's buffer. dst must be unshared,
// unfrozen, and of a dtype src converts to without widening.
func AddInto(dst, src *Dense) { tensor.AddInto(dst, src) }

// Scale returns alpha * x. A real alpha preserves x's dtype.
func Scale(alpha complex128, x *Dense) *Dense { return tensor.Scale(alpha, x) }

// Hadamard returns the element-wise product.
func Hadamard(a, b *Dense) *Dense { return tensor.Hadamard(a, b) }

// Dot returns the inner product, conjugating a.
func Dot(a, b *Dense) complex128 { return tensor.Dot(a, b) }

// Conj returns the element-wise complex conjugate. Real dtypes alias
// the input.
func Conj(x *Dense) *Dense { return tensor.Conj(x) }

// Transpose2D returns the transpose of a rank-2 Dense.
func Transpose2D(x *Dense) *Dense { return tensor.Transpose2D(x) }

// Structured matrices

// NewDiagonal wraps a rank-1 Dense as the diagonal of a square matrix.
func NewDiagonal(diag *Dense) (*Diagonal, error) {
	return tensor.NewDiagonal(diag)
}

// DiagFromDense extracts the diagonal of a square Dense. Panics on a
// non-square input.
func DiagFromDense(d *Dense) *Diagonal {
	return tensor.DiagFromDense(d)
}

// NewSymmetric wraps a square Dense, reading only the uplo triangle.
func NewSymmetric(data *Dense, uplo Uplo) (*Symmetric, error) {
	return tensor.NewSymmetric(data, uplo)
}

// SymmetrizeDense returns (d + dᵀ)/2 as a Symmetric.
func SymmetrizeDense(d *Dense) *Symmetric {
	return tensor.SymmetrizeDense(d)
}

// NewTriangular wraps a square Dense, reading only the uplo triangle.
func NewTriangular(data *Dense, uplo Uplo) (*Triangular, error) {
	return tensor.NewTriangular(data, uplo)
}

// TriangularFromDense zeroes the off-triangle of a square Dense.
func TriangularFromDense(d *Dense, uplo Uplo) *Triangular {
	return tensor.TriangularFromDense(d, uplo)
}

// Sparse containers

// NewSparseVector builds a length-n sparse vector with values val at
// strictly increasing indices ind.
func NewSparseVector(n int, ind []int, val *Dense) (*SparseVector, error) {
	return tensor.NewSparseVector(n, ind, val)
}

// NewSparseCSC builds a rows×cols sparse matrix in compressed sparse
// column form.
func NewSparseCSC(rows, cols int, colPtr, rowIdx []int, val *Dense) (*SparseCSC, error) {
	return tensor.NewSparseCSC(rows, cols, colPtr, rowIdx, val)
}

// CSCFromDense compresses a rank-2 Dense, keeping its nonzero entries.
func CSCFromDense(d *Dense) *SparseCSC {
	return tensor.CSCFromDense(d)
}
