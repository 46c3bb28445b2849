// Sparse containers: a compressed vector and a compressed-sparse-column
// matrix. Projection onto a sparse primal keeps the primal's stored
// pattern, so these types carry explicit index structure rather than
// canonicalizing zeros away.

package tensor

import "fmt"

// SparseVector is a length-n vector storing only entries at its stored
// indices. Indices are strictly increasing. A stored entry may hold an
// explicit zero; the pattern is part of the value.
type SparseVector struct {
	n   int
	ind []int
	val *Dense
}

// NewSparseVector builds a sparse vector of logical length n from stored
// indices and their values. ind must be strictly increasing within [0, n)
// and val must be rank-1 with one entry per index.
func NewSparseVector(n int, ind []int, val *Dense) (*SparseVector, error) {
	if val == nil {
		return nil, fmt.Errorf("tensor: NewSparseVector: nil values")
	}
	if n < 0 {
		return nil, fmt.Errorf("tensor: NewSparseVector: negative length %d: %w", n, ErrShape)
	}
	if len(val.Shape()) != 1 || val.NumElements() != len(ind) {
		return nil, fmt.Errorf("tensor: NewSparseVector: %d indices but values of shape %s: %w", len(ind), val.Shape(), ErrShape)
	}
	if val.DType() == Bool {
		return nil, fmt.Errorf("tensor: NewSparseVector: %w: bool entries", ErrDType)
	}
	for i, idx := range ind {
		if idx < 0 || idx >= n {
			return nil, fmt.Errorf("tensor: NewSparseVector: index %d out of range [0, %d): %w", idx, n, ErrShape)
		}
		if i > 0 && ind[i-1] >= idx {
			return nil, fmt.Errorf("tensor: NewSparseVector: indices not strictly increasing at %d: %w", i, ErrShape)
		}
	}
	own := make([]int, len(ind))
	copy(own, ind)
	return &SparseVector{n: n, ind: own, val: val}, nil
}

// N returns the logical vector length.
func (v *SparseVector) N() int { return v.n }

// NNZ returns the number of stored entries.
func (v *SparseVector) NNZ() int { return len(v.ind) }

// Shape returns the logical rank-1 shape.
func (v *SparseVector) Shape() Shape { return Shape{v.n} }

// DType returns the element type of the stored values.
func (v *SparseVector) DType() DataType { return v.val.DType() }

// Ind returns the stored indices. Callers must not mutate them.
func (v *SparseVector) Ind() []int { return v.ind }

// Val returns the stored values. Callers must not mutate them.
func (v *SparseVector) Val() *Dense { return v.val }

// Dense scatters the stored entries into a full vector.
func (v *SparseVector) Dense() *Dense {
	out := Zeros(Shape{v.n}, v.DType())
	for i, idx := range v.ind {
		out.setElement(idx, v.val.element(i))
	}
	return out
}

// GatherFrom returns a sparse vector with v's pattern and values read from
// the dense vector d. Entries of d outside the pattern are discarded.
func (v *SparseVector) GatherFrom(d *Dense) *SparseVector {
	if len(d.shape) != 1 || d.shape[0] != v.n {
		panic(&ShapeError{Op: "GatherFrom", A: d.shape, B: v.Shape()})
	}
	val := Zeros(Shape{len(v.ind)}, d.dtype)
	for i, idx := range v.ind {
		val.setElement(i, d.element(idx))
	}
	out, err := NewSparseVector(v.n, v.ind, val)
	if err != nil {
		panic(err)
	}
	return out
}

// Scale returns alpha * v with the pattern preserved.
func (v *SparseVector) Scale(alpha complex128) *SparseVector {
	return &SparseVector{n: v.n, ind: v.ind, val: Scale(alpha, v.val)}
}

// Conj returns the complex conjugate with the pattern preserved.
func (v *SparseVector) Conj() *SparseVector {
	return &SparseVector{n: v.n, ind: v.ind, val: Conj(v.val)}
}

// AddSame returns v + other as the union of the two patterns, adding
// values where indices coincide.
func (v *SparseVector) AddSame(other *SparseVector) *SparseVector {
	if v.n != other.n {
		panic(&ShapeError{Op: "AddSame", A: v.Shape(), B: other.Shape()})
	}
	dt, ok := Promote(v.DType(), other.DType())
	if !ok {
		panic(&DTypeError{Op: "AddSame", A: v.DType(), B: other.DType()})
	}
	ind, vals := mergeSparse(v.ind, v.val, other.ind, other.val)
	val := Zeros(Shape{len(ind)}, dt)
	for i, x := range vals {
		val.setElement(i, x)
	}
	return &SparseVector{n: v.n, ind: ind, val: val}
}

// Equal reports exact equality of length, pattern, dtype and values.
// Patterns differing only by explicit zeros compare unequal.
func (v *SparseVector) Equal(other *SparseVector) bool {
	if v.n != other.n || len(v.ind) != len(other.ind) {
		return false
	}
	for i := range v.ind {
		if v.ind[i] != other.ind[i] {
			return false
		}
	}
	return v.val.Equal(other.val)
}

func (v *SparseVector) String() string {
	return fmt.Sprintf("SparseVector(%s, n=%d, nnz=%d)", v.DType(), v.n, v.NNZ())
}

// SparseCSC is a rows×cols matrix in compressed-sparse-column form:
// column c stores row indices rowIdx[colPtr[c]:colPtr[c+1]] (strictly
// increasing) and their values at the same positions of val.
type SparseCSC struct {
	rows, cols int
	colPtr     []int
	rowIdx     []int
	val        *Dense
}

// NewSparseCSC builds a CSC matrix from its raw compressed form.
func NewSparseCSC(rows, cols int, colPtr, rowIdx []int, val *Dense) (*SparseCSC, error) {
	if val == nil {
		return nil, fmt.Errorf("tensor: NewSparseCSC: nil values")
	}
	if rows < 0 || cols < 0 {
		return nil, fmt.Errorf("tensor: NewSparseCSC: negative dimension %dx%d: %w", rows, cols, ErrShape)
	}
	if len(colPtr) != cols+1 || colPtr[0] != 0 || colPtr[cols] != len(rowIdx) {
		return nil, fmt.Errorf("tensor: NewSparseCSC: colPtr does not describe %d columns with %d entries: %w", cols, len(rowIdx), ErrShape)
	}
	if len(val.Shape()) != 1 || val.NumElements() != len(rowIdx) {
		return nil, fmt.Errorf("tensor: NewSparseCSC: %d row indices but values of shape %s: %w", len(rowIdx), val.Shape(), ErrShape)
	}
	if val.DType() == Bool {
		return nil, fmt.Errorf("tensor: NewSparseCSC: %w: bool entries", ErrDType)
	}
	for c := 0; c < cols; c++ {
		if colPtr[c] > colPtr[c+1] {
			return nil, fmt.Errorf("tensor: NewSparseCSC: colPtr decreases at column %d: %w", c, ErrShape)
		}
		for k := colPtr[c]; k < colPtr[c+1]; k++ {
			if rowIdx[k] < 0 || rowIdx[k] >= rows {
				return nil, fmt.Errorf("tensor: NewSparseCSC: row %d out of range [0, %d): %w", rowIdx[k], rows, ErrShape)
			}
			if k > colPtr[c] && rowIdx[k-1] >= rowIdx[k] {
				return nil, fmt.Errorf("tensor: NewSparseCSC: rows not strictly increasing in column %d: %w", c, ErrShape)
			}
		}
	}
	ownPtr := make([]int, len(colPtr))
	copy(ownPtr, colPtr)
	ownIdx := make([]int, len(rowIdx))
	copy(ownIdx, rowIdx)
	return &SparseCSC{rows: rows, cols: cols, colPtr: ownPtr, rowIdx: ownIdx, val: val}, nil
}

// CSCFromDense compresses a rank-2 value, storing its exactly-nonzero
// entries column by column.
func CSCFromDense(d *Dense) *SparseCSC {
	if len(d.shape) != 2 {
		panic(&ShapeError{Op: "CSCFromDense", A: d.shape, B: nil})
	}
	if d.dtype == Bool {
		panic(&DTypeError{Op: "CSCFromDense", A: d.dtype, B: Float64})
	}
	rows, cols := d.shape[0], d.shape[1]
	colPtr := make([]int, cols+1)
	var rowIdx []int
	var vals []complex128
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			x := d.element(r*cols + c)
			if x != 0 {
				rowIdx = append(rowIdx, r)
				vals = append(vals, x)
			}
		}
		colPtr[c+1] = len(rowIdx)
	}
	val := Zeros(Shape{len(vals)}, d.dtype)
	for i, x := range vals {
		val.setElement(i, x)
	}
	return &SparseCSC{rows: rows, cols: cols, colPtr: colPtr, rowIdx: rowIdx, val: val}
}

// Rows returns the row count.
func (m *SparseCSC) Rows() int { return m.rows }

// Cols returns the column count.
func (m *SparseCSC) Cols() int { return m.cols }

// Shape returns the logical rank-2 shape.
func (m *SparseCSC) Shape() Shape { return Shape{m.rows, m.cols} }

// NNZ returns the number of stored entries.
func (m *SparseCSC) NNZ() int { return len(m.rowIdx) }

// DType returns the element type of the stored values.
func (m *SparseCSC) DType() DataType { return m.val.DType() }

// ColPtr returns the column pointer array. Callers must not mutate it.
func (m *SparseCSC) ColPtr() []int { return m.colPtr }

// RowIdx returns the row index array. Callers must not mutate it.
func (m *SparseCSC) RowIdx() []int { return m.rowIdx }

// Val returns the stored values. Callers must not mutate them.
func (m *SparseCSC) Val() *Dense { return m.val }

// Dense scatters the stored entries into a full matrix.
func (m *SparseCSC) Dense() *Dense {
	out := Zeros(Shape{m.rows, m.cols}, m.DType())
	for c := 0; c < m.cols; c++ {
		for k := m.colPtr[c]; k < m.colPtr[c+1]; k++ {
			out.setElement(m.rowIdx[k]*m.cols+c, m.val.element(k))
		}
	}
	return out
}

// GatherFrom returns a CSC matrix with m's pattern and values read from
// the dense matrix d. Entries of d outside the pattern are discarded.
func (m *SparseCSC) GatherFrom(d *Dense) *SparseCSC {
	if len(d.shape) != 2 || d.shape[0] != m.rows || d.shape[1] != m.cols {
		panic(&ShapeError{Op: "GatherFrom", A: d.shape, B: m.Shape()})
	}
	val := Zeros(Shape{len(m.rowIdx)}, d.dtype)
	for c := 0; c < m.cols; c++ {
		for k := m.colPtr[c]; k < m.colPtr[c+1]; k++ {
			val.setElement(k, d.element(m.rowIdx[k]*m.cols+c))
		}
	}
	return &SparseCSC{rows: m.rows, cols: m.cols, colPtr: m.colPtr, rowIdx: m.rowIdx, val: val}
}

// Scale returns alpha * m with the pattern preserved.
func (m *SparseCSC) Scale(alpha complex128) *SparseCSC {
	return &SparseCSC{rows: m.rows, cols: m.cols, colPtr: m.colPtr, rowIdx: m.rowIdx, val: Scale(alpha, m.val)}
}

// Conj returns the complex conjugate with the pattern preserved.
func (m *SparseCSC) Conj() *SparseCSC {
	return &SparseCSC{rows: m.rows, cols: m.cols, colPtr: m.colPtr, rowIdx: m.rowIdx, val: Conj(m.val)}
}

// AddSame returns m + other as the per-column union of the two patterns,
// adding values where entries coincide.
func (m *SparseCSC) AddSame(other *SparseCSC) *SparseCSC {
	if m.rows != other.rows || m.cols != other.cols {
		panic(&ShapeError{Op: "AddSame", A: m.Shape(), B: other.Shape()})
	}
	dt, ok := Promote(m.DType(), other.DType())
	if !ok {
		panic(&DTypeError{Op: "AddSame", A: m.DType(), B: other.DType()})
	}
	colPtr := make([]int, m.cols+1)
	var rowIdx []int
	var vals []complex128
	for c := 0; c < m.cols; c++ {
		aIdx := m.rowIdx[m.colPtr[c]:m.colPtr[c+1]]
		bIdx := other.rowIdx[other.colPtr[c]:other.colPtr[c+1]]
		ind, merged := mergeSparseRange(aIdx, m.val, m.colPtr[c], bIdx, other.val, other.colPtr[c])
		rowIdx = append(rowIdx, ind...)
		vals = append(vals, merged...)
		colPtr[c+1] = len(rowIdx)
	}
	val := Zeros(Shape{len(vals)}, dt)
	for i, x := range vals {
		val.setElement(i, x)
	}
	return &SparseCSC{rows: m.rows, cols: m.cols, colPtr: colPtr, rowIdx: rowIdx, val: val}
}

// Equal reports exact equality of shape, pattern, dtype and values.
func (m *SparseCSC) Equal(other *SparseCSC) bool {
	if m.rows != other.rows || m.cols != other.cols || len(m.rowIdx) != len(other.rowIdx) {
		return false
	}
	for i := range m.colPtr {
		if m.colPtr[i] != other.colPtr[i] {
			return false
		}
	}
	for i := range m.rowIdx {
		if m.rowIdx[i] != other.rowIdx[i] {
			return false
		}
	}
	return m.val.Equal(other.val)
}

func (m *SparseCSC) String() string {
	return fmt.Sprintf("SparseCSC(%s, %dx%d, nnz=%d)", m.DType(), m.rows, m.cols, m.NNZ())
}

// mergeSparse unions two sorted index lists, reading values through the
// complex128 bridge and summing where indices coincide.
func mergeSparse(aInd []int, aVal *Dense, bInd []int, bVal *Dense) ([]int, []complex128) {
	return mergeSparseRange(aInd, aVal, 0, bInd, bVal, 0)
}

// mergeSparseRange is mergeSparse over value windows starting at the given
// offsets, so CSC columns can merge without reslicing their value arrays.
func mergeSparseRange(aInd []int, aVal *Dense, aOff int, bInd []int, bVal *Dense, bOff int) ([]int, []complex128) {
	ind := make([]int, 0, len(aInd)+len(bInd))
	vals := make([]complex128, 0, len(aInd)+len(bInd))
	i, j := 0, 0
	for i < len(aInd) && j < len(bInd) {
		switch {
		case aInd[i] < bInd[j]:
			ind = append(ind, aInd[i])
			vals = append(vals, aVal.element(aOff+i))
			i++
		case aInd[i] > bInd[j]:
			ind = append(ind, bInd[j])
			vals = append(vals, bVal.element(bOff+j))
			j++
		default:
			ind = append(ind, aInd[i])
			vals = append(vals, aVal.element(aOff+i)+bVal.element(bOff+j))
			i++
			j++
		}
	}
	for ; i < len(aInd); i++ {
		ind = append(ind, aInd[i])
		vals = append(vals, aVal.element(aOff+i))
	}
	for ; j < len(bInd); j++ {
		ind = append(ind, bInd[j])
		vals = append(vals, bVal.element(bOff+j))
	}
	return ind, vals
}
