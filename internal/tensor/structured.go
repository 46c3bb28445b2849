// Structured square matrices: diagonal, symmetric, and triangular. These
// carry the subspace a projector targets, so the algebra can keep tangents
// on the same manifold as their primal instead of densifying everything.

package tensor

import "fmt"

// Uplo selects which triangle of a square matrix carries the data.
type Uplo int

const (
	Upper Uplo = iota
	Lower
)

// String returns "upper" or "lower".
func (u Uplo) String() string {
	if u == Upper {
		return "upper"
	}
	return "lower"
}

// Diagonal is an n×n matrix whose off-diagonal entries are identically
// zero, stored as the rank-1 vector of diagonal entries.
type Diagonal struct {
	diag *Dense
}

// NewDiagonal wraps a rank-1 vector of diagonal entries.
func NewDiagonal(diag *Dense) (*Diagonal, error) {
	if diag == nil {
		return nil, fmt.Errorf("tensor: NewDiagonal: nil diagonal")
	}
	if len(diag.Shape()) != 1 {
		return nil, fmt.Errorf("tensor: NewDiagonal: diagonal must be rank-1, got shape %s: %w", diag.Shape(), ErrShape)
	}
	if diag.DType() == Bool {
		return nil, fmt.Errorf("tensor: NewDiagonal: %w: bool entries", ErrDType)
	}
	return &Diagonal{diag: diag}, nil
}

// DiagFromDense extracts the main diagonal of a square rank-2 value,
// discarding the off-diagonal entries.
func DiagFromDense(d *Dense) *Diagonal {
	if len(d.shape) != 2 || d.shape[0] != d.shape[1] {
		panic(&ShapeError{Op: "DiagFromDense", A: d.shape, B: nil})
	}
	n := d.shape[0]
	out := Zeros(Shape{n}, d.dtype)
	for i := 0; i < n; i++ {
		out.setElement(i, d.element(i*n+i))
	}
	return &Diagonal{diag: out}
}

// N returns the matrix dimension.
func (m *Diagonal) N() int { return m.diag.NumElements() }

// Shape returns the full n×n shape.
func (m *Diagonal) Shape() Shape {
	n := m.N()
	return Shape{n, n}
}

// DType returns the element type of the diagonal entries.
func (m *Diagonal) DType() DataType { return m.diag.DType() }

// Diag returns the stored diagonal vector. Callers must not mutate it.
func (m *Diagonal) Diag() *Dense { return m.diag }

// Dense materializes the full n×n matrix.
func (m *Diagonal) Dense() *Dense {
	n := m.N()
	out := Zeros(Shape{n, n}, m.DType())
	for i := 0; i < n; i++ {
		out.setElement(i*n+i, m.diag.element(i))
	}
	return out
}

// AddSame returns m + other, staying diagonal.
func (m *Diagonal) AddSame(other *Diagonal) *Diagonal {
	return &Diagonal{diag: Add(m.diag, other.diag)}
}

// Scale returns alpha * m, staying diagonal.
func (m *Diagonal) Scale(alpha complex128) *Diagonal {
	return &Diagonal{diag: Scale(alpha, m.diag)}
}

// Conj returns the complex conjugate, staying diagonal.
func (m *Diagonal) Conj() *Diagonal {
	return &Diagonal{diag: Conj(m.diag)}
}

// Equal reports exact equality of dimension, dtype and entries.
func (m *Diagonal) Equal(other *Diagonal) bool {
	return m.diag.Equal(other.diag)
}

func (m *Diagonal) String() string {
	return fmt.Sprintf("Diagonal(%s, n=%d)", m.DType(), m.N())
}

// Symmetric is a square matrix equal to its transpose. Storage is a full
// rank-2 value normalized at construction so both triangles agree; uplo
// records which triangle the constructor read from.
type Symmetric struct {
	data *Dense
	uplo Uplo
}

// NewSymmetric builds a symmetric matrix from the uplo triangle of data.
// The other triangle of data is ignored and overwritten in a private copy.
func NewSymmetric(data *Dense, uplo Uplo) (*Symmetric, error) {
	if data == nil {
		return nil, fmt.Errorf("tensor: NewSymmetric: nil data")
	}
	if len(data.Shape()) != 2 || data.Shape()[0] != data.Shape()[1] {
		return nil, fmt.Errorf("tensor: NewSymmetric: want square rank-2, got shape %s: %w", data.Shape(), ErrShape)
	}
	if data.DType() == Bool {
		return nil, fmt.Errorf("tensor: NewSymmetric: %w: bool entries", ErrDType)
	}
	out := data.Clone()
	mirrorTriangle(out, uplo)
	return &Symmetric{data: out, uplo: uplo}, nil
}

// SymmetrizeDense projects a square rank-2 value onto the symmetric
// subspace, (d + dᵀ)/2.
func SymmetrizeDense(d *Dense) *Symmetric {
	if len(d.shape) != 2 || d.shape[0] != d.shape[1] {
		panic(&ShapeError{Op: "SymmetrizeDense", A: d.shape, B: nil})
	}
	sum := Add(d, Transpose2D(d))
	return &Symmetric{data: Scale(0.5, sum), uplo: Upper}
}

// N returns the matrix dimension.
func (m *Symmetric) N() int { return m.data.Shape()[0] }

// Shape returns the full n×n shape.
func (m *Symmetric) Shape() Shape { return m.data.Shape().Clone() }

// DType returns the element type.
func (m *Symmetric) DType() DataType { return m.data.DType() }

// Uplo returns the triangle the constructor read from.
func (m *Symmetric) Uplo() Uplo { return m.uplo }

// Dense returns the full symmetric storage. Callers must not mutate it.
func (m *Symmetric) Dense() *Dense { return m.data }

// AddSame returns m + other, staying symmetric.
func (m *Symmetric) AddSame(other *Symmetric) *Symmetric {
	return &Symmetric{data: Add(m.data, other.data), uplo: m.uplo}
}

// Scale returns alpha * m, staying symmetric.
func (m *Symmetric) Scale(alpha complex128) *Symmetric {
	return &Symmetric{data: Scale(alpha, m.data), uplo: m.uplo}
}

// Conj returns the complex conjugate. Conjugation preserves transpose
// symmetry, so the result is symmetric in the same sense.
func (m *Symmetric) Conj() *Symmetric {
	return &Symmetric{data: Conj(m.data), uplo: m.uplo}
}

// Equal reports exact equality of dimension, dtype and entries. The uplo
// tag does not participate: two symmetric matrices with equal entries are
// equal.
func (m *Symmetric) Equal(other *Symmetric) bool {
	return m.data.Equal(other.data)
}

func (m *Symmetric) String() string {
	return fmt.Sprintf("Symmetric(%s, n=%d)", m.DType(), m.N())
}

// Triangular is a square matrix whose entries outside the uplo triangle
// are identically zero. Storage is a full rank-2 value with the other
// triangle zeroed at construction.
type Triangular struct {
	data *Dense
	uplo Uplo
}

// NewTriangular builds a triangular matrix from the uplo triangle of data.
// Entries outside the triangle are zeroed in a private copy.
func NewTriangular(data *Dense, uplo Uplo) (*Triangular, error) {
	if data == nil {
		return nil, fmt.Errorf("tensor: NewTriangular: nil data")
	}
	if len(data.Shape()) != 2 || data.Shape()[0] != data.Shape()[1] {
		return nil, fmt.Errorf("tensor: NewTriangular: want square rank-2, got shape %s: %w", data.Shape(), ErrShape)
	}
	if data.DType() == Bool {
		return nil, fmt.Errorf("tensor: NewTriangular: %w: bool entries", ErrDType)
	}
	out := data.Clone()
	zeroOffTriangle(out, uplo)
	return &Triangular{data: out, uplo: uplo}, nil
}

// TriangularFromDense projects a square rank-2 value onto the uplo
// triangle, discarding the entries outside it.
func TriangularFromDense(d *Dense, uplo Uplo) *Triangular {
	if len(d.shape) != 2 || d.shape[0] != d.shape[1] {
		panic(&ShapeError{Op: "TriangularFromDense", A: d.shape, B: nil})
	}
	out := d.Clone()
	zeroOffTriangle(out, uplo)
	return &Triangular{data: out, uplo: uplo}
}

// N returns the matrix dimension.
func (m *Triangular) N() int { return m.data.Shape()[0] }

// Shape returns the full n×n shape.
func (m *Triangular) Shape() Shape { return m.data.Shape().Clone() }

// DType returns the element type.
func (m *Triangular) DType() DataType { return m.data.DType() }

// Uplo returns which triangle carries the data.
func (m *Triangular) Uplo() Uplo { return m.uplo }

// Dense returns the full storage with the off-triangle zeroed. Callers
// must not mutate it.
func (m *Triangular) Dense() *Dense { return m.data }

// AddSame returns m + other. Both operands must carry the same triangle;
// adding an upper to a lower triangle leaves the subspace, so callers
// densify first.
func (m *Triangular) AddSame(other *Triangular) *Triangular {
	if m.uplo != other.uplo {
		panic(&StructureError{Op: "AddSame", Want: m.uplo.String(), Got: other.uplo.String()})
	}
	return &Triangular{data: Add(m.data, other.data), uplo: m.uplo}
}

// Scale returns alpha * m, staying triangular.
func (m *Triangular) Scale(alpha complex128) *Triangular {
	return &Triangular{data: Scale(alpha, m.data), uplo: m.uplo}
}

// Conj returns the complex conjugate, staying on the same triangle.
func (m *Triangular) Conj() *Triangular {
	return &Triangular{data: Conj(m.data), uplo: m.uplo}
}

// Transpose returns the transpose, which carries the opposite triangle.
func (m *Triangular) Transpose() *Triangular {
	other := Lower
	if m.uplo == Lower {
		other = Upper
	}
	return &Triangular{data: Transpose2D(m.data), uplo: other}
}

// Equal reports exact equality of triangle, dimension, dtype and entries.
func (m *Triangular) Equal(other *Triangular) bool {
	return m.uplo == other.uplo && m.data.Equal(other.data)
}

func (m *Triangular) String() string {
	return fmt.Sprintf("Triangular(%s, %s, n=%d)", m.DType(), m.uplo, m.N())
}

// mirrorTriangle copies the uplo triangle of a square matrix onto the
// opposite one in place.
func mirrorTriangle(d *Dense, uplo Uplo) {
	n := d.shape[0]
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if uplo == Upper {
				d.setElement(j*n+i, d.element(i*n+j))
			} else {
				d.setElement(i*n+j, d.element(j*n+i))
			}
		}
	}
}

// zeroOffTriangle zeroes the entries outside the uplo triangle in place.
func zeroOffTriangle(d *Dense, uplo Uplo) {
	n := d.shape[0]
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if uplo == Upper {
				d.setElement(j*n+i, 0)
			} else {
				d.setElement(i*n+j, 0)
			}
		}
	}
}
