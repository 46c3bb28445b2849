package tensor

import (
	"bytes"
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"gonum.org/v1/gonum/floats/scalar"
)

// denseBuffer is a reference-counted shared byte buffer. The count answers
// the one question the tangent algebra asks of an accumulator: is in-place
// mutation safe, or could another holder observe it?
type denseBuffer struct {
	data     []byte
	refCount atomic.Int32
	mu       sync.Mutex // for safe deallocation
}

func newDenseBuffer(size int) *denseBuffer {
	buf := &denseBuffer{data: make([]byte, size)}
	buf.refCount.Store(1)
	return buf
}

func (db *denseBuffer) addRef() {
	db.refCount.Add(1)
}

func (db *denseBuffer) release() {
	if db.refCount.Add(-1) == 0 {
		db.mu.Lock()
		defer db.mu.Unlock()
		db.data = nil
	}
}

func (db *denseBuffer) isUnique() bool {
	return db.refCount.Load() == 1
}

// Dense is a contiguous row-major array with a runtime element type. It is
// the workhorse natural tangent: every structured and sparse form
// materializes to one, and projection reads admissible positions out of one.
type Dense struct {
	buffer *denseBuffer
	shape  Shape
	dtype  DataType
	frozen bool
}

// Shape returns the dimensions. The slice is shared; treat it as read-only.
func (d *Dense) Shape() Shape { return d.shape }

// DType returns the element type.
func (d *Dense) DType() DataType { return d.dtype }

// NumElements returns the total number of elements.
func (d *Dense) NumElements() int { return d.shape.NumElements() }

// ByteSize returns the buffer size in bytes.
func (d *Dense) ByteSize() int { return d.NumElements() * d.dtype.Size() }

// Data returns the raw byte slice backing the value.
func (d *Dense) Data() []byte { return d.buffer.data }

// IsUnique reports whether this value holds the only reference to its
// buffer. Only unique, unfrozen float/complex buffers are eligible for
// in-place accumulation.
func (d *Dense) IsUnique() bool { return d.buffer.isUnique() }

// Frozen reports whether the value was marked read-only.
func (d *Dense) Frozen() bool { return d.frozen }

// Freeze marks the value read-only. In-place kernels refuse frozen values;
// everything else is unaffected. Returns the receiver for chaining.
func (d *Dense) Freeze() *Dense {
	d.frozen = true
	return d
}

// View returns a new header sharing the same buffer with the reference
// count bumped. While any view is live, neither holder is eligible for
// in-place accumulation.
func (d *Dense) View() *Dense {
	d.buffer.addRef()
	return &Dense{
		buffer: d.buffer,
		shape:  d.shape.Clone(),
		dtype:  d.dtype,
		frozen: d.frozen,
	}
}

// Release drops this holder's reference. The buffer deallocates when the
// last reference is released. Using the value after Release is a bug.
func (d *Dense) Release() { d.buffer.release() }

// Reshape returns a view of the same buffer under a new shape. The element
// count must be unchanged. Like View, the result shares storage, so neither
// holder is eligible for in-place accumulation afterwards.
func (d *Dense) Reshape(shape Shape) (*Dense, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("tensor: Reshape: %w", err)
	}
	if shape.NumElements() != d.NumElements() {
		return nil, fmt.Errorf("tensor: Reshape: cannot reshape %s into %s: %w", d.shape, shape, ErrShape)
	}
	d.buffer.addRef()
	return &Dense{
		buffer: d.buffer,
		shape:  shape.Clone(),
		dtype:  d.dtype,
		frozen: d.frozen,
	}, nil
}

// Clone returns an independent deep copy of the value. The copy is unfrozen
// and uniquely owned.
func (d *Dense) Clone() *Dense {
	out := &Dense{
		buffer: newDenseBuffer(d.ByteSize()),
		shape:  d.shape.Clone(),
		dtype:  d.dtype,
	}
	copy(out.buffer.data, d.buffer.data)
	return out
}

// typedPtr returns the base pointer for unsafe.Slice views, asserting the
// element type first. Asking for the wrong dtype is a programmer error and
// panics.
func (d *Dense) typedPtr(want DataType, op string) unsafe.Pointer {
	if d.dtype != want {
		panic(&DTypeError{Op: op, A: d.dtype, B: want})
	}
	if d.NumElements() == 0 {
		return nil
	}
	return unsafe.Pointer(&d.buffer.data[0])
}

// AsFloat32 interprets the data as []float32. Panics unless dtype is Float32.
func (d *Dense) AsFloat32() []float32 {
	p := d.typedPtr(Float32, "AsFloat32")
	if p == nil {
		return nil
	}
	return unsafe.Slice((*float32)(p), d.NumElements())
}

// AsFloat64 interprets the data as []float64. Panics unless dtype is Float64.
func (d *Dense) AsFloat64() []float64 {
	p := d.typedPtr(Float64, "AsFloat64")
	if p == nil {
		return nil
	}
	return unsafe.Slice((*float64)(p), d.NumElements())
}

// AsComplex64 interprets the data as []complex64. Panics unless dtype is Complex64.
func (d *Dense) AsComplex64() []complex64 {
	p := d.typedPtr(Complex64, "AsComplex64")
	if p == nil {
		return nil
	}
	return unsafe.Slice((*complex64)(p), d.NumElements())
}

// AsComplex128 interprets the data as []complex128. Panics unless dtype is Complex128.
func (d *Dense) AsComplex128() []complex128 {
	p := d.typedPtr(Complex128, "AsComplex128")
	if p == nil {
		return nil
	}
	return unsafe.Slice((*complex128)(p), d.NumElements())
}

// AsInt32 interprets the data as []int32. Panics unless dtype is Int32.
func (d *Dense) AsInt32() []int32 {
	p := d.typedPtr(Int32, "AsInt32")
	if p == nil {
		return nil
	}
	return unsafe.Slice((*int32)(p), d.NumElements())
}

// AsInt64 interprets the data as []int64. Panics unless dtype is Int64.
func (d *Dense) AsInt64() []int64 {
	p := d.typedPtr(Int64, "AsInt64")
	if p == nil {
		return nil
	}
	return unsafe.Slice((*int64)(p), d.NumElements())
}

// AsUint8 interprets the data as []uint8. Panics unless dtype is Uint8.
func (d *Dense) AsUint8() []uint8 {
	if d.dtype != Uint8 {
		panic(&DTypeError{Op: "AsUint8", A: d.dtype, B: Uint8})
	}
	return d.buffer.data
}

// AsBool interprets the data as []bool. Panics unless dtype is Bool.
func (d *Dense) AsBool() []bool {
	p := d.typedPtr(Bool, "AsBool")
	if p == nil {
		return nil
	}
	return unsafe.Slice((*bool)(p), d.NumElements())
}

// element reads element i as a complex128 regardless of numeric dtype.
// Bool is not numeric and panics.
func (d *Dense) element(i int) complex128 {
	switch d.dtype {
	case Float32:
		return complex(float64(d.AsFloat32()[i]), 0)
	case Float64:
		return complex(d.AsFloat64()[i], 0)
	case Complex64:
		return complex128(d.AsComplex64()[i])
	case Complex128:
		return d.AsComplex128()[i]
	case Int32:
		return complex(float64(d.AsInt32()[i]), 0)
	case Int64:
		return complex(float64(d.AsInt64()[i]), 0)
	case Uint8:
		return complex(float64(d.AsUint8()[i]), 0)
	default:
		panic(&DTypeError{Op: "element", A: d.dtype, B: Float64})
	}
}

// setElement writes a complex128 into element i, narrowing to the dtype.
// The imaginary part is dropped for real dtypes; the caller decides whether
// that is projection or an error.
func (d *Dense) setElement(i int, v complex128) {
	switch d.dtype {
	case Float32:
		d.AsFloat32()[i] = float32(real(v))
	case Float64:
		d.AsFloat64()[i] = real(v)
	case Complex64:
		d.AsComplex64()[i] = complex64(v)
	case Complex128:
		d.AsComplex128()[i] = v
	case Int32:
		d.AsInt32()[i] = int32(real(v))
	case Int64:
		d.AsInt64()[i] = int64(real(v))
	case Uint8:
		d.AsUint8()[i] = uint8(real(v))
	default:
		panic(&DTypeError{Op: "setElement", A: d.dtype, B: Float64})
	}
}

// Convert returns the value with elements converted to dtype dt. The
// receiver is returned unchanged when dt already matches. Conversions that
// lose structure rather than precision are refused: complex sources do not
// convert to real dtypes (use RealPart, or project), and Bool converts to
// and from nothing.
func (d *Dense) Convert(dt DataType) (*Dense, error) {
	if dt == d.dtype {
		return d, nil
	}
	if d.dtype == Bool || dt == Bool {
		return nil, fmt.Errorf("%w: cannot convert %s to %s", ErrDType, d.dtype, dt)
	}
	if d.dtype.IsComplex() && !dt.IsComplex() {
		return nil, fmt.Errorf("%w: cannot convert %s to %s (imaginary part would be discarded)", ErrDType, d.dtype, dt)
	}
	out, err := NewDense(d.shape, dt)
	if err != nil {
		return nil, err
	}
	for i := 0; i < d.NumElements(); i++ {
		out.setElement(i, d.element(i))
	}
	return out, nil
}

// RealPart returns the real part of a complex value (Float32 for Complex64,
// Float64 for Complex128). Real inputs are returned unchanged; integer and
// boolean inputs are an error.
func (d *Dense) RealPart() (*Dense, error) {
	switch d.dtype {
	case Float32, Float64:
		return d, nil
	case Complex64:
		out := Zeros(d.shape, Float32)
		src, dst := d.AsComplex64(), out.AsFloat32()
		for i, v := range src {
			dst[i] = real(v)
		}
		return out, nil
	case Complex128:
		out := Zeros(d.shape, Float64)
		src, dst := d.AsComplex128(), out.AsFloat64()
		for i, v := range src {
			dst[i] = real(v)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: RealPart of %s", ErrDType, d.dtype)
	}
}

// Equal reports exact equality: same dtype, same shape, identical bytes.
func (d *Dense) Equal(other *Dense) bool {
	if other == nil {
		return false
	}
	return d.dtype == other.dtype &&
		d.shape.Equal(other.shape) &&
		bytes.Equal(d.buffer.data, other.buffer.data)
}

// EqualApprox reports elementwise equality within tol (absolute or
// relative, whichever is looser) for float and complex dtypes; integer and
// boolean values compare exactly. Shapes and dtypes must match.
func (d *Dense) EqualApprox(other *Dense, tol float64) bool {
	if other == nil || d.dtype != other.dtype || !d.shape.Equal(other.shape) {
		return false
	}
	if !d.dtype.Differentiable() {
		return d.Equal(other)
	}
	for i := 0; i < d.NumElements(); i++ {
		a, b := d.element(i), other.element(i)
		if !scalar.EqualWithinAbsOrRel(real(a), real(b), tol, tol) ||
			!scalar.EqualWithinAbsOrRel(imag(a), imag(b), tol, tol) {
			return false
		}
	}
	return true
}

// String formats as "Dense(float64, [2 3])".
func (d *Dense) String() string {
	return fmt.Sprintf("Dense(%s, %s)", d.dtype, d.shape)
}
