package tensor

import (
	"fmt"
	"reflect"
	"unsafe"
)

// Elem is the constraint for Go element types FromSlice accepts.
type Elem interface {
	~float32 | ~float64 | ~complex64 | ~complex128 | ~int32 | ~int64 | ~uint8 | ~bool
}

// NewDense creates a zero-initialized dense value with the given shape and
// element type.
func NewDense(shape Shape, dtype DataType) (*Dense, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	return &Dense{
		buffer: newDenseBuffer(shape.NumElements() * dtype.Size()),
		shape:  shape.Clone(),
		dtype:  dtype,
	}, nil
}

// FromSlice creates a dense value from a Go slice, copying the data. The
// element type is inferred from T; len(data) must equal shape.NumElements().
//
// Example:
//
//	d, err := tensor.FromSlice([]float64{1, 2, 3, 4}, tensor.Shape{2, 2})
func FromSlice[T Elem](data []T, shape Shape) (*Dense, error) {
	var zero T
	dtype, ok := inferDataType(reflect.TypeOf(zero))
	if !ok {
		return nil, fmt.Errorf("%w: unsupported element type %T", ErrDType, zero)
	}
	if len(data) != shape.NumElements() {
		return nil, fmt.Errorf("%w: %d elements for shape %v (want %d)",
			ErrShape, len(data), shape, shape.NumElements())
	}
	out, err := NewDense(shape, dtype)
	if err != nil {
		return nil, err
	}
	if len(data) > 0 {
		src := unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(data))), len(data)*dtype.Size())
		copy(out.buffer.data, src)
	}
	return out, nil
}

// Zeros creates a zero-filled dense value. Panics on an invalid shape
// (negative dimension), which is a programmer error.
func Zeros(shape Shape, dtype DataType) *Dense {
	d, err := NewDense(shape, dtype)
	if err != nil {
		panic(err)
	}
	return d
}

// ZerosLike creates a zero-filled dense value with the same shape and
// dtype as d.
func ZerosLike(d *Dense) *Dense {
	return Zeros(d.shape, d.dtype)
}

// Ones creates a dense value with every element set to one (true for Bool).
func Ones(shape Shape, dtype DataType) *Dense {
	d := Zeros(shape, dtype)
	switch dtype {
	case Float32:
		fill(d.AsFloat32(), 1)
	case Float64:
		fill(d.AsFloat64(), 1)
	case Complex64:
		fill(d.AsComplex64(), 1)
	case Complex128:
		fill(d.AsComplex128(), 1)
	case Int32:
		fill(d.AsInt32(), 1)
	case Int64:
		fill(d.AsInt64(), 1)
	case Uint8:
		fill(d.AsUint8(), 1)
	case Bool:
		fill(d.AsBool(), true)
	}
	return d
}

// Eye creates the n×n identity matrix.
func Eye(n int, dtype DataType) *Dense {
	d := Zeros(Shape{n, n}, dtype)
	for i := 0; i < n; i++ {
		d.setElement(i*n+i, 1)
	}
	return d
}

func fill[T any](dst []T, v T) {
	for i := range dst {
		dst[i] = v
	}
}
