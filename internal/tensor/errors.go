package tensor

import (
	"errors"
	"fmt"
)

// Sentinel errors for tensor operations. Constructors wrap these with %w;
// kernel panics carry typed values whose Is methods match them, so callers
// can classify failures with errors.Is either way.
var (
	// ErrShape indicates mismatched or invalid dimensions.
	ErrShape = errors.New("tensor: shape mismatch")

	// ErrDType indicates element types that do not combine or convert.
	ErrDType = errors.New("tensor: incompatible dtypes")

	// ErrFrozen indicates an in-place operation on a frozen buffer.
	ErrFrozen = errors.New("tensor: buffer is frozen")

	// ErrNotUnique indicates an in-place operation on a shared buffer.
	ErrNotUnique = errors.New("tensor: buffer is shared")

	// ErrStructure indicates structured operands whose storage layouts do
	// not combine, such as an upper and a lower triangle.
	ErrStructure = errors.New("tensor: structure mismatch")
)

// ShapeError is the panic value raised by kernels when operand shapes do
// not agree. It names the operation and both shapes so the offending rule
// can be located without a debugger.
type ShapeError struct {
	Op   string
	A, B Shape
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("tensor: %s: shape mismatch %v vs %v", e.Op, e.A, e.B)
}

// Is reports ErrShape so errors.Is(err, ErrShape) matches.
func (e *ShapeError) Is(target error) bool { return target == ErrShape }

// DTypeError is the panic value raised by kernels when operand element
// types do not combine or when a typed accessor is used on the wrong dtype.
type DTypeError struct {
	Op   string
	A, B DataType
}

func (e *DTypeError) Error() string {
	return fmt.Sprintf("tensor: %s: incompatible dtypes %s vs %s", e.Op, e.A, e.B)
}

// Is reports ErrDType so errors.Is(err, ErrDType) matches.
func (e *DTypeError) Is(target error) bool { return target == ErrDType }

// StructureError is the panic value raised when structured operands carry
// incompatible layouts.
type StructureError struct {
	Op   string
	Want string
	Got  string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("tensor: %s: structure mismatch: want %s, got %s", e.Op, e.Want, e.Got)
}

// Is reports ErrStructure so errors.Is(err, ErrStructure) matches.
func (e *StructureError) Is(target error) bool { return target == ErrStructure }
