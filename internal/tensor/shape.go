package tensor

import (
	"fmt"
	"strings"
)

// Shape represents the dimensions of a dense value. A nil or empty Shape is
// a scalar with one element.
type Shape []int

// NumElements returns the total number of elements.
func (s Shape) NumElements() int {
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks that every dimension is non-negative. Zero-sized
// dimensions are legal: tangents of zero-length primals exist and must
// project and add like any other.
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim < 0 {
			return fmt.Errorf("%w: dimension %d is %d", ErrShape, i, dim)
		}
	}
	return nil
}

// Equal reports whether two shapes have identical rank and dimensions.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// String formats the shape as "[d0 d1 ...]"; a scalar formats as "[]".
func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, dim := range s {
		parts[i] = fmt.Sprintf("%d", dim)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
