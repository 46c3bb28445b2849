package tensor

import (
	"errors"
	"math"
	"testing"
)

func assertEqualFloat64(t *testing.T, expected, actual float64, msg string) {
	t.Helper()
	if math.Abs(expected-actual) > 1e-12 {
		t.Errorf("%s: expected %v, got %v", msg, expected, actual)
	}
}

func assertEqualComplex(t *testing.T, expected, actual complex128, msg string) {
	t.Helper()
	if math.Abs(real(expected)-real(actual)) > 1e-12 || math.Abs(imag(expected)-imag(actual)) > 1e-12 {
		t.Errorf("%s: expected %v, got %v", msg, expected, actual)
	}
}

func assertEqualShape(t *testing.T, expected, actual Shape, msg string) {
	t.Helper()
	if !expected.Equal(actual) {
		t.Errorf("%s: expected shape %v, got %v", msg, expected, actual)
	}
}

// assertPanicsIs runs fn and checks that it panics with an error matching
// target via errors.Is.
func assertPanicsIs(t *testing.T, target error, msg string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Errorf("%s: expected panic", msg)
			return
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, target) {
			t.Errorf("%s: panic = %v, want match for %v", msg, r, target)
		}
	}()
	fn()
}

// DType Tests

func TestDataTypeSize(t *testing.T) {
	tests := []struct {
		dtype DataType
		size  int
	}{
		{Float32, 4},
		{Float64, 8},
		{Complex64, 8},
		{Complex128, 16},
		{Int32, 4},
		{Int64, 8},
		{Uint8, 1},
		{Bool, 1},
	}
	for _, tt := range tests {
		if got := tt.dtype.Size(); got != tt.size {
			t.Errorf("Size(%s) = %d, want %d", tt.dtype, got, tt.size)
		}
	}
}

func TestDataTypePromote(t *testing.T) {
	tests := []struct {
		a, b DataType
		want DataType
		ok   bool
	}{
		{Float64, Float64, Float64, true},
		{Float32, Float64, Float64, true},
		{Float32, Complex64, Complex64, true},
		{Float64, Complex64, Complex128, true},
		{Complex64, Complex128, Complex128, true},
		{Int32, Int64, Int64, true},
		{Int64, Float32, Float32, true},
		{Uint8, Float64, Float64, true},
		{Int32, Complex64, Complex64, true},
		{Bool, Float64, Bool, false},
		{Float64, Bool, Bool, false},
	}
	for _, tt := range tests {
		got, ok := Promote(tt.a, tt.b)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("Promote(%s, %s) = %s, %v, want %s, %v", tt.a, tt.b, got, ok, tt.want, tt.ok)
		}
	}
}

func TestDataTypeComplexify(t *testing.T) {
	tests := []struct {
		dtype DataType
		want  DataType
		ok    bool
	}{
		{Float32, Complex64, true},
		{Float64, Complex128, true},
		{Complex64, Complex64, true},
		{Complex128, Complex128, true},
		{Int32, Complex128, true},
		{Bool, Bool, false},
	}
	for _, tt := range tests {
		got, ok := tt.dtype.Complexify()
		if ok != tt.ok || got != tt.want {
			t.Errorf("Complexify(%s) = %s, %v, want %s, %v", tt.dtype, got, ok, tt.want, tt.ok)
		}
	}
}

// Shape Tests

func TestShapeNumElements(t *testing.T) {
	tests := []struct {
		shape Shape
		want  int
	}{
		{Shape{2, 3}, 6},
		{Shape{5}, 5},
		{Shape{}, 1},
		{nil, 1},
		{Shape{0}, 0},
		{Shape{3, 0, 2}, 0},
	}
	for _, tt := range tests {
		if got := tt.shape.NumElements(); got != tt.want {
			t.Errorf("NumElements(%v) = %d, want %d", tt.shape, got, tt.want)
		}
	}
}

func TestShapeValidate(t *testing.T) {
	if err := (Shape{2, 0, 3}).Validate(); err != nil {
		t.Errorf("zero-size dimensions should be legal, got %v", err)
	}
	if err := (Shape{2, -1}).Validate(); err == nil {
		t.Error("negative dimension should be rejected")
	}
}

func TestShapeEqual(t *testing.T) {
	if !(Shape{2, 3}).Equal(Shape{2, 3}) {
		t.Error("equal shapes should compare equal")
	}
	if (Shape{2, 3}).Equal(Shape{3, 2}) {
		t.Error("different shapes should not compare equal")
	}
	if (Shape{2, 3}).Equal(Shape{2, 3, 1}) {
		t.Error("different ranks should not compare equal")
	}
}

// Dense Tests

func TestFromSlice(t *testing.T) {
	d, err := FromSlice([]float64{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	if err != nil {
		t.Fatalf("FromSlice error: %v", err)
	}
	assertEqualShape(t, Shape{2, 3}, d.Shape(), "FromSlice shape")
	if d.DType() != Float64 {
		t.Errorf("FromSlice dtype = %s, want float64", d.DType())
	}
	assertEqualFloat64(t, 6, d.AsFloat64()[5], "FromSlice last element")
}

func TestFromSliceCopies(t *testing.T) {
	src := []float64{1, 2, 3}
	d, _ := FromSlice(src, Shape{3})

	// Mutating the source is invisible to the tensor.
	src[0] = 99
	assertEqualFloat64(t, 1, d.AsFloat64()[0], "FromSlice should copy")
}

func TestFromSliceLengthMismatch(t *testing.T) {
	if _, err := FromSlice([]float64{1, 2, 3}, Shape{2, 2}); !errors.Is(err, ErrShape) {
		t.Errorf("expected ErrShape, got %v", err)
	}
}

func TestFromSliceNamedType(t *testing.T) {
	type celsius float64
	d, err := FromSlice([]celsius{21.5, 22}, Shape{2})
	if err != nil {
		t.Fatalf("FromSlice error: %v", err)
	}
	if d.DType() != Float64 {
		t.Errorf("named float64 type should infer Float64, got %s", d.DType())
	}
}

func TestDenseZeroElements(t *testing.T) {
	d := Zeros(Shape{0}, Float64)
	if d.NumElements() != 0 {
		t.Errorf("NumElements = %d, want 0", d.NumElements())
	}
	if got := d.AsFloat64(); len(got) != 0 {
		t.Errorf("AsFloat64 length = %d, want 0", len(got))
	}

	// Arithmetic on empty operands is legal and empty.
	sum := Add(d, Zeros(Shape{0}, Float64))
	if sum.NumElements() != 0 {
		t.Error("Add of empty tensors should be empty")
	}
}

func TestDenseClone(t *testing.T) {
	a, _ := FromSlice([]float64{1, 2, 3}, Shape{3})
	b := a.Clone()

	b.AsFloat64()[0] = 42
	assertEqualFloat64(t, 1, a.AsFloat64()[0], "Clone should not share storage")
	if !a.IsUnique() || !b.IsUnique() {
		t.Error("Clone should leave both tensors uniquely owned")
	}
}

func TestDenseView(t *testing.T) {
	a, _ := FromSlice([]float64{1, 2, 3}, Shape{3})
	v := a.View()

	if a.IsUnique() || v.IsUnique() {
		t.Error("View should share the buffer")
	}

	// Zero-copy: writes through one handle are visible through the other.
	v.AsFloat64()[1] = 9
	assertEqualFloat64(t, 9, a.AsFloat64()[1], "View should alias storage")

	v.Release()
	if !a.IsUnique() {
		t.Error("releasing the view should restore unique ownership")
	}
}

func TestDenseFreeze(t *testing.T) {
	a, _ := FromSlice([]float64{1, 2}, Shape{2})
	f := a.Freeze()
	if !f.Frozen() {
		t.Error("Freeze should mark the handle frozen")
	}
	assertPanicsIs(t, ErrFrozen, "AddInto on frozen", func() {
		AddInto(f, a)
	})
}

func TestDenseConvert(t *testing.T) {
	a, _ := FromSlice([]float32{1.5, 2.5}, Shape{2})
	b, err := a.Convert(Float64)
	if err != nil {
		t.Fatalf("Convert error: %v", err)
	}
	assertEqualFloat64(t, 1.5, b.AsFloat64()[0], "Convert float32→float64")

	c, err := a.Convert(Complex64)
	if err != nil {
		t.Fatalf("Convert error: %v", err)
	}
	assertEqualComplex(t, complex(2.5, 0), complex128(c.AsComplex64()[1]), "Convert float32→complex64")
}

func TestDenseConvertRefusesComplexToReal(t *testing.T) {
	a, _ := FromSlice([]complex128{1 + 2i}, Shape{1})
	if _, err := a.Convert(Float64); !errors.Is(err, ErrDType) {
		t.Errorf("complex→real conversion should fail with ErrDType, got %v", err)
	}
}

func TestDenseRealPart(t *testing.T) {
	a, _ := FromSlice([]complex128{1 + 2i, 3 - 4i}, Shape{2})
	re, err := a.RealPart()
	if err != nil {
		t.Fatalf("RealPart error: %v", err)
	}
	if re.DType() != Float64 {
		t.Errorf("RealPart dtype = %s, want float64", re.DType())
	}
	assertEqualFloat64(t, 3, re.AsFloat64()[1], "RealPart[1]")

	b, _ := FromSlice([]float64{5}, Shape{1})
	same, err := b.RealPart()
	if err != nil || same != b {
		t.Error("RealPart of a real tensor should return it unchanged")
	}
}

func TestDenseEqualApprox(t *testing.T) {
	a, _ := FromSlice([]float64{1, 2}, Shape{2})
	b, _ := FromSlice([]float64{1 + 1e-10, 2}, Shape{2})
	if !a.EqualApprox(b, 1e-8) {
		t.Error("EqualApprox should tolerate small differences")
	}
	if a.EqualApprox(b, 1e-12) {
		t.Error("EqualApprox should respect the tolerance")
	}
}

func TestZerosLike(t *testing.T) {
	a, _ := FromSlice([]complex64{1 + 1i, 2}, Shape{2})
	z := ZerosLike(a)
	assertEqualShape(t, a.Shape(), z.Shape(), "ZerosLike shape")
	if z.DType() != Complex64 {
		t.Errorf("ZerosLike dtype = %s, want complex64", z.DType())
	}
	if z.AsComplex64()[0] != 0 {
		t.Error("ZerosLike should be zero-filled")
	}
}

func TestOnes(t *testing.T) {
	o := Ones(Shape{3}, Float32)
	for i, v := range o.AsFloat32() {
		if v != 1 {
			t.Errorf("Ones[%d] = %v, want 1", i, v)
		}
	}
}

func TestEye(t *testing.T) {
	e := Eye(3, Float64)
	assertEqualShape(t, Shape{3, 3}, e.Shape(), "Eye shape")
	data := e.AsFloat64()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			assertEqualFloat64(t, want, data[i*3+j], "Eye entry")
		}
	}
}
