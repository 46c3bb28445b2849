package tensor

import (
	"testing"
)

// Add Tests

func TestAddFloat64(t *testing.T) {
	a, _ := FromSlice([]float64{1, 2, 3}, Shape{3})
	b, _ := FromSlice([]float64{10, 20, 30}, Shape{3})

	c := Add(a, b)

	want := []float64{11, 22, 33}
	for i, w := range want {
		assertEqualFloat64(t, w, c.AsFloat64()[i], "Add[i]")
	}

	// Operands are untouched.
	assertEqualFloat64(t, 1, a.AsFloat64()[0], "Add left operand")
	assertEqualFloat64(t, 10, b.AsFloat64()[0], "Add right operand")
}

func TestAddPromotesDType(t *testing.T) {
	a, _ := FromSlice([]float32{1, 2}, Shape{2})
	b, _ := FromSlice([]float64{0.5, 0.25}, Shape{2})

	c := Add(a, b)

	if c.DType() != Float64 {
		t.Errorf("Add(float32, float64) dtype = %s, want float64", c.DType())
	}
	assertEqualFloat64(t, 1.5, c.AsFloat64()[0], "Add promoted[0]")
}

func TestAddComplex(t *testing.T) {
	a, _ := FromSlice([]complex128{1 + 2i, 3}, Shape{2})
	b, _ := FromSlice([]float64{1, 1}, Shape{2})

	c := Add(a, b)

	if c.DType() != Complex128 {
		t.Errorf("Add(complex128, float64) dtype = %s, want complex128", c.DType())
	}
	assertEqualComplex(t, 2+2i, c.AsComplex128()[0], "Add complex[0]")
}

func TestAddShapeMismatch(t *testing.T) {
	a, _ := FromSlice([]float64{1, 2}, Shape{2})
	b, _ := FromSlice([]float64{1, 2, 3}, Shape{3})
	assertPanicsIs(t, ErrShape, "Add shape mismatch", func() {
		Add(a, b)
	})
}

func TestAddBoolPanics(t *testing.T) {
	a, _ := FromSlice([]bool{true}, Shape{1})
	b, _ := FromSlice([]float64{1}, Shape{1})
	assertPanicsIs(t, ErrDType, "Add bool operand", func() {
		Add(a, b)
	})
}

// AddInto Tests

func TestAddIntoInPlace(t *testing.T) {
	dst, _ := FromSlice([]float64{1, 2}, Shape{2})
	src, _ := FromSlice([]float64{10, 20}, Shape{2})
	before := dst.AsFloat64()

	AddInto(dst, src)

	assertEqualFloat64(t, 11, dst.AsFloat64()[0], "AddInto[0]")
	// Same backing array, not a reallocation.
	if &before[0] != &dst.AsFloat64()[0] {
		t.Error("AddInto should mutate in place")
	}
}

func TestAddIntoShared(t *testing.T) {
	dst, _ := FromSlice([]float64{1}, Shape{1})
	src, _ := FromSlice([]float64{1}, Shape{1})
	view := dst.View()
	defer view.Release()

	assertPanicsIs(t, ErrNotUnique, "AddInto on shared buffer", func() {
		AddInto(dst, src)
	})
}

func TestAddIntoIntegerPanics(t *testing.T) {
	dst, _ := FromSlice([]int64{1}, Shape{1})
	src, _ := FromSlice([]int64{2}, Shape{1})
	assertPanicsIs(t, ErrDType, "AddInto integer dst", func() {
		AddInto(dst, src)
	})
}

func TestAddIntoRefusesWidening(t *testing.T) {
	dst, _ := FromSlice([]float32{1}, Shape{1})
	src, _ := FromSlice([]float64{2}, Shape{1})
	assertPanicsIs(t, ErrDType, "AddInto would widen dst", func() {
		AddInto(dst, src)
	})
}

func TestAddIntoNarrowingSrc(t *testing.T) {
	dst, _ := FromSlice([]float64{1}, Shape{1})
	src, _ := FromSlice([]float32{2}, Shape{1})

	AddInto(dst, src)

	assertEqualFloat64(t, 3, dst.AsFloat64()[0], "AddInto float32 src")
}

// Scale Tests

func TestScaleRealPreservesDType(t *testing.T) {
	x, _ := FromSlice([]float32{1, 2}, Shape{2})
	y := Scale(2, x)
	if y.DType() != Float32 {
		t.Errorf("Scale(real, float32) dtype = %s, want float32", y.DType())
	}
	if y.AsFloat32()[1] != 4 {
		t.Errorf("Scale[1] = %v, want 4", y.AsFloat32()[1])
	}
}

func TestScaleComplexAlphaComplexifies(t *testing.T) {
	x, _ := FromSlice([]float64{1, 2}, Shape{2})
	y := Scale(1i, x)
	if y.DType() != Complex128 {
		t.Errorf("Scale(1i, float64) dtype = %s, want complex128", y.DType())
	}
	assertEqualComplex(t, 2i, y.AsComplex128()[1], "Scale complex[1]")
}

func TestScaleIntegerWithFraction(t *testing.T) {
	x, _ := FromSlice([]int32{4, 8}, Shape{2})
	y := Scale(0.5, x)
	if y.DType() != Float64 {
		t.Errorf("Scale(0.5, int32) dtype = %s, want float64", y.DType())
	}
	assertEqualFloat64(t, 2, y.AsFloat64()[0], "Scale int[0]")
}

func TestScaleIntegerIntegral(t *testing.T) {
	x, _ := FromSlice([]int32{4, 8}, Shape{2})
	y := Scale(3, x)
	if y.DType() != Int32 {
		t.Errorf("Scale(3, int32) dtype = %s, want int32", y.DType())
	}
	if y.AsInt32()[1] != 24 {
		t.Errorf("Scale int[1] = %v, want 24", y.AsInt32()[1])
	}
}

// Hadamard Tests

func TestHadamard(t *testing.T) {
	a, _ := FromSlice([]float64{1, 2, 3}, Shape{3})
	b, _ := FromSlice([]float64{4, 5, 6}, Shape{3})

	c := Hadamard(a, b)

	want := []float64{4, 10, 18}
	for i, w := range want {
		assertEqualFloat64(t, w, c.AsFloat64()[i], "Hadamard[i]")
	}
}

func TestHadamardComplex(t *testing.T) {
	a, _ := FromSlice([]complex128{1i}, Shape{1})
	b, _ := FromSlice([]complex128{1i}, Shape{1})
	c := Hadamard(a, b)
	assertEqualComplex(t, -1, c.AsComplex128()[0], "Hadamard i*i")
}

// Dot Tests

func TestDotFloat64(t *testing.T) {
	a, _ := FromSlice([]float64{1, 2, 3}, Shape{3})
	b, _ := FromSlice([]float64{4, 5, 6}, Shape{3})
	assertEqualComplex(t, 32, Dot(a, b), "Dot real")
}

func TestDotConjugatesLeft(t *testing.T) {
	a, _ := FromSlice([]complex128{1i}, Shape{1})
	b, _ := FromSlice([]complex128{1i}, Shape{1})

	// conj(i) * i = -i * i = 1
	assertEqualComplex(t, 1, Dot(a, b), "Dot conj(i)·i")

	// Not symmetric in general: Dot(a, b) = conj(Dot(b, a)).
	c, _ := FromSlice([]complex128{2 + 1i}, Shape{1})
	d, _ := FromSlice([]complex128{1 - 1i}, Shape{1})
	ab := Dot(c, d)
	ba := Dot(d, c)
	assertEqualComplex(t, complex(real(ba), -imag(ba)), ab, "Dot conjugate symmetry")
}

func TestDotMixed(t *testing.T) {
	a, _ := FromSlice([]float32{1, 2}, Shape{2})
	b, _ := FromSlice([]float64{3, 4}, Shape{2})
	assertEqualComplex(t, 11, Dot(a, b), "Dot mixed precision")
}

// Conj Tests

func TestConjComplex(t *testing.T) {
	x, _ := FromSlice([]complex128{1 + 2i, -3i}, Shape{2})
	y := Conj(x)
	assertEqualComplex(t, 1-2i, y.AsComplex128()[0], "Conj[0]")
	assertEqualComplex(t, 3i, y.AsComplex128()[1], "Conj[1]")
	// Input untouched.
	assertEqualComplex(t, 1+2i, x.AsComplex128()[0], "Conj operand")
}

func TestConjRealAliases(t *testing.T) {
	x, _ := FromSlice([]float64{1, 2}, Shape{2})
	if Conj(x) != x {
		t.Error("Conj of a real tensor should return it unchanged")
	}
}

// Transpose Tests

func TestTranspose2D(t *testing.T) {
	// [[1, 2, 3],
	//  [4, 5, 6]]
	x, _ := FromSlice([]float64{1, 2, 3, 4, 5, 6}, Shape{2, 3})

	y := Transpose2D(x)

	assertEqualShape(t, Shape{3, 2}, y.Shape(), "Transpose2D shape")
	want := []float64{1, 4, 2, 5, 3, 6}
	for i, w := range want {
		assertEqualFloat64(t, w, y.AsFloat64()[i], "Transpose2D[i]")
	}
}

func TestTranspose2DRankMismatch(t *testing.T) {
	x, _ := FromSlice([]float64{1, 2, 3}, Shape{3})
	assertPanicsIs(t, ErrShape, "Transpose2D rank-1", func() {
		Transpose2D(x)
	})
}
