package tangent

import (
	"fmt"
	"reflect"

	"github.com/born-ml/tangent/internal/tensor"
)

type projKind int

const (
	projIdentity projKind = iota
	projNoTangent
	projScalar
	projSliceF64
	projSliceC128
	projDense
	projDiagonal
	projSymmetric
	projTriangular
	projSparseVector
	projSparseCSC
	projStruct
)

// Projector maps tangents onto the tangent space of one primal value. It
// captures everything that space is allowed to remember about the primal:
// element type, shape, structure, sparsity pattern, and for structs a
// projector per exported field.
type Projector struct {
	kind   projKind
	scalar reflect.Type
	dtype  tensor.DataType
	shape  tensor.Shape
	n      int
	uplo   tensor.Uplo
	sv     *tensor.SparseVector
	csc    *tensor.SparseCSC
	primal reflect.Type
	fields map[string]*Projector
}

// ProjectTo builds the projector for a primal value. Non-differentiable
// primals such as booleans, strings and integers, scalar or array, get the
// projector that maps every tangent to NoTangent. Types the algebra does
// not know project as the identity.
func ProjectTo(primal any) *Projector {
	if primal == nil {
		panic(&UsageError{Op: "ProjectTo", Detail: "nil primal"})
	}
	switch x := primal.(type) {
	case *tensor.Dense:
		if !x.DType().Differentiable() {
			return &Projector{kind: projNoTangent}
		}
		return &Projector{kind: projDense, dtype: x.DType(), shape: x.Shape().Clone()}
	case *tensor.Diagonal:
		return &Projector{kind: projDiagonal, dtype: x.DType(), n: x.N()}
	case *tensor.Symmetric:
		return &Projector{kind: projSymmetric, dtype: x.DType(), n: x.N(), uplo: x.Uplo()}
	case *tensor.Triangular:
		return &Projector{kind: projTriangular, dtype: x.DType(), n: x.N(), uplo: x.Uplo()}
	case *tensor.SparseVector:
		return &Projector{kind: projSparseVector, dtype: x.DType(), sv: x}
	case *tensor.SparseCSC:
		return &Projector{kind: projSparseCSC, dtype: x.DType(), csc: x}
	case []float64:
		return &Projector{kind: projSliceF64, dtype: tensor.Float64, n: len(x)}
	case []complex128:
		return &Projector{kind: projSliceC128, dtype: tensor.Complex128, n: len(x)}
	case []float32:
		return &Projector{kind: projDense, dtype: tensor.Float32, shape: tensor.Shape{len(x)}}
	case []complex64:
		return &Projector{kind: projDense, dtype: tensor.Complex64, shape: tensor.Shape{len(x)}}
	}
	rv := reflect.ValueOf(primal)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			panic(&UsageError{Op: "ProjectTo", Detail: "nil pointer primal"})
		}
		return ProjectTo(rv.Elem().Interface())
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return &Projector{kind: projNoTangent}
	case reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return &Projector{kind: projScalar, scalar: rv.Type()}
	case reflect.Struct:
		rt := rv.Type()
		fields := make(map[string]*Projector, rt.NumField())
		for i := 0; i < rt.NumField(); i++ {
			f := rt.Field(i)
			if !f.IsExported() {
				continue
			}
			fv := rv.Field(i)
			if (fv.Kind() == reflect.Pointer || fv.Kind() == reflect.Interface) && fv.IsNil() {
				continue
			}
			fields[f.Name] = ProjectTo(fv.Interface())
		}
		return &Projector{kind: projStruct, primal: rt, fields: fields}
	case reflect.Slice, reflect.Array:
		switch rv.Type().Elem().Kind() {
		case reflect.Bool, reflect.String,
			reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			return &Projector{kind: projNoTangent}
		}
		return &Projector{kind: projIdentity}
	default:
		return &Projector{kind: projIdentity}
	}
}

// Apply projects a tangent onto the projector's space. The NoTangent
// projector maps everything there, deferred or not, without forcing.
// Otherwise zero-likes and NotImplemented pass through untouched and
// deferred tangents stay deferred, the projection wrapped around them.
func (p *Projector) Apply(t Tangent) Tangent {
	checkOperands("Project", t)
	if p.kind == projNoTangent {
		return NoTangent{}
	}
	if IsZeroLike(t) {
		return t
	}
	if _, ok := t.(*NotImplemented); ok {
		return t
	}
	if d, ok := t.(Deferred); ok {
		return deferUnary(d, p.Apply)
	}
	switch p.kind {
	case projIdentity:
		return t
	case projScalar:
		return p.applyScalar(t)
	case projSliceF64, projSliceC128:
		return p.applySlice(t)
	case projDense:
		return p.applyDense(t)
	case projDiagonal:
		return p.applyDiagonal(t)
	case projSymmetric:
		return p.applySymmetric(t)
	case projTriangular:
		return p.applyTriangular(t)
	case projSparseVector:
		return p.applySparseVector(t)
	case projSparseCSC:
		return p.applySparseCSC(t)
	default:
		return p.applyStruct(t)
	}
}

// applyScalar narrows a scalar tangent onto the primal's scalar type,
// keeping named types and taking the real part when the target is real.
func (p *Projector) applyScalar(t Tangent) Tangent {
	v, _, ok := asScalar(t)
	if !ok {
		panic(p.errFor(t))
	}
	if k := p.scalar.Kind(); k == reflect.Complex64 || k == reflect.Complex128 {
		return reflect.ValueOf(v).Convert(p.scalar).Interface()
	}
	return reflect.ValueOf(real(v)).Convert(p.scalar).Interface()
}

func (p *Projector) applySlice(t Tangent) Tangent {
	if xs, ok := t.([]float64); ok && p.kind == projSliceF64 {
		p.checkVecLen(len(xs))
		return xs
	}
	if xs, ok := t.([]complex128); ok && p.kind == projSliceC128 {
		p.checkVecLen(len(xs))
		return xs
	}
	d, ok := toDense(t)
	if !ok {
		panic(p.errFor(t))
	}
	if len(d.Shape()) != 1 {
		panic(&ProjectionError{Op: "Project", Want: tensor.Shape{p.n}.String(), Got: d.Shape().String()})
	}
	p.checkVecLen(d.NumElements())
	d = p.coerce(d)
	if p.kind == projSliceF64 {
		return append([]float64(nil), d.AsFloat64()...)
	}
	return append([]complex128(nil), d.AsComplex128()...)
}

func (p *Projector) applyDense(t Tangent) Tangent {
	d, ok := toDense(t)
	if !ok {
		panic(p.errFor(t))
	}
	if !d.Shape().Equal(p.shape) {
		if d.NumElements() != p.shape.NumElements() {
			panic(&ProjectionError{Op: "Project", Want: p.shape.String(), Got: d.Shape().String()})
		}
		r, err := d.Reshape(p.shape)
		if err != nil {
			panic(err)
		}
		d = r
	}
	return p.coerce(d)
}

// applyDiagonal keeps only the diagonal of whatever lands on a diagonal
// primal; off-diagonal mass is structurally zero there, not an error.
func (p *Projector) applyDiagonal(t Tangent) Tangent {
	if x, ok := t.(*tensor.Diagonal); ok && x.N() == p.n {
		if x.DType() == p.dtype {
			return x
		}
		return p.rebuildDiagonal(x.Diag())
	}
	d, ok := toDense(t)
	if !ok {
		panic(p.errFor(t))
	}
	p.checkSquare(d.Shape())
	return p.rebuildDiagonal(tensor.DiagFromDense(d).Diag())
}

func (p *Projector) rebuildDiagonal(diag *tensor.Dense) *tensor.Diagonal {
	nd, err := tensor.NewDiagonal(p.coerce(diag))
	if err != nil {
		panic(err)
	}
	return nd
}

func (p *Projector) applySymmetric(t Tangent) Tangent {
	if x, ok := t.(*tensor.Symmetric); ok && x.N() == p.n && x.DType() == p.dtype {
		return x
	}
	d, ok := toDense(t)
	if !ok {
		panic(p.errFor(t))
	}
	p.checkSquare(d.Shape())
	return tensor.SymmetrizeDense(p.coerce(d))
}

func (p *Projector) applyTriangular(t Tangent) Tangent {
	if x, ok := t.(*tensor.Triangular); ok && x.N() == p.n && x.Uplo() == p.uplo && x.DType() == p.dtype {
		return x
	}
	d, ok := toDense(t)
	if !ok {
		panic(p.errFor(t))
	}
	p.checkSquare(d.Shape())
	return tensor.TriangularFromDense(p.coerce(d), p.uplo)
}

func (p *Projector) applySparseVector(t Tangent) Tangent {
	d, ok := toDense(t)
	if !ok {
		panic(p.errFor(t))
	}
	if len(d.Shape()) != 1 || d.NumElements() != p.sv.N() {
		panic(&ProjectionError{Op: "Project", Want: p.sv.Shape().String(), Got: d.Shape().String()})
	}
	return p.sv.GatherFrom(p.coerce(d))
}

func (p *Projector) applySparseCSC(t Tangent) Tangent {
	d, ok := toDense(t)
	if !ok {
		panic(p.errFor(t))
	}
	if !d.Shape().Equal(p.csc.Shape()) {
		panic(&ProjectionError{Op: "Project", Want: p.csc.Shape().String(), Got: d.Shape().String()})
	}
	return p.csc.GatherFrom(p.coerce(d))
}

// applyStruct projects each present field through its own projector.
// Fields without one, unexported or unknown, are not differentiable and
// project to NoTangent.
func (p *Projector) applyStruct(t Tangent) Tangent {
	s, ok := t.(*Structural)
	if !ok {
		panic(p.errFor(t))
	}
	if s.primal != p.primal {
		panic(&PrimalMismatchError{Op: "Project", Want: p.primal, Got: s.primal})
	}
	if s.back != FieldsBacking {
		panic(&UsageError{Op: "Project", Detail: fmt.Sprintf("%s-backed tangent for struct primal %v", s.back, p.primal)})
	}
	out := make(map[string]Tangent, len(s.fields))
	for name, v := range s.fields {
		sub, ok := p.fields[name]
		if !ok {
			out[name] = NoTangent{}
			continue
		}
		out[name] = sub.Apply(v)
	}
	return &Structural{primal: p.primal, back: FieldsBacking, fields: out}
}

// coerce converts a dense tangent to the target element type, taking the
// real part on the way from complex to real.
func (p *Projector) coerce(d *tensor.Dense) *tensor.Dense {
	if d.DType() == p.dtype {
		return d
	}
	if d.DType().IsComplex() && !p.dtype.IsComplex() {
		rp, err := d.RealPart()
		if err != nil {
			panic(err)
		}
		d = rp
	}
	out, err := d.Convert(p.dtype)
	if err != nil {
		panic(&ProjectionError{Op: "Project", Want: p.dtype.String(), Got: d.DType().String()})
	}
	return out
}

func (p *Projector) checkVecLen(n int) {
	if n != p.n {
		panic(&ProjectionError{Op: "Project", Want: tensor.Shape{p.n}.String(), Got: tensor.Shape{n}.String()})
	}
}

func (p *Projector) checkSquare(got tensor.Shape) {
	want := tensor.Shape{p.n, p.n}
	if !got.Equal(want) {
		panic(&ProjectionError{Op: "Project", Want: want.String(), Got: got.String()})
	}
}

func (p *Projector) errFor(t Tangent) error {
	return &ProjectionError{Op: "Project", Want: p.String(), Got: fmt.Sprintf("%T", t)}
}

func (p *Projector) String() string {
	switch p.kind {
	case projIdentity:
		return "Projector(identity)"
	case projNoTangent:
		return "Projector(NoTangent)"
	case projScalar:
		return fmt.Sprintf("Projector(%v)", p.scalar)
	case projSliceF64:
		return fmt.Sprintf("Projector([]float64 len %d)", p.n)
	case projSliceC128:
		return fmt.Sprintf("Projector([]complex128 len %d)", p.n)
	case projDense:
		return fmt.Sprintf("Projector(dense %s %s)", p.dtype, p.shape)
	case projDiagonal:
		return fmt.Sprintf("Projector(diagonal %s n=%d)", p.dtype, p.n)
	case projSymmetric:
		return fmt.Sprintf("Projector(symmetric %s n=%d)", p.dtype, p.n)
	case projTriangular:
		return fmt.Sprintf("Projector(%s triangular %s n=%d)", p.uplo, p.dtype, p.n)
	case projSparseVector:
		return fmt.Sprintf("Projector(sparse vector %s n=%d)", p.dtype, p.sv.N())
	case projSparseCSC:
		return fmt.Sprintf("Projector(sparse csc %s %s)", p.dtype, p.csc.Shape())
	default:
		return fmt.Sprintf("Projector(%v)", p.primal)
	}
}
