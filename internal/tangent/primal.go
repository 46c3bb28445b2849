package tangent

import (
	"fmt"
	"math"
	"reflect"
)

// FieldReconstructor lets a primal type own its reconstruction when the
// default field-by-field rebuild cannot work, for example when fields
// maintain invariants or unexported state derives from exported state.
// ReconstructFields receives the already-summed exported field values by
// name and returns the new primal.
type FieldReconstructor interface {
	ReconstructFields(fields map[string]any) (any, error)
}

// AddPrimal adds a tangent to a value of the primal type it
// differentiates, producing a new primal. Zero-like tangents return the
// primal unchanged, deferred tangents are forced, and structural tangents
// rebuild the primal entry by entry. Consuming a NotImplemented raises.
//
// Struct primals are rebuilt through their FieldReconstructor
// implementation when they have one; otherwise a new struct value is built
// by reflection, which requires every field carrying a non-zero tangent to
// be exported and numerically convertible. A pointer primal yields a
// pointer to a fresh value; the original is never mutated.
func AddPrimal(primal any, t Tangent) any {
	checkOperands("AddPrimal", t)
	if primal == nil {
		panic(&UsageError{Op: "AddPrimal", Detail: "nil primal"})
	}
	if IsZeroLike(t) {
		return primal
	}
	if ni, ok := t.(*NotImplemented); ok {
		panic(&NotImplementedError{Op: "AddPrimal", NI: ni})
	}
	if d, ok := t.(Deferred); ok {
		return AddPrimal(primal, d.Unthunk())
	}
	s, ok := t.(*Structural)
	if !ok {
		return Add(primal, t)
	}

	pv := reflect.ValueOf(primal)
	depth := 0
	for pv.Kind() == reflect.Pointer {
		if pv.IsNil() {
			panic(&UsageError{Op: "AddPrimal", Detail: "nil pointer primal"})
		}
		pv = pv.Elem()
		depth++
	}
	if pv.Type() != s.primal {
		panic(&PrimalMismatchError{Op: "AddPrimal", Want: s.primal, Got: pv.Type()})
	}

	if fr, ok := primal.(FieldReconstructor); ok && s.back == FieldsBacking && pv.Kind() == reflect.Struct {
		res, err := fr.ReconstructFields(summedFields(pv, s))
		if err != nil {
			panic(&ReconstructError{Primal: s.primal, Detail: "ReconstructFields failed", Cause: err})
		}
		return res
	}

	var out reflect.Value
	switch {
	case s.back == FieldsBacking && pv.Kind() == reflect.Struct:
		out = reconstructStruct(pv, s)
	case s.back == KeyValuesBacking && pv.Kind() == reflect.Map:
		out = reconstructMap(pv, s)
	case s.back == ElementsBacking && (pv.Kind() == reflect.Slice || pv.Kind() == reflect.Array):
		out = reconstructSequence(pv, s)
	default:
		panic(&UsageError{Op: "AddPrimal", Detail: fmt.Sprintf("%s-backed tangent cannot rebuild a %v primal", s.back, pv.Kind())})
	}
	for ; depth > 0; depth-- {
		p := reflect.New(out.Type())
		p.Elem().Set(out)
		out = p
	}
	return out.Interface()
}

// summedFields computes the per-field sums handed to a
// FieldReconstructor. Unexported fields are left to the reconstructor; a
// non-zero tangent on one is unusable and raises.
func summedFields(pv reflect.Value, s *Structural) map[string]any {
	canon := s.Canonicalize()
	fields := make(map[string]any, s.primal.NumField())
	for i := 0; i < s.primal.NumField(); i++ {
		f := s.primal.Field(i)
		tan := canon.fields[f.Name]
		if !f.IsExported() {
			if !IsZeroLike(tan) {
				panic(&ReconstructError{Primal: s.primal, Detail: fmt.Sprintf("tangent present for unexported field %s", f.Name)})
			}
			continue
		}
		cur := pv.Field(i).Interface()
		if IsZeroLike(tan) {
			fields[f.Name] = cur
		} else {
			fields[f.Name] = AddPrimal(cur, tan)
		}
	}
	return fields
}

// reconstructStruct rebuilds a struct primal field by field. Fields with
// zero-like tangents are copied; the rest are summed and converted back to
// the declared field type.
func reconstructStruct(pv reflect.Value, s *Structural) reflect.Value {
	canon := s.Canonicalize()
	out := reflect.New(s.primal).Elem()
	out.Set(pv)
	for i := 0; i < s.primal.NumField(); i++ {
		f := s.primal.Field(i)
		tan := canon.fields[f.Name]
		if IsZeroLike(tan) {
			continue
		}
		if !f.IsExported() {
			panic(&ReconstructError{Primal: s.primal, Detail: fmt.Sprintf("cannot set unexported field %s", f.Name)})
		}
		sum := AddPrimal(pv.Field(i).Interface(), tan)
		assignNumeric(out.Field(i), sum, s.primal)
	}
	return out
}

// reconstructMap rebuilds a map primal: untouched keys are copied, keys
// with tangents are summed. A tangent key the primal does not hold raises.
func reconstructMap(pv reflect.Value, s *Structural) reflect.Value {
	out := reflect.MakeMapWithSize(pv.Type(), pv.Len())
	iter := pv.MapRange()
	for iter.Next() {
		out.SetMapIndex(iter.Key(), iter.Value())
	}
	keyType := pv.Type().Key()
	s.EachKey(func(k any, tan Tangent) {
		if IsZeroLike(tan) {
			return
		}
		rk := reflect.ValueOf(k)
		if !rk.IsValid() {
			panic(&ReconstructError{Primal: s.primal, Detail: "nil tangent key"})
		}
		if rk.Type() != keyType {
			if !rk.Type().ConvertibleTo(keyType) {
				panic(&ReconstructError{Primal: s.primal, Detail: fmt.Sprintf("key %v has type %v, map wants %v", k, rk.Type(), keyType)})
			}
			rk = rk.Convert(keyType)
		}
		cur := out.MapIndex(rk)
		if !cur.IsValid() {
			panic(&ReconstructError{Primal: s.primal, Detail: fmt.Sprintf("key %v not present in primal", k)})
		}
		sum := AddPrimal(cur.Interface(), tan)
		slot := reflect.New(pv.Type().Elem()).Elem()
		assignNumeric(slot, sum, s.primal)
		out.SetMapIndex(rk, slot)
	})
	return out
}

// reconstructSequence rebuilds a slice or array primal positionally. The
// tangent may be shorter than the primal, never longer.
func reconstructSequence(pv reflect.Value, s *Structural) reflect.Value {
	if len(s.elems) > pv.Len() {
		panic(&ReconstructError{Primal: s.primal, Detail: fmt.Sprintf("tangent has %d elements, primal has %d", len(s.elems), pv.Len())})
	}
	var out reflect.Value
	if pv.Kind() == reflect.Slice {
		out = reflect.MakeSlice(pv.Type(), pv.Len(), pv.Len())
		reflect.Copy(out, pv)
	} else {
		out = reflect.New(pv.Type()).Elem()
		out.Set(pv)
	}
	for i, tan := range s.elems {
		if IsZeroLike(tan) {
			continue
		}
		sum := AddPrimal(pv.Index(i).Interface(), tan)
		assignNumeric(out.Index(i), sum, s.primal)
	}
	return out
}

// assignNumeric stores a summed value into a primal slot, converting
// between numeric widths. Conversions that would silently lose value, a
// fractional float into an integer slot or a complex into a real one,
// raise instead.
func assignNumeric(dst reflect.Value, sum any, primal reflect.Type) {
	sv := reflect.ValueOf(sum)
	if sv.Type() == dst.Type() {
		dst.Set(sv)
		return
	}
	if !sv.Type().ConvertibleTo(dst.Type()) {
		panic(&ReconstructError{Primal: primal, Detail: fmt.Sprintf("cannot convert %v to %v", sv.Type(), dst.Type())})
	}
	switch dst.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if sv.Kind() == reflect.Float32 || sv.Kind() == reflect.Float64 {
			if f := sv.Float(); f != math.Trunc(f) {
				panic(&ReconstructError{Primal: primal, Detail: fmt.Sprintf("cannot store %v into %v without truncation", sum, dst.Type())})
			}
		}
	}
	dst.Set(sv.Convert(dst.Type()))
}
