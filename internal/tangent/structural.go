package tangent

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Backing identifies how a structural tangent stores its entries. The
// backing mirrors the primal it differentiates: structs carry named
// fields, tuple-like values carry ordered elements, map-like values carry
// key-value pairs.
type Backing int

const (
	// FieldsBacking stores tangents by field name.
	FieldsBacking Backing = iota
	// ElementsBacking stores tangents by position.
	ElementsBacking
	// KeyValuesBacking stores tangents by arbitrary key.
	KeyValuesBacking
)

// String returns a human-readable name for the backing.
func (b Backing) String() string {
	switch b {
	case FieldsBacking:
		return "fields"
	case ElementsBacking:
		return "elements"
	case KeyValuesBacking:
		return "keyvalues"
	default:
		return "unknown"
	}
}

// Fields is the named-entry literal used to build field-backed tangents.
type Fields map[string]Tangent

// KeyValues is the keyed-entry literal used to build key-value tangents.
type KeyValues map[any]Tangent

// Structural is a tangent mirroring the layout of a composite primal: it
// holds tangents for a subset of the primal's fields, elements or keys,
// with every absent entry an implicit ZeroTangent. It is tagged with the
// primal type so that tangents of unrelated primals cannot be summed.
//
// Example:
//
//	type Point struct{ X, Y float64 }
//	dp := tangent.For[Point](tangent.Fields{"X": 2.5})
//	dp.Field("X") // 2.5
//	dp.Field("Y") // ZeroTangent{}
type Structural struct {
	primal reflect.Type
	back   Backing
	fields map[string]Tangent
	elems  []Tangent
	kv     map[any]Tangent
}

// For builds a field-backed tangent for the primal type P. Field names are
// validated lazily: construction is permissive, canonicalization and
// primal reconstruction reject names P does not declare.
func For[P any](fields Fields) *Structural {
	return ForType(reflect.TypeOf((*P)(nil)).Elem(), fields)
}

// ForType is For with a runtime primal type. Pointer types are normalized
// to their element type.
func ForType(primal reflect.Type, fields Fields) *Structural {
	own := make(map[string]Tangent, len(fields))
	for k, v := range fields {
		if v == nil {
			panic(&UsageError{Op: "ForType", Detail: fmt.Sprintf("nil tangent for field %q", k)})
		}
		own[k] = v
	}
	return &Structural{primal: normalizePrimal("ForType", primal), back: FieldsBacking, fields: own}
}

// ElementsFor builds an ordered tangent for the primal type P, entry i
// differentiating the primal's i-th slot.
func ElementsFor[P any](elems ...Tangent) *Structural {
	return ElementsForType(reflect.TypeOf((*P)(nil)).Elem(), elems...)
}

// ElementsForType is ElementsFor with a runtime primal type.
func ElementsForType(primal reflect.Type, elems ...Tangent) *Structural {
	own := make([]Tangent, len(elems))
	for i, v := range elems {
		if v == nil {
			panic(&UsageError{Op: "ElementsForType", Detail: fmt.Sprintf("nil tangent at element %d", i)})
		}
		own[i] = v
	}
	return &Structural{primal: normalizePrimal("ElementsForType", primal), back: ElementsBacking, elems: own}
}

// KeyValuesFor builds a keyed tangent for the primal type P, one entry per
// differentiated key of a map-like primal.
func KeyValuesFor[P any](kv KeyValues) *Structural {
	return KeyValuesForType(reflect.TypeOf((*P)(nil)).Elem(), kv)
}

// KeyValuesForType is KeyValuesFor with a runtime primal type.
func KeyValuesForType(primal reflect.Type, kv KeyValues) *Structural {
	own := make(map[any]Tangent, len(kv))
	for k, v := range kv {
		if v == nil {
			panic(&UsageError{Op: "KeyValuesForType", Detail: fmt.Sprintf("nil tangent for key %v", k)})
		}
		own[k] = v
	}
	return &Structural{primal: normalizePrimal("KeyValuesForType", primal), back: KeyValuesBacking, kv: own}
}

func normalizePrimal(op string, primal reflect.Type) reflect.Type {
	if primal == nil {
		panic(&UsageError{Op: op, Detail: "nil primal type"})
	}
	for primal.Kind() == reflect.Pointer {
		primal = primal.Elem()
	}
	return primal
}

// Primal returns the primal type this tangent differentiates.
func (s *Structural) Primal() reflect.Type { return s.primal }

// Backing returns how the entries are stored.
func (s *Structural) Backing() Backing { return s.back }

// Len returns the number of entries present. Absent entries are implicit
// zeros and do not count.
func (s *Structural) Len() int {
	switch s.back {
	case FieldsBacking:
		return len(s.fields)
	case ElementsBacking:
		return len(s.elems)
	default:
		return len(s.kv)
	}
}

// Field returns the tangent for a named field, or ZeroTangent when the
// field is absent. Accessing an absent field never raises.
func (s *Structural) Field(name string) Tangent {
	if s.back == FieldsBacking {
		if v, ok := s.fields[name]; ok {
			return v
		}
	}
	return ZeroTangent{}
}

// Element returns the tangent at position i, or ZeroTangent when absent.
func (s *Structural) Element(i int) Tangent {
	if s.back == ElementsBacking && i >= 0 && i < len(s.elems) {
		return s.elems[i]
	}
	return ZeroTangent{}
}

// Key returns the tangent for a key, or ZeroTangent when absent. The key
// must be comparable; map-like primals guarantee that.
func (s *Structural) Key(k any) Tangent {
	if s.back == KeyValuesBacking {
		if v, ok := s.kv[k]; ok {
			return v
		}
	}
	return ZeroTangent{}
}

// EachField visits the present fields in a deterministic order: the
// primal's declared order first, then any extra names lexically.
func (s *Structural) EachField(fn func(name string, t Tangent)) {
	if s.back != FieldsBacking {
		return
	}
	for _, name := range s.fieldOrder() {
		fn(name, s.fields[name])
	}
}

// EachElement visits the present elements in positional order.
func (s *Structural) EachElement(fn func(i int, t Tangent)) {
	for i, v := range s.elems {
		fn(i, v)
	}
}

// EachKey visits the present keys sorted by their formatted value, which
// makes iteration deterministic without requiring ordered keys.
func (s *Structural) EachKey(fn func(k any, t Tangent)) {
	if s.back != KeyValuesBacking {
		return
	}
	keys := make([]any, 0, len(s.kv))
	for k := range s.kv {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return fmt.Sprint(keys[i]) < fmt.Sprint(keys[j])
	})
	for _, k := range keys {
		fn(k, s.kv[k])
	}
}

// fieldOrder returns the present field names, primal declaration order
// first, then extras lexically.
func (s *Structural) fieldOrder() []string {
	seen := make(map[string]bool, len(s.fields))
	order := make([]string, 0, len(s.fields))
	if s.primal.Kind() == reflect.Struct {
		for i := 0; i < s.primal.NumField(); i++ {
			name := s.primal.Field(i).Name
			if _, ok := s.fields[name]; ok && !seen[name] {
				seen[name] = true
				order = append(order, name)
			}
		}
	}
	extras := make([]string, 0)
	for name := range s.fields {
		if !seen[name] {
			extras = append(extras, name)
		}
	}
	sort.Strings(extras)
	return append(order, extras...)
}

// Canonicalize returns an equivalent tangent with every field of the
// primal present, absent ones filled with ZeroTangent. Field names the
// primal does not declare raise a usage error. Element- and key-backed
// tangents are already canonical by construction and return themselves.
func (s *Structural) Canonicalize() *Structural {
	if s.back != FieldsBacking {
		return s
	}
	if s.primal.Kind() != reflect.Struct {
		panic(&UsageError{Op: "Canonicalize", Detail: fmt.Sprintf("field-backed tangent for non-struct primal %v", s.primal)})
	}
	declared := make(map[string]bool, s.primal.NumField())
	full := make(map[string]Tangent, s.primal.NumField())
	for i := 0; i < s.primal.NumField(); i++ {
		name := s.primal.Field(i).Name
		declared[name] = true
		full[name] = ZeroTangent{}
	}
	var extraneous []string
	for name, v := range s.fields {
		if !declared[name] {
			extraneous = append(extraneous, name)
			continue
		}
		full[name] = v
	}
	if len(extraneous) > 0 {
		sort.Strings(extraneous)
		panic(&UsageError{
			Op:     "Canonicalize",
			Detail: fmt.Sprintf("fields %v are not declared by %v", extraneous, s.primal),
		})
	}
	return &Structural{primal: s.primal, back: FieldsBacking, fields: full}
}

// add merges two structural tangents of the same primal: per-entry union,
// summing entries present in both, passing through entries present in one.
func (s *Structural) add(o *Structural) *Structural {
	if s.primal != o.primal {
		panic(&PrimalMismatchError{Op: "Add", Want: s.primal, Got: o.primal})
	}
	if s.back != o.back {
		panic(&UsageError{Op: "Add", Detail: fmt.Sprintf("mismatched backings %s and %s for primal %v", s.back, o.back, s.primal)})
	}
	switch s.back {
	case FieldsBacking:
		merged := make(map[string]Tangent, len(s.fields)+len(o.fields))
		for name, v := range s.fields {
			merged[name] = v
		}
		for name, v := range o.fields {
			if cur, ok := merged[name]; ok {
				merged[name] = Add(cur, v)
			} else {
				merged[name] = v
			}
		}
		return &Structural{primal: s.primal, back: FieldsBacking, fields: merged}
	case ElementsBacking:
		n := len(s.elems)
		if len(o.elems) > n {
			n = len(o.elems)
		}
		merged := make([]Tangent, n)
		for i := range merged {
			switch {
			case i >= len(s.elems):
				merged[i] = o.elems[i]
			case i >= len(o.elems):
				merged[i] = s.elems[i]
			default:
				merged[i] = Add(s.elems[i], o.elems[i])
			}
		}
		return &Structural{primal: s.primal, back: ElementsBacking, elems: merged}
	default:
		merged := make(map[any]Tangent, len(s.kv)+len(o.kv))
		for k, v := range s.kv {
			merged[k] = v
		}
		for k, v := range o.kv {
			if cur, ok := merged[k]; ok {
				merged[k] = Add(cur, v)
			} else {
				merged[k] = v
			}
		}
		return &Structural{primal: s.primal, back: KeyValuesBacking, kv: merged}
	}
}

// conj conjugates every present entry.
func (s *Structural) conj() *Structural {
	return s.transform(Conj)
}

// transform applies fn to every present entry, keeping primal and backing.
func (s *Structural) transform(fn func(Tangent) Tangent) *Structural {
	out := &Structural{primal: s.primal, back: s.back}
	switch s.back {
	case FieldsBacking:
		out.fields = make(map[string]Tangent, len(s.fields))
		for name, v := range s.fields {
			out.fields[name] = fn(v)
		}
	case ElementsBacking:
		out.elems = make([]Tangent, len(s.elems))
		for i, v := range s.elems {
			out.elems[i] = fn(v)
		}
	default:
		out.kv = make(map[any]Tangent, len(s.kv))
		for k, v := range s.kv {
			out.kv[k] = fn(v)
		}
	}
	return out
}

// dot sums the inner products of entries present in both operands; an
// entry present in only one contributes zero.
func (s *Structural) dot(o *Structural) complex128 {
	if s.primal != o.primal {
		panic(&PrimalMismatchError{Op: "Dot", Want: s.primal, Got: o.primal})
	}
	if s.back != o.back {
		panic(&UsageError{Op: "Dot", Detail: fmt.Sprintf("mismatched backings %s and %s for primal %v", s.back, o.back, s.primal)})
	}
	var sum complex128
	switch s.back {
	case FieldsBacking:
		for name, v := range s.fields {
			if w, ok := o.fields[name]; ok {
				sum += Dot(v, w)
			}
		}
	case ElementsBacking:
		n := len(s.elems)
		if len(o.elems) < n {
			n = len(o.elems)
		}
		for i := 0; i < n; i++ {
			sum += Dot(s.elems[i], o.elems[i])
		}
	default:
		for k, v := range s.kv {
			if w, ok := o.kv[k]; ok {
				sum += Dot(v, w)
			}
		}
	}
	return sum
}

// equal reports equality under implicit-zero semantics: entries absent in
// one operand compare as ZeroTangent, order never matters.
func (s *Structural) equal(o *Structural) bool {
	if s.primal != o.primal || s.back != o.back {
		return false
	}
	switch s.back {
	case FieldsBacking:
		for name := range s.fields {
			if !Equal(s.Field(name), o.Field(name)) {
				return false
			}
		}
		for name := range o.fields {
			if _, ok := s.fields[name]; !ok {
				if !Equal(ZeroTangent{}, o.fields[name]) {
					return false
				}
			}
		}
		return true
	case ElementsBacking:
		n := len(s.elems)
		if len(o.elems) > n {
			n = len(o.elems)
		}
		for i := 0; i < n; i++ {
			if !Equal(s.Element(i), o.Element(i)) {
				return false
			}
		}
		return true
	default:
		for k := range s.kv {
			if !Equal(s.Key(k), o.Key(k)) {
				return false
			}
		}
		for k := range o.kv {
			if _, ok := s.kv[k]; !ok {
				if !Equal(ZeroTangent{}, o.kv[k]) {
					return false
				}
			}
		}
		return true
	}
}

// approxEqual is equal with a tolerance on numeric leaves.
func (s *Structural) approxEqual(o *Structural, tol float64) bool {
	if s.primal != o.primal || s.back != o.back {
		return false
	}
	switch s.back {
	case FieldsBacking:
		for name := range s.fields {
			if !ApproxEqual(s.Field(name), o.Field(name), tol) {
				return false
			}
		}
		for name := range o.fields {
			if _, ok := s.fields[name]; !ok {
				if !ApproxEqual(ZeroTangent{}, o.fields[name], tol) {
					return false
				}
			}
		}
		return true
	case ElementsBacking:
		n := len(s.elems)
		if len(o.elems) > n {
			n = len(o.elems)
		}
		for i := 0; i < n; i++ {
			if !ApproxEqual(s.Element(i), o.Element(i), tol) {
				return false
			}
		}
		return true
	default:
		for k := range s.kv {
			if !ApproxEqual(s.Key(k), o.Key(k), tol) {
				return false
			}
		}
		for k := range o.kv {
			if _, ok := s.kv[k]; !ok {
				if !ApproxEqual(ZeroTangent{}, o.kv[k], tol) {
					return false
				}
			}
		}
		return true
	}
}

func (s *Structural) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Structural[%v](", s.primal)
	first := true
	comma := func() {
		if !first {
			sb.WriteString(", ")
		}
		first = false
	}
	switch s.back {
	case FieldsBacking:
		s.EachField(func(name string, t Tangent) {
			comma()
			fmt.Fprintf(&sb, "%s=%v", name, t)
		})
	case ElementsBacking:
		s.EachElement(func(_ int, t Tangent) {
			comma()
			fmt.Fprintf(&sb, "%v", t)
		})
	default:
		s.EachKey(func(k any, t Tangent) {
			comma()
			fmt.Fprintf(&sb, "%v=%v", k, t)
		})
	}
	sb.WriteString(")")
	return sb.String()
}
