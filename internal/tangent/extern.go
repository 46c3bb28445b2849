package tangent

// Extern converts a tangent to a plain value for code outside the
// algebra: zeros become 0.0, deferred tangents are forced all the way
// down, structural tangents become maps and slices of externalized
// entries, and natural tangents pass through. NoTangent marks a primal
// with no tangent space, so externalizing it raises, as does consuming a
// NotImplemented.
func Extern(t Tangent) any {
	checkOperands("Extern", t)
	switch x := t.(type) {
	case ZeroTangent:
		return float64(0)
	case NoTangent:
		panic(&ExternError{Op: "Extern", Detail: "NoTangent has no external value: the primal is not differentiable"})
	case *NotImplemented:
		panic(&NotImplementedError{Op: "Extern", NI: x})
	case Deferred:
		return Extern(x.Unthunk())
	case *Structural:
		switch x.back {
		case FieldsBacking:
			out := make(map[string]any, len(x.fields))
			x.EachField(func(name string, v Tangent) { out[name] = Extern(v) })
			return out
		case ElementsBacking:
			out := make([]any, len(x.elems))
			x.EachElement(func(i int, v Tangent) { out[i] = Extern(v) })
			return out
		default:
			out := make(map[any]any, len(x.kv))
			x.EachKey(func(k any, v Tangent) { out[k] = Extern(v) })
			return out
		}
	default:
		return t
	}
}
