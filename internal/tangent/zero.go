package tangent

// ZeroTangent is the additive identity for every primal type: a hard,
// per-entry zero the engine may short-circuit on. It is a stateless value
// type; all instances are interchangeable. Externalizing it yields the
// canonical zero literal.
type ZeroTangent struct{}

func (ZeroTangent) String() string { return "ZeroTangent" }

// NoTangent marks that no meaningful derivative exists, such as the
// derivative with respect to an integer index or a boolean flag. It is
// arithmetically identical to ZeroTangent but refuses externalization,
// which is the one place the distinction is observable.
type NoTangent struct{}

func (NoTangent) String() string { return "NoTangent" }
