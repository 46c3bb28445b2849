package rules

import (
	"github.com/born-ml/tangent/internal/tangent"
)

// Capability names an engine feature a registered rule may require.
type Capability string

// Capabilities an engine config can advertise.
const (
	// HasForwardMode marks engines that can push tangents through
	// arbitrary inner calls.
	HasForwardMode Capability = "forward-mode"

	// HasReverseMode marks engines that can build pullbacks for
	// arbitrary inner calls.
	HasReverseMode Capability = "reverse-mode"
)

// Config describes the engine driving a rule. Every rule receives it as
// the first argument; rules for composite functions inspect it to decide
// whether the engine can differentiate their inner calls.
type Config interface {
	Has(Capability) bool
}

// CapSet is a Config backed by a plain capability set.
type CapSet map[Capability]struct{}

// NewConfig returns a CapSet advertising the given capabilities.
func NewConfig(caps ...Capability) CapSet {
	s := make(CapSet, len(caps))
	for _, c := range caps {
		s[c] = struct{}{}
	}
	return s
}

// Has reports whether the capability is in the set.
func (s CapSet) Has(c Capability) bool {
	_, ok := s[c]
	return ok
}

// ForwardViaAD is the callback contract behind HasForwardMode. A rule
// that needs the derivative of an inner call checks for it with an
// ordinary type assertion:
//
//	if eng, ok := cfg.(ForwardViaAD); ok {
//		y, dy, err := eng.FruleViaAD(seeds, inner, x)
//		...
//	}
type ForwardViaAD interface {
	Config

	// FruleViaAD differentiates f(args...) forward-mode using the
	// engine itself rather than a registered rule.
	FruleViaAD(seeds []tangent.Tangent, f any, args ...any) (any, tangent.Tangent, error)
}

// ReverseViaAD is the callback contract behind HasReverseMode,
// checked the same way as ForwardViaAD.
type ReverseViaAD interface {
	Config

	// RruleViaAD builds a pullback for f(args...) using the engine
	// itself rather than a registered rule.
	RruleViaAD(f any, args ...any) (any, Pullback, error)
}
