package tangent

import "fmt"

// NotImplemented records a genuinely missing derivative: the rule author
// knows the derivative exists but has not written it. Unlike NoTangent it
// is not a zero; it propagates itself through + and * so a partially
// differentiated result is visibly poisoned, and it raises as soon as
// something tries to consume its numeric value.
type NotImplemented struct {
	pkg  string
	site Site
	note string
}

// NewNotImplemented marks a missing derivative. pkg names the module the
// gap belongs to and note is free text for the eventual error message; the
// caller's source location is recorded automatically.
func NewNotImplemented(pkg, note string) *NotImplemented {
	return &NotImplemented{pkg: pkg, site: callerSite(1), note: note}
}

// Pkg returns the originating module name.
func (ni *NotImplemented) Pkg() string { return ni.pkg }

// Note returns the free-text description of the gap.
func (ni *NotImplemented) Note() string { return ni.note }

// Site returns where the marker was created.
func (ni *NotImplemented) Site() Site { return ni.site }

func (ni *NotImplemented) String() string {
	return fmt.Sprintf("NotImplemented(%s, %s, %q)", ni.pkg, ni.site, ni.note)
}
