package tangent

import "sync/atomic"

// Debug carries the accumulation consistency checks as an explicit value
// rather than process-global state, so one pipeline can run checked while
// another runs fast. A nil *Debug is valid and means checks are off.
type Debug struct {
	enabled atomic.Bool
}

// NewDebug returns a Debug with checks off.
func NewDebug() *Debug { return &Debug{} }

// Enable turns consistency checks on. Returns the receiver for chaining.
func (d *Debug) Enable() *Debug {
	d.enabled.Store(true)
	return d
}

// Disable turns consistency checks off. Returns the receiver for chaining.
func (d *Debug) Disable() *Debug {
	d.enabled.Store(false)
	return d
}

// Enabled reports whether checks are on. Safe on a nil receiver.
func (d *Debug) Enabled() bool {
	return d != nil && d.enabled.Load()
}
