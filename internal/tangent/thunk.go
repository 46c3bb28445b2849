package tangent

import (
	"fmt"
	"runtime"
)

// Site records where a deferred value was created. Thunks are forced far
// from where they are built, so failures during forcing report the
// creation site rather than the forcing site.
type Site struct {
	Func string
	File string
	Line int
}

// callerSite captures the caller's frame, skip frames above this call.
func callerSite(skip int) Site {
	pc, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return Site{Func: "unknown"}
	}
	site := Site{File: file, Line: line}
	if fn := runtime.FuncForPC(pc); fn != nil {
		site.Func = fn.Name()
	}
	return site
}

func (s Site) String() string {
	if s.File == "" {
		return s.Func
	}
	return fmt.Sprintf("%s:%d (%s)", s.File, s.Line, s.Func)
}

// Thunk defers the computation of a tangent. Forcing is not cached: each
// Unthunk call re-invokes the closure, so the closure must be pure for
// repeated forcing to be idempotent. Ownership of captured values passes
// into the thunk at construction.
type Thunk struct {
	fn   func() Tangent
	site Site
}

// NewThunk wraps a zero-argument computation, recording the caller as the
// thunk's creation site.
func NewThunk(fn func() Tangent) *Thunk {
	if fn == nil {
		panic(&UsageError{Op: "NewThunk", Detail: "nil closure"})
	}
	return &Thunk{fn: fn, site: callerSite(1)}
}

// newThunkAt is NewThunk with an explicit site, used when the algebra
// derives one thunk from another and wants to keep blaming the original
// creation site.
func newThunkAt(site Site, fn func() Tangent) *Thunk {
	return &Thunk{fn: fn, site: site}
}

// Site returns where the thunk was created.
func (th *Thunk) Site() Site { return th.site }

// Unthunk removes exactly one layer of deferral by invoking the closure.
// A panic during forcing is rethrown as a *ThunkPanicError carrying the
// creation site.
func (th *Thunk) Unthunk() Tangent {
	defer func() {
		if r := recover(); r != nil {
			panic(&ThunkPanicError{Site: th.site, Cause: r})
		}
	}()
	return th.fn()
}

func (th *Thunk) String() string {
	return fmt.Sprintf("Thunk(%s)", th.site)
}

// InplaceableThunk pairs a value-form thunk with an in-place accumulation
// strategy. AccumAdd prefers the in-place path when the accumulator can be
// mutated safely and falls back to the value form otherwise, so both paths
// must compute the same mathematical result.
type InplaceableThunk struct {
	val     *Thunk
	addInto func(acc Tangent) Tangent
	site    Site
}

// NewInplaceableThunk wraps a value-form thunk and an accumulation
// function that adds the same deferred value into acc, returning the
// mutated accumulator.
func NewInplaceableThunk(val *Thunk, addInto func(acc Tangent) Tangent) *InplaceableThunk {
	if val == nil || addInto == nil {
		panic(&UsageError{Op: "NewInplaceableThunk", Detail: "nil value thunk or accumulation func"})
	}
	return &InplaceableThunk{val: val, addInto: addInto, site: callerSite(1)}
}

// Val returns the value-form thunk.
func (th *InplaceableThunk) Val() *Thunk { return th.val }

// Site returns where the inplaceable thunk was created.
func (th *InplaceableThunk) Site() Site { return th.site }

// Unthunk forces the value form, removing one layer of deferral.
func (th *InplaceableThunk) Unthunk() Tangent { return th.val.Unthunk() }

// AddInto runs the in-place path, accumulating the deferred value into acc
// and returning the mutated accumulator. Panics during accumulation are
// rethrown with the creation site, same as forcing.
func (th *InplaceableThunk) AddInto(acc Tangent) Tangent {
	defer func() {
		if r := recover(); r != nil {
			panic(&ThunkPanicError{Site: th.site, Cause: r})
		}
	}()
	return th.addInto(acc)
}

func (th *InplaceableThunk) String() string {
	return fmt.Sprintf("InplaceableThunk(%s)", th.site)
}

// Unthunk removes one layer of deferral from t, or returns t unchanged if
// it is not deferred. It is not recursive; Extern is.
func Unthunk(t Tangent) Tangent {
	if d, ok := t.(Deferred); ok {
		return d.Unthunk()
	}
	return t
}
