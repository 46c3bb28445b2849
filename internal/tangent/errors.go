package tangent

import (
	"errors"
	"fmt"
	"reflect"
)

// Sentinel errors for the algebra. Operator panics carry typed values
// whose Is methods match these, so callers classify failures with
// errors.Is without depending on concrete error types.
var (
	// ErrUsage indicates the algebra was called outside its contract:
	// nil operands, mismatched backings, operations with no meaning for
	// the given representations.
	ErrUsage = errors.New("tangent: usage error")

	// ErrPrimalMismatch indicates structural tangents (or a tangent and a
	// primal) for two different primal types were combined.
	ErrPrimalMismatch = errors.New("tangent: primal type mismatch")

	// ErrProjection indicates a tangent could not be mapped onto a
	// primal's subspace, usually a dimension mismatch.
	ErrProjection = errors.New("tangent: projection mismatch")

	// ErrMutationMismatch indicates an in-place accumulation disagreed
	// with its value-form equivalent (debug mode check).
	ErrMutationMismatch = errors.New("tangent: in-place accumulation mismatch")

	// ErrExtern indicates a tangent kind that cannot produce a concrete
	// value was externalized.
	ErrExtern = errors.New("tangent: cannot externalize")

	// ErrReconstruct indicates a primal could not be rebuilt from a
	// structural tangent.
	ErrReconstruct = errors.New("tangent: primal reconstruction failed")

	// ErrNotImplemented indicates a NotImplemented marker reached an
	// operation that must consume a real derivative value.
	ErrNotImplemented = errors.New("tangent: derivative not implemented")
)

// UsageError is the panic value for calls outside the algebra's contract.
type UsageError struct {
	Op     string
	Detail string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("tangent: %s: %s", e.Op, e.Detail)
}

// Is reports ErrUsage so errors.Is(err, ErrUsage) matches.
func (e *UsageError) Is(target error) bool { return target == ErrUsage }

// PrimalMismatchError is the panic value raised when tangents tagged with
// different primal types are combined.
type PrimalMismatchError struct {
	Op   string
	Want reflect.Type
	Got  reflect.Type
}

func (e *PrimalMismatchError) Error() string {
	return fmt.Sprintf("tangent: %s: tangents for different primal types %v and %v", e.Op, e.Want, e.Got)
}

// Is reports ErrPrimalMismatch so errors.Is matches.
func (e *PrimalMismatchError) Is(target error) bool { return target == ErrPrimalMismatch }

// ProjectionError is the panic value raised when an incoming tangent does
// not fit the projector's subspace, carrying the expected and actual
// descriptions for diagnosis.
type ProjectionError struct {
	Op   string
	Want string
	Got  string
}

func (e *ProjectionError) Error() string {
	return fmt.Sprintf("tangent: %s: cannot project %s onto %s", e.Op, e.Got, e.Want)
}

// Is reports ErrProjection so errors.Is matches.
func (e *ProjectionError) Is(target error) bool { return target == ErrProjection }

// MutationMismatchError is the debug-mode panic value raised when an
// InplaceableThunk's in-place path and value-form path disagree. Both
// computed values are carried for diagnosis.
type MutationMismatchError struct {
	Expected Tangent
	Got      Tangent
}

func (e *MutationMismatchError) Error() string {
	return fmt.Sprintf("tangent: in-place accumulation disagrees with value form: expected %v, got %v", e.Expected, e.Got)
}

// Is reports ErrMutationMismatch so errors.Is matches.
func (e *MutationMismatchError) Is(target error) bool { return target == ErrMutationMismatch }

// ExternError is the panic value raised when Extern cannot produce a
// concrete value.
type ExternError struct {
	Op     string
	Detail string
}

func (e *ExternError) Error() string {
	return fmt.Sprintf("tangent: %s: %s", e.Op, e.Detail)
}

// Is reports ErrExtern so errors.Is matches.
func (e *ExternError) Is(target error) bool { return target == ErrExtern }

// ReconstructError is the panic value raised when a primal cannot be
// rebuilt from a structural tangent: the type's constructor-equivalent
// failed, a field does not admit the summed value, or the type needs a
// custom FieldReconstructor it does not implement.
type ReconstructError struct {
	Primal reflect.Type
	Detail string
	Cause  error
}

func (e *ReconstructError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("tangent: reconstructing %v: %s: %v", e.Primal, e.Detail, e.Cause)
	}
	return fmt.Sprintf("tangent: reconstructing %v: %s", e.Primal, e.Detail)
}

// Unwrap returns the underlying constructor failure, if any.
func (e *ReconstructError) Unwrap() error { return e.Cause }

// Is reports ErrReconstruct so errors.Is matches.
func (e *ReconstructError) Is(target error) bool { return target == ErrReconstruct }

// NotImplementedError is the panic value raised when a NotImplemented
// marker flows into an operation that needs the missing value. It carries
// the marker's origin triple so the offending rule can be located without
// a debugger.
type NotImplementedError struct {
	Op string
	NI *NotImplemented
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("tangent: %s: derivative not implemented by %s at %s: %s", e.Op, e.NI.Pkg(), e.NI.Site(), e.NI.Note())
}

// Is reports ErrNotImplemented so errors.Is matches.
func (e *NotImplementedError) Is(target error) bool { return target == ErrNotImplemented }

// ThunkPanicError rethrows a panic raised while forcing a thunk, pointing
// at the thunk's creation site. The original panic value is preserved in
// Cause.
type ThunkPanicError struct {
	Site  Site
	Cause any
}

func (e *ThunkPanicError) Error() string {
	return fmt.Sprintf("tangent: panic while forcing thunk created at %s: %v", e.Site, e.Cause)
}

// Unwrap returns the cause when it was itself an error, so errors.Is can
// see through the deferral layer.
func (e *ThunkPanicError) Unwrap() error {
	if err, ok := e.Cause.(error); ok {
		return err
	}
	return nil
}
