package rules

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/born-ml/tangent/internal/tangent"
)

// FruleFunc computes f(args...) together with its directional
// derivative. seeds carries the input tangents, one for the callee
// itself followed by one per argument. A rule declines by returning
// nil for both results; lookup then tries the next candidate.
type FruleFunc func(cfg Config, seeds []tangent.Tangent, args ...any) (any, tangent.Tangent)

// RruleFunc computes f(args...) together with the pullback of the
// call. A rule declines by returning nil for both results.
type RruleFunc func(cfg Config, args ...any) (any, Pullback)

// Pullback maps a cotangent of the result to cotangents of the callee
// and its arguments, in that order. A pullback may be called any
// number of times and every call is independent.
type Pullback func(cotangent tangent.Tangent) []tangent.Tangent

// Registry holds derivative rules keyed by function identity. Methods
// are safe for concurrent use. The zero value is not ready; call
// NewRegistry.
type Registry struct {
	mu     sync.RWMutex
	seq    uint64
	frules table[FruleFunc]
	rrules table[RruleFunc]
}

// NewRegistry returns an empty rule registry.
func NewRegistry() *Registry {
	return &Registry{
		frules: newTable[FruleFunc](),
		rrules: newTable[RruleFunc](),
	}
}

// RegisterOption adjusts how a rule is registered.
type RegisterOption func(*registerConfig)

type registerConfig struct {
	cap   Capability
	types []reflect.Type
}

// WithCapability gates the rule on an engine capability. Lookups whose
// config does not advertise cap never see the rule.
func WithCapability(cap Capability) RegisterOption {
	return func(rc *registerConfig) { rc.cap = cap }
}

// ForArgTypes specializes the rule to calls whose arguments have
// exactly the given dynamic types. Specialized rules take precedence
// over generic ones.
func ForArgTypes(types ...reflect.Type) RegisterOption {
	return func(rc *registerConfig) { rc.types = normTypes(types) }
}

// RegisterFrule installs rule as a forward rule for f.
func (r *Registry) RegisterFrule(f any, rule FruleFunc, opts ...RegisterOption) error {
	key, err := funcKey("RegisterFrule", f)
	if err != nil {
		return err
	}
	if rule == nil {
		return &UsageError{Op: "RegisterFrule", Detail: "nil rule"}
	}
	rc := applyOptions(opts)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	r.frules.add(key, entry[FruleFunc]{rule: rule, cap: rc.cap, types: rc.types, seq: r.seq})
	return nil
}

// RegisterRrule installs rule as a reverse rule for f.
func (r *Registry) RegisterRrule(f any, rule RruleFunc, opts ...RegisterOption) error {
	key, err := funcKey("RegisterRrule", f)
	if err != nil {
		return err
	}
	if rule == nil {
		return &UsageError{Op: "RegisterRrule", Detail: "nil rule"}
	}
	rc := applyOptions(opts)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	r.rrules.add(key, entry[RruleFunc]{rule: rule, cap: rc.cap, types: rc.types, seq: r.seq})
	return nil
}

// OptOutFrule records that f deliberately has no forward rule for the
// given argument types, or for any arguments when none are given.
// Matching lookups report "no rule" even when a generic rule exists,
// so engines fall back to decomposing f.
func (r *Registry) OptOutFrule(f any, reason string, argTypes ...reflect.Type) error {
	key, err := funcKey("OptOutFrule", f)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frules.optOuts[key] = append(r.frules.optOuts[key], optOut{types: normTypes(argTypes), reason: reason})
	return nil
}

// OptOutRrule records that f deliberately has no reverse rule for the
// given argument types, or for any arguments when none are given.
func (r *Registry) OptOutRrule(f any, reason string, argTypes ...reflect.Type) error {
	key, err := funcKey("OptOutRrule", f)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rrules.optOuts[key] = append(r.rrules.optOuts[key], optOut{types: normTypes(argTypes), reason: reason})
	return nil
}

// FruleOptOut reports the recorded reason f has no forward rule for
// args, if an opt-out matches.
func (r *Registry) FruleOptOut(f any, args ...any) (string, bool) {
	key := mustFuncKey("FruleOptOut", f)
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frules.optedOut(key, args)
}

// RruleOptOut reports the recorded reason f has no reverse rule for
// args, if an opt-out matches.
func (r *Registry) RruleOptOut(f any, args ...any) (string, bool) {
	key := mustFuncKey("RruleOptOut", f)
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rrules.optedOut(key, args)
}

// Frule looks up and invokes a forward rule for f. ok=false is the
// ordinary "no rule" outcome: the engine should decompose f itself.
// seeds must hold len(args)+1 tangents (callee first); anything else
// panics UsageError.
func (r *Registry) Frule(cfg Config, seeds []tangent.Tangent, f any, args ...any) (any, tangent.Tangent, bool) {
	key := mustFuncKey("Frule", f)
	if len(seeds) != len(args)+1 {
		panic(&UsageError{
			Op:     "Frule",
			Detail: fmt.Sprintf("%d arguments need %d seeds, got %d", len(args), len(args)+1, len(seeds)),
		})
	}
	r.mu.RLock()
	if _, out := r.frules.optedOut(key, args); out {
		r.mu.RUnlock()
		return nil, nil, false
	}
	cands := r.frules.candidates(key, cfg, args)
	r.mu.RUnlock()

	// Rules run outside the lock so they may consult the registry.
	for _, rule := range cands {
		if res, dres := rule(cfg, seeds, args...); res != nil || dres != nil {
			return res, dres, true
		}
	}
	return nil, nil, false
}

// Rrule looks up and invokes a reverse rule for f. ok=false is the
// ordinary "no rule" outcome: the engine should decompose f itself.
func (r *Registry) Rrule(cfg Config, f any, args ...any) (any, Pullback, bool) {
	key := mustFuncKey("Rrule", f)
	r.mu.RLock()
	if _, out := r.rrules.optedOut(key, args); out {
		r.mu.RUnlock()
		return nil, nil, false
	}
	cands := r.rrules.candidates(key, cfg, args)
	r.mu.RUnlock()

	for _, rule := range cands {
		if res, pb := rule(cfg, args...); res != nil || pb != nil {
			return res, pb, true
		}
	}
	return nil, nil, false
}

// entry is one registered rule with its selection metadata.
type entry[R any] struct {
	rule  R
	cap   Capability
	types []reflect.Type
	seq   uint64
}

// optOut is a recorded "deliberately no rule" marker.
type optOut struct {
	types  []reflect.Type
	reason string
}

type table[R any] struct {
	entries map[uintptr][]entry[R]
	optOuts map[uintptr][]optOut
}

func newTable[R any]() table[R] {
	return table[R]{
		entries: make(map[uintptr][]entry[R]),
		optOuts: make(map[uintptr][]optOut),
	}
}

func (t *table[R]) add(key uintptr, e entry[R]) {
	t.entries[key] = append(t.entries[key], e)
}

func (t *table[R]) optedOut(key uintptr, args []any) (string, bool) {
	for _, o := range t.optOuts[key] {
		if matchTypes(o.types, args) {
			return o.reason, true
		}
	}
	return "", false
}

// candidates returns the rules eligible for args under cfg, most
// preferred first: capability-gated before ungated, argument-typed
// before generic, later registrations before earlier ones.
func (t *table[R]) candidates(key uintptr, cfg Config, args []any) []R {
	var picked []entry[R]
	for _, e := range t.entries[key] {
		if e.cap != "" && (cfg == nil || !cfg.Has(e.cap)) {
			continue
		}
		if !matchTypes(e.types, args) {
			continue
		}
		picked = append(picked, e)
	}
	sort.SliceStable(picked, func(i, j int) bool {
		a, b := picked[i], picked[j]
		if (a.cap != "") != (b.cap != "") {
			return a.cap != ""
		}
		if (a.types != nil) != (b.types != nil) {
			return a.types != nil
		}
		return a.seq > b.seq
	})
	out := make([]R, len(picked))
	for i, e := range picked {
		out[i] = e.rule
	}
	return out
}

// matchTypes reports whether each argument's dynamic type equals the
// wanted type. A nil want list matches anything.
func matchTypes(want []reflect.Type, args []any) bool {
	if want == nil {
		return true
	}
	if len(want) != len(args) {
		return false
	}
	for i, w := range want {
		if args[i] == nil || reflect.TypeOf(args[i]) != w {
			return false
		}
	}
	return true
}

func normTypes(types []reflect.Type) []reflect.Type {
	if len(types) == 0 {
		return nil
	}
	return append([]reflect.Type(nil), types...)
}

func applyOptions(opts []RegisterOption) registerConfig {
	var rc registerConfig
	for _, opt := range opts {
		opt(&rc)
	}
	return rc
}

// funcKey returns the identity key for f. Top-level functions are
// distinct keys; closures built from the same literal share one.
func funcKey(op string, f any) (uintptr, error) {
	if f == nil {
		return 0, &UsageError{Op: op, Detail: "nil function"}
	}
	v := reflect.ValueOf(f)
	if v.Kind() != reflect.Func {
		return 0, &UsageError{Op: op, Detail: fmt.Sprintf("%T is not a function", f)}
	}
	return v.Pointer(), nil
}

func mustFuncKey(op string, f any) uintptr {
	key, err := funcKey(op, f)
	if err != nil {
		panic(err)
	}
	return key
}

// DefaultRegistry is the registry used by the package-level functions.
// Rule packages typically register into it from init.
var DefaultRegistry = NewRegistry()

// RegisterFrule installs a forward rule in DefaultRegistry.
func RegisterFrule(f any, rule FruleFunc, opts ...RegisterOption) error {
	return DefaultRegistry.RegisterFrule(f, rule, opts...)
}

// RegisterRrule installs a reverse rule in DefaultRegistry.
func RegisterRrule(f any, rule RruleFunc, opts ...RegisterOption) error {
	return DefaultRegistry.RegisterRrule(f, rule, opts...)
}

// OptOutFrule records a forward-rule opt-out in DefaultRegistry.
func OptOutFrule(f any, reason string, argTypes ...reflect.Type) error {
	return DefaultRegistry.OptOutFrule(f, reason, argTypes...)
}

// OptOutRrule records a reverse-rule opt-out in DefaultRegistry.
func OptOutRrule(f any, reason string, argTypes ...reflect.Type) error {
	return DefaultRegistry.OptOutRrule(f, reason, argTypes...)
}

// Frule looks up a forward rule in DefaultRegistry.
func Frule(cfg Config, seeds []tangent.Tangent, f any, args ...any) (any, tangent.Tangent, bool) {
	return DefaultRegistry.Frule(cfg, seeds, f, args...)
}

// Rrule looks up a reverse rule in DefaultRegistry.
func Rrule(cfg Config, f any, args ...any) (any, Pullback, bool) {
	return DefaultRegistry.Rrule(cfg, f, args...)
}
