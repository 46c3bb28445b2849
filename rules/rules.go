// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package rules

import (
	"reflect"

	"github.com/born-ml/tangent/internal/rules"
	"github.com/born-ml/tangent/internal/tangent"
)

// Type aliases for the public API

// Capability names an engine feature a registered rule may require.
type Capability = rules.Capability

// Capabilities an engine config can advertise.
const (
	HasForwardMode Capability = rules.HasForwardMode
	HasReverseMode Capability = rules.HasReverseMode
)

// Config describes the engine driving a rule.
type Config = rules.Config

// CapSet is a Config backed by a plain capability set.
type CapSet = rules.CapSet

// ForwardViaAD is the callback contract behind HasForwardMode.
type ForwardViaAD = rules.ForwardViaAD

// ReverseViaAD is the callback contract behind HasReverseMode.
type ReverseViaAD = rules.ReverseViaAD

// FruleFunc computes f(args...) together with its directional
// derivative.
type FruleFunc = rules.FruleFunc

// RruleFunc computes f(args...) together with the pullback of the
// call.
type RruleFunc = rules.RruleFunc

// Pullback maps a cotangent of the result to cotangents of the callee
// and its arguments, in that order.
type Pullback = rules.Pullback

// Registry holds derivative rules keyed by function identity.
type Registry = rules.Registry

// RegisterOption adjusts how a rule is registered.
type RegisterOption = rules.RegisterOption

// ErrUsage marks misuse of the registry API.
var ErrUsage = rules.ErrUsage

// UsageError reports an API misuse.
type UsageError = rules.UsageError

// NewConfig returns a CapSet advertising the given capabilities.
func NewConfig(caps ...Capability) CapSet { return rules.NewConfig(caps...) }

// NewRegistry returns an empty rule registry.
func NewRegistry() *Registry { return rules.NewRegistry() }

// WithCapability gates the rule on an engine capability.
func WithCapability(cap Capability) RegisterOption { return rules.WithCapability(cap) }

// ForArgTypes specializes the rule to calls with exactly the given
// argument types.
func ForArgTypes(types ...reflect.Type) RegisterOption { return rules.ForArgTypes(types...) }

// DefaultRegistry is the registry used by the package-level functions.
var DefaultRegistry = rules.DefaultRegistry

// RegisterFrule installs a forward rule in DefaultRegistry.
func RegisterFrule(f any, rule FruleFunc, opts ...RegisterOption) error {
	return rules.RegisterFrule(f, rule, opts...)
}

// RegisterRrule installs a reverse rule in DefaultRegistry.
func RegisterRrule(f any, rule RruleFunc, opts ...RegisterOption) error {
	return rules.RegisterRrule(f, rule, opts...)
}

// OptOutFrule records in DefaultRegistry that f deliberately has no
// forward rule for the given argument types.
func OptOutFrule(f any, reason string, argTypes ...reflect.Type) error {
	return rules.OptOutFrule(f, reason, argTypes...)
}

// OptOutRrule records in DefaultRegistry that f deliberately has no
// reverse rule for the given argument types.
func OptOutRrule(f any, reason string, argTypes ...reflect.Type) error {
	return rules.OptOutRrule(f, reason, argTypes...)
}

// Frule looks up a forward rule in DefaultRegistry. ok=false means no
// rule: decompose f instead.
func Frule(cfg Config, seeds []tangent.Tangent, f any, args ...any) (any, tangent.Tangent, bool) {
	return rules.Frule(cfg, seeds, f, args...)
}

// Rrule looks up a reverse rule in DefaultRegistry. ok=false means no
// rule: decompose f instead.
func Rrule(cfg Config, f any, args ...any) (any, Pullback, bool) {
	return rules.Rrule(cfg, f, args...)
}
