// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package rules connects differentiation engines to the derivative
// rules registered for plain Go functions.
//
// # Overview
//
// An engine asks a Registry for a forward rule (Frule) or reverse rule
// (Rrule) before decomposing a call itself. "No rule" is an ordinary
// outcome reported through an ok bool. Most rule packages register
// into DefaultRegistry from init, the same way handlers register into
// net/http's DefaultServeMux.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/tangent"
//	    "github.com/born-ml/tangent/rules"
//	)
//
//	func init() {
//	    rules.RegisterRrule(Scale, func(_ rules.Config, args ...any) (any, rules.Pullback) {
//	        alpha, x := args[0].(float64), args[1].(float64)
//	        pb := func(dy tangent.Tangent) []tangent.Tangent {
//	            return []tangent.Tangent{
//	                tangent.NoTangent{},
//	                tangent.NewThunk(func() tangent.Tangent { return tangent.Mul(dy, x) }),
//	                tangent.Mul(dy, alpha),
//	            }
//	        }
//	        return alpha * x, pb
//	    })
//	}
//
// # Capabilities
//
// A rule that only works when the engine can differentiate inner calls
// registers with WithCapability and checks the config for the matching
// callback interface (ForwardViaAD, ReverseViaAD) at call time.
package rules
