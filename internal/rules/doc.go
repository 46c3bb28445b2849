// Package rules implements the lookup protocol between differentiation
// engines and the derivative rules registered for plain Go functions.
//
// An engine asks a Registry for a forward rule (Frule) or reverse rule
// (Rrule) before decomposing a call itself. "No rule" is an ordinary
// outcome reported through an ok bool, never an error. Rules receive a
// Config describing the engine, so a single rule can adapt to engines
// with different capabilities or call back into the engine for inner
// derivatives.
//
// Selection when several rules are registered for one function:
//   - An opt-out matching the arguments wins: the function deliberately
//     has no rule there, and lookup reports none.
//   - Capability-gated rules the config satisfies beat ungated rules.
//   - Argument-type-specialized rules beat generic ones within a tier.
//   - Later registrations beat earlier ones.
//   - A rule may still decline at call time by returning nil results;
//     lookup then moves to the next candidate.
package rules
