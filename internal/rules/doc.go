// Package rules decides, for a single asset path, which ordered chain of
// transformation steps applies to it.
//
// A [Rule] pairs a match [Predicate], an optional exclude [Predicate], and a
// chain of [Step] values. Rules are evaluated in declared order and the first
// rule that matches (and is not excluded) wins. Later rules are never
// consulted for that path.
//
// Rules are built once at start-up, typically with [FromConfig], and are
// immutable afterwards. [Resolve] and [Resolver] are pure and safe for
// concurrent use.
package rules
