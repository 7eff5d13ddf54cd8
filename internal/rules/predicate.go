package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gobwas/glob"
)

// Predicate is a pure test over an asset path.
type Predicate interface {
	// Match reports whether the predicate holds for path.
	Match(path string) bool

	// String returns the source form of the predicate for diagnostics.
	String() string
}

// Condition prefixes understood by ParseCondition.
const (
	globPrefix     = "glob:"
	suffixPrefix   = "suffix:"
	containsPrefix = "contains:"
)

// ParseCondition compiles a condition string from a build definition.
//
// Strings prefixed with "glob:", "suffix:" or "contains:" select those
// predicate kinds. Anything else is a regular expression.
func ParseCondition(expr string) (Predicate, error) {
	switch {
	case strings.HasPrefix(expr, globPrefix):
		return Glob(strings.TrimPrefix(expr, globPrefix))
	case strings.HasPrefix(expr, suffixPrefix):
		return Suffix(strings.TrimPrefix(expr, suffixPrefix)), nil
	case strings.HasPrefix(expr, containsPrefix):
		return Contains(strings.TrimPrefix(expr, containsPrefix)), nil
	default:
		return Regexp(expr)
	}
}

// ParseConditions compiles a list of condition strings into a single
// predicate that holds when any of them holds. An empty list yields nil.
func ParseConditions(exprs []string) (Predicate, error) {
	if len(exprs) == 0 {
		return nil, nil
	}

	preds := make([]Predicate, 0, len(exprs))

	for _, expr := range exprs {
		p, err := ParseCondition(expr)
		if err != nil {
			return nil, err
		}

		preds = append(preds, p)
	}

	if len(preds) == 1 {
		return preds[0], nil
	}

	return Any(preds...), nil
}

type regexpPredicate struct {
	re *regexp.Regexp
}

// Regexp returns a predicate backed by a Go regular expression.
func Regexp(expr string) (Predicate, error) {
	if expr == "" {
		return nil, fmt.Errorf("empty regular expression")
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid regular expression %q: %w", expr, err)
	}

	return &regexpPredicate{re: re}, nil
}

// MustRegexp is like Regexp but panics on an invalid expression.
func MustRegexp(expr string) Predicate {
	p, err := Regexp(expr)
	if err != nil {
		panic(err)
	}

	return p
}

func (p *regexpPredicate) Match(path string) bool { return p.re.MatchString(path) }
func (p *regexpPredicate) String() string         { return p.re.String() }

type globPredicate struct {
	pattern string
	g       glob.Glob
}

// Glob returns a predicate matching shell-style patterns with "/" as the
// separator, so "*" stays within a segment and "**" crosses segments.
func Glob(pattern string) (Predicate, error) {
	if pattern == "" {
		return nil, fmt.Errorf("empty glob pattern")
	}

	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
	}

	return &globPredicate{pattern: pattern, g: g}, nil
}

func (p *globPredicate) Match(path string) bool { return p.g.Match(path) }
func (p *globPredicate) String() string         { return globPrefix + p.pattern }

type suffixPredicate string

// Suffix holds when the path ends with s.
func Suffix(s string) Predicate { return suffixPredicate(s) }

func (p suffixPredicate) Match(path string) bool { return strings.HasSuffix(path, string(p)) }
func (p suffixPredicate) String() string         { return suffixPrefix + string(p) }

type containsPredicate string

// Contains holds when the path contains s.
func Contains(s string) Predicate { return containsPredicate(s) }

func (p containsPredicate) Match(path string) bool { return strings.Contains(path, string(p)) }
func (p containsPredicate) String() string         { return containsPrefix + string(p) }

type anyPredicate []Predicate

// Any holds when at least one of preds holds.
func Any(preds ...Predicate) Predicate { return anyPredicate(preds) }

func (p anyPredicate) Match(path string) bool {
	for _, pred := range p {
		if pred.Match(path) {
			return true
		}
	}

	return false
}

func (p anyPredicate) String() string {
	parts := make([]string, 0, len(p))
	for _, pred := range p {
		parts = append(parts, pred.String())
	}

	return "any(" + strings.Join(parts, ", ") + ")"
}

type allPredicate []Predicate

// All holds when every one of preds holds.
func All(preds ...Predicate) Predicate { return allPredicate(preds) }

func (p allPredicate) Match(path string) bool {
	for _, pred := range p {
		if !pred.Match(path) {
			return false
		}
	}

	return true
}

func (p allPredicate) String() string {
	parts := make([]string, 0, len(p))
	for _, pred := range p {
		parts = append(parts, pred.String())
	}

	return "all(" + strings.Join(parts, ", ") + ")"
}

type funcPredicate struct {
	name string
	fn   func(string) bool
}

// Func adapts a plain function into a Predicate. fn must not touch the
// filesystem or any other shared state.
func Func(name string, fn func(path string) bool) Predicate {
	return &funcPredicate{name: name, fn: fn}
}

func (p *funcPredicate) Match(path string) bool { return p.fn(path) }
func (p *funcPredicate) String() string         { return p.name }
