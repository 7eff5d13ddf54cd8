package rules

import (
	"fmt"
	"strings"

	"github.com/hupe1980/assetrules/internal/maputil"
)

// Step is a named transformation together with its options.
type Step struct {
	// Loader identifies the transformation in the registry.
	Loader string `json:"loader" yaml:"loader"`

	// Options configure the transformation. Values are arbitrary.
	Options map[string]interface{} `json:"options,omitempty" yaml:"options,omitempty"`
}

// String renders the step in inline loader form, e.g. "css-loader?modules".
func (s Step) String() string {
	if len(s.Options) == 0 {
		return s.Loader
	}

	return fmt.Sprintf("%s?%v", s.Loader, s.Options)
}

func (s Step) clone() Step {
	return Step{Loader: s.Loader, Options: maputil.DeepCopyMap(s.Options)}
}

// Pipeline is the ordered chain of steps selected for one asset.
// An empty pipeline means no rule applies.
type Pipeline []Step

// Empty reports whether no steps apply.
func (p Pipeline) Empty() bool { return len(p) == 0 }

// Loaders returns the loader identifiers in order.
func (p Pipeline) Loaders() []string {
	out := make([]string, len(p))
	for i, s := range p {
		out[i] = s.Loader
	}

	return out
}

// String joins the loaders with "!", the inline loader separator.
func (p Pipeline) String() string {
	return strings.Join(p.Loaders(), "!")
}

// Equal reports whether p and o name the same loaders, in the same order,
// with equal options.
func (p Pipeline) Equal(o Pipeline) bool {
	if len(p) != len(o) {
		return false
	}

	for i := range p {
		if p[i].Loader != o[i].Loader || !maputil.Equal(p[i].Options, o[i].Options) {
			return false
		}
	}

	return true
}

func (p Pipeline) clone() Pipeline {
	if p == nil {
		return nil
	}

	out := make(Pipeline, len(p))
	for i, s := range p {
		out[i] = s.clone()
	}

	return out
}

// Rule maps a path predicate to a transformation chain.
type Rule struct {
	// Name labels the rule in diagnostics. Optional.
	Name string

	// Match must hold for the rule to apply.
	Match Predicate

	// Exclude, when set and holding, skips the rule even if Match holds.
	Exclude Predicate

	// Chain is the ordered transformation chain for matching paths.
	Chain Pipeline
}

// label returns the rule name or its positional fallback.
func (r Rule) label(index int) string {
	if r.Name != "" {
		return r.Name
	}

	return fmt.Sprintf("rule[%d]", index)
}

// excluded reports whether the rule's exclude predicate fires for path.
func (r Rule) excluded(path string) bool {
	return r.Exclude != nil && r.Exclude.Match(path)
}

// Applies reports whether the rule selects path: Match holds and Exclude,
// if present, does not.
func (r Rule) Applies(path string) bool {
	if r.Match == nil || !r.Match.Match(path) {
		return false
	}

	return !r.excluded(path)
}

func (r Rule) clone() Rule {
	r.Chain = r.Chain.clone()
	return r
}
