package rules

// Resolve returns the chain of the first rule in rules that applies to path.
//
// The result is empty when no rule applies. When the winning rule has an
// empty chain the empty pipeline is returned together with an
// *InvalidRuleError; callers should log it as a warning and carry on.
// The returned pipeline is a deep copy and may be modified freely.
func Resolve(rules []Rule, path string) (Pipeline, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	for i, r := range rules {
		if !r.Applies(path) {
			continue
		}

		if len(r.Chain) == 0 {
			return Pipeline{}, &InvalidRuleError{
				Index:  i,
				Name:   r.label(i),
				Reason: "matched " + path + " but has no transformation steps",
			}
		}

		return r.Chain.clone(), nil
	}

	return Pipeline{}, nil
}

// Resolver holds an immutable rule set.
type Resolver struct {
	rules []Rule
}

// NewResolver copies rules into a Resolver. Later changes to the caller's
// slice or step options do not affect the Resolver.
func NewResolver(rules ...Rule) *Resolver {
	cp := make([]Rule, len(rules))
	for i, r := range rules {
		cp[i] = r.clone()
	}

	return &Resolver{rules: cp}
}

// Resolve applies the first-match rule set to path. See [Resolve].
func (r *Resolver) Resolve(path string) (Pipeline, error) {
	return Resolve(r.rules, path)
}

// Rules returns a copy of the rule set in declared order.
func (r *Resolver) Rules() []Rule {
	out := make([]Rule, len(r.rules))
	for i, rule := range r.rules {
		out[i] = rule.clone()
	}

	return out
}

// Len returns the number of rules.
func (r *Resolver) Len() int { return len(r.rules) }

// Skipped records a rule that matched but was excluded.
type Skipped struct {
	Index int    `json:"index" yaml:"index"`
	Rule  string `json:"rule" yaml:"rule"`
	By    string `json:"excludedBy" yaml:"excludedBy"`
}

// Match explains how a path was resolved.
type Match struct {
	// Path is the resolved asset path.
	Path string `json:"path" yaml:"path"`
	// Index is the winning rule's position, or -1 when nothing applied.
	Index int `json:"index" yaml:"index"`
	// Rule is the winning rule's label.
	Rule string `json:"rule,omitempty" yaml:"rule,omitempty"`
	// Pipeline is the selected chain.
	Pipeline Pipeline `json:"pipeline" yaml:"pipeline"`
	// Skipped lists earlier rules whose exclude predicate fired.
	Skipped []Skipped `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// Matched reports whether any rule applied.
func (m Match) Matched() bool { return m.Index >= 0 }

// Explain resolves path like Resolve and additionally reports which rules
// were skipped because of their exclude predicate.
func (r *Resolver) Explain(path string) (Match, error) {
	m := Match{Path: path, Index: -1, Pipeline: Pipeline{}}

	if path == "" {
		return m, ErrEmptyPath
	}

	for i, rule := range r.rules {
		if rule.Match == nil || !rule.Match.Match(path) {
			continue
		}

		if rule.excluded(path) {
			m.Skipped = append(m.Skipped, Skipped{
				Index: i,
				Rule:  rule.label(i),
				By:    rule.Exclude.String(),
			})

			continue
		}

		m.Index = i
		m.Rule = rule.label(i)

		if len(rule.Chain) == 0 {
			return m, &InvalidRuleError{
				Index:  i,
				Name:   m.Rule,
				Reason: "matched " + path + " but has no transformation steps",
			}
		}

		m.Pipeline = rule.Chain.clone()

		return m, nil
	}

	return m, nil
}
