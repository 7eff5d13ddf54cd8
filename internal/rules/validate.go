package rules

import (
	"strconv"
	"strings"
)

// Validate inspects a rule set at load time and returns one warning per
// problem found. None of the warnings stop resolution.
func Validate(rules []Rule) []error {
	var warnings []error

	for i, r := range rules {
		name := r.label(i)

		if r.Match == nil {
			warnings = append(warnings, &InvalidRuleError{Index: i, Name: name, Reason: "no match predicate, rule never applies"})
			continue
		}

		if len(r.Chain) == 0 {
			warnings = append(warnings, &InvalidRuleError{Index: i, Name: name, Reason: "empty chain, matching assets pass through unmodified"})
		}

		for j, s := range r.Chain {
			if strings.TrimSpace(s.Loader) == "" {
				warnings = append(warnings, &InvalidRuleError{Index: i, Name: name, Reason: "step " + strconv.Itoa(j) + " has no loader"})
			}
		}

		if j, ok := shadowedBy(rules[:i], r); ok {
			warnings = append(warnings, &InvalidRuleError{
				Index:  i,
				Name:   name,
				Reason: "unreachable, shadowed by " + rules[j].label(j),
			})
		}
	}

	return warnings
}

// shadowedBy finds an earlier rule with the same match predicate and no
// exclude, which would always win before r.
func shadowedBy(earlier []Rule, r Rule) (int, bool) {
	for j, e := range earlier {
		if e.Match == nil || e.Exclude != nil {
			continue
		}

		if e.Match.String() == r.Match.String() {
			return j, true
		}
	}

	return 0, false
}
