package rules

import (
	"fmt"

	"github.com/hupe1980/assetrules/internal/config"
	"github.com/hupe1980/assetrules/internal/maputil"
)

// FromConfig compiles declarative rule configs into Rules, preserving their
// order. Test and Include combine with AND; each is any-of over its list.
func FromConfig(cfgs []config.RuleConfig) ([]Rule, error) {
	out := make([]Rule, 0, len(cfgs))

	for i, rc := range cfgs {
		r, err := compileRule(rc)
		if err != nil {
			return nil, fmt.Errorf("rules[%d]: %w", i, err)
		}

		out = append(out, r)
	}

	return out, nil
}

// NewResolverFromConfig compiles the build definition's rules into a Resolver.
func NewResolverFromConfig(cfg *config.BuildConfig) (*Resolver, error) {
	compiled, err := FromConfig(cfg.Rules)
	if err != nil {
		return nil, err
	}

	return NewResolver(compiled...), nil
}

func compileRule(rc config.RuleConfig) (Rule, error) {
	test, err := ParseConditions(rc.Test)
	if err != nil {
		return Rule{}, fmt.Errorf("test: %w", err)
	}

	if test == nil {
		return Rule{}, fmt.Errorf("test is required")
	}

	match := test

	include, err := ParseConditions(rc.Include)
	if err != nil {
		return Rule{}, fmt.Errorf("include: %w", err)
	}

	if include != nil {
		match = All(test, include)
	}

	exclude, err := ParseConditions(rc.Exclude)
	if err != nil {
		return Rule{}, fmt.Errorf("exclude: %w", err)
	}

	steps := rc.Steps()
	chain := make(Pipeline, 0, len(steps))

	for _, s := range steps {
		chain = append(chain, Step{
			Loader:  s.Loader,
			Options: maputil.DeepCopyMap(s.Options),
		})
	}

	return Rule{
		Name:    rc.Name,
		Match:   match,
		Exclude: exclude,
		Chain:   chain,
	}, nil
}
