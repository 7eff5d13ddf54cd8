package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	sigsyaml "sigs.k8s.io/yaml"
)

// Condition is a list of condition strings that accepts either a single
// string or a list in the build definition.
type Condition []string

// UnmarshalJSON accepts "expr" or ["expr", ...].
func (c *Condition) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*c = nil
			return nil
		}

		*c = Condition{single}

		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("condition must be a string or a list of strings: %w", err)
	}

	*c = list

	return nil
}

// StepConfig is one declared transformation step.
type StepConfig struct {
	Loader  string                 `json:"loader"`
	Options map[string]interface{} `json:"options,omitempty"`
}

// UnmarshalJSON accepts an inline loader string or a {loader, options}
// object. An inline string must name exactly one loader.
func (s *StepConfig) UnmarshalJSON(data []byte) error {
	var inline string
	if err := json.Unmarshal(data, &inline); err == nil {
		steps, err := ParseInlineLoaders(inline)
		if err != nil {
			return err
		}

		if len(steps) != 1 {
			return fmt.Errorf("inline step %q must name exactly one loader", inline)
		}

		*s = steps[0]

		return nil
	}

	// Alias type avoids recursing into this method.
	type plain StepConfig

	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("step must be a string or a {loader, options} object: %w", err)
	}

	*s = StepConfig(p)

	return nil
}

// UseList is an ordered chain of steps. In the build definition it may be
// an inline string ("a!b?x=1"), a single step object, or a list of either.
type UseList []StepConfig

// UnmarshalJSON implements the flexible chain syntax.
func (u *UseList) UnmarshalJSON(data []byte) error {
	var inline string
	if err := json.Unmarshal(data, &inline); err == nil {
		steps, err := ParseInlineLoaders(inline)
		if err != nil {
			return err
		}

		*u = steps

		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err == nil {
		out := make(UseList, 0, len(raw))

		for i, item := range raw {
			// Inline strings inside a list may still chain with "!".
			var s string
			if json.Unmarshal(item, &s) == nil {
				steps, err := ParseInlineLoaders(s)
				if err != nil {
					return fmt.Errorf("use[%d]: %w", i, err)
				}

				out = append(out, steps...)

				continue
			}

			var step StepConfig
			if err := json.Unmarshal(item, &step); err != nil {
				return fmt.Errorf("use[%d]: %w", i, err)
			}

			out = append(out, step)
		}

		*u = out

		return nil
	}

	var step StepConfig
	if err := json.Unmarshal(data, &step); err != nil {
		return err
	}

	*u = UseList{step}

	return nil
}

// ParseInlineLoaders parses the inline loader syntax: steps separated by
// "!", each optionally followed by "?query". A query starting with "{" is a
// JSON (or YAML flow) object and may itself contain "!". Otherwise it is
// "key=value&flag&-off&+on".
func ParseInlineLoaders(s string) ([]StepConfig, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	parts := splitLoaders(s)
	steps := make([]StepConfig, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			// Leading "!" / "!!" prefixes carry webpack-specific meaning
			// that does not apply here.
			continue
		}

		name, query, hasQuery := strings.Cut(part, "?")
		if name == "" {
			return nil, fmt.Errorf("inline loader %q has no name", part)
		}

		step := StepConfig{Loader: name}

		if hasQuery && query != "" {
			opts, err := parseQuery(query)
			if err != nil {
				return nil, fmt.Errorf("loader %s: %w", name, err)
			}

			step.Options = opts
		}

		steps = append(steps, step)
	}

	return steps, nil
}

// splitLoaders splits s on "!" outside braces and quoted strings.
func splitLoaders(s string) []string {
	var (
		parts  []string
		depth  int
		quote  rune
		escape bool
		start  int
	)

	for i, r := range s {
		switch {
		case escape:
			escape = false
		case quote != 0:
			switch r {
			case '\\':
				escape = true
			case quote:
				quote = 0
			}
		case r == '"' || r == '\'':
			if depth > 0 {
				quote = r
			}
		case r == '{':
			depth++
		case r == '}':
			if depth > 0 {
				depth--
			}
		case r == '!' && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}

	return append(parts, s[start:])
}

func parseQuery(query string) (map[string]interface{}, error) {
	if strings.HasPrefix(query, "{") {
		var opts map[string]interface{}
		if err := sigsyaml.Unmarshal([]byte(query), &opts); err != nil {
			return nil, fmt.Errorf("invalid query object %q: %w", query, err)
		}

		return opts, nil
	}

	opts := make(map[string]interface{})

	for _, pair := range strings.Split(query, "&") {
		if pair == "" {
			continue
		}

		key, val, hasVal := strings.Cut(pair, "=")

		// The flag prefix is read before unescaping, which turns "+" into a space.
		flag := true

		if !hasVal {
			switch {
			case strings.HasPrefix(key, "-"):
				key, flag = key[1:], false
			case strings.HasPrefix(key, "+"):
				key = key[1:]
			}
		}

		k, err := url.QueryUnescape(key)
		if err != nil {
			return nil, fmt.Errorf("invalid query key %q: %w", key, err)
		}

		if !hasVal {
			opts[k] = flag
			continue
		}

		v, err := url.QueryUnescape(val)
		if err != nil {
			return nil, fmt.Errorf("invalid query value %q: %w", val, err)
		}

		opts[k] = v
	}

	return opts, nil
}
