// Package transformer provides the built-in transformation registry.
// Each loader identifier maps to a [Factory] that validates the step
// options and returns a ready-to-run transform.Transformer.
package transformer

import (
	"fmt"

	"github.com/hupe1980/assetrules/internal/transform"
)

// Factory builds a transformer from step options. Factories must reject
// invalid options so configuration errors surface before any asset runs.
type Factory func(options map[string]interface{}) (transform.Transformer, error)

// stringOption reads an optional string option.
func stringOption(options map[string]interface{}, key string) (string, error) {
	v, ok := options[key]
	if !ok || v == nil {
		return "", nil
	}

	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("option %q must be a string, got %T", key, v)
	}

	return s, nil
}

// boolOption reads an optional boolean option. Inline loader queries
// produce strings, so "true" and "false" are accepted too.
func boolOption(options map[string]interface{}, key string) (bool, error) {
	v, ok := options[key]
	if !ok || v == nil {
		return false, nil
	}

	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		switch b {
		case "true", "1":
			return true, nil
		case "false", "0", "":
			return false, nil
		}
	}

	return false, fmt.Errorf("option %q must be a boolean, got %v", key, v)
}

// stringSliceOption reads an optional list of strings. A single string is
// treated as a one-element list.
func stringSliceOption(options map[string]interface{}, key string) ([]string, error) {
	v, ok := options[key]
	if !ok || v == nil {
		return nil, nil
	}

	switch list := v.(type) {
	case string:
		return []string{list}, nil
	case []string:
		return list, nil
	case []interface{}:
		out := make([]string, 0, len(list))

		for i, item := range list {
			// Babel-style presets may be ["env", {...}] pairs; keep the name.
			if pair, ok := item.([]interface{}); ok && len(pair) > 0 {
				item = pair[0]
			}

			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("option %q[%d] must be a string, got %T", key, i, item)
			}

			out = append(out, s)
		}

		return out, nil
	}

	return nil, fmt.Errorf("option %q must be a list of strings, got %T", key, v)
}

// stringMapOption reads an optional string-to-string map.
func stringMapOption(options map[string]interface{}, key string) (map[string]string, error) {
	v, ok := options[key]
	if !ok || v == nil {
		return nil, nil
	}

	raw, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("option %q must be a map, got %T", key, v)
	}

	out := make(map[string]string, len(raw))

	for k, item := range raw {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("option %q[%s] must be a string, got %T", key, k, item)
		}

		out[k] = s
	}

	return out, nil
}
