// Package maputil copies and compares the loosely typed option maps
// attached to transformation steps. Options arrive from YAML, JSON, TOML
// or Go callers, so besides the generic decoder shapes the common typed
// containers ([]string, map[string]string) are handled too.
package maputil

import (
	"reflect"
)

// DeepCopyMap returns a copy of src that shares no mutable containers
// with it. Scalars are copied by value.
func DeepCopyMap(src map[string]interface{}) map[string]interface{} {
	if src == nil {
		return nil
	}

	dst := make(map[string]interface{}, len(src))
	for k, v := range src {
		dst[k] = copyValue(v)
	}

	return dst
}

// DeepCopySlice is DeepCopyMap for option lists.
func DeepCopySlice(src []interface{}) []interface{} {
	if src == nil {
		return nil
	}

	dst := make([]interface{}, len(src))
	for i, v := range src {
		dst[i] = copyValue(v)
	}

	return dst
}

func copyValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return DeepCopyMap(val)
	case []interface{}:
		return DeepCopySlice(val)
	case []map[string]interface{}:
		if val == nil {
			return val
		}

		out := make([]map[string]interface{}, len(val))
		for i, m := range val {
			out[i] = DeepCopyMap(m)
		}

		return out
	case []string:
		if val == nil {
			return val
		}

		return append([]string(nil), val...)
	case map[string]string:
		if val == nil {
			return val
		}

		out := make(map[string]string, len(val))
		for k, s := range val {
			out[k] = s
		}

		return out
	default:
		return v
	}
}

// Equal reports whether two option maps hold the same values. A nil map
// equals an empty one, and numbers compare by value across integer and
// float types because decoders disagree on which they produce.
func Equal(a, b map[string]interface{}) bool {
	if len(a) != len(b) {
		return false
	}

	for k, av := range a {
		bv, ok := b[k]
		if !ok || !valueEqual(av, bv) {
			return false
		}
	}

	return true
}

func valueEqual(a, b interface{}) bool {
	if fa, ok := number(a); ok {
		fb, ok := number(b)
		return ok && fa == fb
	}

	switch av := a.(type) {
	case map[string]interface{}:
		bv, ok := b.(map[string]interface{})
		return ok && Equal(av, bv)
	case []interface{}:
		bv, ok := b.([]interface{})
		if !ok || len(av) != len(bv) {
			return false
		}

		for i := range av {
			if !valueEqual(av[i], bv[i]) {
				return false
			}
		}

		return true
	default:
		return reflect.DeepEqual(a, b)
	}
}

// number widens any Go numeric value to float64.
func number(v interface{}) (float64, bool) {
	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}
