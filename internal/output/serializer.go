package output

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
	sigsyaml "sigs.k8s.io/yaml"
)

// Report formats.
const (
	FormatYAML  = "yaml"
	FormatJSON  = "json"
	FormatTable = "table"
)

// SerializeOptions configures report serialization.
type SerializeOptions struct {
	// Indent is the number of spaces per indentation level (default: 2).
	Indent int
}

// DefaultSerializeOptions returns sensible defaults.
func DefaultSerializeOptions() SerializeOptions {
	return SerializeOptions{Indent: 2}
}

// Serialize renders v as YAML or JSON. Field names follow the json tags
// of v, keys are sorted and null values are dropped.
func Serialize(v interface{}, format string, opts SerializeOptions) ([]byte, error) {
	if opts.Indent <= 0 {
		opts.Indent = 2
	}

	switch format {
	case FormatYAML:
		return SerializeYAML(v, opts)
	case FormatJSON:
		return SerializeJSON(v, strings.Repeat(" ", opts.Indent))
	default:
		return nil, fmt.Errorf("unsupported serialization format %q (must be yaml or json)", format)
	}
}

// SerializeYAML converts v to canonical YAML bytes.
func SerializeYAML(v interface{}, opts SerializeOptions) ([]byte, error) {
	if opts.Indent <= 0 {
		opts.Indent = 2
	}

	generic, err := toGeneric(v)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(opts.Indent)

	if err := enc.Encode(generic); err != nil {
		return nil, fmt.Errorf("serializing YAML: %w", err)
	}

	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("serializing YAML: %w", err)
	}

	return buf.Bytes(), nil
}

// SerializeJSON converts v to indented JSON bytes.
func SerializeJSON(v interface{}, indent string) ([]byte, error) {
	if indent == "" {
		indent = "  "
	}

	generic, err := toGeneric(v)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := jsonMarshalIndent(&buf, generic, indent); err != nil {
		return nil, fmt.Errorf("formatting JSON: %w", err)
	}

	b := buf.Bytes()

	// Ensure trailing newline.
	if len(b) > 0 && b[len(b)-1] != '\n' {
		b = append(b, '\n')
	}

	return b, nil
}

// toGeneric round-trips v through sigs.k8s.io/yaml so that json tags
// drive field names, then strips nulls and empty maps.
func toGeneric(v interface{}) (interface{}, error) {
	y, err := sigsyaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("serializing intermediate YAML: %w", err)
	}

	var raw interface{}
	if err := sigsyaml.Unmarshal(y, &raw); err != nil {
		return nil, fmt.Errorf("decoding intermediate YAML: %w", err)
	}

	return deepCleanValue(raw), nil
}

// deepCleanMap recursively cleans a map by removing nil values and
// empty maps.
func deepCleanMap(m map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(m))

	for k, v := range m {
		cleaned := deepCleanValue(v)
		if cleaned != nil {
			result[k] = cleaned
		}
	}

	return result
}

// deepCleanValue cleans a single value recursively.
func deepCleanValue(v interface{}) interface{} {
	if v == nil {
		return nil
	}

	switch val := v.(type) {
	case map[string]interface{}:
		cleaned := deepCleanMap(val)
		if len(cleaned) == 0 {
			return nil
		}

		return cleaned
	case []interface{}:
		result := make([]interface{}, 0, len(val))
		for _, item := range val {
			cleaned := deepCleanValue(item)
			if cleaned != nil {
				result = append(result, cleaned)
			}
		}

		return result
	default:
		return v
	}
}

// jsonMarshalIndent writes indented JSON to a buffer.
func jsonMarshalIndent(buf *bytes.Buffer, v interface{}, indent string) error {
	return jsonWriteValue(buf, v, indent, 0)
}

// jsonWriteValue recursively writes a JSON value with indentation.
func jsonWriteValue(buf *bytes.Buffer, v interface{}, indent string, level int) error {
	switch val := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case float64:
		if val == float64(int64(val)) {
			fmt.Fprintf(buf, "%d", int64(val))
		} else {
			fmt.Fprintf(buf, "%g", val)
		}
	case string:
		buf.WriteString(jsonQuote(val))
	case map[string]interface{}:
		if len(val) == 0 {
			buf.WriteString("{}")

			return nil
		}

		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}

		// Sort keys for determinism.
		sort.Strings(keys)

		buf.WriteString("{\n")

		for i, k := range keys {
			writeIndent(buf, indent, level+1)
			buf.WriteString(jsonQuote(k))
			buf.WriteString(": ")

			if err := jsonWriteValue(buf, val[k], indent, level+1); err != nil {
				return err
			}

			if i < len(keys)-1 {
				buf.WriteByte(',')
			}

			buf.WriteByte('\n')
		}

		writeIndent(buf, indent, level)
		buf.WriteByte('}')
	case []interface{}:
		if len(val) == 0 {
			buf.WriteString("[]")

			return nil
		}

		buf.WriteString("[\n")

		for i, item := range val {
			writeIndent(buf, indent, level+1)

			if err := jsonWriteValue(buf, item, indent, level+1); err != nil {
				return err
			}

			if i < len(val)-1 {
				buf.WriteByte(',')
			}

			buf.WriteByte('\n')
		}

		writeIndent(buf, indent, level)
		buf.WriteByte(']')
	default:
		fmt.Fprintf(buf, "%v", val)
	}

	return nil
}

func writeIndent(buf *bytes.Buffer, indent string, level int) {
	for i := 0; i < level; i++ {
		buf.WriteString(indent)
	}
}

// jsonQuote performs JSON string quoting with proper escaping.
func jsonQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	s = strings.ReplaceAll(s, "\r", `\r`)
	s = strings.ReplaceAll(s, "\t", `\t`)
	s = strings.ReplaceAll(s, "\b", `\b`)
	s = strings.ReplaceAll(s, "\f", `\f`)

	return `"` + s + `"`
}
