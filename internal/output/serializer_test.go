package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type testStep struct {
	Loader  string                 `json:"loader"`
	Options map[string]interface{} `json:"options,omitempty"`
}

type testReport struct {
	Path     string     `json:"path"`
	Rule     string     `json:"rule,omitempty"`
	Index    int        `json:"index"`
	Pipeline []testStep `json:"pipeline"`
	Note     *string    `json:"note"`
}

func testResolveReport() []testReport {
	return []testReport{
		{
			Path:  "src/app.js",
			Rule:  "scripts",
			Index: 1,
			Pipeline: []testStep{
				{Loader: "babel-loader", Options: map[string]interface{}{"presets": []string{"env"}, "cacheDirectory": true}},
			},
		},
		{Path: "logo.png", Index: -1, Pipeline: []testStep{}},
	}
}

// ---------------------------------------------------------------------------
// YAML
// ---------------------------------------------------------------------------

func TestSerializeYAML(t *testing.T) {
	out, err := SerializeYAML(testResolveReport(), DefaultSerializeOptions())
	require.NoError(t, err)

	s := string(out)
	assert.Contains(t, s, "- index: 1\n  path: src/app.js\n")
	assert.Contains(t, s, "- loader: babel-loader\n")
	assert.Contains(t, s, "pipeline: []")
	assert.NotContains(t, s, "null")
	assert.NotContains(t, s, "note")
}

func TestSerializeYAML_SortedKeys(t *testing.T) {
	out, err := SerializeYAML(map[string]interface{}{"zeta": 1, "alpha": 2, "mid": 3}, SerializeOptions{})
	require.NoError(t, err)

	assert.Equal(t, "alpha: 2\nmid: 3\nzeta: 1\n", string(out))
}

func TestSerializeYAML_Indent(t *testing.T) {
	out, err := SerializeYAML(map[string]interface{}{"a": map[string]interface{}{"b": "c"}}, SerializeOptions{Indent: 4})
	require.NoError(t, err)

	assert.Equal(t, "a:\n    b: c\n", string(out))
}

func TestSerializeYAML_RoundTrip(t *testing.T) {
	out, err := SerializeYAML(testResolveReport(), DefaultSerializeOptions())
	require.NoError(t, err)

	var parsed []map[string]interface{}
	require.NoError(t, yaml.Unmarshal(out, &parsed))
	require.Len(t, parsed, 2)
	assert.Equal(t, "src/app.js", parsed[0]["path"])
}

// ---------------------------------------------------------------------------
// JSON
// ---------------------------------------------------------------------------

func TestSerializeJSON(t *testing.T) {
	out, err := SerializeJSON(testResolveReport(), "")
	require.NoError(t, err)

	s := string(out)
	assert.True(t, strings.HasPrefix(s, "[\n  {\n"))
	assert.Contains(t, s, `"index": -1`)
	assert.Contains(t, s, `"cacheDirectory": true`)
	assert.Contains(t, s, `"pipeline": []`)
	assert.True(t, strings.HasSuffix(s, "]\n"))

	var parsed []map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &parsed))
	assert.Len(t, parsed, 2)
}

func TestSerializeJSON_SortedKeys(t *testing.T) {
	out, err := SerializeJSON(map[string]interface{}{"b": 1, "a": 2}, "  ")
	require.NoError(t, err)

	assert.Equal(t, "{\n  \"a\": 2,\n  \"b\": 1\n}\n", string(out))
}

func TestSerializeJSON_Determinism(t *testing.T) {
	first, err := SerializeJSON(testResolveReport(), "  ")
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := SerializeJSON(testResolveReport(), "  ")
		require.NoError(t, err)
		assert.True(t, bytes.Equal(first, again))
	}
}

// ---------------------------------------------------------------------------
// Serialize
// ---------------------------------------------------------------------------

func TestSerialize_Formats(t *testing.T) {
	y, err := Serialize(map[string]string{"a": "b"}, FormatYAML, SerializeOptions{})
	require.NoError(t, err)
	assert.Equal(t, "a: b\n", string(y))

	j, err := Serialize(map[string]string{"a": "b"}, FormatJSON, SerializeOptions{Indent: 4})
	require.NoError(t, err)
	assert.Equal(t, "{\n    \"a\": \"b\"\n}\n", string(j))

	_, err = Serialize(map[string]string{}, FormatTable, SerializeOptions{})
	assert.ErrorContains(t, err, "unsupported serialization format")
}

func TestDeepCleanMap(t *testing.T) {
	input := map[string]interface{}{
		"keep":     "value",
		"nil":      nil,
		"empty":    map[string]interface{}{},
		"nested":   map[string]interface{}{"inner": nil},
		"list":     []interface{}{"a", nil, "b"},
		"zero":     0.0,
		"disabled": false,
	}

	got := deepCleanMap(input)
	assert.Equal(t, map[string]interface{}{
		"keep":     "value",
		"list":     []interface{}{"a", "b"},
		"zero":     0.0,
		"disabled": false,
	}, got)
}

func TestJsonQuote(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", `"plain"`},
		{`back\slash`, `"back\\slash"`},
		{`"quoted"`, `"\"quoted\""`},
		{"line\nbreak", `"line\nbreak"`},
		{"tab\there", `"tab\there"`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, jsonQuote(tt.in))
		})
	}
}
