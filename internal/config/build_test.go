package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Parsing: formats
// ---------------------------------------------------------------------------

const yamlBuild = `
context: web
entry:
  main: ./src/index.js
output:
  path: public/build
  filename: "[name].[contenthash:8].js"
resolve:
  modules: [node_modules, ./src/vendor]
rules:
  - name: scripts
    test: '\.jsx?$'
    exclude: [contains:node_modules]
    use:
      - loader: babel-loader
        options:
          presets: [env]
  - test: '\.css$'
    use: [style-loader, css-loader]
`

func TestParseBuildConfig_YAML(t *testing.T) {
	cfg, err := ParseBuildConfig([]byte(yamlBuild), FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, "web", cfg.Context)
	assert.Equal(t, map[string]string{"main": "./src/index.js"}, cfg.Entry)
	assert.Equal(t, "public/build", cfg.Output.Path)
	assert.Equal(t, "[name].[contenthash:8].js", cfg.Output.Filename)
	assert.Equal(t, []string{"node_modules", "./src/vendor"}, cfg.Resolve.Modules)
	assert.Equal(t, []string{".js", ".json"}, cfg.Resolve.Extensions, "defaults kept")

	require.Len(t, cfg.Rules, 2)
	assert.Equal(t, "scripts", cfg.Rules[0].Name)
	assert.Equal(t, Condition{`\.jsx?$`}, cfg.Rules[0].Test)
	assert.Equal(t, Condition{"contains:node_modules"}, cfg.Rules[0].Exclude)
	assert.Equal(t, "babel-loader", cfg.Rules[0].Steps()[0].Loader)
	assert.Equal(t, []interface{}{"env"}, cfg.Rules[0].Steps()[0].Options["presets"])
	assert.Equal(t, []StepConfig{{Loader: "style-loader"}, {Loader: "css-loader"}}, []StepConfig(cfg.Rules[1].Use))
}

func TestParseBuildConfig_JSONC(t *testing.T) {
	doc := `{
  // comments and trailing commas are allowed
  "entry": {"app": "src/app.ts"},
  "rules": [
    {"test": "\\.ts$", "loader": "ts-loader?transpileOnly", },
  ],
}`

	cfg, err := ParseBuildConfig([]byte(doc), FormatJSONC)
	require.NoError(t, err)

	require.Len(t, cfg.Rules, 1)
	steps := cfg.Rules[0].Steps()
	require.Len(t, steps, 1)
	assert.Equal(t, "ts-loader", steps[0].Loader)
	assert.Equal(t, true, steps[0].Options["transpileOnly"])
	assert.Equal(t, "[name].js", cfg.Output.Filename)
}

func TestParseBuildConfig_TOML(t *testing.T) {
	doc := `
requires = ">= 0.0.0"

[entry]
main = "src/main.js"

[output]
path = "out"
precompress = true

[[rules]]
test = '\.css$'
use = "style-loader!css-loader"

[[rules]]
test = ['\.js$', '\.mjs$']
exclude = "contains:node_modules"

[[rules.use]]
loader = "babel-loader"

[rules.use.options]
minify = true
`

	cfg, err := ParseBuildConfig([]byte(doc), FormatTOML)
	require.NoError(t, err)

	assert.Equal(t, "out", cfg.Output.Path)
	assert.True(t, cfg.Output.Precompress)
	require.Len(t, cfg.Rules, 2)
	assert.Equal(t, []StepConfig{{Loader: "style-loader"}, {Loader: "css-loader"}}, cfg.Rules[0].Steps())
	assert.Equal(t, Condition{`\.js$`, `\.mjs$`}, cfg.Rules[1].Test)
	assert.Equal(t, true, cfg.Rules[1].Steps()[0].Options["minify"])
}

func TestParseBuildConfig_Empty(t *testing.T) {
	cfg, err := ParseBuildConfig(nil, FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, DefaultBuildConfig(), cfg)
}

func TestParseBuildConfig_UnsupportedFormat(t *testing.T) {
	_, err := ParseBuildConfig([]byte("x"), "ini")
	assert.ErrorContains(t, err, "unsupported build config format")
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFromPath("assetrules.yaml"))
	assert.Equal(t, FormatYAML, FormatFromPath("assetrules.yml"))
	assert.Equal(t, FormatJSON, FormatFromPath("assetrules.JSON"))
	assert.Equal(t, FormatJSONC, FormatFromPath("assetrules.jsonc"))
	assert.Equal(t, FormatTOML, FormatFromPath("assetrules.toml"))
}

// ---------------------------------------------------------------------------
// Parsing: validation
// ---------------------------------------------------------------------------

func TestParseBuildConfig_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"bad requires", "requires: abc\n", "requires: invalid constraint"},
		{"empty entry path", "entry:\n  main: ''\n", "entry[main]"},
		{"missing filename", "entry:\n  main: a.js\noutput:\n  filename: ''\n", "output.filename is required"},
		{"missing test", "rules:\n  - use: raw-loader\n", "rules[0]: test is required"},
		{"use and loader", "rules:\n  - test: x\n    use: a\n    loader: b\n", "mutually exclusive"},
		{"step without loader", "rules:\n  - test: x\n    use: [{options: {a: 1}}]\n", "loader is required"},
		{"bad extension", "resolve:\n  extensions: [js]\n", "must start with a dot"},
		{"bad condition type", "rules:\n  - test: {a: 1}\n", "condition must be a string"},
		{"inline with chain", "rules:\n  - test: x\n    use: [{loader: a}, 3]\n", "use[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBuildConfig([]byte(tt.doc), FormatYAML)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

// ---------------------------------------------------------------------------
// Inline loader syntax
// ---------------------------------------------------------------------------

func TestParseInlineLoaders(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []StepConfig
	}{
		{"empty", "", nil},
		{"single", "raw-loader", []StepConfig{{Loader: "raw-loader"}}},
		{
			name: "chain",
			in:   "style-loader!css-loader",
			want: []StepConfig{{Loader: "style-loader"}, {Loader: "css-loader"}},
		},
		{
			name: "query pairs",
			in:   "css-loader?modules&importLoaders=1&-url&+sourceMap",
			want: []StepConfig{{Loader: "css-loader", Options: map[string]interface{}{
				"modules":       true,
				"importLoaders": "1",
				"url":           false,
				"sourceMap":     true,
			}}},
		},
		{
			name: "escaped value",
			in:   "babel-loader?target=es%202015",
			want: []StepConfig{{Loader: "babel-loader", Options: map[string]interface{}{"target": "es 2015"}}},
		},
		{
			name: "object query",
			in:   `babel-loader?{"presets":["env"]}`,
			want: []StepConfig{{Loader: "babel-loader", Options: map[string]interface{}{
				"presets": []interface{}{"env"},
			}}},
		},
		{
			name: "plus flag alone",
			in:   "css-loader?+sourceMap",
			want: []StepConfig{{Loader: "css-loader", Options: map[string]interface{}{"sourceMap": true}}},
		},
		{
			name: "escaped flag keys",
			in:   "css-loader?+source%20map&-no%2Burl",
			want: []StepConfig{{Loader: "css-loader", Options: map[string]interface{}{
				"source map": true,
				"no+url":     false,
			}}},
		},
		{
			name: "bang inside object query",
			in:   `babel-loader?{"banner":"x!y"}!raw-loader`,
			want: []StepConfig{
				{Loader: "babel-loader", Options: map[string]interface{}{"banner": "x!y"}},
				{Loader: "raw-loader"},
			},
		},
		{
			name: "bang inside nested object query",
			in:   `a?{"o":{"k":"}!"}}!b`,
			want: []StepConfig{
				{Loader: "a", Options: map[string]interface{}{"o": map[string]interface{}{"k": "}!"}}},
				{Loader: "b"},
			},
		},
		{
			name: "leading bang ignored",
			in:   "!!raw-loader",
			want: []StepConfig{{Loader: "raw-loader"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseInlineLoaders(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseInlineLoaders_Errors(t *testing.T) {
	for _, in := range []string{"?x=1", "a?%zz", "a?{bad"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseInlineLoaders(in)
			assert.Error(t, err)
		})
	}
}

func TestStepConfig_InlineMustBeSingle(t *testing.T) {
	var s StepConfig
	err := s.UnmarshalJSON([]byte(`"a!b"`))
	assert.ErrorContains(t, err, "exactly one loader")

	require.NoError(t, s.UnmarshalJSON([]byte(`"a?x=1"`)))
	assert.Equal(t, StepConfig{Loader: "a", Options: map[string]interface{}{"x": "1"}}, s)
}

func TestUseList_Forms(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"inline", `"a!b"`, []string{"a", "b"}},
		{"list of inline", `["a!b", "c"]`, []string{"a", "b", "c"}},
		{"mixed list", `["a", {"loader": "b"}]`, []string{"a", "b"}},
		{"single object", `{"loader": "a", "options": {"x": 1}}`, []string{"a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var u UseList
			require.NoError(t, u.UnmarshalJSON([]byte(tt.in)))

			got := make([]string, 0, len(u))
			for _, s := range u {
				got = append(got, s.Loader)
			}

			assert.Equal(t, tt.want, got)
		})
	}
}

// ---------------------------------------------------------------------------
// Paths
// ---------------------------------------------------------------------------

func TestBuildConfig_Paths(t *testing.T) {
	cfg := DefaultBuildConfig()
	cfg.Dir = filepath.FromSlash("/project")
	cfg.Context = "web"
	cfg.Resolve.Modules = []string{"node_modules", "./lib", "shared/vendor", filepath.FromSlash("/opt/js")}

	assert.Equal(t, filepath.FromSlash("/project/web"), cfg.BaseDir())
	assert.Equal(t, filepath.FromSlash("/project/web/dist"), cfg.OutputDir())
	assert.Equal(t, filepath.FromSlash("/project/web/src/a.js"), cfg.Path("src/a.js"))
	assert.Equal(t, []string{
		"node_modules",
		filepath.FromSlash("/project/web/lib"),
		filepath.FromSlash("/project/web/shared/vendor"),
		filepath.FromSlash("/opt/js"),
	}, cfg.ModuleRoots())
}

func TestBuildConfig_AbsoluteContext(t *testing.T) {
	cfg := DefaultBuildConfig()
	cfg.Dir = "ignored"
	cfg.Context = filepath.FromSlash("/srv/app/")

	assert.Equal(t, filepath.FromSlash("/srv/app"), cfg.BaseDir())
}

func TestBuildConfig_EntryNames(t *testing.T) {
	cfg := &BuildConfig{Entry: map[string]string{"vendor": "v.js", "app": "a.js", "admin": "b.js"}}
	assert.Equal(t, []string{"admin", "app", "vendor"}, cfg.EntryNames())
}

// ---------------------------------------------------------------------------
// LoadBuildFile
// ---------------------------------------------------------------------------

func TestLoadBuildFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "assetrules.json")
	require.NoError(t, os.WriteFile(p, []byte(`{"rules": [{"test": "\\.txt$", "use": "raw-loader"}]}`), 0o600))

	cfg, err := LoadBuildFile(p)
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.Dir)
	assert.Equal(t, dir, cfg.BaseDir())
	require.Len(t, cfg.Rules, 1)
}

func TestLoadBuildFile_Missing(t *testing.T) {
	_, err := LoadBuildFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "reading build file")
}

func TestLoadBuildFile_InvalidPrefixesPath(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "assetrules.yaml")
	require.NoError(t, os.WriteFile(p, []byte("rules:\n  - use: raw-loader\n"), 0o600))

	_, err := LoadBuildFile(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), p)
}
