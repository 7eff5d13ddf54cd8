package assetrules_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/assetrules/pkg/assetrules"
)

const build = `
rules:
  - name: styles
    test: '\.css$'
    use: [style-loader, css-loader]
  - name: scripts
    test: '\.js$'
    exclude: [contains:node_modules]
    use: [babel-loader]
  - name: pass
    test: '\.txt$'
  - test: '\.md$'
    use: [markdown-loader]
`

func TestResolve(t *testing.T) {
	rs := []assetrules.Rule{
		{Match: assetrules.Suffix(".css"), Chain: assetrules.Pipeline{{Loader: "style-loader"}, {Loader: "css-loader"}}},
		{Match: assetrules.Suffix(".js"), Exclude: assetrules.Contains("node_modules"), Chain: assetrules.Pipeline{{Loader: "babel-loader"}}},
	}

	p, err := assetrules.Resolve(rs, "src/theme.css")
	require.NoError(t, err)
	assert.Equal(t, []string{"style-loader", "css-loader"}, p.Loaders())

	p, err = assetrules.Resolve(rs, "node_modules/x/index.js")
	require.NoError(t, err)
	assert.True(t, p.Empty())

	_, err = assetrules.Resolve(rs, "")
	assert.ErrorIs(t, err, assetrules.ErrEmptyPath)
}

func TestParse_Resolve(t *testing.T) {
	b, err := assetrules.Parse([]byte(build), "yaml")
	require.NoError(t, err)

	p, err := b.Resolve("src/app.js")
	require.NoError(t, err)
	assert.Equal(t, "babel-loader", p.String())

	p, err = b.Resolve("notes.txt")
	assert.ErrorIs(t, err, assetrules.ErrInvalidRule)
	assert.True(t, assetrules.IsWarning(err))
	assert.True(t, p.Empty())

	m, err := b.Explain("node_modules/x/index.js")
	require.NoError(t, err)
	assert.False(t, m.Matched())
	require.Len(t, m.Skipped, 1)
	assert.Equal(t, "scripts", m.Skipped[0].Rule)
}

func TestBuild_Warnings(t *testing.T) {
	b, err := assetrules.Parse([]byte(build), "yaml")
	require.NoError(t, err)

	var msgs []string
	for _, w := range b.Warnings() {
		msgs = append(msgs, w.Error())
	}

	joined := strings.Join(msgs, "\n")
	assert.Contains(t, joined, "pass")
	assert.Contains(t, joined, "markdown-loader")
}

func TestBuild_Transform(t *testing.T) {
	b, err := assetrules.Parse([]byte(build), "yaml")
	require.NoError(t, err)

	out, err := b.Transform(context.Background(), "theme.css", []byte("a { color: red; }\n"))
	require.NoError(t, err)
	assert.Contains(t, string(out), "document.createElement(\"style\")")

	out, err = b.Transform(context.Background(), "notes.txt", []byte("as is"))
	require.NoError(t, err)
	assert.Equal(t, "as is", string(out))

	_, err = b.Transform(context.Background(), "README.md", []byte("# hi"))
	assert.ErrorIs(t, err, assetrules.ErrUnresolvedTransform)
}

type upperTransformer struct{}

func (upperTransformer) Name() string { return "upper-loader" }

func (upperTransformer) Transform(_ context.Context, asset *assetrules.Asset) error {
	asset.Contents = []byte(strings.ToUpper(string(asset.Contents)))
	return nil
}

func TestBuild_WithLoader(t *testing.T) {
	b, err := assetrules.Parse([]byte(build), "yaml",
		assetrules.WithLoader("markdown-loader", func(map[string]interface{}) (assetrules.Transformer, error) {
			return upperTransformer{}, nil
		}),
	)
	require.NoError(t, err)

	out, err := b.Transform(context.Background(), "README.md", []byte("# hi"))
	require.NoError(t, err)
	assert.Equal(t, "# HI", string(out))

	for _, w := range b.Warnings() {
		assert.NotContains(t, w.Error(), "markdown-loader")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "assetrules.toml"), []byte(`
[entry]
main = "src/index.js"

[[rules]]
test = '\.js$'
use = "babel-loader"
`), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "node_modules", "dep"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "node_modules", "dep", "index.js"), []byte("x"), 0o644))

	b, err := assetrules.Load(filepath.Join(dir, "assetrules.toml"))
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"main": "src/index.js"}, b.Entries())
	assert.Len(t, b.Rules(), 1)

	found, err := b.Locate("dep", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "node_modules", "dep", "index.js"), found)

	_, err = b.Locate("missing", dir)
	assert.ErrorIs(t, err, assetrules.ErrModuleNotFound)
}

func TestLoad_Missing(t *testing.T) {
	_, err := assetrules.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestParse_InvalidCondition(t *testing.T) {
	_, err := assetrules.Parse([]byte("rules:\n  - test: '('\n    use: [raw-loader]\n"), "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compiling rules")
}
