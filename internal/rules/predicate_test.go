package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCondition(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		path    string
		want    bool
		wantStr string
	}{
		{"regexp suffix", `\.js$`, "src/app.js", true, `\.js$`},
		{"regexp no match", `\.js$`, "src/app.json", false, `\.js$`},
		{"regexp alternation", `\.(js|jsx)$`, "a.jsx", true, `\.(js|jsx)$`},
		{"glob single segment", "glob:src/*.js", "src/app.js", true, "glob:src/*.js"},
		{"glob does not cross slash", "glob:src/*.js", "src/lib/app.js", false, "glob:src/*.js"},
		{"glob double star", "glob:src/**.js", "src/lib/app.js", true, "glob:src/**.js"},
		{"suffix", "suffix:.css", "theme.css", true, "suffix:.css"},
		{"contains", "contains:node_modules", "/p/node_modules/x.js", true, "contains:node_modules"},
		{"contains no match", "contains:node_modules", "/p/src/x.js", false, "contains:node_modules"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseCondition(tt.expr)
			require.NoError(t, err)

			assert.Equal(t, tt.want, p.Match(tt.path))
			assert.Equal(t, tt.wantStr, p.String())
		})
	}
}

func TestParseCondition_Invalid(t *testing.T) {
	for _, expr := range []string{"", "(", "glob:"} {
		t.Run(expr, func(t *testing.T) {
			_, err := ParseCondition(expr)
			assert.Error(t, err)
		})
	}
}

func TestParseConditions(t *testing.T) {
	p, err := ParseConditions(nil)
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = ParseConditions([]string{`\.ts$`})
	require.NoError(t, err)
	assert.Equal(t, `\.ts$`, p.String())

	p, err = ParseConditions([]string{`\.ts$`, "suffix:.tsx"})
	require.NoError(t, err)
	assert.True(t, p.Match("a.ts"))
	assert.True(t, p.Match("a.tsx"))
	assert.False(t, p.Match("a.js"))
	assert.Equal(t, `any(\.ts$, suffix:.tsx)`, p.String())

	_, err = ParseConditions([]string{`\.ts$`, "("})
	assert.Error(t, err)
}

func TestAllAndAny(t *testing.T) {
	src := Contains("/src/")
	js := Suffix(".js")

	assert.True(t, All(src, js).Match("/p/src/a.js"))
	assert.False(t, All(src, js).Match("/p/lib/a.js"))
	assert.True(t, Any(src, js).Match("/p/lib/a.js"))
	assert.False(t, Any().Match("x"))
	assert.True(t, All().Match("x"))
	assert.Equal(t, "all(contains:/src/, suffix:.js)", All(src, js).String())
}

func TestFunc(t *testing.T) {
	p := Func("short", func(path string) bool { return len(path) < 5 })

	assert.True(t, p.Match("a.js"))
	assert.False(t, p.Match("long.js"))
	assert.Equal(t, "short", p.String())
}

func TestMustRegexp_Panics(t *testing.T) {
	assert.Panics(t, func() { MustRegexp("(") })
}
