package rules

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAll_PreservesOrder(t *testing.T) {
	r := NewResolver(exampleRules()...)

	paths := make([]string, 0, 200)
	for i := 0; i < 100; i++ {
		paths = append(paths, fmt.Sprintf("src/m%d.js", i), fmt.Sprintf("node_modules/m%d.js", i))
	}

	results, err := r.ResolveAll(context.Background(), paths, ResolveAllOptions{Workers: 8})
	require.NoError(t, err)
	require.Len(t, results, len(paths))

	for i, res := range results {
		assert.Equal(t, paths[i], res.Path)
		require.NoError(t, res.Err)

		if i%2 == 0 {
			assert.Equal(t, []string{"babel-loader"}, res.Pipeline.Loaders())
		} else {
			assert.True(t, res.Pipeline.Empty())
		}
	}
}

func TestResolveAll_MatchesSequential(t *testing.T) {
	r := NewResolver(exampleRules()...)
	paths := []string{"a.css", "b.js", "node_modules/c.js", "d.txt", "e.css"}

	par, err := r.ResolveAll(context.Background(), paths, ResolveAllOptions{Workers: 4})
	require.NoError(t, err)

	seq, err := r.ResolveAll(context.Background(), paths, ResolveAllOptions{Workers: 1})
	require.NoError(t, err)

	assert.Equal(t, seq, par)
}

func TestResolveAll_PerPathErrors(t *testing.T) {
	r := NewResolver(Rule{Match: Suffix(".json")}, Rule{Match: Suffix(".js"), Chain: chain("a")})

	results, err := r.ResolveAll(context.Background(), []string{"a.json", "", "b.js"}, ResolveAllOptions{})
	require.NoError(t, err)

	assert.True(t, IsWarning(results[0].Err))
	assert.ErrorIs(t, results[1].Err, ErrEmptyPath)
	assert.NoError(t, results[2].Err)
}

func TestResolveAll_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewResolver(exampleRules()...).ResolveAll(ctx, []string{"a.js", "b.js", "c.js", "d.js"}, ResolveAllOptions{Workers: 2})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolveAll_RecoversPanics(t *testing.T) {
	r := NewResolver(Rule{
		Match: Func("boom", func(string) bool { panic("predicate failed") }),
		Chain: chain("a"),
	})

	_, err := r.ResolveAll(context.Background(), []string{"a", "b", "c"}, ResolveAllOptions{Workers: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "predicate failed")
}

func TestResolveAll_Empty(t *testing.T) {
	results, err := NewResolver().ResolveAll(context.Background(), nil, ResolveAllOptions{})
	require.NoError(t, err)
	assert.Empty(t, results)
}
