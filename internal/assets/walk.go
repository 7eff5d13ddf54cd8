// Package assets enumerates candidate asset paths from a source tree.
package assets

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// WalkOptions controls enumeration.
type WalkOptions struct {
	// IncludeHidden also visits dot-files and dot-directories.
	IncludeHidden bool

	// Skip lists glob patterns (with "/" as separator) matched against
	// slash paths relative to the walk root. Matching directories are not
	// descended into.
	Skip []string
}

// Walk returns every regular file below root, sorted, as slash-separated
// paths prefixed with root exactly as given (e.g. "web/src/app.js").
func Walk(ctx context.Context, root string, opts WalkOptions) ([]string, error) {
	skips := make([]glob.Glob, 0, len(opts.Skip))

	for _, pattern := range opts.Skip {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid skip pattern %q: %w", pattern, err)
		}

		skips = append(skips, g)
	}

	var out []string

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		if p == root {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}

		rel = filepath.ToSlash(rel)

		if skipped(d.Name(), rel, opts.IncludeHidden, skips) {
			if d.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if d.Type().IsRegular() {
			out = append(out, path.Join(filepath.ToSlash(root), rel))
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	sort.Strings(out)

	return out, nil
}

func skipped(name, rel string, includeHidden bool, skips []glob.Glob) bool {
	if !includeHidden && strings.HasPrefix(name, ".") {
		return true
	}

	for _, g := range skips {
		if g.Match(rel) || g.Match(name) {
			return true
		}
	}

	return false
}
