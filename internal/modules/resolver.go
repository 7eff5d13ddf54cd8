// Package modules resolves import specifiers to files using the ordered
// module roots of a build definition.
//
// Relative ("./x", "../x") and absolute specifiers are resolved against
// the importing directory. Bare specifiers ("lodash/map") are looked up in
// each root in order. A root given as a plain directory name such as
// "node_modules" is searched in the importing directory and every ancestor,
// nearest first; any other root is a fixed directory.
package modules

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrModuleNotFound is returned when no candidate file exists.
var ErrModuleNotFound = errors.New("module not found")

// NotFoundError lists the candidates that were tried.
type NotFoundError struct {
	Specifier string
	Tried     []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %q (tried %d candidates)", ErrModuleNotFound, e.Specifier, len(e.Tried))
}

func (e *NotFoundError) Unwrap() error { return ErrModuleNotFound }

// Resolver looks up import specifiers.
type Resolver struct {
	// Roots are searched in order for bare specifiers.
	Roots []string

	// Extensions are appended, in order, when the specifier itself is not
	// a file.
	Extensions []string
}

// New creates a Resolver.
func New(roots, extensions []string) *Resolver {
	return &Resolver{Roots: roots, Extensions: extensions}
}

// Lookup resolves specifier as imported from a file in fromDir and returns the
// cleaned path of the file it refers to.
func (r *Resolver) Lookup(specifier, fromDir string) (string, error) {
	if strings.TrimSpace(specifier) == "" {
		return "", fmt.Errorf("empty module specifier")
	}

	var tried []string

	for _, base := range r.bases(specifier, fromDir) {
		found, candidates := r.file(base)
		tried = append(tried, candidates...)

		if found != "" {
			return found, nil
		}
	}

	return "", &NotFoundError{Specifier: specifier, Tried: tried}
}

// Candidates returns every directory Lookup would probe for specifier, in
// order, without touching the filesystem.
func (r *Resolver) Candidates(specifier, fromDir string) []string {
	return r.bases(specifier, fromDir)
}

// bases returns the candidate base paths for specifier in lookup order.
func (r *Resolver) bases(specifier, fromDir string) []string {
	if isRelative(specifier) {
		return []string{filepath.Join(fromDir, filepath.FromSlash(specifier))}
	}

	if filepath.IsAbs(specifier) {
		return []string{filepath.Clean(specifier)}
	}

	rel := filepath.FromSlash(specifier)

	var out []string

	for _, root := range r.Roots {
		if !isHierarchical(root) {
			out = append(out, filepath.Join(root, rel))
			continue
		}

		for _, dir := range ancestors(fromDir) {
			// node_modules/node_modules is never a valid lookup location.
			if filepath.Base(dir) == root {
				continue
			}

			out = append(out, filepath.Join(dir, root, rel))
		}
	}

	return out
}

// file tries base as a file, with each extension, through package.json
// "main", and as a directory index.
func (r *Resolver) file(base string) (string, []string) {
	var tried []string

	try := func(p string) bool {
		tried = append(tried, p)
		return isFile(p)
	}

	if try(base) {
		return base, tried
	}

	for _, ext := range r.Extensions {
		if try(base + ext) {
			return base + ext, tried
		}
	}

	if main := packageMain(base); main != "" {
		p := filepath.Join(base, filepath.FromSlash(main))
		if try(p) {
			return p, tried
		}

		for _, ext := range r.Extensions {
			if try(p + ext) {
				return p + ext, tried
			}
		}
	}

	for _, ext := range r.Extensions {
		p := filepath.Join(base, "index"+ext)
		if try(p) {
			return p, tried
		}
	}

	return "", tried
}

// packageMain returns the "main" field of dir/package.json, if any.
func packageMain(dir string) string {
	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		return ""
	}

	var pkg struct {
		Main string `json:"main"`
	}

	if err := json.Unmarshal(data, &pkg); err != nil {
		return ""
	}

	return pkg.Main
}

func isRelative(specifier string) bool {
	return specifier == "." || specifier == ".." ||
		strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../")
}

// isHierarchical reports whether root is a bare directory name searched
// up the directory tree.
func isHierarchical(root string) bool {
	return !filepath.IsAbs(root) && !strings.HasPrefix(root, ".") &&
		!strings.ContainsRune(root, filepath.Separator) && !strings.ContainsRune(root, '/')
}

// ancestors returns dir and its parents, nearest first.
func ancestors(dir string) []string {
	dir = filepath.Clean(dir)

	var out []string

	for {
		out = append(out, dir)

		parent := filepath.Dir(dir)
		if parent == dir {
			return out
		}

		dir = parent
	}
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}
