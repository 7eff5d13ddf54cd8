package config

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/hupe1980/assetrules/internal/version"
)

// BuildConfig is the declarative build definition.
type BuildConfig struct {
	// Requires is an optional semver constraint on the assetrules version.
	Requires string `json:"requires,omitempty"`

	// Context is the base directory for entry, output and module paths.
	// Relative values are resolved against Dir.
	Context string `json:"context,omitempty"`

	// Entry maps build-target names to source paths.
	Entry map[string]string `json:"entry,omitempty"`

	// Output controls where transformed entry points are written.
	Output OutputConfig `json:"output"`

	// Resolve configures bare import specifier lookup.
	Resolve ResolveConfig `json:"resolve"`

	// Rules are the ordered loader rules. The first matching rule wins.
	Rules []RuleConfig `json:"rules,omitempty"`

	// Dir is the directory of the file the config was loaded from.
	// Set by LoadBuildFile, never read from the file itself.
	Dir string `json:"-"`
}

// OutputConfig describes output artifacts.
type OutputConfig struct {
	// Path is the output directory.
	Path string `json:"path,omitempty"`

	// Filename is the artifact name template. Supports [name], [ext],
	// [contenthash] and [contenthash:N].
	Filename string `json:"filename,omitempty"`

	// Precompress also writes a gzip-compressed sibling of every artifact.
	Precompress bool `json:"precompress,omitempty"`
}

// ResolveConfig describes module resolution.
type ResolveConfig struct {
	// Modules are the ordered roots searched for bare specifiers.
	Modules []string `json:"modules,omitempty"`

	// Extensions are tried, in order, when a specifier has none.
	Extensions []string `json:"extensions,omitempty"`
}

// RuleConfig is one declarative rule.
type RuleConfig struct {
	// Name labels the rule in diagnostics.
	Name string `json:"name,omitempty"`

	// Test selects matching paths (any of).
	Test Condition `json:"test"`

	// Include further narrows the match (any of). Optional.
	Include Condition `json:"include,omitempty"`

	// Exclude skips otherwise matching paths (any of). Optional.
	Exclude Condition `json:"exclude,omitempty"`

	// Use is the ordered transformation chain.
	Use UseList `json:"use,omitempty"`

	// Loader is shorthand for Use.
	Loader UseList `json:"loader,omitempty"`
}

// Steps returns the rule chain, preferring Use over the Loader shorthand.
func (r RuleConfig) Steps() []StepConfig {
	if len(r.Use) > 0 {
		return r.Use
	}

	return r.Loader
}

// DefaultBuildConfig returns the defaults applied before parsing.
func DefaultBuildConfig() *BuildConfig {
	return &BuildConfig{
		Context: ".",
		Output: OutputConfig{
			Path:     "dist",
			Filename: "[name].js",
		},
		Resolve: ResolveConfig{
			Modules:    []string{"node_modules"},
			Extensions: []string{".js", ".json"},
		},
	}
}

// Validate checks the build definition for configuration errors.
func (c *BuildConfig) Validate() error {
	if c.Requires != "" {
		if _, err := semver.NewConstraint(c.Requires); err != nil {
			return fmt.Errorf("requires: invalid constraint %q: %w", c.Requires, err)
		}

		if !version.Satisfies(c.Requires) {
			return fmt.Errorf("requires: assetrules %s does not satisfy %q", version.GetInfo().Version, c.Requires)
		}
	}

	for name, src := range c.Entry {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("entry: target name must not be empty")
		}

		if strings.TrimSpace(src) == "" {
			return fmt.Errorf("entry[%s]: source path must not be empty", name)
		}
	}

	if len(c.Entry) > 0 && c.Output.Filename == "" {
		return fmt.Errorf("output.filename is required when entry points are declared")
	}

	for i, r := range c.Rules {
		if len(r.Test) == 0 {
			return fmt.Errorf("rules[%d]: test is required", i)
		}

		if len(r.Use) > 0 && len(r.Loader) > 0 {
			return fmt.Errorf("rules[%d]: use and loader are mutually exclusive", i)
		}

		for j, s := range r.Steps() {
			if strings.TrimSpace(s.Loader) == "" {
				return fmt.Errorf("rules[%d].use[%d]: loader is required", i, j)
			}
		}
	}

	for i, ext := range c.Resolve.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("resolve.extensions[%d]: %q must start with a dot", i, ext)
		}
	}

	return nil
}

// BaseDir returns the absolute-or-relative directory all relative paths
// in the build definition are resolved against.
func (c *BuildConfig) BaseDir() string {
	ctx := c.Context
	if ctx == "" {
		ctx = "."
	}

	if filepath.IsAbs(ctx) {
		return filepath.Clean(ctx)
	}

	return filepath.Join(c.Dir, ctx)
}

// Path resolves p against BaseDir unless it is already absolute.
func (c *BuildConfig) Path(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}

	return filepath.Join(c.BaseDir(), p)
}

// OutputDir returns the resolved output directory.
func (c *BuildConfig) OutputDir() string {
	return c.Path(c.Output.Path)
}

// ModuleRoots returns the module roots. Roots containing a path separator
// or starting with "." are resolved against BaseDir. Bare names such as
// "node_modules" are kept as-is and searched hierarchically.
func (c *BuildConfig) ModuleRoots() []string {
	roots := make([]string, 0, len(c.Resolve.Modules))

	for _, m := range c.Resolve.Modules {
		if filepath.IsAbs(m) || strings.HasPrefix(m, ".") || strings.ContainsRune(m, '/') {
			roots = append(roots, c.Path(m))
		} else {
			roots = append(roots, m)
		}
	}

	return roots
}

// EntryNames returns the entry target names in sorted order.
func (c *BuildConfig) EntryNames() []string {
	names := make([]string, 0, len(c.Entry))
	for name := range c.Entry {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
