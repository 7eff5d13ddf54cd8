// Package assetrules provides a public Go API for resolving asset loader
// pipelines from a declarative build definition.
//
// Basic usage:
//
//	b, err := assetrules.Load("assetrules.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	pipeline, err := b.Resolve("src/app.js")
//
// Rules can also be built in Go and resolved without a build file:
//
//	pipeline, err := assetrules.Resolve([]assetrules.Rule{{
//	    Match: assetrules.Suffix(".css"),
//	    Chain: assetrules.Pipeline{{Loader: "style-loader"}, {Loader: "css-loader"}},
//	}}, "theme.css")
package assetrules

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hupe1980/assetrules/internal/config"
	"github.com/hupe1980/assetrules/internal/logging"
	"github.com/hupe1980/assetrules/internal/modules"
	"github.com/hupe1980/assetrules/internal/rules"
	"github.com/hupe1980/assetrules/internal/transform"
	"github.com/hupe1980/assetrules/internal/transform/transformer"
)

// Rule, pipeline and transformation types.
type (
	Rule        = rules.Rule
	Step        = rules.Step
	Pipeline    = rules.Pipeline
	Predicate   = rules.Predicate
	Match       = rules.Match
	Asset       = transform.Asset
	Transformer = transform.Transformer
	Factory     = transformer.Factory
)

// Sentinel errors, for use with errors.Is.
var (
	ErrInvalidRule         = rules.ErrInvalidRule
	ErrEmptyPath           = rules.ErrEmptyPath
	ErrUnresolvedTransform = transform.ErrUnresolvedTransform
	ErrModuleNotFound      = modules.ErrModuleNotFound
)

// Predicate constructors.
var (
	Regexp         = rules.Regexp
	Glob           = rules.Glob
	Suffix         = rules.Suffix
	Contains       = rules.Contains
	Any            = rules.Any
	All            = rules.All
	Func           = rules.Func
	ParseCondition = rules.ParseCondition
)

// Resolve returns the pipeline of the first rule that applies to path.
// An empty pipeline means no rule applies. A matching rule with an empty
// chain yields an empty pipeline together with an error wrapping
// ErrInvalidRule, which callers should treat as a warning (see IsWarning).
func Resolve(rs []Rule, path string) (Pipeline, error) {
	return rules.Resolve(rs, path)
}

// IsWarning reports whether err from Resolve is a warning only.
func IsWarning(err error) bool { return rules.IsWarning(err) }

// Option configures a Build.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	loaders map[string]Factory
}

// WithLogger sets the logger used while running pipelines.
func WithLogger(l *slog.Logger) Option { return func(o *options) { o.logger = l } }

// WithLoader registers an additional loader, or replaces a built-in one.
func WithLoader(name string, f Factory) Option {
	return func(o *options) {
		if o.loaders == nil {
			o.loaders = make(map[string]Factory)
		}

		o.loaders[name] = f
	}
}

// Build is a loaded build definition with its compiled rules.
// It is safe for concurrent use.
type Build struct {
	config   *config.BuildConfig
	resolver *rules.Resolver
	registry *transformer.Registry
	engine   *transform.Engine
}

// Load reads a build definition. The format follows the file extension:
// .json, .jsonc, .toml, otherwise YAML.
func Load(path string, opts ...Option) (*Build, error) {
	cfg, err := config.LoadBuildFile(path)
	if err != nil {
		return nil, err
	}

	return newBuild(cfg, opts)
}

// Parse parses a build definition held in memory. format is one of
// "yaml", "json", "jsonc" or "toml". Relative paths resolve against the
// working directory.
func Parse(data []byte, format string, opts ...Option) (*Build, error) {
	cfg, err := config.ParseBuildConfig(data, format)
	if err != nil {
		return nil, err
	}

	return newBuild(cfg, opts)
}

func newBuild(cfg *config.BuildConfig, opts []Option) (*Build, error) {
	o := &options{logger: logging.Discard()}
	for _, opt := range opts {
		opt(o)
	}

	resolver, err := rules.NewResolverFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("compiling rules: %w", err)
	}

	registry := transformer.DefaultRegistry()
	for name, f := range o.loaders {
		registry.Register(name, f)
	}

	return &Build{
		config:   cfg,
		resolver: resolver,
		registry: registry,
		engine: transform.NewEngine(transform.EngineConfig{
			Registry: registry,
			Logger:   o.logger,
		}),
	}, nil
}

// Rules returns a copy of the compiled rules in declared order.
func (b *Build) Rules() []Rule { return b.resolver.Rules() }

// Entries returns the entry points, keyed by target name.
func (b *Build) Entries() map[string]string {
	out := make(map[string]string, len(b.config.Entry))
	for k, v := range b.config.Entry {
		out[k] = v
	}

	return out
}

// Resolve returns the pipeline for path. See the package-level Resolve.
func (b *Build) Resolve(path string) (Pipeline, error) {
	return b.resolver.Resolve(path)
}

// Explain resolves path and reports the winning rule and every rule
// skipped because its exclude condition held.
func (b *Build) Explain(path string) (Match, error) {
	return b.resolver.Explain(path)
}

// Warnings returns the load-time problems of the rule set: rules with
// empty chains, blank or unknown loaders, and unreachable rules.
func (b *Build) Warnings() []error {
	ws := rules.Validate(b.resolver.Rules())
	return append(ws, b.registry.CheckRules(b.resolver.Rules())...)
}

// Transform runs the pipeline resolved for path over contents. Loaders run
// last to first. Contents are returned unchanged when no rule applies. An
// unknown loader fails with an error wrapping ErrUnresolvedTransform before
// any step runs.
func (b *Build) Transform(ctx context.Context, path string, contents []byte) ([]byte, error) {
	pipeline, err := b.resolver.Resolve(path)
	if err != nil && !rules.IsWarning(err) {
		return nil, err
	}

	out, err := b.engine.Run(ctx, pipeline, transform.NewAsset(path, contents))
	if err != nil {
		return nil, err
	}

	return out.Contents, nil
}

// Locate resolves an import specifier through the build's module roots.
// fromDir is the directory of the importing file.
func (b *Build) Locate(specifier, fromDir string) (string, error) {
	return modules.New(b.config.ModuleRoots(), b.config.Resolve.Extensions).Lookup(specifier, fromDir)
}
