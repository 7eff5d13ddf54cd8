package transformer

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/hupe1980/assetrules/internal/rules"
	"github.com/hupe1980/assetrules/internal/transform"
)

// Registry maps loader identifiers to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	aliases   map[string]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		aliases:   make(map[string]string),
	}
}

// Register adds a factory under name. Existing entries for the same name
// are overwritten, which lets callers replace built-ins.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories[name] = f
	delete(r.aliases, name)
}

// Alias makes alias resolve to the factory registered as target.
func (r *Registry) Alias(alias, target string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.aliases[alias] = target
}

// Has reports whether name (or an alias of it) is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.factoryLocked(name)

	return ok
}

func (r *Registry) factoryLocked(name string) (Factory, bool) {
	if target, ok := r.aliases[name]; ok {
		name = target
	}

	f, ok := r.factories[name]

	return f, ok
}

// Names returns the sorted list of registered identifiers and aliases.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories)+len(r.aliases))
	for name := range r.factories {
		names = append(names, name)
	}

	for alias := range r.aliases {
		names = append(names, alias)
	}

	sort.Strings(names)

	return names
}

// Lookup implements transform.Registry.
func (r *Registry) Lookup(step rules.Step) (transform.Transformer, error) {
	r.mu.RLock()
	f, ok := r.factoryLocked(step.Loader)
	r.mu.RUnlock()

	if !ok {
		return nil, &transform.UnresolvedTransformError{Loader: step.Loader, Known: r.Names()}
	}

	t, err := f(step.Options)
	if err != nil {
		return nil, fmt.Errorf("configuring %s: %w", step.Loader, err)
	}

	return t, nil
}

// Check reports every loader in p that is unknown or rejects its options.
func (r *Registry) Check(p rules.Pipeline) []error {
	var errs []error

	for _, step := range p {
		if _, err := r.Lookup(step); err != nil {
			errs = append(errs, err)
		}
	}

	return errs
}

// CheckRules runs Check over every rule chain and deduplicates unknown
// loaders so each is reported once.
func (r *Registry) CheckRules(rs []rules.Rule) []error {
	var errs []error

	seen := make(map[string]bool)

	for _, rule := range rs {
		for _, err := range r.Check(rule.Chain) {
			var unresolved *transform.UnresolvedTransformError
			if errors.As(err, &unresolved) {
				if seen[unresolved.Loader] {
					continue
				}

				seen[unresolved.Loader] = true
			}

			errs = append(errs, err)
		}
	}

	return errs
}

// DefaultRegistry returns a registry pre-populated with the built-in
// loaders and their conventional aliases.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register("esbuild-loader", NewScriptFactory("esbuild-loader"))
	r.Register("css-loader", NewCSSFactory("css-loader"))
	r.Register("style-loader", NewStyleFactory())
	r.Register("raw-loader", NewRawFactory())
	r.Register("provide", NewProvideFactory())

	r.Alias("babel-loader", "esbuild-loader")
	r.Alias("ts-loader", "esbuild-loader")
	r.Alias("postcss-loader", "css-loader")

	return r
}

// Compile-time check that *Registry implements transform.Registry.
var _ transform.Registry = (*Registry)(nil)
