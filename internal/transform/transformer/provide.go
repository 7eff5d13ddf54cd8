package transformer

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/hupe1980/assetrules/internal/transform"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// provision is one symbol made available to a module.
type provision struct {
	symbol string
	module string
	export string // empty for the default export
	usage  *regexp.Regexp
	decl   *regexp.Regexp
}

// ProvideTransformer prepends imports for symbols a script uses without
// declaring them. It replaces ambient globals (e.g. "$" for jQuery) with
// explicit imports.
//
// Detection is lexical: occurrences inside strings or comments also count.
type ProvideTransformer struct {
	provisions []provision
}

// NewProvideFactory returns a factory for the provide step.
//
// Options map a symbol to either a module name ("jquery") or a
// [module, export] pair (["lodash", "map"]).
func NewProvideFactory() Factory {
	return func(options map[string]interface{}) (transform.Transformer, error) {
		if len(options) == 0 {
			return nil, fmt.Errorf("provide needs at least one symbol")
		}

		symbols := make([]string, 0, len(options))
		for k := range options {
			symbols = append(symbols, k)
		}

		sort.Strings(symbols)

		t := &ProvideTransformer{}

		for _, sym := range symbols {
			if !identifierPattern.MatchString(sym) {
				return nil, fmt.Errorf("provide: %q is not a valid identifier", sym)
			}

			p := provision{symbol: sym}

			switch v := options[sym].(type) {
			case string:
				p.module = v
			case []interface{}:
				if len(v) != 2 {
					return nil, fmt.Errorf("provide[%s]: expected [module, export]", sym)
				}

				mod, ok1 := v[0].(string)
				exp, ok2 := v[1].(string)

				if !ok1 || !ok2 {
					return nil, fmt.Errorf("provide[%s]: module and export must be strings", sym)
				}

				if !identifierPattern.MatchString(exp) {
					return nil, fmt.Errorf("provide[%s]: export %q is not a valid identifier", sym, exp)
				}

				p.module, p.export = mod, exp
			default:
				return nil, fmt.Errorf("provide[%s]: must be a module name or [module, export], got %T", sym, v)
			}

			if p.module == "" {
				return nil, fmt.Errorf("provide[%s]: module must not be empty", sym)
			}

			q := regexp.QuoteMeta(sym)
			p.usage = regexp.MustCompile(`(?:^|[^A-Za-z0-9_$.])` + q + `(?:[^A-Za-z0-9_$]|$)`)
			p.decl = regexp.MustCompile(`(?m)(?:\b(?:var|let|const|function|class)\s+` + q + `(?:[^A-Za-z0-9_$]|$))|(?:\bimport\s+` + q + `\s)|(?:\bas\s+` + q + `\s*[,}])`)

			t.provisions = append(t.provisions, p)
		}

		return t, nil
	}
}

// Name implements transform.Transformer.
func (t *ProvideTransformer) Name() string { return "provide" }

// Transform implements transform.Transformer. Non-script assets pass
// through unchanged.
func (t *ProvideTransformer) Transform(_ context.Context, asset *transform.Asset) error {
	if !asset.Kind.IsScript() {
		return nil
	}

	src := string(asset.Contents)

	var header strings.Builder

	for _, p := range t.provisions {
		if !p.usage.MatchString(src) || p.decl.MatchString(src) {
			continue
		}

		if p.export == "" {
			fmt.Fprintf(&header, "import %s from %s;\n", p.symbol, jsString(p.module))
		} else {
			fmt.Fprintf(&header, "import { %s as %s } from %s;\n", p.export, p.symbol, jsString(p.module))
		}
	}

	if header.Len() == 0 {
		return nil
	}

	asset.Contents = append([]byte(header.String()), asset.Contents...)

	return nil
}
