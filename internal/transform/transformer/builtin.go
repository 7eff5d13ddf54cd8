package transformer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/hupe1980/assetrules/internal/transform"
)

// ---------------------------------------------------------------------------
// Script transformer (esbuild)
// ---------------------------------------------------------------------------

// esbuildTargets maps target option values to esbuild targets.
var esbuildTargets = map[string]api.Target{
	"es5":    api.ES5,
	"es2015": api.ES2015,
	"es6":    api.ES2015,
	"es2016": api.ES2016,
	"es2017": api.ES2017,
	"es2018": api.ES2018,
	"es2019": api.ES2019,
	"es2020": api.ES2020,
	"es2021": api.ES2021,
	"es2022": api.ES2022,
	"esnext": api.ESNext,
}

// envPresets lower syntax to ES2015 when no explicit target is given,
// which is what Babel's env preset does for legacy browser lists.
var envPresets = map[string]bool{
	"env":               true,
	"@babel/preset-env": true,
	"@babel/env":        true,
	"babel-preset-env":  true,
}

var esbuildFormats = map[string]api.Format{
	"esm":  api.FormatESModule,
	"cjs":  api.FormatCommonJS,
	"iife": api.FormatIIFE,
}

var scriptLoaders = map[string]api.Loader{
	"js":  api.LoaderJS,
	"jsx": api.LoaderJSX,
	"ts":  api.LoaderTS,
	"tsx": api.LoaderTSX,
}

// ScriptTransformer compiles JavaScript dialects with esbuild.
type ScriptTransformer struct {
	name   string
	opts   api.TransformOptions
	loader api.Loader
}

// NewScriptFactory returns a factory for esbuild script transforms.
//
// Options: target (es5..es2022, esnext), presets (an env preset implies
// es2015), minify (bool), format (esm, cjs, iife), loader (js, jsx, ts,
// tsx; inferred from the asset when unset), define (identifier to
// expression map).
func NewScriptFactory(name string) Factory {
	return func(options map[string]interface{}) (transform.Transformer, error) {
		t := &ScriptTransformer{name: name}

		target, err := stringOption(options, "target")
		if err != nil {
			return nil, err
		}

		if target != "" {
			tgt, ok := esbuildTargets[strings.ToLower(target)]
			if !ok {
				return nil, fmt.Errorf("unknown target %q", target)
			}

			t.opts.Target = tgt
		} else {
			presets, err := stringSliceOption(options, "presets")
			if err != nil {
				return nil, err
			}

			for _, p := range presets {
				if envPresets[p] {
					t.opts.Target = api.ES2015
					break
				}
			}
		}

		minify, err := boolOption(options, "minify")
		if err != nil {
			return nil, err
		}

		t.opts.MinifyWhitespace = minify
		t.opts.MinifyIdentifiers = minify
		t.opts.MinifySyntax = minify

		format, err := stringOption(options, "format")
		if err != nil {
			return nil, err
		}

		if format != "" {
			f, ok := esbuildFormats[format]
			if !ok {
				return nil, fmt.Errorf("unknown format %q (must be esm, cjs or iife)", format)
			}

			t.opts.Format = f
		}

		loader, err := stringOption(options, "loader")
		if err != nil {
			return nil, err
		}

		if loader != "" {
			l, ok := scriptLoaders[loader]
			if !ok {
				return nil, fmt.Errorf("unknown loader %q (must be js, jsx, ts or tsx)", loader)
			}

			t.loader = l
		}

		define, err := stringMapOption(options, "define")
		if err != nil {
			return nil, err
		}

		t.opts.Define = define

		return t, nil
	}
}

// Name implements transform.Transformer.
func (t *ScriptTransformer) Name() string { return t.name }

// Transform implements transform.Transformer.
func (t *ScriptTransformer) Transform(_ context.Context, asset *transform.Asset) error {
	opts := t.opts
	opts.Sourcefile = asset.Path
	opts.Loader = t.loader

	if opts.Loader == api.LoaderNone {
		l, ok := scriptLoaders[string(asset.Kind)]
		if !ok {
			return fmt.Errorf("cannot compile %s asset as script", asset.Kind)
		}

		opts.Loader = l
	}

	result := api.Transform(string(asset.Contents), opts)
	if err := messagesError(result.Errors); err != nil {
		return err
	}

	asset.Contents = result.Code
	asset.Kind = transform.KindJS

	return nil
}

// ---------------------------------------------------------------------------
// CSS transformer (esbuild)
// ---------------------------------------------------------------------------

// CSSTransformer parses and re-emits CSS with esbuild, lowering modern
// syntax and optionally minifying.
type CSSTransformer struct {
	name string
	opts api.TransformOptions
}

// NewCSSFactory returns a factory for esbuild CSS transforms.
// Options: minify (bool). Other css-loader options such as importLoaders
// are accepted and ignored.
func NewCSSFactory(name string) Factory {
	return func(options map[string]interface{}) (transform.Transformer, error) {
		minify, err := boolOption(options, "minify")
		if err != nil {
			return nil, err
		}

		return &CSSTransformer{
			name: name,
			opts: api.TransformOptions{
				Loader:           api.LoaderCSS,
				MinifyWhitespace: minify,
				MinifySyntax:     minify,
			},
		}, nil
	}
}

// Name implements transform.Transformer.
func (t *CSSTransformer) Name() string { return t.name }

// Transform implements transform.Transformer.
func (t *CSSTransformer) Transform(_ context.Context, asset *transform.Asset) error {
	if asset.Kind != transform.KindCSS {
		return fmt.Errorf("expected css asset, got %s", asset.Kind)
	}

	opts := t.opts
	opts.Sourcefile = asset.Path

	result := api.Transform(string(asset.Contents), opts)
	if err := messagesError(result.Errors); err != nil {
		return err
	}

	asset.Contents = result.Code

	return nil
}

// ---------------------------------------------------------------------------
// Style transformer
// ---------------------------------------------------------------------------

// StyleTransformer wraps CSS into a JS module that injects a <style>
// element when evaluated in a browser.
type StyleTransformer struct {
	attributes map[string]string
}

// NewStyleFactory returns a factory for style-loader.
// Options: attributes (map added to the <style> element).
func NewStyleFactory() Factory {
	return func(options map[string]interface{}) (transform.Transformer, error) {
		attrs, err := stringMapOption(options, "attributes")
		if err != nil {
			return nil, err
		}

		return &StyleTransformer{attributes: attrs}, nil
	}
}

// Name implements transform.Transformer.
func (t *StyleTransformer) Name() string { return "style-loader" }

// Transform implements transform.Transformer.
func (t *StyleTransformer) Transform(_ context.Context, asset *transform.Asset) error {
	if asset.Kind != transform.KindCSS {
		return fmt.Errorf("expected css asset, got %s", asset.Kind)
	}

	var b strings.Builder

	b.WriteString("const css = ")
	b.WriteString(jsString(string(asset.Contents)))
	b.WriteString(";\n")
	b.WriteString("const style = document.createElement(\"style\");\n")

	for _, k := range sortedKeys(t.attributes) {
		fmt.Fprintf(&b, "style.setAttribute(%s, %s);\n", jsString(k), jsString(t.attributes[k]))
	}

	b.WriteString("style.textContent = css;\n")
	b.WriteString("document.head.appendChild(style);\n")
	b.WriteString("export default css;\n")

	asset.Contents = []byte(b.String())
	asset.Kind = transform.KindJS

	return nil
}

// ---------------------------------------------------------------------------
// Raw transformer
// ---------------------------------------------------------------------------

// RawTransformer exports the asset contents as a string module.
type RawTransformer struct{}

// NewRawFactory returns a factory for raw-loader. It takes no options.
func NewRawFactory() Factory {
	return func(_ map[string]interface{}) (transform.Transformer, error) {
		return &RawTransformer{}, nil
	}
}

// Name implements transform.Transformer.
func (t *RawTransformer) Name() string { return "raw-loader" }

// Transform implements transform.Transformer.
func (t *RawTransformer) Transform(_ context.Context, asset *transform.Asset) error {
	asset.Contents = []byte("export default " + jsString(string(asset.Contents)) + ";\n")
	asset.Kind = transform.KindJS

	return nil
}

// messagesError folds esbuild error messages into a single error.
func messagesError(msgs []api.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	errs := make([]error, 0, len(msgs))

	for _, m := range msgs {
		if m.Location != nil {
			errs = append(errs, fmt.Errorf("%d:%d: %s", m.Location.Line, m.Location.Column, m.Text))
		} else {
			errs = append(errs, errors.New(m.Text))
		}
	}

	return errors.Join(errs...)
}

// jsString renders s as a JavaScript string literal. JSON string syntax is
// a subset of JavaScript's, and encoding/json escapes U+2028 and U+2029.
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
