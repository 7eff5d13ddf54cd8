// Package transform executes resolved pipelines against assets.
//
// The [Engine] instantiates every step through a [Registry] before running
// any of them, so an unknown loader fails the whole pipeline up front with
// [ErrUnresolvedTransform]. Steps then run last to first: the right-most
// loader in a chain sees the raw source, matching the loader convention of
// JavaScript bundlers.
package transform

import (
	"path/filepath"
	"strings"
)

// Kind identifies the current content type of an asset.
type Kind string

// Known asset kinds.
const (
	KindJS   Kind = "js"
	KindJSX  Kind = "jsx"
	KindTS   Kind = "ts"
	KindTSX  Kind = "tsx"
	KindCSS  Kind = "css"
	KindJSON Kind = "json"
	KindText Kind = "text"
)

// KindFromPath infers the asset kind from the file extension.
func KindFromPath(path string) Kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".js", ".mjs", ".cjs":
		return KindJS
	case ".jsx":
		return KindJSX
	case ".ts", ".mts", ".cts":
		return KindTS
	case ".tsx":
		return KindTSX
	case ".css":
		return KindCSS
	case ".json":
		return KindJSON
	default:
		return KindText
	}
}

// IsScript reports whether the kind is a JavaScript dialect.
func (k Kind) IsScript() bool {
	switch k {
	case KindJS, KindJSX, KindTS, KindTSX:
		return true
	default:
		return false
	}
}

// Asset is a single input flowing through a pipeline.
type Asset struct {
	// Path identifies the asset. It is only used for diagnostics and kind
	// inference.
	Path string

	// Contents is the current source text.
	Contents []byte

	// Kind is the current content type.
	Kind Kind
}

// NewAsset creates an asset whose kind is inferred from path.
func NewAsset(path string, contents []byte) *Asset {
	return &Asset{Path: path, Contents: contents, Kind: KindFromPath(path)}
}
