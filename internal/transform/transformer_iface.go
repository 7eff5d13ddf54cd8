package transform

import (
	"context"

	"github.com/hupe1980/assetrules/internal/rules"
)

// Transformer applies one pipeline step to an asset in place.
type Transformer interface {
	// Name returns the loader identifier for logging.
	Name() string

	// Transform rewrites the asset. Implementations may change both
	// Contents and Kind (e.g. CSS wrapped into a JS module).
	Transform(ctx context.Context, asset *Asset) error
}

// Registry is the interface the engine uses to instantiate pipeline
// steps. The concrete implementation lives in internal/transform/transformer
// to avoid circular imports.
type Registry interface {
	// Lookup instantiates the transformer for step. Unknown loaders fail
	// with an *UnresolvedTransformError.
	Lookup(step rules.Step) (Transformer, error)
}
