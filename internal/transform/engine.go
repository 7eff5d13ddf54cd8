package transform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hupe1980/assetrules/internal/rules"
)

// EngineConfig configures the pipeline engine.
type EngineConfig struct {
	// Registry instantiates pipeline steps. Required.
	Registry Registry

	// Logger receives per-step debug logs. Defaults to slog.Default().
	Logger *slog.Logger
}

// Engine executes resolved pipelines.
type Engine struct {
	config EngineConfig
}

// NewEngine creates a new pipeline engine.
func NewEngine(config EngineConfig) *Engine {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &Engine{config: config}
}

// Prepare instantiates every step of p. All unresolved loaders are
// reported together; nothing is returned unless every step resolved.
func (e *Engine) Prepare(p rules.Pipeline) ([]Transformer, error) {
	if e.config.Registry == nil {
		return nil, fmt.Errorf("transform engine has no registry")
	}

	out := make([]Transformer, 0, len(p))

	var errs []error

	for _, step := range p {
		t, err := e.config.Registry.Lookup(step)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		out = append(out, t)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return out, nil
}

// Run applies p to asset and returns the transformed asset. The input is
// not modified. Steps run last to first. An empty pipeline returns a copy
// of the input unchanged.
func (e *Engine) Run(ctx context.Context, p rules.Pipeline, asset *Asset) (*Asset, error) {
	transformers, err := e.Prepare(p)
	if err != nil {
		return nil, err
	}

	out := &Asset{
		Path:     asset.Path,
		Contents: append([]byte(nil), asset.Contents...),
		Kind:     asset.Kind,
	}

	for i := len(transformers) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		t := transformers[i]
		start := time.Now()

		if err := t.Transform(ctx, out); err != nil {
			return nil, &StepError{Loader: t.Name(), Path: asset.Path, Err: err}
		}

		e.config.Logger.Debug("applied transform",
			slog.String("path", asset.Path),
			slog.String("loader", t.Name()),
			slog.String("kind", string(out.Kind)),
			slog.Duration("took", time.Since(start)),
		)
	}

	return out, nil
}
