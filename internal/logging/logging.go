// Package logging builds the [log/slog] logger from the global settings and
// carries it through contexts. Code that processes one asset derives a
// child logger with [ForAsset] so every record names its input.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/hupe1980/assetrules/internal/config"
)

// Attribute keys shared by all log records about assets.
const (
	KeyAsset    = "asset"
	KeyPipeline = "pipeline"
)

type ctxKey struct{}

// Setup creates a logger configured according to cfg, writing to stderr,
// and installs it as the process-wide default via slog.SetDefault.
func Setup(cfg *config.Config) *slog.Logger {
	return SetupWithWriter(cfg, os.Stderr)
}

// SetupWithWriter is Setup writing to w. Use it in tests to capture or
// suppress log output.
func SetupWithWriter(cfg *config.Config, w io.Writer) *slog.Logger {
	logger := New(cfg, w)
	slog.SetDefault(logger)

	return logger
}

// New creates a logger configured according to cfg without touching the
// process default.
func New(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.EffectiveLogLevel())}

	if cfg.LogFormat == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}

	return slog.New(slog.NewTextHandler(w, opts))
}

// Discard returns a logger that drops every record. Library entry points
// use it when the caller supplies none.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// ParseLevel converts a string log level to slog.Level.
func ParseLevel(level string) slog.Level {
	switch level {
	case config.LogLevelDebug:
		return slog.LevelDebug
	case config.LogLevelWarn:
		return slog.LevelWarn
	case config.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ForAsset returns a child logger tagging records with the asset path and,
// when non-empty, the resolved pipeline.
func ForAsset(logger *slog.Logger, path, pipeline string) *slog.Logger {
	if pipeline == "" {
		return logger.With(slog.String(KeyAsset, path))
	}

	return logger.With(slog.String(KeyAsset, path), slog.String(KeyPipeline, pipeline))
}

// NewContext returns a child context carrying logger.
func NewContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext extracts a logger from ctx, falling back to slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}

	return slog.Default()
}
