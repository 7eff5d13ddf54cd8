package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/assetrules/internal/logging"
	"github.com/hupe1980/assetrules/internal/rules"
	"github.com/hupe1980/assetrules/internal/transform"
	"github.com/hupe1980/assetrules/internal/transform/transformer"
)

type transformOptions struct {
	output      string
	precompress bool
}

func newTransformCommand() *cobra.Command {
	opts := &transformOptions{}

	cmd := &cobra.Command{
		Use:   "transform <asset-path>",
		Short: "Run the resolved pipeline on a single asset",
		Long: `Transform resolves the pipeline for one asset and runs it through
the built-in loaders. Loaders run last to first, so the right-most loader
in a chain sees the raw source. Assets no rule applies to are copied
unchanged.

Returns exit code 3 when the pipeline names a loader that is not
registered; nothing is run in that case.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransform(cmd.Context(), cmd, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	f.BoolVar(&opts.precompress, "precompress", false, "also write a gzip-compressed copy (requires --output)")

	return cmd
}

func runTransform(ctx context.Context, cmd *cobra.Command, assetPath string, opts *transformOptions) error {
	if opts.precompress && opts.output == "" {
		return &ExitError{Code: exitUsage, Err: fmt.Errorf("--precompress requires --output (-o)")}
	}

	logger := logging.FromContext(ctx)

	bc, resolver, err := loadCurrentBuild(ctx)
	if err != nil {
		return err
	}

	contents, err := os.ReadFile(assetPath) //nolint:gosec // User-specified input file
	if err != nil {
		return &ExitError{Code: exitError, Err: fmt.Errorf("reading asset: %w", err)}
	}

	out, err := runPipeline(ctx, logger, resolver, matchPath(bc, assetPath), contents)
	if err != nil {
		return err
	}

	format := "file"
	if opts.precompress {
		format = "gzip"
	}

	return writeOutput(cmd, format, opts.output, out.Contents)
}

// runPipeline resolves the pipeline for path and runs it over contents
// with the built-in registry.
func runPipeline(ctx context.Context, logger *slog.Logger, resolver *rules.Resolver, path string, contents []byte) (*transform.Asset, error) {
	pipeline, err := resolver.Resolve(path)
	if err != nil {
		if !rules.IsWarning(err) {
			return nil, &ExitError{Code: exitUsage, Err: err}
		}

		logger.Warn("rule warning", slog.String("path", path), slog.String("warning", err.Error()))
	}

	logger = logging.ForAsset(logger, path, pipeline.String())

	if pipeline.Empty() {
		logger.Info("no loaders apply, copying unchanged")
	} else {
		logger.Debug("running pipeline")
	}

	engine := transform.NewEngine(transform.EngineConfig{
		Registry: transformer.DefaultRegistry(),
		Logger:   logger,
	})

	out, err := engine.Run(ctx, pipeline, transform.NewAsset(path, contents))
	if err != nil {
		return nil, transformExitError(err)
	}

	return out, nil
}
