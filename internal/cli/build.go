package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hupe1980/assetrules/internal/logging"
	"github.com/hupe1980/assetrules/internal/output"
	"github.com/hupe1980/assetrules/internal/transform"
)

type buildOptions struct {
	dryRun bool
}

func newBuildCommand() *cobra.Command {
	opts := &buildOptions{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Transform every entry point into the output directory",
		Long: `Build runs the resolved pipeline for each entry point of the build
definition and writes the result to output.path using the output.filename
template ([name], [ext], [contenthash], [contenthash:N]). With
output.precompress a .gz sibling is written next to each artifact.

Entry points are transformed one by one; imports are not followed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuild(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "print artifact paths without writing them")

	return cmd
}

func runBuild(ctx context.Context, cmd *cobra.Command, opts *buildOptions) error {
	logger := logging.FromContext(ctx)

	bc, resolver, err := loadCurrentBuild(ctx)
	if err != nil {
		return err
	}

	names := bc.EntryNames()
	if len(names) == 0 {
		return &ExitError{Code: exitUsage, Err: fmt.Errorf("build definition declares no entry points")}
	}

	outDir := bc.OutputDir()

	for _, name := range names {
		src := bc.Path(bc.Entry[name])

		contents, err := os.ReadFile(src) //nolint:gosec // Path comes from the build definition
		if err != nil {
			return &ExitError{Code: exitError, Err: fmt.Errorf("entry %s: %w", name, err)}
		}

		asset, err := runPipeline(ctx, logger, resolver, matchPath(bc, src), contents)
		if err != nil {
			return err
		}

		filename, err := output.Filename(bc.Output.Filename, name, artifactExt(asset.Kind), asset.Contents)
		if err != nil {
			return &ExitError{Code: exitUsage, Err: fmt.Errorf("entry %s: %w", name, err)}
		}

		dest := filepath.Join(outDir, filepath.FromSlash(filename))

		if !opts.dryRun {
			w := output.NewFileWriter(dest,
				output.WithPrecompress(bc.Output.Precompress),
				output.WithLogger(logger),
			)

			if err := w.Write(asset.Contents); err != nil {
				return &ExitError{Code: exitError, Err: fmt.Errorf("entry %s: %w", name, err)}
			}
		}

		logger.Info("built entry",
			slog.String("entry", name),
			slog.String("output", dest),
			slog.Int("bytes", len(asset.Contents)),
		)

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", name, dest)
	}

	return nil
}

// artifactExt maps the final asset kind to the extension [ext] expands to.
func artifactExt(k transform.Kind) string {
	switch {
	case k.IsScript():
		return ".js"
	case k == transform.KindCSS:
		return ".css"
	case k == transform.KindJSON:
		return ".json"
	default:
		return ".txt"
	}
}
