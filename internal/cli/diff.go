package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/hupe1980/assetrules/internal/assets"
	"github.com/hupe1980/assetrules/internal/config"
	"github.com/hupe1980/assetrules/internal/diff"
	"github.com/hupe1980/assetrules/internal/output"
)

type diffOptions struct {
	// Build definition to compare against.
	against string

	// Optional asset tree to resolve.
	dir string

	// Output format: "unified" (default), "json".
	format string
}

func newDiffCommand() *cobra.Command {
	opts := &diffOptions{}

	cmd := &cobra.Command{
		Use:   "diff --against <build-file> [asset-path...]",
		Short: "Compare resolved pipelines between two build definitions",
		Long: `Diff resolves the same asset paths against the current build
definition (--file) and another one (--against) and prints a unified diff
of the pipelines. Without paths or --dir, the entry point sources of both
definitions are compared.

Exit codes:
  0  No differences
  1  Error
  2  Invalid arguments or build definition
  8  At least one asset resolves differently`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd.Context(), cmd, args, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.against, "against", "", "build definition to compare against")
	f.StringVar(&opts.dir, "dir", "", "also compare every file below this directory")
	f.StringVar(&opts.format, "format", "unified", "output format: unified, json")

	return cmd
}

func runDiff(ctx context.Context, cmd *cobra.Command, args []string, opts *diffOptions) error {
	if opts.against == "" {
		return &ExitError{Code: exitUsage, Err: fmt.Errorf("--against flag is required: specify the build definition to compare against")}
	}

	cfg := config.FromContext(ctx)

	currentBuild, current, err := loadCurrentBuild(ctx)
	if err != nil {
		return err
	}

	againstBuild, against, err := loadBuild(opts.against)
	if err != nil {
		return err
	}

	if len(args) == 0 && opts.dir == "" {
		args = entrySources(currentBuild, againstBuild)
	}

	paths, err := assetPaths(ctx, currentBuild, args, opts.dir, assets.WalkOptions{})
	if err != nil {
		return err
	}

	changes, err := diff.Pipelines(current, against, paths)
	if err != nil {
		return &ExitError{Code: exitUsage, Err: err}
	}

	w := cmd.OutOrStdout()

	switch opts.format {
	case "json":
		if changes == nil {
			changes = []diff.Change{}
		}

		data, err := output.SerializeJSON(changes, "  ")
		if err != nil {
			return &ExitError{Code: exitError, Err: fmt.Errorf("formatting JSON: %w", err)}
		}

		if _, err := w.Write(data); err != nil {
			return &ExitError{Code: exitError, Err: err}
		}
	case "unified":
		diffOpts := diff.DefaultOptions()
		diffOpts.OldLabel = cfg.File
		diffOpts.NewLabel = opts.against

		result, err := diff.Compute(diff.Document(current, paths), diff.Document(against, paths), diffOpts)
		if err != nil {
			return &ExitError{Code: exitError, Err: fmt.Errorf("computing diff: %w", err)}
		}

		diff.Write(w, result, !cfg.NoColor)
	default:
		return &ExitError{Code: exitUsage, Err: fmt.Errorf("unknown format %q: expected unified, json", opts.format)}
	}

	if len(changes) > 0 {
		return &ExitError{
			Code: exitDiff,
			Err:  fmt.Errorf("%d asset(s) resolve differently", len(changes)),
		}
	}

	return nil
}

// entrySources returns the sorted, de-duplicated entry sources of every
// build definition, relative to its context.
func entrySources(builds ...*config.BuildConfig) []string {
	seen := make(map[string]bool)

	var out []string

	for _, bc := range builds {
		for _, name := range bc.EntryNames() {
			p := matchPath(bc, bc.Path(bc.Entry[name]))
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}

	sort.Strings(out)

	return out
}
