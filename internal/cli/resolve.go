package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hupe1980/assetrules/internal/assets"
	"github.com/hupe1980/assetrules/internal/config"
	"github.com/hupe1980/assetrules/internal/logging"
	"github.com/hupe1980/assetrules/internal/output"
	"github.com/hupe1980/assetrules/internal/rules"
)

type resolveOptions struct {
	dir           string
	includeHidden bool
	skip          []string
	explain       bool
	format        string
	output        string
}

func newResolveCommand() *cobra.Command {
	opts := &resolveOptions{}

	cmd := &cobra.Command{
		Use:   "resolve [asset-path...]",
		Short: "Resolve the loader pipeline for asset paths",
		Long: `Resolve decides, for each asset path, which transformation chain
the build definition's rules select. Rules are tried in declared order and
the first one whose test matches and whose exclude does not wins. Paths no
rule applies to resolve to an empty pipeline.

With --dir every file below the directory is resolved as well. With
--explain the winning rule and every rule skipped by its exclude condition
are reported.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd.Context(), cmd, args, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.dir, "dir", "", "resolve every file below this directory")
	f.BoolVar(&opts.includeHidden, "hidden", false, "include hidden files and directories with --dir")
	f.StringSliceVar(&opts.skip, "skip", nil, "glob patterns of files or directories to skip with --dir")
	f.BoolVar(&opts.explain, "explain", false, "report the winning rule and skipped rules")
	f.StringVar(&opts.format, "format", output.FormatTable, "output format: table, yaml, json")
	f.Int("workers", 0, "parallel workers (default: GOMAXPROCS, env: ASSETRULES_WORKERS)")
	f.StringVarP(&opts.output, "output", "o", "", "write the report to a file instead of stdout")

	return cmd
}

func runResolve(ctx context.Context, cmd *cobra.Command, args []string, opts *resolveOptions) error {
	if err := checkFormat(opts.format); err != nil {
		return err
	}

	logger := logging.FromContext(ctx)

	bc, resolver, err := loadCurrentBuild(ctx)
	if err != nil {
		return err
	}

	paths, err := assetPaths(ctx, bc, args, opts.dir, assets.WalkOptions{
		IncludeHidden: opts.includeHidden,
		Skip:          opts.skip,
	})
	if err != nil {
		return err
	}

	logger.Debug("resolving", slog.Int("paths", len(paths)), slog.Int("rules", resolver.Len()))

	var report interface{}

	if opts.explain {
		matches, err := explainAll(logger, resolver, paths)
		if err != nil {
			return err
		}

		report = matches
	} else {
		results, err := resolver.ResolveAll(ctx, paths, rules.ResolveAllOptions{Workers: config.FromContext(ctx).Workers})
		if err != nil {
			return &ExitError{Code: exitError, Err: fmt.Errorf("resolving: %w", err)}
		}

		if err := checkResults(logger, results); err != nil {
			return err
		}

		report = results
	}

	data, err := renderReport(report, opts.format)
	if err != nil {
		return &ExitError{Code: exitError, Err: err}
	}

	return writeOutput(cmd, opts.format, opts.output, data)
}

// checkResults logs resolution warnings and fails on anything else.
func checkResults(logger *slog.Logger, results []rules.Result) error {
	var errs []error

	for _, r := range results {
		switch {
		case r.Err == nil:
		case rules.IsWarning(r.Err):
			logger.Warn("rule warning", slog.String("path", r.Path), slog.String("warning", r.Err.Error()))
		default:
			errs = append(errs, fmt.Errorf("%q: %w", r.Path, r.Err))
		}
	}

	if len(errs) > 0 {
		return &ExitError{Code: exitUsage, Err: errors.Join(errs...)}
	}

	return nil
}

func explainAll(logger *slog.Logger, resolver *rules.Resolver, paths []string) ([]rules.Match, error) {
	matches := make([]rules.Match, 0, len(paths))

	for _, p := range paths {
		m, err := resolver.Explain(p)

		switch {
		case err == nil:
		case rules.IsWarning(err):
			logger.Warn("rule warning", slog.String("path", p), slog.String("warning", err.Error()))
		default:
			return nil, &ExitError{Code: exitUsage, Err: fmt.Errorf("%q: %w", p, err)}
		}

		matches = append(matches, m)
	}

	return matches, nil
}

// renderReport serializes a []rules.Result or []rules.Match report.
func renderReport(report interface{}, format string) ([]byte, error) {
	if format != output.FormatTable {
		return output.Serialize(report, format, output.DefaultSerializeOptions())
	}

	var buf bytes.Buffer

	switch r := report.(type) {
	case []rules.Result:
		writeResultTable(&buf, r)
	case []rules.Match:
		writeMatchTable(&buf, r)
	default:
		return nil, fmt.Errorf("cannot render %T as a table", report)
	}

	return buf.Bytes(), nil
}

func writeResultTable(w io.Writer, results []rules.Result) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "PATH\tPIPELINE")

	for _, r := range results {
		_, _ = fmt.Fprintf(tw, "%s\t%s\n", r.Path, pipelineCell(r.Pipeline))
	}

	_ = tw.Flush()
}

func writeMatchTable(w io.Writer, matches []rules.Match) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "PATH\tRULE\tPIPELINE\tSKIPPED")

	for _, m := range matches {
		rule := "-"
		if m.Matched() {
			rule = m.Rule
		}

		skipped := make([]string, 0, len(m.Skipped))
		for _, s := range m.Skipped {
			skipped = append(skipped, fmt.Sprintf("%s (%s)", s.Rule, s.By))
		}

		cell := "-"
		if len(skipped) > 0 {
			cell = strings.Join(skipped, ", ")
		}

		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.Path, rule, pipelineCell(m.Pipeline), cell)
	}

	_ = tw.Flush()
}

func pipelineCell(p rules.Pipeline) string {
	if p.Empty() {
		return "(none)"
	}

	return p.String()
}
