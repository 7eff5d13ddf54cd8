package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/assetrules/internal/assets"
	"github.com/hupe1980/assetrules/internal/config"
	"github.com/hupe1980/assetrules/internal/logging"
	"github.com/hupe1980/assetrules/internal/output"
	"github.com/hupe1980/assetrules/internal/rules"
	"github.com/hupe1980/assetrules/internal/transform"
)

// loadBuild reads the build definition at path and compiles its rules.
// Load and compile failures are configuration errors (exit code 2).
func loadBuild(path string) (*config.BuildConfig, *rules.Resolver, error) {
	bc, err := config.LoadBuildFile(path)
	if err != nil {
		return nil, nil, &ExitError{Code: exitUsage, Err: err}
	}

	resolver, err := rules.NewResolverFromConfig(bc)
	if err != nil {
		return nil, nil, &ExitError{Code: exitUsage, Err: fmt.Errorf("%s: %w", path, err)}
	}

	return bc, resolver, nil
}

// loadCurrentBuild loads the build definition selected by --file and logs
// rule warnings.
func loadCurrentBuild(ctx context.Context) (*config.BuildConfig, *rules.Resolver, error) {
	logger := logging.FromContext(ctx)
	file := config.FromContext(ctx).File

	logger.Debug("loading build definition", slog.String("file", file))

	bc, resolver, err := loadBuild(file)
	if err != nil {
		return nil, nil, err
	}

	logRuleWarnings(logger, resolver)

	return bc, resolver, nil
}

func logRuleWarnings(logger *slog.Logger, resolver *rules.Resolver) {
	for _, w := range rules.Validate(resolver.Rules()) {
		logger.Warn("rule warning", slog.String("warning", w.Error()))
	}
}

// assetPaths combines explicit args with the files found under dir, in the
// form rules are matched against (see matchPath).
func assetPaths(ctx context.Context, bc *config.BuildConfig, args []string, dir string, opts assets.WalkOptions) ([]string, error) {
	paths := append([]string(nil), args...)

	if dir != "" {
		found, err := assets.Walk(ctx, dir, opts)
		if err != nil {
			return nil, &ExitError{Code: exitError, Err: err}
		}

		paths = append(paths, found...)
	}

	if len(paths) == 0 {
		return nil, &ExitError{Code: exitUsage, Err: fmt.Errorf("no asset paths: pass paths as arguments or use --dir")}
	}

	for i, p := range paths {
		paths[i] = matchPath(bc, p)
	}

	return paths, nil
}

// matchPath returns the path rules are matched against for a file on disk:
// relative to the build context when possible, always slash-separated.
func matchPath(bc *config.BuildConfig, p string) string {
	if p == "" {
		return p
	}

	if abs, err := filepath.Abs(p); err == nil {
		if base, err := filepath.Abs(bc.BaseDir()); err == nil {
			if rel, err := filepath.Rel(base, abs); err == nil && !outside(rel) {
				return filepath.ToSlash(rel)
			}
		}
	}

	return filepath.ToSlash(p)
}

// outside reports whether rel, as returned by filepath.Rel, leaves its base.
func outside(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// transformExitError maps pipeline execution failures to exit codes.
func transformExitError(err error) error {
	if errors.Is(err, transform.ErrUnresolvedTransform) {
		return &ExitError{Code: exitUnresolved, Err: err}
	}

	return &ExitError{Code: exitError, Err: err}
}

// writeOutput sends data to the command's stdout when path is empty, and
// through the registered writer for format otherwise.
func writeOutput(cmd *cobra.Command, format, path string, data []byte) error {
	if path == "" {
		return output.NewStdoutWriter(cmd.OutOrStdout()).Write(data)
	}

	factory, err := output.DefaultRegistry().Writer(format)
	if err != nil {
		return &ExitError{Code: exitUsage, Err: err}
	}

	if err := factory(path).Write(data); err != nil {
		return &ExitError{Code: exitError, Err: err}
	}

	return nil
}

// checkFormat rejects report formats other than table, yaml and json.
func checkFormat(format string) error {
	switch format {
	case output.FormatTable, output.FormatYAML, output.FormatJSON:
		return nil
	default:
		return &ExitError{Code: exitUsage, Err: fmt.Errorf("unknown format %q: expected table, yaml, json", format)}
	}
}
