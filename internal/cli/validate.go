package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/assetrules/internal/config"
	"github.com/hupe1980/assetrules/internal/output"
	"github.com/hupe1980/assetrules/internal/rules"
	"github.com/hupe1980/assetrules/internal/transform"
	"github.com/hupe1980/assetrules/internal/transform/transformer"
)

type validateOptions struct {
	strict bool
}

func newValidateCommand() *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the build definition",
		Long: `Validate loads the build definition, compiles its rules and checks
every loader they name against the built-in transformation registry.

Rules with empty chains, blank loaders or that can never be reached are
reported as warnings. Loaders the registry does not know are errors and
return exit code 3. Missing entry point sources are errors (exit code 1),
as are warnings with --strict.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.strict, "strict", false, "fail on warnings in addition to errors")

	return cmd
}

func runValidate(ctx context.Context, cmd *cobra.Command, opts *validateOptions) error {
	bc, resolver, err := loadBuild(config.FromContext(ctx).File)
	if err != nil {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Invalid build definition: %v\n", err)
		return err
	}

	report := &output.Report{}

	for _, w := range rules.Validate(resolver.Rules()) {
		report.Warn("rules", w)
	}

	for _, e := range transformer.DefaultRegistry().CheckRules(resolver.Rules()) {
		report.Error("rules", e)
	}

	for _, name := range bc.EntryNames() {
		src := bc.Path(bc.Entry[name])
		if _, err := os.Stat(src); err != nil {
			report.Error("entry."+name, fmt.Errorf("source %s: %w", src, errors.Unwrap(err)))
		}
	}

	_, _ = fmt.Fprintln(cmd.ErrOrStderr(), report.String())

	if n := report.CountCause(transform.ErrUnresolvedTransform); n > 0 {
		return &ExitError{Code: exitUnresolved, Err: fmt.Errorf("validation failed: %d unresolved loader(s)", n)}
	}

	if n := report.Count(output.SeverityError); n > 0 {
		return &ExitError{Code: exitError, Err: fmt.Errorf("validation failed with %d error(s)", n)}
	}

	if report.Failed(opts.strict) {
		return &ExitError{Code: exitError, Err: fmt.Errorf("validation failed with %d warning(s) (strict mode)", report.Count(output.SeverityWarning))}
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Validation passed.")

	return nil
}
