package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/assetrules/internal/modules"
)

type locateOptions struct {
	from string
}

func newLocateCommand() *cobra.Command {
	opts := &locateOptions{}

	cmd := &cobra.Command{
		Use:   "locate <specifier>",
		Short: "Resolve an import specifier through the module roots",
		Long: `Locate finds the file an import specifier refers to. Relative
specifiers ("./util") are resolved against --from. Bare specifiers
("lodash/fp") are searched in resolve.modules in order; a bare root such as
node_modules is looked up in --from and each of its ancestors.

When nothing is found, every candidate that was tried is printed to stderr.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLocate(cmd.Context(), cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.from, "from", "", "directory of the importing file (default: build context)")

	return cmd
}

func runLocate(ctx context.Context, cmd *cobra.Command, specifier string, opts *locateOptions) error {
	bc, _, err := loadCurrentBuild(ctx)
	if err != nil {
		return err
	}

	from := opts.from
	if from == "" {
		from = bc.BaseDir()
	}

	r := modules.New(bc.ModuleRoots(), bc.Resolve.Extensions)

	found, err := r.Lookup(specifier, from)
	if err != nil {
		var nf *modules.NotFoundError
		if errors.As(err, &nf) {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Tried:")

			for _, c := range nf.Tried {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "  - %s\n", c)
			}
		}

		return &ExitError{Code: exitError, Err: err}
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), found)

	return nil
}
