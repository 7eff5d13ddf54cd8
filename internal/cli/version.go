package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/assetrules/internal/version"
)

type versionOptions struct {
	json    bool
	short   bool
	satisfy string
}

func newVersionCommand() *cobra.Command {
	opts := &versionOptions{}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Display the version, git commit, build date, Go version, and platform.

With --satisfies the command checks the version against a semver
constraint, the same check a build definition's "requires" field runs,
and fails with exit code 1 when it is not met.`,
		Args: cobra.NoArgs,
		// Override parent PersistentPreRunE: version needs no config.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVersion(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.json, "json", false, "output version info as JSON")
	f.BoolVar(&opts.short, "short", false, "print the version number only")
	f.StringVar(&opts.satisfy, "satisfies", "", "check the version against a semver constraint")

	return cmd
}

func runVersion(cmd *cobra.Command, opts *versionOptions) error {
	info := version.GetInfo()
	w := cmd.OutOrStdout()

	if opts.satisfy != "" {
		if !version.Satisfies(opts.satisfy) {
			return &ExitError{Code: exitError, Err: fmt.Errorf("assetrules %s does not satisfy %q", info.Version, opts.satisfy)}
		}

		_, err := fmt.Fprintf(w, "assetrules %s satisfies %q\n", info.Version, opts.satisfy)

		return err
	}

	switch {
	case opts.json:
		j, err := info.JSON()
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(w, j)

		return err
	case opts.short:
		_, err := fmt.Fprintln(w, info.Version)
		return err
	default:
		_, err := fmt.Fprintln(w, info.String())
		return err
	}
}
