package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hupe1980/assetrules/internal/config"
	"github.com/hupe1980/assetrules/internal/output"
	"github.com/hupe1980/assetrules/internal/rules"
)

type inspectOptions struct {
	format string
}

func newInspectCommand() *cobra.Command {
	opts := &inspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show the build definition as assetrules sees it",
		Long: `Inspect prints the entry points with the pipeline each resolves to,
the output location, the module resolution roots and the ordered rule list
after compilation. Nothing is transformed or written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInspect(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.format, "format", output.FormatTable, "output format: table, yaml, json")

	return cmd
}

// inspectResult is the structured output of the inspect command.
type inspectResult struct {
	File       string      `json:"file"`
	Requires   string      `json:"requires,omitempty"`
	Context    string      `json:"context"`
	Entries    []entryInfo `json:"entries"`
	Output     outputInfo  `json:"output"`
	Modules    []string    `json:"modules"`
	Extensions []string    `json:"extensions"`
	Rules      []ruleInfo  `json:"rules"`
}

type entryInfo struct {
	Name     string         `json:"name"`
	Source   string         `json:"source"`
	Pipeline rules.Pipeline `json:"pipeline"`
}

type outputInfo struct {
	Path        string `json:"path"`
	Filename    string `json:"filename"`
	Precompress bool   `json:"precompress,omitempty"`
}

type ruleInfo struct {
	Index   int            `json:"index"`
	Name    string         `json:"name"`
	Test    string         `json:"test"`
	Exclude string         `json:"exclude,omitempty"`
	Use     rules.Pipeline `json:"use"`
}

func runInspect(ctx context.Context, cmd *cobra.Command, opts *inspectOptions) error {
	if err := checkFormat(opts.format); err != nil {
		return err
	}

	bc, resolver, err := loadCurrentBuild(ctx)
	if err != nil {
		return err
	}

	result, err := buildInspectResult(config.FromContext(ctx).File, bc, resolver)
	if err != nil {
		return err
	}

	if opts.format != output.FormatTable {
		data, err := output.Serialize(result, opts.format, output.DefaultSerializeOptions())
		if err != nil {
			return &ExitError{Code: exitError, Err: err}
		}

		return writeOutput(cmd, opts.format, "", data)
	}

	var buf bytes.Buffer

	renderInspectTable(&buf, result)

	return writeOutput(cmd, opts.format, "", buf.Bytes())
}

func buildInspectResult(file string, bc *config.BuildConfig, resolver *rules.Resolver) (inspectResult, error) {
	result := inspectResult{
		File:     file,
		Requires: bc.Requires,
		Context:  bc.BaseDir(),
		Output: outputInfo{
			Path:        bc.OutputDir(),
			Filename:    bc.Output.Filename,
			Precompress: bc.Output.Precompress,
		},
		Modules:    bc.ModuleRoots(),
		Extensions: bc.Resolve.Extensions,
		Entries:    []entryInfo{},
		Rules:      []ruleInfo{},
	}

	for _, name := range bc.EntryNames() {
		src := bc.Entry[name]

		pipeline, err := resolver.Resolve(matchPath(bc, bc.Path(src)))
		if err != nil && !rules.IsWarning(err) {
			return inspectResult{}, &ExitError{Code: exitUsage, Err: fmt.Errorf("entry %s: %w", name, err)}
		}

		result.Entries = append(result.Entries, entryInfo{Name: name, Source: src, Pipeline: pipeline})
	}

	for i, r := range resolver.Rules() {
		info := ruleInfo{Index: i, Name: r.Name, Use: r.Chain}
		if info.Name == "" {
			info.Name = fmt.Sprintf("rule[%d]", i)
		}

		if r.Match != nil {
			info.Test = r.Match.String()
		}

		if r.Exclude != nil {
			info.Exclude = r.Exclude.String()
		}

		result.Rules = append(result.Rules, info)
	}

	return result, nil
}

func renderInspectTable(w io.Writer, result inspectResult) {
	_, _ = fmt.Fprintf(w, "\n=== Build: %s ===\n", result.File)
	_, _ = fmt.Fprintf(w, "Context:     %s\n", result.Context)

	if result.Requires != "" {
		_, _ = fmt.Fprintf(w, "Requires:    %s\n", result.Requires)
	}

	_, _ = fmt.Fprintf(w, "Output:      %s/%s\n", result.Output.Path, result.Output.Filename)

	if result.Output.Precompress {
		_, _ = fmt.Fprintln(w, "Precompress: gzip")
	}

	_, _ = fmt.Fprintf(w, "\n--- Entries (%d) ---\n", len(result.Entries))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "NAME\tSOURCE\tPIPELINE")

	for _, e := range result.Entries {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Name, e.Source, pipelineCell(e.Pipeline))
	}

	_ = tw.Flush()

	_, _ = fmt.Fprintf(w, "\n--- Module Roots ---\n")

	for i, m := range result.Modules {
		_, _ = fmt.Fprintf(w, "  %d. %s\n", i+1, m)
	}

	if len(result.Extensions) > 0 {
		_, _ = fmt.Fprintf(w, "Extensions: %s\n", strings.Join(result.Extensions, ", "))
	}

	_, _ = fmt.Fprintf(w, "\n--- Rules (%d) ---\n", len(result.Rules))

	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "#\tNAME\tTEST\tEXCLUDE\tUSE")

	for _, r := range result.Rules {
		exclude := r.Exclude
		if exclude == "" {
			exclude = "-"
		}

		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", r.Index, r.Name, r.Test, exclude, pipelineCell(r.Use))
	}

	_ = tw.Flush()
}
