// Package diff compares resolved pipelines between two rule sets and
// renders the differences as a unified diff.
package diff

import (
	"fmt"
	"io"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/hupe1980/assetrules/internal/rules"
)

// Result holds the result of a unified diff computation.
type Result struct {
	Unified        string
	HasDifferences bool
	Hunks          []string
	OldLabel       string
	NewLabel       string
}

// Options configures diff computation.
type Options struct {
	OldLabel string
	NewLabel string
	Context  int
}

// DefaultOptions returns sensible default diff options.
func DefaultOptions() Options {
	return Options{
		OldLabel: "current",
		NewLabel: "proposed",
		Context:  3,
	}
}

// Compute computes a unified diff between two serialized reports.
func Compute(oldDoc, newDoc string, opts Options) (*Result, error) {
	d := difflib.UnifiedDiff{
		A:        splitLines(oldDoc),
		B:        splitLines(newDoc),
		FromFile: opts.OldLabel,
		ToFile:   opts.NewLabel,
		Context:  opts.Context,
	}

	unified, err := difflib.GetUnifiedDiffString(d)
	if err != nil {
		return nil, fmt.Errorf("computing diff: %w", err)
	}

	hasDiff := unified != ""

	var hunks []string
	if hasDiff {
		hunks = extractHunks(unified)
	}

	return &Result{
		Unified:        unified,
		HasDifferences: hasDiff,
		Hunks:          hunks,
		OldLabel:       opts.OldLabel,
		NewLabel:       opts.NewLabel,
	}, nil
}

// Change is a path whose resolved pipeline differs between two rule sets.
type Change struct {
	Path string         `json:"path"`
	Old  rules.Pipeline `json:"old"`
	New  rules.Pipeline `json:"new"`
}

// Pipelines resolves every path against both resolvers and returns the
// paths whose pipelines differ, in input order. Loader names and options
// both count. Resolution warnings are ignored; an empty path fails.
func Pipelines(oldR, newR *rules.Resolver, paths []string) ([]Change, error) {
	var changes []Change

	for _, p := range paths {
		a, err := oldR.Resolve(p)
		if err != nil && !rules.IsWarning(err) {
			return nil, err
		}

		b, err := newR.Resolve(p)
		if err != nil && !rules.IsWarning(err) {
			return nil, err
		}

		if !a.Equal(b) {
			changes = append(changes, Change{Path: p, Old: a, New: b})
		}
	}

	return changes, nil
}

// Document renders one line per path and step, suitable for Compute.
func Document(r *rules.Resolver, paths []string) string {
	var b strings.Builder

	for _, p := range paths {
		pl, err := r.Resolve(p)
		if err != nil && !rules.IsWarning(err) {
			fmt.Fprintf(&b, "%s: error: %v\n", p, err)
			continue
		}

		fmt.Fprintf(&b, "%s: %s\n", p, render(pl))
	}

	return b.String()
}

// render prints a pipeline including options. fmt sorts map keys, so the
// output is stable.
func render(p rules.Pipeline) string {
	if p.Empty() {
		return "(none)"
	}

	parts := make([]string, len(p))
	for i, s := range p {
		parts[i] = s.String()
	}

	return strings.Join(parts, " ! ")
}

// extractHunks splits unified diff output into individual hunks.
func extractHunks(unified string) []string {
	var hunks []string

	var current strings.Builder

	for _, line := range strings.Split(unified, "\n") {
		if strings.HasPrefix(line, "@@") {
			if current.Len() > 0 {
				hunks = append(hunks, current.String())
				current.Reset()
			}
		}

		current.WriteString(line)
		current.WriteString("\n")
	}

	if current.Len() > 0 {
		hunks = append(hunks, current.String())
	}

	return hunks
}

// Write writes a formatted diff to the given writer with optional ANSI colors.
func Write(w io.Writer, result *Result, color bool) {
	if !result.HasDifferences {
		_, _ = fmt.Fprintln(w, "No differences found.")
		return
	}

	for _, line := range strings.Split(strings.TrimSuffix(result.Unified, "\n"), "\n") {
		if color {
			writeColorLine(w, line)
		} else {
			_, _ = fmt.Fprintln(w, line)
		}
	}
}

// writeColorLine writes a single diff line with ANSI color codes.
func writeColorLine(w io.Writer, line string) {
	const (
		red   = "\033[31m"
		green = "\033[32m"
		cyan  = "\033[36m"
		bold  = "\033[1m"
		reset = "\033[0m"
	)

	switch {
	case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"):
		_, _ = fmt.Fprintf(w, "%s%s%s\n", bold, line, reset)
	case strings.HasPrefix(line, "@@"):
		_, _ = fmt.Fprintf(w, "%s%s%s\n", cyan, line, reset)
	case strings.HasPrefix(line, "-"):
		_, _ = fmt.Fprintf(w, "%s%s%s\n", red, line, reset)
	case strings.HasPrefix(line, "+"):
		_, _ = fmt.Fprintf(w, "%s%s%s\n", green, line, reset)
	default:
		_, _ = fmt.Fprintln(w, line)
	}
}

// splitLines splits a string into lines for diff processing.
// Each element includes a trailing newline for difflib compatibility.
func splitLines(s string) []string {
	if s == "" {
		return []string{""}
	}

	return strings.SplitAfter(s, "\n")
}
