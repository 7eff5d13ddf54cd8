package output

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Severity ranks a finding about a build definition.
type Severity int

const (
	// SeverityError means the build definition cannot be used as written.
	SeverityError Severity = iota
	// SeverityWarning means it loads but may not do what was meant.
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}

	return "warning"
}

// Finding is one problem with a build definition. Field locates it
// ("rules", "entry.main"). Err is kept so callers can match causes with
// errors.Is.
type Finding struct {
	Severity Severity
	Field    string
	Err      error
}

func (f Finding) Error() string {
	return fmt.Sprintf("[%s] %s: %v", f.Severity, f.Field, f.Err)
}

func (f Finding) Unwrap() error { return f.Err }

// Report collects the findings of one validation run in the order found.
type Report struct {
	Findings []Finding
}

// Error records an error finding.
func (r *Report) Error(field string, err error) {
	r.Findings = append(r.Findings, Finding{Severity: SeverityError, Field: field, Err: err})
}

// Warn records a warning finding.
func (r *Report) Warn(field string, err error) {
	r.Findings = append(r.Findings, Finding{Severity: SeverityWarning, Field: field, Err: err})
}

// Count returns the number of findings of severity s.
func (r *Report) Count(s Severity) int {
	n := 0

	for _, f := range r.Findings {
		if f.Severity == s {
			n++
		}
	}

	return n
}

// CountCause returns the number of error findings whose cause matches target.
func (r *Report) CountCause(target error) int {
	n := 0

	for _, f := range r.Findings {
		if f.Severity == SeverityError && errors.Is(f.Err, target) {
			n++
		}
	}

	return n
}

// Failed reports whether the build definition should be rejected: on any
// error, or on any warning when strict.
func (r *Report) Failed(strict bool) bool {
	return r.Count(SeverityError) > 0 || (strict && r.Count(SeverityWarning) > 0)
}

// String renders the findings grouped by severity, errors first, each
// group sorted by field. The order within one field is kept.
func (r *Report) String() string {
	if len(r.Findings) == 0 {
		return "No issues found."
	}

	var sb strings.Builder

	for _, s := range []Severity{SeverityError, SeverityWarning} {
		group := r.bySeverity(s)
		if len(group) == 0 {
			continue
		}

		if sb.Len() > 0 {
			sb.WriteString("\n")
		}

		title := "Errors"
		if s == SeverityWarning {
			title = "Warnings"
		}

		_, _ = fmt.Fprintf(&sb, "%s (%d):\n", title, len(group))

		for _, f := range group {
			_, _ = fmt.Fprintf(&sb, "  - %s: %v\n", f.Field, f.Err)
		}
	}

	return sb.String()
}

func (r *Report) bySeverity(s Severity) []Finding {
	var out []Finding

	for _, f := range r.Findings {
		if f.Severity == s {
			out = append(out, f)
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Field < out[j].Field })

	return out
}
