package rules

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRule marks a reachable rule whose chain is empty. It is a
	// warning: the asset passes through unmodified, which may be intended.
	ErrInvalidRule = errors.New("invalid rule")

	// ErrEmptyPath is returned when an empty asset path is resolved.
	ErrEmptyPath = errors.New("asset path must not be empty")
)

// InvalidRuleError describes a rule problem found at load or resolve time.
type InvalidRuleError struct {
	// Index is the rule's position in the declared order.
	Index int
	// Name is the rule label.
	Name string
	// Reason explains the problem.
	Reason string
}

func (e *InvalidRuleError) Error() string {
	return fmt.Sprintf("%s: %s (index %d): %s", ErrInvalidRule, e.Name, e.Index, e.Reason)
}

func (e *InvalidRuleError) Unwrap() error { return ErrInvalidRule }

// IsWarning reports whether err only carries rule warnings, i.e. the
// returned pipeline is still usable.
func IsWarning(err error) bool {
	return err != nil && errors.Is(err, ErrInvalidRule)
}
