package transform

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnresolvedTransform is returned when a pipeline names a loader the
// registry does not know.
var ErrUnresolvedTransform = errors.New("unresolved transform")

// UnresolvedTransformError names the unknown loader.
type UnresolvedTransformError struct {
	// Loader is the unknown identifier.
	Loader string
	// Known lists the registered identifiers, for the error message.
	Known []string
}

func (e *UnresolvedTransformError) Error() string {
	if len(e.Known) == 0 {
		return fmt.Sprintf("%s: %q", ErrUnresolvedTransform, e.Loader)
	}

	return fmt.Sprintf("%s: %q (available: %s)", ErrUnresolvedTransform, e.Loader, strings.Join(e.Known, ", "))
}

func (e *UnresolvedTransformError) Unwrap() error { return ErrUnresolvedTransform }

// StepError wraps a failure of one pipeline step.
type StepError struct {
	Loader string
	Path   string
	Err    error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Path, e.Loader, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }
