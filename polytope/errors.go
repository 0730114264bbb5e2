package polytope

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrProjectionFailed is returned whenever a polytope projection cannot produce a
// well formed polygon. The returned error wraps one of the cause errors below so
// that callers can distinguish what went wrong with errors.Is.
var ErrProjectionFailed = errors.New("polytope projection failed")

// Causes wrapped by ErrProjectionFailed.
var (
	ErrEmptyRegion      = errors.New("feasible region is empty")
	ErrUnboundedRegion  = errors.New("projected region is unbounded")
	ErrDegenerateRegion = errors.New("projected region is degenerate to a point or line")
	ErrNotConverged     = errors.New("iterative projection did not converge within the iteration limit")
)

func newProjectionFailedError(cause error) error {
	return fmt.Errorf("%w: %w", ErrProjectionFailed, cause)
}

func newUnknownMethodError(name string) error {
	return errors.Errorf("no projection method named %q, expected one of %q, %q or %q",
		name, HullMethodName, DoubleDescriptionMethodName, IncrementalMethodName)
}
