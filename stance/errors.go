package stance

import "github.com/pkg/errors"

// Errors reported by balance computations. All are synchronous planning-time
// signals: retrying without changing the input geometry cannot succeed.
var (
	// ErrDegenerateGeometry means a contact shape or pose cannot support a well
	// formed friction cone.
	ErrDegenerateGeometry = errors.New("degenerate contact geometry")

	// ErrInsufficientContacts means an operation that needs at least one
	// engaged contact was called on an empty contact set.
	ErrInsufficientContacts = errors.New("contact set has no engaged contacts")

	// ErrStaleState means derived state was queried before being computed, or
	// after the inputs it was derived from changed.
	ErrStaleState = errors.New("equilibrium polygon has not been computed for the current stance")

	// ErrInfeasible means no valid distribution of contact wrenches achieves
	// the requested net wrench.
	ErrInfeasible = errors.New("no feasible contact wrench distribution")
)

func newDegenerateShapeError(nVertices int) error {
	return errors.Wrapf(ErrDegenerateGeometry, "contact shape needs at least 3 non-collinear points, got %d usable", nVertices)
}

func newNegativeFrictionError(friction float64) error {
	return errors.Wrapf(ErrDegenerateGeometry, "friction coefficient must be >= 0, got %f", friction)
}
