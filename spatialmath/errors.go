package spatialmath

import "github.com/pkg/errors"

func newRotationMatrixInputError(m []float64) error {
	return errors.Errorf("rotation matrix requires 9 values, got %d", len(m))
}
