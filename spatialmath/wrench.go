package spatialmath

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// Wrench is a 6D spatial force: a linear force together with a torque. A wrench
// is only meaningful with respect to the reference point it is expressed about;
// tracking that point is the caller's responsibility.
type Wrench struct {
	Force  r3.Vector
	Torque r3.Vector
}

// NewWrenchFromSlice builds a wrench from a 6 element slice laid out as
// (fx, fy, fz, tx, ty, tz).
func NewWrenchFromSlice(w []float64) Wrench {
	return Wrench{
		Force:  r3.Vector{X: w[0], Y: w[1], Z: w[2]},
		Torque: r3.Vector{X: w[3], Y: w[4], Z: w[5]},
	}
}

// Slice returns the wrench as a 6 element slice (fx, fy, fz, tx, ty, tz).
func (w Wrench) Slice() []float64 {
	return []float64{w.Force.X, w.Force.Y, w.Force.Z, w.Torque.X, w.Torque.Y, w.Torque.Z}
}

// Transport re-expresses a wrench given about reference point `from` as an
// equivalent wrench about reference point `to`. The force is unchanged and the
// torque picks up the moment of the force over the lever arm.
func (w Wrench) Transport(from, to r3.Vector) Wrench {
	return Wrench{
		Force:  w.Force,
		Torque: w.Torque.Add(from.Sub(to).Cross(w.Force)),
	}
}

// CrossMatrix returns the skew-symmetric matrix [v]x such that for any vector u,
// [v]x * u = v x u.
func CrossMatrix(v r3.Vector) *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		0, -v.Z, v.Y,
		v.Z, 0, -v.X,
		-v.Y, v.X, 0,
	})
}
