package stance

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/wrenchworks/stancekit/polytope"
)

// PendularAccelConeReduced computes the reduced 2D form of the pendular COM
// acceleration cone: the polygon of duality-space coordinates (a, b) such that
// the acceleration ((g+zdd)*a, (g+zdd)*b, zdd) is feasible for every vertical
// acceleration zdd. The cone is the reduction of the contact wrench cone when
// the angular momentum rate at the COM is zero.
//
// When several COM sample points are given (for example the vertices of a COM
// bounding region), the per-sample systems are stacked and the result is
// conservative: accelerations feasible from every sampled COM position, not
// their union.
func (cs *ContactSet) PendularAccelConeReduced(comVertices []r3.Vector) (polytope.Polygon, error) {
	if len(comVertices) == 0 {
		return nil, errors.New("at least one COM sample point is required")
	}
	cwc, err := cs.WrenchInequalities(r3.Vector{})
	if err != nil {
		return nil, err
	}
	k, _ := cwc.Dims()

	b2d := mat.NewDense(k*len(comVertices), 2, nil)
	sigma := make([]float64, k*len(comVertices))
	for vi, v := range comVertices {
		for i := 0; i < k; i++ {
			af := r3.Vector{X: cwc.At(i, 0), Y: cwc.At(i, 1), Z: cwc.At(i, 2)}
			at := r3.Vector{X: cwc.At(i, 3), Y: cwc.At(i, 4), Z: cwc.At(i, 5)}
			// Moment rows fold into the force rows about the sampled COM.
			bRow := af.Add(at.Cross(v))
			b2d.Set(vi*k+i, 0, bRow.X)
			b2d.Set(vi*k+i, 1, bRow.Y)
			sigma[vi*k+i] = bRow.Dot(GravityVector) / Gravity
		}
	}
	return polytope.PolygonFromHull(b2d, sigma)
}

// PendularAccelCone computes the pendular COM acceleration cone, truncated at
// the maximum vertical acceleration zddMax. The apex of the cone is free fall;
// every reduced-hull vertex expands to a 3D vertex at zddMax. A degenerate dual
// hull fails with ErrProjectionFailed rather than returning a partial cone.
func (cs *ContactSet) PendularAccelCone(comVertices []r3.Vector, zddMax float64) ([]r3.Vector, error) {
	reduced, err := cs.PendularAccelConeReduced(comVertices)
	if err != nil {
		return nil, err
	}
	vertices := make([]r3.Vector, 0, len(reduced)+1)
	vertices = append(vertices, GravityVector)
	for _, v := range reduced {
		vertices = append(vertices, r3.Vector{
			X: v.X * (Gravity + zddMax),
			Y: v.Y * (Gravity + zddMax),
			Z: zddMax,
		})
	}
	return vertices, nil
}
