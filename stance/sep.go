package stance

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"github.com/wrenchworks/stancekit/polytope"
)

// Gravity is the gravitational acceleration constant, in m/s^2.
const Gravity = 9.81

// GravityVector is the gravity acceleration in the world frame.
var GravityVector = r3.Vector{X: 0, Y: 0, Z: -Gravity}

// placeholderMass conditions the equilibrium and ZMP feasibility systems. The
// mass cancels out of every projected polygon, so only its nonzero value
// matters; callers must not rely on it appearing in results.
const placeholderMass = 42.

// SupportPolygon is an immutable static-equilibrium region: the polygon of
// horizontal COM positions the contact set can balance over, together with its
// derived half-space form and per-row normalization.
type SupportPolygon struct {
	vertices polytope.Polygon
	hrep     *polytope.HRep
	norms    []float64
}

func newSupportPolygon(vertices polytope.Polygon) (*SupportPolygon, error) {
	hrep, err := polytope.HRepFromVertices(vertices)
	if err != nil {
		return nil, err
	}
	return &SupportPolygon{vertices: vertices, hrep: hrep, norms: hrep.RowNorms()}, nil
}

// Vertices returns the polygon vertices in counter-clockwise order.
func (sp *SupportPolygon) Vertices() polytope.Polygon {
	return append(polytope.Polygon{}, sp.vertices...)
}

// HRep returns the half-space form {x : A*x <= b} of the polygon.
func (sp *SupportPolygon) HRep() *polytope.HRep {
	return sp.hrep
}

// SignedDistance returns the Euclidean distance from the position to the edge
// of the polygon: positive inside, negative outside, zero on the boundary.
func (sp *SupportPolygon) SignedDistance(pos r2.Point) float64 {
	rows, _ := sp.hrep.Dims()
	dist := math.Inf(1)
	for i := 0; i < rows; i++ {
		alg := sp.hrep.B[i] - sp.hrep.A.At(i, 0)*pos.X - sp.hrep.A.At(i, 1)*pos.Y
		if d := alg / sp.norms[i]; d < dist {
			dist = d
		}
	}
	return dist
}

// StaticEquilibriumPolygon computes the vertex representation of the polygon of
// horizontal COM positions over which the contact set can hold static
// equilibrium. With a nil method the polygon is recovered directly from the
// contact wrench cone by polar duality, which is fast but requires the world
// origin to lie strictly inside the polygon; any projection Method handles the
// general case by projecting the stacked wrench feasibility system onto the
// horizontal COM coordinates.
func (cs *ContactSet) StaticEquilibriumPolygon(method polytope.Method) (polytope.Polygon, error) {
	if method == nil {
		return cs.staticEquilibriumPolygonDual()
	}
	ineq, eq, proj, err := cs.staticEquilibriumSystem()
	if err != nil {
		return nil, err
	}
	return method.Project(ineq, eq, proj)
}

// staticEquilibriumPolygonDual factors the mass out of the equilibrium
// condition and reads the polygon off the contact wrench cone at the origin:
// each cone row turns into one half-space on the COM position.
func (cs *ContactSet) staticEquilibriumPolygonDual() (polytope.Polygon, error) {
	cwc, err := cs.WrenchInequalities(r3.Vector{})
	if err != nil {
		return nil, err
	}
	k, _ := cwc.Dims()
	b := mat.NewDense(k, 2, nil)
	c := make([]float64, k)
	for i := 0; i < k; i++ {
		b.Set(i, 0, -cwc.At(i, 4))
		b.Set(i, 1, cwc.At(i, 3))
		c[i] = -cwc.At(i, 2)
	}
	return polytope.PolygonFromHull(b, c)
}

// staticEquilibriumSystem assembles the wrench feasibility polytope over the
// stacked local contact wrenches, restricted to supporting the weight with zero
// residual moment, projected onto the horizontal COM position.
func (cs *ContactSet) staticEquilibriumSystem() (*polytope.HRep, *polytope.EqRep, *polytope.Projection, error) {
	fBlock, err := cs.WrenchInequalitiesBlockDiag()
	if err != nil {
		return nil, nil, nil, err
	}
	grasp, err := cs.GraspMatrix(r3.Vector{})
	if err != nil {
		return nil, nil, nil, err
	}
	_, n := grasp.Dims()
	mg := placeholderMass * Gravity

	// Equilibrium pins the net horizontal force, vertical force and yaw moment;
	// the two remaining moment rows encode the unknown COM position.
	c := mat.NewDense(4, n, nil)
	for _, row := range []struct{ dst, src int }{{0, 0}, {1, 1}, {2, 2}, {3, 5}} {
		for j := 0; j < n; j++ {
			c.Set(row.dst, j, grasp.At(row.src, j))
		}
	}
	d := []float64{0, 0, mg, 0}

	e := mat.NewDense(2, n, nil)
	for j := 0; j < n; j++ {
		e.Set(0, j, -grasp.At(4, j)/mg)
		e.Set(1, j, grasp.At(3, j)/mg)
	}

	fRows, _ := fBlock.Dims()
	return polytope.NewHRep(fBlock, make([]float64, fRows)),
		polytope.NewEqRep(c, d),
		polytope.NewProjection(e, nil),
		nil
}
