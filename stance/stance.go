package stance

import (
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"github.com/wrenchworks/stancekit/polytope"
	"github.com/wrenchworks/stancekit/spatialmath"
)

// PointMass is a center-of-mass target: a 3D position with a scalar mass.
type PointMass struct {
	Position r3.Vector
	Mass     float64
}

// Stance is a contact set together with a COM target and optional auxiliary
// joint targets. It owns the most recently computed static-equilibrium region
// as cached derived state.
//
// The cache is not auto-invalidated: after changing the engaged contacts or the
// COM target, callers must recompute the region (or call
// InvalidateSupportRegion) before querying it again. Likewise there is no
// internal locking; concurrent callers sharing a Stance must synchronize
// compute-then-query sequences externally.
type Stance struct {
	*ContactSet

	// COM is the center-of-mass target, supplied externally per computation.
	COM PointMass

	// JointTargets are optional named auxiliary joint targets carried through
	// to the IK binding boundary.
	JointTargets map[string]float64

	region *SupportPolygon
}

// NewStance returns a stance with the given COM target and no contacts engaged.
func NewStance(com PointMass) *Stance {
	return &Stance{
		ContactSet:   NewContactSet(),
		COM:          com,
		JointTargets: map[string]float64{},
	}
}

// ComputeStaticEquilibriumPolygon computes the static-equilibrium support
// polygon of the stance with the given projection method (nil for the polar
// duality fast path), caches it on the stance and returns it as an immutable
// region value. The returned region stays valid even after the stance changes;
// only the cache goes stale.
func (s *Stance) ComputeStaticEquilibriumPolygon(method polytope.Method) (*SupportPolygon, error) {
	vertices, err := s.StaticEquilibriumPolygon(method)
	if err != nil {
		return nil, err
	}
	region, err := newSupportPolygon(vertices)
	if err != nil {
		return nil, err
	}
	s.region = region
	return region, nil
}

// SupportRegion returns the cached static-equilibrium region, or ErrStaleState
// if it has not been computed.
func (s *Stance) SupportRegion() (*SupportPolygon, error) {
	if s.region == nil {
		return nil, ErrStaleState
	}
	return s.region, nil
}

// InvalidateSupportRegion drops the cached region, forcing a recompute before
// the next query.
func (s *Stance) InvalidateSupportRegion() {
	s.region = nil
}

// DistToEdge returns the signed Euclidean distance from a COM position to the
// edge of the cached static-equilibrium polygon: positive inside, negative
// outside. It fails with ErrStaleState if the polygon has not been computed.
func (s *Stance) DistToEdge(com r3.Vector) (float64, error) {
	region, err := s.SupportRegion()
	if err != nil {
		return 0, err
	}
	return region.SignedDistance(r2.Point{X: com.X, Y: com.Y}), nil
}

// PendularAccelCone computes the pendular COM acceleration cone of the stance,
// truncated at zddMax. With nil comVertices the stance's own COM target is the
// single sample point.
func (s *Stance) PendularAccelCone(comVertices []r3.Vector, zddMax float64) ([]r3.Vector, error) {
	if comVertices == nil {
		comVertices = []r3.Vector{s.COM.Position}
	}
	return s.ContactSet.PendularAccelCone(comVertices, zddMax)
}

// PendularAccelConeReduced is the reduced 2D form of PendularAccelCone.
func (s *Stance) PendularAccelConeReduced(comVertices []r3.Vector) (polytope.Polygon, error) {
	if comVertices == nil {
		comVertices = []r3.Vector{s.COM.Position}
	}
	return s.ContactSet.PendularAccelConeReduced(comVertices)
}

// ZMPSupportArea computes the multi-contact ZMP support area of the stance on
// the horizontal virtual plane through the given origin, using the given
// projection method. The internal mass value cancels out of the polygon.
func (s *Stance) ZMPSupportArea(plane r3.Vector, method polytope.Method) (polytope.Polygon, error) {
	fBlock, err := s.WrenchInequalitiesBlockDiag()
	if err != nil {
		return nil, err
	}
	grasp, err := s.GraspMatrix(r3.Vector{})
	if err != nil {
		return nil, err
	}
	_, n := grasp.Dims()
	com := s.COM.Position
	mg := placeholderMass * Gravity
	zZMP := plane.Z

	// The pendular-mode moment balance about the plane, written over the net
	// contact wrench at the origin. crossN is the cross product matrix of the
	// plane normal.
	crossN := mat.NewDense(3, 3, []float64{0, -1, 0, 1, 0, 0, 0, 0, 0})
	b := mat.NewDense(4, 6, nil)
	for i := 0; i < 3; i++ {
		b.Set(i, i, com.Z)
		for j := 0; j < 3; j++ {
			b.Set(i, 3+j, crossN.At(i, j))
		}
	}
	b.Set(3, 3, com.X)
	b.Set(3, 4, com.Y)
	b.Set(3, 5, com.Z)

	c := mat.NewDense(4, n, nil)
	c.Mul(b, grasp)
	c.Scale(1/mg, c)
	d := []float64{com.X, com.Y, com.Z, 0}

	e := mat.NewDense(2, n, nil)
	for j := 0; j < n; j++ {
		e.Set(0, j, (zZMP-com.Z)/mg*grasp.At(0, j))
		e.Set(1, j, (zZMP-com.Z)/mg*grasp.At(1, j))
	}
	f := []float64{com.X, com.Y}

	fRows, _ := fBlock.Dims()
	if method == nil {
		method = polytope.NewIncrementalMethod(nil)
	}
	return method.Project(
		polytope.NewHRep(fBlock, make([]float64, fRows)),
		polytope.NewEqRep(c, d),
		polytope.NewProjection(e, f),
	)
}

// FindStaticSupportingWrenches finds contact wrenches that hold the stance in
// static equilibrium: the target is pure weight support at the COM.
func (s *Stance) FindStaticSupportingWrenches() (map[ContactRole]spatialmath.Wrench, error) {
	target := spatialmath.Wrench{Force: r3.Vector{Z: s.COM.Mass * Gravity}}
	return s.FindSupportingWrenches(target, s.COM.Position)
}

// Targets is the immutable view consumed by an external IK binding layer: one
// pose target per engaged contact, the COM position target, and any auxiliary
// joint targets. The core does not depend on the solver's task representation.
type Targets struct {
	COM      r3.Vector
	Contacts map[ContactRole]spatialmath.Pose
	Joints   map[string]float64
}

// Targets snapshots the stance's IK targets.
func (s *Stance) Targets() Targets {
	contacts := make(map[ContactRole]spatialmath.Pose)
	for _, role := range s.Engaged() {
		c, _ := s.Contact(role)
		contacts[role] = c.Pose()
	}
	joints := make(map[string]float64, len(s.JointTargets))
	for k, v := range s.JointTargets {
		joints[k] = v
	}
	return Targets{COM: s.COM.Position, Contacts: contacts, Joints: joints}
}
