// Package stance models multi-contact stances of a rigid body and computes the
// geometric feasibility regions used to keep it in quasi-static balance: the
// static-equilibrium support polygon, the pendular COM acceleration cone and
// the multi-contact ZMP support area.
package stance

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/wrenchworks/stancekit/polytope"
	"github.com/wrenchworks/stancekit/spatialmath"
)

// Contact is a planar contact patch: a convex shape of allowed contact points in
// the patch's local frame, a Coulomb friction coefficient, and the pose of the
// patch. A Contact is immutable; the derived friction cone matrices are pure
// functions of shape, friction and pose, so changing any of them means building
// a new Contact.
type Contact struct {
	shape    []r2.Point
	friction float64
	pose     spatialmath.Pose
	span     *mat.Dense // local friction cone generators, one column per ray
	faces    *mat.Dense // F such that F*w <= 0 iff the local wrench w is in the cone
}

// NewContact validates the patch geometry and derives the linearized friction
// cone of the contact: non-penetration, the Coulomb friction bound (inner
// pyramid approximation) and a center of pressure bounded within the shape.
// Shapes with fewer than 3 non-collinear points fail with ErrDegenerateGeometry.
func NewContact(shape []r2.Point, friction float64, pose spatialmath.Pose) (*Contact, error) {
	if friction < 0 {
		return nil, newNegativeFrictionError(friction)
	}
	hull := polytope.ConvexHull(shape)
	if len(hull) < 3 {
		return nil, newDegenerateShapeError(len(hull))
	}

	c := &Contact{shape: hull, friction: friction, pose: pose}
	c.span = c.computeWrenchSpan()
	faces, err := polytope.FaceOfSpan(c.span)
	if err != nil {
		return nil, errors.Wrap(ErrDegenerateGeometry, err.Error())
	}
	c.faces = faces
	return c, nil
}

// computeWrenchSpan builds the generators of the local contact wrench cone:
// four friction pyramid edges applied at every vertex of the shape.
func (c *Contact) computeWrenchSpan() *mat.Dense {
	// mu/sqrt(2) linearizes the friction cone from the inside, so every wrench
	// in the span is truly transmissible.
	mu := c.friction / math.Sqrt2
	generators := []r3.Vector{
		{X: mu, Y: mu, Z: 1},
		{X: mu, Y: -mu, Z: 1},
		{X: -mu, Y: mu, Z: 1},
		{X: -mu, Y: -mu, Z: 1},
	}
	span := mat.NewDense(6, 4*len(c.shape), nil)
	col := 0
	for _, v := range c.shape {
		p := r3.Vector{X: v.X, Y: v.Y}
		for _, f := range generators {
			tau := p.Cross(f)
			span.SetCol(col, []float64{f.X, f.Y, f.Z, tau.X, tau.Y, tau.Z})
			col++
		}
	}
	return span
}

// Shape returns the convex hull of the contact points, counter-clockwise, in
// the contact's local frame.
func (c *Contact) Shape() []r2.Point {
	return append([]r2.Point{}, c.shape...)
}

// Friction returns the Coulomb friction coefficient of the patch.
func (c *Contact) Friction() float64 {
	return c.friction
}

// Pose returns the pose of the contact patch.
func (c *Contact) Pose() spatialmath.Pose {
	return c.pose
}

// WrenchInequalities returns the half-space matrix F of the linearized friction
// cone: F*w <= 0 exactly when the wrench w, expressed in the contact's local
// frame about the patch origin, is transmissible through the contact. The
// returned matrix is a copy; mutating it cannot corrupt the contact.
func (c *Contact) WrenchInequalities() *mat.Dense {
	return mat.DenseCopyOf(c.faces)
}

// WrenchSpan returns the generators of the local contact wrench cone, one 6D
// ray per column. The returned matrix is a copy.
func (c *Contact) WrenchSpan() *mat.Dense {
	return mat.DenseCopyOf(c.span)
}

// WorldWrenchSpan transports the cone generators to the world frame, expressed
// about the reference point ref: forces rotate with the patch, moments pick up
// the lever arm from ref to the patch origin.
func (c *Contact) WorldWrenchSpan(ref r3.Vector) *mat.Dense {
	rot := c.pose.Rotation()
	lever := c.pose.Point().Sub(ref)
	_, n := c.span.Dims()
	out := mat.NewDense(6, n, nil)
	for j := 0; j < n; j++ {
		ray := mat.Col(nil, j, c.span)
		f := rot.Mul(r3.Vector{X: ray[0], Y: ray[1], Z: ray[2]})
		tau := rot.Mul(r3.Vector{X: ray[3], Y: ray[4], Z: ray[5]}).Add(lever.Cross(f))
		out.SetCol(j, []float64{f.X, f.Y, f.Z, tau.X, tau.Y, tau.Z})
	}
	return out
}

// GraspMatrix returns the 6x6 map taking a wrench in the contact's local frame
// (about the patch origin) to the equivalent world-frame wrench about the
// reference point ref.
func (c *Contact) GraspMatrix(ref r3.Vector) *mat.Dense {
	rot := c.pose.Rotation()
	r := mat.NewDense(3, 3, []float64{
		rot.At(0, 0), rot.At(0, 1), rot.At(0, 2),
		rot.At(1, 0), rot.At(1, 1), rot.At(1, 2),
		rot.At(2, 0), rot.At(2, 1), rot.At(2, 2),
	})
	lever := spatialmath.CrossMatrix(c.pose.Point().Sub(ref))
	var lr mat.Dense
	lr.Mul(lever, r)

	g := mat.NewDense(6, 6, nil)
	g.Slice(0, 3, 0, 3).(*mat.Dense).Copy(r)
	g.Slice(3, 6, 0, 3).(*mat.Dense).Copy(&lr)
	g.Slice(3, 6, 3, 6).(*mat.Dense).Copy(r)
	return g
}
