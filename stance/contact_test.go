package stance

import (
	"testing"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"

	"github.com/wrenchworks/stancekit/spatialmath"
)

// squareShape is a foot sole: a 2*half by 2*half square about the patch origin.
func squareShape(half float64) []r2.Point {
	return []r2.Point{
		{X: half, Y: half},
		{X: -half, Y: half},
		{X: -half, Y: -half},
		{X: half, Y: -half},
	}
}

func flatContact(t *testing.T, position r3.Vector, friction float64) *Contact {
	t.Helper()
	c, err := NewContact(squareShape(0.1), friction, spatialmath.NewPoseFromPoint(position))
	test.That(t, err, test.ShouldBeNil)
	return c
}

// coneViolation returns the largest row residual of F*w; nonpositive means w is
// inside the linearized friction cone.
func coneViolation(f *mat.Dense, w []float64) float64 {
	rows, _ := f.Dims()
	worst := 0.
	for i := 0; i < rows; i++ {
		v := 0.
		for j := 0; j < 6; j++ {
			v += f.At(i, j) * w[j]
		}
		if i == 0 || v > worst {
			worst = v
		}
	}
	return worst
}

func TestNewContactDegenerate(t *testing.T) {
	pose := spatialmath.NewZeroPose()
	cases := []struct {
		name  string
		shape []r2.Point
	}{
		{"empty", nil},
		{"two points", []r2.Point{{X: 0, Y: 0}, {X: 1, Y: 0}}},
		{"collinear", []r2.Point{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 2}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := NewContact(c.shape, 0.5, pose)
			test.That(t, errors.Is(err, ErrDegenerateGeometry), test.ShouldBeTrue)
		})
	}
}

func TestNewContactNegativeFriction(t *testing.T) {
	_, err := NewContact(squareShape(0.1), -0.1, spatialmath.NewZeroPose())
	test.That(t, errors.Is(err, ErrDegenerateGeometry), test.ShouldBeTrue)
}

func TestWrenchInequalitiesMembership(t *testing.T) {
	c := flatContact(t, r3.Vector{}, 0.5)
	f := c.WrenchInequalities()

	cases := []struct {
		name   string
		wrench []float64
		inside bool
	}{
		{"pure pressure", []float64{0, 0, 1, 0, 0, 0}, true},
		{"pulling", []float64{0, 0, -1, 0, 0, 0}, false},
		{"friction within bound", []float64{0.3, 0, 1, 0, 0, 0}, true},
		{"friction beyond bound", []float64{0.5, 0, 1, 0, 0, 0}, false},
		{"cop inside shape", []float64{0, 0, 1, 0.05, 0, 0}, true},
		{"cop outside shape", []float64{0, 0, 1, 0.2, 0, 0}, false},
		{"yaw beyond bound", []float64{0, 0, 1, 0, 0, 0.5}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.inside {
				test.That(t, coneViolation(f, tc.wrench), test.ShouldBeLessThan, 1e-8)
			} else {
				test.That(t, coneViolation(f, tc.wrench), test.ShouldBeGreaterThan, 1e-8)
			}
		})
	}
}

func TestConeMatricesAreCopies(t *testing.T) {
	c := flatContact(t, r3.Vector{}, 0.5)

	faces := c.WrenchInequalities()
	orig := faces.At(0, 0)
	faces.Set(0, 0, 1e9)
	test.That(t, c.WrenchInequalities().At(0, 0), test.ShouldAlmostEqual, orig, 1e-12)

	span := c.WrenchSpan()
	orig = span.At(0, 0)
	span.Set(0, 0, 1e9)
	test.That(t, c.WrenchSpan().At(0, 0), test.ShouldAlmostEqual, orig, 1e-12)
}

func TestWrenchInequalitiesRecomputedFromInputs(t *testing.T) {
	// same shape and friction, different pose: local cones must match
	a := flatContact(t, r3.Vector{}, 0.5)
	b := flatContact(t, r3.Vector{X: 1, Y: 2, Z: 0.1}, 0.5)
	test.That(t, mat.EqualApprox(a.WrenchInequalities(), b.WrenchInequalities(), 1e-9), test.ShouldBeTrue)
}

func TestGraspMatrixTransport(t *testing.T) {
	p := r3.Vector{X: 0.5, Y: -0.25, Z: 0}
	c := flatContact(t, p, 0.5)
	g := c.GraspMatrix(r3.Vector{})

	// unit pressure at the patch maps to unit force plus its moment about the origin
	w := mat.NewVecDense(6, []float64{0, 0, 1, 0, 0, 0})
	var out mat.VecDense
	out.MulVec(g, w)

	force := r3.Vector{X: out.AtVec(0), Y: out.AtVec(1), Z: out.AtVec(2)}
	torque := r3.Vector{X: out.AtVec(3), Y: out.AtVec(4), Z: out.AtVec(5)}
	expectedTorque := p.Cross(r3.Vector{Z: 1})
	test.That(t, force.Sub(r3.Vector{Z: 1}).Norm(), test.ShouldAlmostEqual, 0, 1e-12)
	test.That(t, torque.Sub(expectedTorque).Norm(), test.ShouldAlmostEqual, 0, 1e-12)
}

func TestContactSetOrdering(t *testing.T) {
	cs := NewContactSet()
	test.That(t, cs.NumContacts(), test.ShouldEqual, 0)

	rf := flatContact(t, r3.Vector{X: 0.3}, 0.5)
	lf := flatContact(t, r3.Vector{X: -0.3}, 0.5)
	cs.SetContact(RightFoot, rf)
	cs.SetContact(LeftFoot, lf)

	test.That(t, cs.NumContacts(), test.ShouldEqual, 2)
	test.That(t, cs.Engaged(), test.ShouldResemble, []ContactRole{LeftFoot, RightFoot})
	// stacking order is role order, not insertion order
	test.That(t, cs.Contacts()[0], test.ShouldEqual, lf)

	cs.SetContact(LeftFoot, nil)
	test.That(t, cs.Engaged(), test.ShouldResemble, []ContactRole{RightFoot})
}

func TestContactSetEmptyFails(t *testing.T) {
	cs := NewContactSet()
	_, err := cs.WrenchSpan(r3.Vector{})
	test.That(t, errors.Is(err, ErrInsufficientContacts), test.ShouldBeTrue)
	_, err = cs.WrenchInequalities(r3.Vector{})
	test.That(t, errors.Is(err, ErrInsufficientContacts), test.ShouldBeTrue)
	_, err = cs.GraspMatrix(r3.Vector{})
	test.That(t, errors.Is(err, ErrInsufficientContacts), test.ShouldBeTrue)
	_, err = cs.WrenchInequalitiesBlockDiag()
	test.That(t, errors.Is(err, ErrInsufficientContacts), test.ShouldBeTrue)
}

func TestContactSetWrenchInequalitiesAggregate(t *testing.T) {
	cs := NewContactSet()
	cs.SetContact(LeftFoot, flatContact(t, r3.Vector{X: -0.3}, 0.5))
	cs.SetContact(RightFoot, flatContact(t, r3.Vector{X: 0.3}, 0.5))

	cwc, err := cs.WrenchInequalities(r3.Vector{})
	test.That(t, err, test.ShouldBeNil)

	// supporting a weight centered between the feet is transmissible
	test.That(t, coneViolation(cwc, []float64{0, 0, 1, 0, 0, 0}), test.ShouldBeLessThan, 1e-8)
	// a weight far outside the support region is not
	test.That(t, coneViolation(cwc, []float64{0, 0, 1, 0, -1, 0}), test.ShouldBeGreaterThan, 1e-8)
}
