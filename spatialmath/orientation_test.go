package spatialmath

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestEulerAnglesRotationMatrixRoundTrip(t *testing.T) {
	cases := []EulerAngles{
		{0, 0, 0},
		{0.1, -0.2, 0.3},
		{math.Pi / 4, math.Pi / 6, -math.Pi / 3},
		{-1.2, 0.4, 2.9},
	}
	for _, ea := range cases {
		recovered := ea.RotationMatrix().EulerAngles()
		test.That(t, recovered.Roll, test.ShouldAlmostEqual, ea.Roll, 1e-9)
		test.That(t, recovered.Pitch, test.ShouldAlmostEqual, ea.Pitch, 1e-9)
		test.That(t, recovered.Yaw, test.ShouldAlmostEqual, ea.Yaw, 1e-9)
	}
}

func TestRotationMatrixOrthonormal(t *testing.T) {
	rm := (&EulerAngles{Roll: 0.7, Pitch: -0.3, Yaw: 1.9}).RotationMatrix()
	for i := 0; i < 3; i++ {
		test.That(t, rm.Row(i).Norm(), test.ShouldAlmostEqual, 1, 1e-12)
		for j := i + 1; j < 3; j++ {
			test.That(t, rm.Row(i).Dot(rm.Row(j)), test.ShouldAlmostEqual, 0, 1e-12)
		}
	}
}

func TestRotationMatrixMul(t *testing.T) {
	yaw90 := (&EulerAngles{Yaw: math.Pi / 2}).RotationMatrix()
	v := yaw90.Mul(r3.Vector{X: 1})
	test.That(t, v.Sub(r3.Vector{Y: 1}).Norm(), test.ShouldAlmostEqual, 0, 1e-12)

	// transpose inverts
	back := yaw90.Transpose().Mul(v)
	test.That(t, back.Sub(r3.Vector{X: 1}).Norm(), test.ShouldAlmostEqual, 0, 1e-12)
}

func TestNewRotationMatrixInput(t *testing.T) {
	_, err := NewRotationMatrix([]float64{1, 0, 0})
	test.That(t, err, test.ShouldNotBeNil)

	rm, err := NewRotationMatrix([]float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, RotationMatrixAlmostEqual(rm, NewZeroRotationMatrix(), 1e-12), test.ShouldBeTrue)
}

func TestPoseTransformPoint(t *testing.T) {
	pose := NewPose(r3.Vector{X: 1, Y: 2, Z: 3}, &EulerAngles{Yaw: math.Pi / 2})
	pt := pose.TransformPoint(r3.Vector{X: 1})
	test.That(t, pt.Sub(r3.Vector{X: 1, Y: 3, Z: 3}).Norm(), test.ShouldAlmostEqual, 0, 1e-12)
}
