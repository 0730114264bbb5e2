package stance

import (
	"path/filepath"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/wrenchworks/stancekit/spatialmath"
)

func TestStanceJSONRoundTrip(t *testing.T) {
	s := NewStance(PointMass{Position: r3.Vector{X: 0.05, Y: -0.02, Z: 0.83}, Mass: 38})
	lf, err := NewContact(
		squareShape(0.11),
		0.7,
		spatialmath.NewPose(r3.Vector{X: -0.3, Y: 0.05, Z: 0}, &spatialmath.EulerAngles{Roll: 0.1, Pitch: -0.2, Yaw: 0.3}),
	)
	test.That(t, err, test.ShouldBeNil)
	rh, err := NewContact(
		squareShape(0.06),
		0.4,
		spatialmath.NewPose(r3.Vector{X: 0.5, Y: -0.4, Z: 0.9}, &spatialmath.EulerAngles{Roll: 0, Pitch: 1.2, Yaw: -0.4}),
	)
	test.That(t, err, test.ShouldBeNil)
	s.SetContact(LeftFoot, lf)
	s.SetContact(RightHand, rh)

	path := filepath.Join(t.TempDir(), "stance.json")
	test.That(t, s.SaveJSONFile(path), test.ShouldBeNil)

	loaded, err := ParseStanceJSONFile(path)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, loaded.COM.Position.Sub(s.COM.Position).Norm(), test.ShouldAlmostEqual, 0, 1e-12)
	test.That(t, loaded.COM.Mass, test.ShouldAlmostEqual, s.COM.Mass, 1e-12)
	test.That(t, loaded.Engaged(), test.ShouldResemble, []ContactRole{LeftFoot, RightHand})

	for _, role := range loaded.Engaged() {
		want, _ := s.Contact(role)
		got, _ := loaded.Contact(role)
		test.That(t, got.Friction(), test.ShouldAlmostEqual, want.Friction(), 1e-12)
		test.That(t, spatialmath.PoseAlmostCoincident(got.Pose(), want.Pose(), 1e-9), test.ShouldBeTrue)
		wantShape := want.Shape()
		gotShape := got.Shape()
		test.That(t, gotShape, test.ShouldHaveLength, len(wantShape))
		for i := range wantShape {
			test.That(t, gotShape[i].X, test.ShouldAlmostEqual, wantShape[i].X, 1e-12)
			test.That(t, gotShape[i].Y, test.ShouldAlmostEqual, wantShape[i].Y, 1e-12)
		}
	}

	// the derived cone matrices are recomputed, not persisted: the loaded
	// stance answers geometric queries immediately
	_, err = loaded.WrenchInequalities(r3.Vector{})
	test.That(t, err, test.ShouldBeNil)
}

func TestUnmarshalStanceJSONBadContact(t *testing.T) {
	data := []byte(`{
		"com": {"pos": [0, 0, 0.8]},
		"left_foot": {"shape": [[0, 0], [1, 1]], "friction": 0.5, "pos": [0, 0, 0], "rpy": [0, 0, 0]},
		"right_foot": {"shape": [[0, 0], [1, 0], [0, 1]], "friction": -2, "pos": [0, 0, 0], "rpy": [0, 0, 0]}
	}`)
	_, err := UnmarshalStanceJSON(data)
	test.That(t, errors.Is(err, ErrDegenerateGeometry), test.ShouldBeTrue)
	// both bad contacts are reported at once
	test.That(t, err.Error(), test.ShouldContainSubstring, "left_foot")
	test.That(t, err.Error(), test.ShouldContainSubstring, "right_foot")
}

func TestStanceTargets(t *testing.T) {
	s := singleFootStance(t)
	s.JointTargets["torso_pitch"] = 0.12

	targets := s.Targets()
	test.That(t, targets.COM.Sub(s.COM.Position).Norm(), test.ShouldAlmostEqual, 0, 1e-12)
	test.That(t, targets.Contacts, test.ShouldHaveLength, 1)
	test.That(t, targets.Joints["torso_pitch"], test.ShouldAlmostEqual, 0.12, 1e-12)

	// the snapshot does not alias the stance's own maps
	targets.Joints["torso_pitch"] = 99
	test.That(t, s.JointTargets["torso_pitch"], test.ShouldAlmostEqual, 0.12, 1e-12)
}
