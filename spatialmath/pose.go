package spatialmath

import (
	"fmt"

	"github.com/golang/geo/r3"
)

// Pose represents a rigid transform: a 3D position together with an orientation.
type Pose struct {
	position r3.Vector
	rotation *RotationMatrix
}

// NewZeroPose returns a pose at the origin with no rotation.
func NewZeroPose() Pose {
	return Pose{rotation: NewZeroRotationMatrix()}
}

// NewPoseFromPoint takes in a position and returns a Pose with no orientation change.
func NewPoseFromPoint(point r3.Vector) Pose {
	return Pose{position: point, rotation: NewZeroRotationMatrix()}
}

// NewPose takes in a position and orientation and returns a Pose.
func NewPose(point r3.Vector, ea *EulerAngles) Pose {
	if ea == nil {
		return NewPoseFromPoint(point)
	}
	return Pose{position: point, rotation: ea.RotationMatrix()}
}

// NewPoseFromRotationMatrix takes in a position and a rotation matrix and returns a Pose.
func NewPoseFromRotationMatrix(point r3.Vector, rm *RotationMatrix) Pose {
	if rm == nil {
		rm = NewZeroRotationMatrix()
	}
	return Pose{position: point, rotation: rm}
}

// Point returns the position of the pose.
func (p Pose) Point() r3.Vector {
	return p.position
}

// Rotation returns the orientation of the pose as a rotation matrix.
func (p Pose) Rotation() *RotationMatrix {
	if p.rotation == nil {
		return NewZeroRotationMatrix()
	}
	return p.rotation
}

// TransformPoint applies the pose to a point expressed in the pose's local frame,
// returning the point in the parent frame.
func (p Pose) TransformPoint(pt r3.Vector) r3.Vector {
	return p.Rotation().Mul(pt).Add(p.position)
}

// String returns a human readable string that represents the pose.
func (p Pose) String() string {
	ea := p.Rotation().EulerAngles()
	return fmt.Sprintf("Position: X:%.2f, Y:%.2f, Z:%.2f | RPY: %.2f, %.2f, %.2f",
		p.position.X, p.position.Y, p.position.Z, ea.Roll, ea.Pitch, ea.Yaw)
}

// PoseAlmostCoincident returns whether two poses have approximately equal positions and orientations.
func PoseAlmostCoincident(a, b Pose, epsilon float64) bool {
	return a.Point().Sub(b.Point()).Norm() < epsilon &&
		RotationMatrixAlmostEqual(a.Rotation(), b.Rotation(), epsilon)
}
