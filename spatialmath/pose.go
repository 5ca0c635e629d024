package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
)

// A Pose is a position in 3D space along with an orientation.
type Pose struct {
	Point       r3.Vector    `json:"point"`
	Orientation *EulerAngles `json:"orientation"`
}

// NewZeroPose returns a pose at the origin with no rotation.
func NewZeroPose() Pose {
	return Pose{Point: r3.Vector{}, Orientation: NewEulerAngles()}
}

// NewPose takes a position and orientation and returns a Pose.
func NewPose(pt r3.Vector, o *EulerAngles) Pose {
	if o == nil {
		o = NewEulerAngles()
	}
	return Pose{Point: pt, Orientation: o}
}

// NewPoseFromPoint takes a position and returns a Pose with that position and
// no rotation.
func NewPoseFromPoint(pt r3.Vector) Pose {
	return Pose{Point: pt, Orientation: NewEulerAngles()}
}

// Offset returns the pose translated by the given vector, orientation
// unchanged.
func (p Pose) Offset(v r3.Vector) Pose {
	return Pose{Point: p.Point.Add(v), Orientation: p.Orientation}
}

// PoseAlmostCoincident checks if two poses approximately occupy the same
// position, within epsilon, ignoring orientation.
func PoseAlmostCoincident(a, b Pose, epsilon float64) bool {
	return a.Point.Sub(b.Point).Norm() <= epsilon
}

// PoseAlmostEqual checks if two poses are approximately the same in both
// position and orientation.
func PoseAlmostEqual(a, b Pose, epsilon float64) bool {
	if !PoseAlmostCoincident(a, b, epsilon) {
		return false
	}
	ao, bo := a.Orientation, b.Orientation
	if ao == nil {
		ao = NewEulerAngles()
	}
	if bo == nil {
		bo = NewEulerAngles()
	}
	return math.Abs(ao.Roll-bo.Roll) <= epsilon &&
		math.Abs(ao.Pitch-bo.Pitch) <= epsilon &&
		math.Abs(ao.Yaw-bo.Yaw) <= epsilon
}
