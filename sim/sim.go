// Package sim defines the physics engine interface the grasp harness drives.
// The engine is treated as an opaque oracle: it owns all contact dynamics, the
// harness only places bodies, drives joints, and reads poses back.
package sim

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/graspbench/spatialmath"
)

// BodyID identifies a body within an engine instance.
type BodyID int

// ShapeType enumerates the supported collision geometries.
type ShapeType string

// Supported shape types.
const (
	ShapeBox      = ShapeType("box")
	ShapeCylinder = ShapeType("cylinder")
)

// Shape describes a body to be created in the engine, analogous to a model
// file: geometry, mass, and the joint layout if the body is articulated.
type Shape struct {
	Type ShapeType

	// HalfExtents is used for box shapes.
	HalfExtents r3.Vector
	// Radius and Length are used for cylinder shapes.
	Radius float64
	Length float64

	// Mass of zero makes the body kinematic (engine will not apply gravity),
	// which is how gripper bodies are modeled.
	Mass float64

	// Joints is the number of actuated joints; zero for plain rigid bodies.
	Joints int

	// GraspJointValues, for articulated bodies, is the joint configuration
	// that constitutes a closed grasp. Part of the body description the same
	// way a model file carries joint limits.
	GraspJointValues []float64
}

// TopHeight returns the vertical extent of the shape above its center.
func (s Shape) TopHeight() float64 {
	switch s.Type {
	case ShapeBox:
		return s.HalfExtents.Z
	case ShapeCylinder:
		return s.Length / 2
	default:
		return 0
	}
}

// ErrDegeneratePose is returned by SetPose when the requested pose would place
// the body interpenetrating another body.
var ErrDegeneratePose = errors.New("requested pose interpenetrates another body")

// Engine is a single-writer physics world. All calls mutate or read one global
// simulated state; callers must not interleave trials.
type Engine interface {
	// CreateBody adds a body described by shape to the world and returns its id.
	CreateBody(shape Shape) (BodyID, error)
	// Remove deletes a body from the world.
	Remove(id BodyID) error
	// SetPose teleports a body to the given pose. Returns ErrDegeneratePose if
	// the pose is invalid.
	SetPose(id BodyID, pose spatialmath.Pose) error
	// GetPose returns the body's current pose.
	GetPose(id BodyID) (spatialmath.Pose, error)
	// SetJointTarget sets the position target for one joint of an articulated
	// body; the joint moves toward it over subsequent steps.
	SetJointTarget(id BodyID, joint int, target float64) error
	// Step advances the simulation n steps.
	Step(n int) error
}
