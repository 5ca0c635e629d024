package fake

import (
	"testing"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/graspbench/sim"
	"go.viam.com/graspbench/spatialmath"
)

func boxShape(mass float64) sim.Shape {
	return sim.Shape{
		Type:        sim.ShapeBox,
		HalfExtents: r3.Vector{X: 0.025, Y: 0.025, Z: 0.4},
		Mass:        mass,
	}
}

func handShape() sim.Shape {
	return sim.Shape{
		Type:             sim.ShapeBox,
		HalfExtents:      r3.Vector{X: 0.1, Y: 0.1, Z: 0.1},
		Mass:             0,
		Joints:           2,
		GraspJointValues: []float64{0, 0},
	}
}

func TestPoseRoundTrip(t *testing.T) {
	e := NewEngine(Config{Seed: 1}, golog.NewTestLogger(t))
	id, err := e.CreateBody(boxShape(0.1))
	test.That(t, err, test.ShouldBeNil)

	want := spatialmath.NewPoseFromPoint(r3.Vector{X: 0.1, Y: 0.2, Z: 0.4})
	test.That(t, e.SetPose(id, want), test.ShouldBeNil)

	got, err := e.GetPose(id)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatialmath.PoseAlmostEqual(got, want, 1e-9), test.ShouldBeTrue)
}

func TestDegeneratePose(t *testing.T) {
	e := NewEngine(Config{Seed: 1, MinSeparation: 0.1}, golog.NewTestLogger(t))
	a, err := e.CreateBody(boxShape(0.1))
	test.That(t, err, test.ShouldBeNil)
	b, err := e.CreateBody(boxShape(0.1))
	test.That(t, err, test.ShouldBeNil)

	test.That(t, e.SetPose(a, spatialmath.NewPoseFromPoint(r3.Vector{Z: 0.4})), test.ShouldBeNil)

	err = e.SetPose(b, spatialmath.NewPoseFromPoint(r3.Vector{X: 0.05, Z: 0.4}))
	test.That(t, errors.Is(err, sim.ErrDegeneratePose), test.ShouldBeTrue)

	// far enough apart is fine
	test.That(t, e.SetPose(b, spatialmath.NewPoseFromPoint(r3.Vector{X: 0.5, Z: 0.4})), test.ShouldBeNil)
}

func TestArticulatedBodyNeedsGraspValues(t *testing.T) {
	e := NewEngine(Config{Seed: 1}, golog.NewTestLogger(t))
	_, err := e.CreateBody(sim.Shape{Type: sim.ShapeBox, Joints: 2})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestGraspLiftAndRelease(t *testing.T) {
	e := NewEngine(Config{Seed: 1, JointRate: 0.05}, golog.NewTestLogger(t))
	obj, err := e.CreateBody(boxShape(0.1))
	test.That(t, err, test.ShouldBeNil)
	hand, err := e.CreateBody(handShape())
	test.That(t, err, test.ShouldBeNil)

	test.That(t, e.SetPose(obj, spatialmath.NewPoseFromPoint(r3.Vector{Z: 0.4})), test.ShouldBeNil)
	handPose := spatialmath.NewPoseFromPoint(r3.Vector{X: 0.25, Z: 0.4})
	test.That(t, e.SetPose(hand, handPose), test.ShouldBeNil)

	// open, then close
	for j := 0; j < 2; j++ {
		test.That(t, e.SetJointTarget(hand, j, 0.548), test.ShouldBeNil)
	}
	test.That(t, e.Step(50), test.ShouldBeNil)
	test.That(t, e.Holding(hand), test.ShouldEqual, sim.BodyID(0))

	for j := 0; j < 2; j++ {
		test.That(t, e.SetJointTarget(hand, j, 0), test.ShouldBeNil)
	}
	test.That(t, e.Step(50), test.ShouldBeNil)
	test.That(t, e.Holding(hand), test.ShouldEqual, obj)

	// lift the hand; the object follows
	test.That(t, e.SetPose(hand, handPose.Offset(r3.Vector{Z: 0.5})), test.ShouldBeNil)
	test.That(t, e.Step(10), test.ShouldBeNil)

	objPose, err := e.GetPose(obj)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, objPose.Point.Z, test.ShouldAlmostEqual, 0.9, 1e-9)

	// reopen: the object is released and falls back to rest
	for j := 0; j < 2; j++ {
		test.That(t, e.SetJointTarget(hand, j, 0.548), test.ShouldBeNil)
	}
	test.That(t, e.Step(100), test.ShouldBeNil)
	test.That(t, e.Holding(hand), test.ShouldEqual, sim.BodyID(0))

	objPose, err = e.GetPose(obj)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, objPose.Point.Z, test.ShouldAlmostEqual, 0.4, 1e-9)
}

func TestGraspOutOfReach(t *testing.T) {
	e := NewEngine(Config{Seed: 1, JointRate: 0.05, AttachRadius: 0.2}, golog.NewTestLogger(t))
	obj, err := e.CreateBody(boxShape(0.1))
	test.That(t, err, test.ShouldBeNil)
	hand, err := e.CreateBody(handShape())
	test.That(t, err, test.ShouldBeNil)

	test.That(t, e.SetPose(obj, spatialmath.NewPoseFromPoint(r3.Vector{Z: 0.4})), test.ShouldBeNil)
	test.That(t, e.SetPose(hand, spatialmath.NewPoseFromPoint(r3.Vector{X: 0.5, Z: 0.4})), test.ShouldBeNil)

	for j := 0; j < 2; j++ {
		test.That(t, e.SetJointTarget(hand, j, 0), test.ShouldBeNil)
	}
	test.That(t, e.Step(50), test.ShouldBeNil)
	test.That(t, e.Holding(hand), test.ShouldEqual, sim.BodyID(0))
}

func TestGraspAlwaysSlips(t *testing.T) {
	e := NewEngine(Config{Seed: 1, JointRate: 0.05, SlipRate: 1}, golog.NewTestLogger(t))
	obj, err := e.CreateBody(boxShape(0.1))
	test.That(t, err, test.ShouldBeNil)
	hand, err := e.CreateBody(handShape())
	test.That(t, err, test.ShouldBeNil)

	test.That(t, e.SetPose(obj, spatialmath.NewPoseFromPoint(r3.Vector{Z: 0.4})), test.ShouldBeNil)
	test.That(t, e.SetPose(hand, spatialmath.NewPoseFromPoint(r3.Vector{X: 0.25, Z: 0.4})), test.ShouldBeNil)

	for j := 0; j < 2; j++ {
		test.That(t, e.SetJointTarget(hand, j, 0), test.ShouldBeNil)
	}
	test.That(t, e.Step(50), test.ShouldBeNil)
	test.That(t, e.Holding(hand), test.ShouldEqual, sim.BodyID(0))
}

func TestRemoveReleasesHeld(t *testing.T) {
	e := NewEngine(Config{Seed: 1, JointRate: 0.05}, golog.NewTestLogger(t))
	obj, err := e.CreateBody(boxShape(0.1))
	test.That(t, err, test.ShouldBeNil)
	hand, err := e.CreateBody(handShape())
	test.That(t, err, test.ShouldBeNil)

	test.That(t, e.SetPose(obj, spatialmath.NewPoseFromPoint(r3.Vector{Z: 0.4})), test.ShouldBeNil)
	test.That(t, e.SetPose(hand, spatialmath.NewPoseFromPoint(r3.Vector{X: 0.25, Z: 0.4})), test.ShouldBeNil)
	for j := 0; j < 2; j++ {
		test.That(t, e.SetJointTarget(hand, j, 0), test.ShouldBeNil)
	}
	test.That(t, e.Step(50), test.ShouldBeNil)
	test.That(t, e.Holding(hand), test.ShouldEqual, obj)

	test.That(t, e.Remove(obj), test.ShouldBeNil)
	test.That(t, e.Holding(hand), test.ShouldEqual, sim.BodyID(0))
	_, err = e.GetPose(obj)
	test.That(t, err, test.ShouldNotBeNil)
}
