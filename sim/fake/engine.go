// Package fake implements a kinematic stand-in for a physics engine. It tracks
// body poses and joint positions, applies a simple gravity and grasp model, and
// is deterministic under a fixed seed.
package fake

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"go.viam.com/graspbench/sim"
	"go.viam.com/graspbench/spatialmath"
)

// Config holds the tunables of the fake world.
type Config struct {
	// AttachRadius is the maximum distance between a closed hand and a dynamic
	// body for the grasp to hold.
	AttachRadius float64
	// MinSeparation is the closest two body centers may be placed via SetPose
	// before the pose is considered degenerate.
	MinSeparation float64
	// SlipRate is the probability that a grasp within reach still slips.
	SlipRate float64
	// JointRate is how far a joint moves toward its target per step.
	JointRate float64
	// FallRate is how far an unsupported dynamic body falls per step.
	FallRate float64
	// Seed fixes the slip sampling sequence; zero means time-seeded.
	Seed int64
}

const (
	defaultAttachRadius  = 0.35
	defaultMinSeparation = 0.05
	defaultJointRate     = 0.01
	defaultFallRate      = 0.05

	jointTolerance = 1e-3
)

type body struct {
	shape  sim.Shape
	pose   spatialmath.Pose
	joints []float64
	// targets mirrors joints; targetHistory records every SetJointTarget call
	// so tests can observe actuation sequences.
	targets       []float64
	targetHistory [][]float64
	// commanded is set once any joint target has been issued; an unactuated
	// hand never counts as closed even if its resting joints happen to match
	// the grasp configuration.
	commanded bool

	// hand state
	holding    sim.BodyID
	holdOffset spatialmath.Pose
	slipped    bool
	slipTested bool
}

// Engine is a fake sim.Engine.
type Engine struct {
	cfg    Config
	logger golog.Logger
	rng    *rand.Rand

	bodies map[sim.BodyID]*body
	nextID sim.BodyID
}

// NewEngine returns a fake engine with the given config, filling in defaults
// for zero-valued tunables.
func NewEngine(cfg Config, logger golog.Logger) *Engine {
	if cfg.AttachRadius == 0 {
		cfg.AttachRadius = defaultAttachRadius
	}
	if cfg.MinSeparation == 0 {
		cfg.MinSeparation = defaultMinSeparation
	}
	if cfg.JointRate == 0 {
		cfg.JointRate = defaultJointRate
	}
	if cfg.FallRate == 0 {
		cfg.FallRate = defaultFallRate
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Engine{
		cfg:    cfg,
		logger: logger,
		rng:    rand.New(rand.NewSource(seed)),
		bodies: map[sim.BodyID]*body{},
		nextID: 1,
	}
}

// CreateBody adds a body to the world at the zero pose.
func (e *Engine) CreateBody(shape sim.Shape) (sim.BodyID, error) {
	if shape.Joints > 0 && len(shape.GraspJointValues) != shape.Joints {
		return 0, errors.Errorf("articulated body needs %d grasp joint values, got %d",
			shape.Joints, len(shape.GraspJointValues))
	}
	id := e.nextID
	e.nextID++
	e.bodies[id] = &body{
		shape:   shape,
		pose:    spatialmath.NewZeroPose(),
		joints:  make([]float64, shape.Joints),
		targets: make([]float64, shape.Joints),
		holding: 0,
	}
	return id, nil
}

// Remove deletes a body, releasing anything it holds.
func (e *Engine) Remove(id sim.BodyID) error {
	if _, ok := e.bodies[id]; !ok {
		return errors.Errorf("no body %d", id)
	}
	delete(e.bodies, id)
	for _, b := range e.bodies {
		if b.holding == id {
			b.holding = 0
		}
	}
	return nil
}

// SetPose teleports a body, rejecting poses that interpenetrate other bodies.
func (e *Engine) SetPose(id sim.BodyID, pose spatialmath.Pose) error {
	b, ok := e.bodies[id]
	if !ok {
		return errors.Errorf("no body %d", id)
	}
	for _, otherID := range e.orderedIDs() {
		if otherID == id {
			continue
		}
		other := e.bodies[otherID]
		if b.holding == otherID {
			continue
		}
		if other.holding == id {
			continue
		}
		if pose.Point.Sub(other.pose.Point).Norm() < e.cfg.MinSeparation {
			return errors.Wrapf(sim.ErrDegeneratePose, "body %d vs body %d", id, otherID)
		}
	}
	b.pose = pose
	return nil
}

// GetPose returns the body's current pose.
func (e *Engine) GetPose(id sim.BodyID) (spatialmath.Pose, error) {
	b, ok := e.bodies[id]
	if !ok {
		return spatialmath.Pose{}, errors.Errorf("no body %d", id)
	}
	return b.pose, nil
}

// SetJointTarget sets one joint's position target.
func (e *Engine) SetJointTarget(id sim.BodyID, joint int, target float64) error {
	b, ok := e.bodies[id]
	if !ok {
		return errors.Errorf("no body %d", id)
	}
	if joint < 0 || joint >= len(b.targets) {
		return errors.Errorf("body %d has no joint %d", id, joint)
	}
	b.targets[joint] = target
	b.commanded = true
	snapshot := make([]float64, len(b.targets))
	copy(snapshot, b.targets)
	b.targetHistory = append(b.targetHistory, snapshot)
	return nil
}

// Step advances the world: joints track their targets, closed hands grab
// nearby dynamic bodies, held bodies follow their hands, and everything else
// falls to rest.
func (e *Engine) Step(n int) error {
	for i := 0; i < n; i++ {
		e.stepOnce()
	}
	return nil
}

func (e *Engine) stepOnce() {
	ids := e.orderedIDs()

	// joints track targets
	for _, id := range ids {
		b := e.bodies[id]
		for j := range b.joints {
			b.joints[j] = approach(b.joints[j], b.targets[j], e.cfg.JointRate)
		}
	}

	// grasp resolution for articulated bodies
	for _, id := range ids {
		hand := e.bodies[id]
		if hand.shape.Joints == 0 {
			continue
		}
		if hand.closed() {
			if hand.holding == 0 && !hand.slipped {
				e.tryAttach(id, hand, ids)
			}
		} else {
			hand.holding = 0
			hand.slipped = false
			hand.slipTested = false
		}
	}

	// held bodies follow, free dynamic bodies fall
	for _, id := range ids {
		b := e.bodies[id]
		if b.holding == 0 {
			continue
		}
		if held, ok := e.bodies[b.holding]; ok {
			held.pose = spatialmath.NewPose(
				b.pose.Point.Add(b.holdOffset.Point),
				held.pose.Orientation,
			)
		}
	}
	for _, id := range ids {
		b := e.bodies[id]
		if b.shape.Mass <= 0 || e.heldBy(id) != 0 {
			continue
		}
		rest := b.shape.TopHeight()
		if b.pose.Point.Z > rest {
			z := math.Max(rest, b.pose.Point.Z-e.cfg.FallRate)
			b.pose.Point.Z = z
		}
	}
}

func (e *Engine) tryAttach(handID sim.BodyID, hand *body, ids []sim.BodyID) {
	for _, otherID := range ids {
		if otherID == handID {
			continue
		}
		other := e.bodies[otherID]
		if other.shape.Mass <= 0 {
			continue
		}
		if hand.pose.Point.Sub(other.pose.Point).Norm() > e.cfg.AttachRadius {
			continue
		}
		if !hand.slipTested {
			hand.slipTested = true
			if e.rng.Float64() < e.cfg.SlipRate {
				hand.slipped = true
				if e.logger != nil {
					e.logger.Debugw("grasp slipped", "hand", handID, "body", otherID)
				}
				return
			}
		}
		hand.holding = otherID
		hand.holdOffset = spatialmath.NewPoseFromPoint(other.pose.Point.Sub(hand.pose.Point))
		return
	}
}

func (e *Engine) heldBy(id sim.BodyID) sim.BodyID {
	for _, otherID := range e.orderedIDs() {
		if e.bodies[otherID].holding == id {
			return otherID
		}
	}
	return 0
}

func (e *Engine) orderedIDs() []sim.BodyID {
	ids := make([]sim.BodyID, 0, len(e.bodies))
	for id := range e.bodies {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (b *body) closed() bool {
	if b.shape.Joints == 0 || !b.commanded {
		return false
	}
	for j, want := range b.shape.GraspJointValues {
		if math.Abs(b.joints[j]-want) > jointTolerance {
			return false
		}
		if math.Abs(b.targets[j]-want) > jointTolerance {
			return false
		}
	}
	return true
}

func approach(cur, target, rate float64) float64 {
	diff := target - cur
	if math.Abs(diff) <= rate {
		return target
	}
	if diff > 0 {
		return cur + rate
	}
	return cur - rate
}

// JointPositions returns the current joint positions of a body. Test helper.
func (e *Engine) JointPositions(id sim.BodyID) []float64 {
	b, ok := e.bodies[id]
	if !ok {
		return nil
	}
	out := make([]float64, len(b.joints))
	copy(out, b.joints)
	return out
}

// TargetHistory returns every joint target snapshot set on a body, in order.
// Test helper.
func (e *Engine) TargetHistory(id sim.BodyID) [][]float64 {
	b, ok := e.bodies[id]
	if !ok {
		return nil
	}
	return b.targetHistory
}

// Holding returns the body a hand currently holds, or zero. Test helper.
func (e *Engine) Holding(id sim.BodyID) sim.BodyID {
	b, ok := e.bodies[id]
	if !ok {
		return 0
	}
	return b.holding
}
