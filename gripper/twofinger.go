package gripper

import (
	"github.com/edaniels/golog"

	"go.viam.com/graspbench/object"
	"go.viam.com/graspbench/sim"
	"go.viam.com/graspbench/spatialmath"
)

// KindTwoFinger is the PR2-style parallel jaw gripper.
const KindTwoFinger = "two_finger"

// Jaw position targets for the two-finger hand; 0.548 is wide open.
const (
	twoFingerOpen   = 0.548
	twoFingerClosed = 0.0
)

func init() {
	register(KindTwoFinger, registration{
		defaults: Config{
			OpenTargets:   []float64{twoFingerOpen, twoFingerOpen},
			ClosedTargets: []float64{twoFingerClosed, twoFingerClosed},
			CloseStages:   1,
			SettleSteps:   200,
			LiftSteps:     50,
			Approach: Approach{
				GraspRadius: map[string]float64{
					object.KindCuboid:   0.25,
					object.KindCylinder: 0.22,
				},
				RadiusVariation:  spatialmath.NewBounds(-0.05, 0.05),
				YOffset:          spatialmath.NewBounds(-0.05, 0.05),
				ZBaseOffset:      -0.1,
				ZVariation:       spatialmath.NewBounds(-0.1, 0.1),
				RollRange:        spatialmath.NewBounds(-0.5, 0.5),
				ApproachDistance: 0.0,
			},
		},
		constructor: newTwoFinger,
	}, "pr2")
}

// twoFinger closes in a single actuation step; everything it needs is in the
// base implementation.
type twoFinger struct {
	*baseGripper
}

func newTwoFinger(engine sim.Engine, cfg Config, logger golog.Logger) (Gripper, error) {
	base, err := newBaseGripper(KindTwoFinger, engine, cfg, logger)
	if err != nil {
		return nil, err
	}
	return &twoFinger{baseGripper: base}, nil
}
