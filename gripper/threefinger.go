package gripper

import (
	"context"

	"github.com/edaniels/golog"

	"go.viam.com/graspbench/object"
	"go.viam.com/graspbench/sim"
	"go.viam.com/graspbench/spatialmath"
)

// KindThreeFinger is the SDH-style three-finger hand.
const KindThreeFinger = "three_finger"

// Finger position targets for the three-finger hand; negative spreads the
// fingers outward.
const (
	threeFingerOpen   = -0.5
	threeFingerClosed = 1.0
)

func init() {
	register(KindThreeFinger, registration{
		defaults: Config{
			OpenTargets:   []float64{threeFingerOpen, threeFingerOpen, threeFingerOpen},
			ClosedTargets: []float64{threeFingerClosed, threeFingerClosed, threeFingerClosed},
			CloseStages:   4,
			SettleSteps:   200,
			LiftSteps:     50,
			Approach: Approach{
				GraspRadius: map[string]float64{
					object.KindCuboid:   0.35,
					object.KindCylinder: 0.30,
				},
				RadiusVariation:  spatialmath.NewBounds(-0.08, 0.08),
				YOffset:          spatialmath.NewBounds(-0.08, 0.08),
				ZBaseOffset:      -0.15,
				ZVariation:       spatialmath.NewBounds(-0.15, 0.15),
				RollRange:        spatialmath.NewBounds(-0.3, 0.3),
				ApproachDistance: 0.05,
			},
		},
		constructor: newThreeFinger,
	}, "sdh")
}

type threeFinger struct {
	*baseGripper
}

func newThreeFinger(engine sim.Engine, cfg Config, logger golog.Logger) (Gripper, error) {
	base, err := newBaseGripper(KindThreeFinger, engine, cfg, logger)
	if err != nil {
		return nil, err
	}
	return &threeFinger{baseGripper: base}, nil
}

// Close wraps the fingers gradually: the joints walk through CloseStages
// intermediate target sets so the fingers curl around the object rather than
// snapping shut.
func (g *threeFinger) Close(ctx context.Context) error {
	stages := g.cfg.CloseStages
	if stages <= 1 {
		return g.baseGripper.Close(ctx)
	}
	settle := g.cfg.SettleSteps / stages
	if settle < 1 {
		settle = 1
	}
	targets := make([]float64, len(g.cfg.ClosedTargets))
	for stage := 1; stage <= stages; stage++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		frac := float64(stage) / float64(stages)
		for j := range targets {
			open := g.cfg.OpenTargets[j]
			targets[j] = open + (g.cfg.ClosedTargets[j]-open)*frac
		}
		if err := g.setTargets(targets); err != nil {
			return err
		}
		if err := g.engine.Step(settle); err != nil {
			return err
		}
	}
	return nil
}
