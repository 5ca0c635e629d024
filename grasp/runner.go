// Package grasp orchestrates simulated grasp trials: one attempt at a time,
// strictly sequential, each yielding exactly one labeled record.
package grasp

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/graspbench/dataset"
	"go.viam.com/graspbench/gripper"
	"go.viam.com/graspbench/object"
	"go.viam.com/graspbench/sim"
	"go.viam.com/graspbench/spatialmath"
)

// Params are the per-trial tunables. Unset values are filled from
// DefaultParams.
type Params struct {
	// LiftDistance is how far the gripper is raised after closing.
	LiftDistance float64
	// SuccessThreshold is the minimum height gain counted as a successful
	// grasp. Deliberately configuration, not a constant; nil picks the
	// default so an explicit zero threshold is honored.
	SuccessThreshold *float64
	// RetryBudget is how many times a trial may resample a degenerate spawn
	// pose before giving up. Values below 1 fall back to the default; every
	// trial needs at least one placement attempt.
	RetryBudget int
	// Seed fixes pose sampling; zero picks a time-based seed. Datasets are
	// reproducible only when this is set explicitly.
	Seed int64
}

const defaultSuccessThreshold = 0.1

// DefaultParams returns the standard trial parameters.
func DefaultParams() Params {
	threshold := defaultSuccessThreshold
	return Params{
		LiftDistance:     0.5,
		SuccessThreshold: &threshold,
		RetryBudget:      3,
	}
}

func (p Params) withDefaults() Params {
	d := DefaultParams()
	if p.LiftDistance == 0 {
		p.LiftDistance = d.LiftDistance
	}
	if p.SuccessThreshold == nil {
		p.SuccessThreshold = d.SuccessThreshold
	}
	if p.RetryBudget < 1 {
		p.RetryBudget = d.RetryBudget
	}
	return p
}

// Success classifies a measured height delta against the threshold.
func (p Params) Success(delta float64) bool {
	threshold := defaultSuccessThreshold
	if p.SuccessThreshold != nil {
		threshold = *p.SuccessThreshold
	}
	return delta >= threshold
}

// A SimulationError marks a trial that could not be run, e.g. because every
// sampled spawn pose was degenerate. The batch skips the trial and moves on.
type SimulationError struct {
	Attempts int
	Err      error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("trial failed after %d attempts: %v", e.Attempts, e.Err)
}

// Unwrap returns the underlying cause.
func (e *SimulationError) Unwrap() error {
	return e.Err
}

// Runner executes grasp trials for one (gripper, object) pair.
type Runner struct {
	engine sim.Engine
	grip   gripper.Gripper
	obj    object.Object
	params Params

	baseRadius float64
	rng        *rand.Rand
	logger     golog.Logger
}

// NewRunner wires a runner for the given gripper/object pair.
func NewRunner(engine sim.Engine, grip gripper.Gripper, obj object.Object, params Params, logger golog.Logger) (*Runner, error) {
	params = params.withDefaults()
	radius, err := grip.Config().Approach.RadiusFor(obj.Kind())
	if err != nil {
		return nil, err
	}
	seed := params.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
		logger.Infow("no seed configured, datasets will not be reproducible", "seed", seed)
	}
	return &Runner{
		engine:     engine,
		grip:       grip,
		obj:        obj,
		params:     params,
		baseRadius: radius,
		rng:        rand.New(rand.NewSource(seed)),
		logger:     logger,
	}, nil
}

// samplePose draws a perturbed grasp pose around the object's grasp center
// from the gripper's configured approach intervals.
func (r *Runner) samplePose() spatialmath.Pose {
	a := r.grip.Config().Approach
	center := r.obj.GraspCenter()
	return spatialmath.NewPose(
		r3.Vector{
			X: center.X + r.baseRadius + a.ApproachDistance + a.RadiusVariation.Sample(r.rng),
			Y: center.Y + a.YOffset.Sample(r.rng),
			Z: center.Z + a.ZBaseOffset + a.ZVariation.Sample(r.rng),
		},
		&spatialmath.EulerAngles{Roll: a.RollRange.Sample(r.rng)},
	)
}

// RunTrial executes one grasp attempt: spawn, approach, close, lift, measure,
// reset. It returns exactly one record, or a SimulationError if the trial had
// to be discarded.
func (r *Runner) RunTrial(ctx context.Context) (dataset.GraspRecord, error) {
	var zero dataset.GraspRecord

	if err := r.obj.Reset(ctx); err != nil {
		return zero, errors.Wrap(err, "cannot reset object")
	}

	var pose spatialmath.Pose
	placed := false
	attempts := 0
	for attempts < r.params.RetryBudget {
		attempts++
		pose = r.samplePose()
		err := r.grip.SetPose(ctx, pose)
		if err == nil {
			placed = true
			break
		}
		if !errors.Is(err, sim.ErrDegeneratePose) {
			return zero, err
		}
		r.logger.Debugw("degenerate spawn pose, resampling", "attempt", attempts, "pose", pose)
	}
	if !placed {
		return zero, &SimulationError{Attempts: attempts, Err: sim.ErrDegeneratePose}
	}

	if err := r.grip.Open(ctx); err != nil {
		return zero, err
	}
	initialZ, err := r.obj.CurrentHeight(ctx)
	if err != nil {
		return zero, err
	}

	if err := r.grip.Close(ctx); err != nil {
		return zero, err
	}
	if err := r.grip.MoveUp(ctx, r.params.LiftDistance); err != nil {
		return zero, err
	}

	finalZ, err := r.obj.CurrentHeight(ctx)
	if err != nil {
		return zero, err
	}
	delta := finalZ - initialZ
	rec := dataset.NewGraspRecord(pose, initialZ, finalZ, r.params.Success(delta))

	// release and restore the world for the next trial
	if err := r.grip.Open(ctx); err != nil {
		return zero, err
	}
	if err := r.obj.Reset(ctx); err != nil {
		return zero, err
	}
	return rec, nil
}
