// Package gripper defines the gripper variants the harness can actuate.
// Variants differ only in their parameter tables and, for the three-finger
// hand, its closing strategy; callers never branch on the concrete kind.
package gripper

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/graspbench/sim"
	"go.viam.com/graspbench/spatialmath"
)

// Gripper is an end-effector placed in the simulated world.
type Gripper interface {
	// Kind returns the registered kind this gripper was constructed as.
	Kind() string
	// Open drives the fingers to the open configuration and settles.
	Open(ctx context.Context) error
	// Close drives the fingers to the grasp configuration and settles.
	Close(ctx context.Context) error
	// SetPose teleports the gripper to the given pose.
	SetPose(ctx context.Context, pose spatialmath.Pose) error
	// MoveUp raises the gripper by distance in small increments, stepping the
	// engine as it goes so held bodies follow.
	MoveUp(ctx context.Context, distance float64) error
	// CurrentPose reads the gripper's pose back from the engine.
	CurrentPose(ctx context.Context) (spatialmath.Pose, error)
	// Config returns the merged configuration the gripper was built with.
	Config() Config
}

// Approach describes how a gripper kind is positioned around an object before
// closing: nominal radius per object kind plus the perturbation intervals the
// trial runner samples from.
type Approach struct {
	// GraspRadius is the nominal horizontal offset from the object's grasp
	// center, keyed by object kind.
	GraspRadius      map[string]float64 `json:"grasp_radius"`
	RadiusVariation  spatialmath.Bounds `json:"radius_variation"`
	YOffset          spatialmath.Bounds `json:"y_offset"`
	ZBaseOffset      float64            `json:"z_base_offset"`
	ZVariation       spatialmath.Bounds `json:"z_variation"`
	RollRange        spatialmath.Bounds `json:"roll_range"`
	ApproachDistance float64            `json:"approach_distance"`
}

// RadiusFor returns the nominal grasp radius for an object kind.
func (a Approach) RadiusFor(objectKind string) (float64, error) {
	r, ok := a.GraspRadius[objectKind]
	if !ok {
		return 0, errors.Errorf("gripper has no grasp radius configured for object kind %q", objectKind)
	}
	return r, nil
}

// Config holds a gripper variant's actuation and approach parameters. Defaults
// come from the per-kind table and may be overridden per invocation.
type Config struct {
	// OpenTargets and ClosedTargets are per-joint position targets.
	OpenTargets   []float64 `json:"open_targets"`
	ClosedTargets []float64 `json:"closed_targets"`
	// CloseStages is the number of intermediate target sets used while
	// closing; 1 means a single actuation step.
	CloseStages int `json:"close_stages"`
	// SettleSteps is how many engine steps follow each actuation.
	SettleSteps int `json:"settle_steps"`
	// LiftSteps is how many increments MoveUp splits a lift into.
	LiftSteps int `json:"lift_steps"`

	Approach Approach `json:"approach"`
}

// An Option overrides part of a variant's default config.
type Option func(*Config)

// WithSettleSteps overrides how long actuations settle.
func WithSettleSteps(n int) Option {
	return func(c *Config) { c.SettleSteps = n }
}

// WithGraspRadius overrides the nominal grasp radius for one object kind.
func WithGraspRadius(objectKind string, radius float64) Option {
	return func(c *Config) {
		m := make(map[string]float64, len(c.Approach.GraspRadius))
		for k, v := range c.Approach.GraspRadius {
			m[k] = v
		}
		m[objectKind] = radius
		c.Approach.GraspRadius = m
	}
}

// WithApproachDistance overrides the approach distance.
func WithApproachDistance(d float64) Option {
	return func(c *Config) { c.Approach.ApproachDistance = d }
}

// ConfigurationError is returned when an unknown gripper kind is requested.
type ConfigurationError struct {
	Kind      string
	Supported []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("unsupported gripper kind %q; supported: %s",
		e.Kind, strings.Join(e.Supported, ", "))
}

type registration struct {
	defaults    Config
	constructor func(engine sim.Engine, cfg Config, logger golog.Logger) (Gripper, error)
}

var (
	registry = map[string]registration{}
	// aliases maps the historical model names onto the registered kinds.
	aliases = map[string]string{}
)

func register(kind string, reg registration, aka ...string) {
	registry[kind] = reg
	for _, a := range aka {
		aliases[a] = kind
	}
}

// RegisteredKinds returns all canonical gripper kinds, sorted. Aliases are
// accepted by New but not listed.
func RegisteredKinds() []string {
	kinds := make([]string, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// CanonicalKind maps a kind or alias onto the registered kind name. Unknown
// names pass through unchanged.
func CanonicalKind(kind string) string {
	key := strings.ToLower(kind)
	if canonical, ok := aliases[key]; ok {
		return canonical
	}
	return key
}

// New constructs the gripper variant registered under kind (or one of its
// aliases), merging opts over the per-kind defaults.
func New(ctx context.Context, engine sim.Engine, kind string, logger golog.Logger, opts ...Option) (Gripper, error) {
	key := CanonicalKind(kind)
	reg, ok := registry[key]
	if !ok {
		return nil, &ConfigurationError{Kind: kind, Supported: RegisteredKinds()}
	}
	cfg := reg.defaults
	for _, opt := range opts {
		opt(&cfg)
	}
	return reg.constructor(engine, cfg, logger)
}

// baseGripper implements the engine plumbing shared by all variants.
type baseGripper struct {
	kind   string
	engine sim.Engine
	id     sim.BodyID
	cfg    Config
	logger golog.Logger
}

func newBaseGripper(kind string, engine sim.Engine, cfg Config, logger golog.Logger) (*baseGripper, error) {
	shape := sim.Shape{
		Type:        sim.ShapeBox,
		HalfExtents: r3.Vector{X: 0.1, Y: 0.1, Z: 0.1},
		// massless so the engine treats the hand as kinematic
		Mass:             0,
		Joints:           len(cfg.ClosedTargets),
		GraspJointValues: cfg.ClosedTargets,
	}
	id, err := engine.CreateBody(shape)
	if err != nil {
		return nil, err
	}
	return &baseGripper{kind: kind, engine: engine, id: id, cfg: cfg, logger: logger}, nil
}

func (g *baseGripper) Kind() string {
	return g.kind
}

func (g *baseGripper) Config() Config {
	return g.cfg
}

func (g *baseGripper) setTargets(targets []float64) error {
	for j, target := range targets {
		if err := g.engine.SetJointTarget(g.id, j, target); err != nil {
			return err
		}
	}
	return nil
}

func (g *baseGripper) Open(ctx context.Context) error {
	if err := g.setTargets(g.cfg.OpenTargets); err != nil {
		return err
	}
	return g.engine.Step(g.cfg.SettleSteps)
}

func (g *baseGripper) Close(ctx context.Context) error {
	if err := g.setTargets(g.cfg.ClosedTargets); err != nil {
		return err
	}
	return g.engine.Step(g.cfg.SettleSteps)
}

func (g *baseGripper) SetPose(ctx context.Context, pose spatialmath.Pose) error {
	return g.engine.SetPose(g.id, pose)
}

func (g *baseGripper) CurrentPose(ctx context.Context) (spatialmath.Pose, error) {
	return g.engine.GetPose(g.id)
}

func (g *baseGripper) MoveUp(ctx context.Context, distance float64) error {
	pose, err := g.engine.GetPose(g.id)
	if err != nil {
		return err
	}
	steps := g.cfg.LiftSteps
	if steps <= 0 {
		steps = 1
	}
	dz := distance / float64(steps)
	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		pose = pose.Offset(r3.Vector{Z: dz})
		if err := g.engine.SetPose(g.id, pose); err != nil {
			return err
		}
		if err := g.engine.Step(1); err != nil {
			return err
		}
	}
	return nil
}
