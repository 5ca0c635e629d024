// Package object defines the graspable object variants the harness can spawn.
// Variants are registered by kind and constructed through New; callers only
// ever see the Object interface.
package object

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"

	"go.viam.com/graspbench/sim"
	"go.viam.com/graspbench/spatialmath"
)

// Object is a graspable body placed in the simulated world.
type Object interface {
	// Kind returns the registered kind this object was constructed as.
	Kind() string
	// SpawnPosition is where the object rests before a trial.
	SpawnPosition() r3.Vector
	// GraspCenter is the point grasp poses are planned around.
	GraspCenter() r3.Vector
	// Height is the object's vertical extent.
	Height() float64
	// CurrentHeight reads the object's current center height from the engine.
	CurrentHeight(ctx context.Context) (float64, error)
	// Reset returns the object to its spawn pose.
	Reset(ctx context.Context) error
}

// Config holds the geometric parameters of an object variant. Zero fields are
// filled from the per-kind defaults at construction.
type Config struct {
	Width  float64 `json:"width,omitempty"`
	Depth  float64 `json:"depth,omitempty"`
	Radius float64 `json:"radius,omitempty"`
	Height float64 `json:"height"`
	Mass   float64 `json:"mass"`
}

// An Option overrides part of a variant's default config.
type Option func(*Config)

// WithHeight overrides the object height.
func WithHeight(h float64) Option {
	return func(c *Config) { c.Height = h }
}

// WithMass overrides the object mass.
func WithMass(m float64) Option {
	return func(c *Config) { c.Mass = m }
}

// ConfigurationError is returned when an unknown object kind is requested.
type ConfigurationError struct {
	Kind      string
	Supported []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("unsupported object kind %q; supported: %s",
		e.Kind, strings.Join(e.Supported, ", "))
}

type registration struct {
	defaults    Config
	constructor func(engine sim.Engine, cfg Config, logger golog.Logger) (Object, error)
}

var registry = map[string]registration{}

func register(kind string, reg registration) {
	registry[kind] = reg
}

// RegisteredKinds returns all object kinds New accepts, sorted.
func RegisteredKinds() []string {
	kinds := make([]string, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// New constructs and spawns the object variant registered under kind.
func New(ctx context.Context, engine sim.Engine, kind string, logger golog.Logger, opts ...Option) (Object, error) {
	reg, ok := registry[strings.ToLower(kind)]
	if !ok {
		return nil, &ConfigurationError{Kind: kind, Supported: RegisteredKinds()}
	}
	cfg := reg.defaults
	for _, opt := range opts {
		opt(&cfg)
	}
	obj, err := reg.constructor(engine, cfg, logger)
	if err != nil {
		return nil, err
	}
	return obj, obj.Reset(ctx)
}

// baseObject carries the state shared by all variants; the variant contributes
// only its shape.
type baseObject struct {
	kind   string
	engine sim.Engine
	id     sim.BodyID
	cfg    Config
	logger golog.Logger
}

func newBaseObject(kind string, engine sim.Engine, shape sim.Shape, cfg Config, logger golog.Logger) (*baseObject, error) {
	id, err := engine.CreateBody(shape)
	if err != nil {
		return nil, err
	}
	return &baseObject{kind: kind, engine: engine, id: id, cfg: cfg, logger: logger}, nil
}

func (o *baseObject) Kind() string {
	return o.kind
}

func (o *baseObject) SpawnPosition() r3.Vector {
	return r3.Vector{X: 0, Y: 0, Z: o.cfg.Height / 2}
}

func (o *baseObject) GraspCenter() r3.Vector {
	return r3.Vector{X: 0, Y: 0, Z: o.cfg.Height / 2}
}

func (o *baseObject) Height() float64 {
	return o.cfg.Height
}

func (o *baseObject) CurrentHeight(ctx context.Context) (float64, error) {
	pose, err := o.engine.GetPose(o.id)
	if err != nil {
		return 0, err
	}
	return pose.Point.Z, nil
}

func (o *baseObject) Reset(ctx context.Context) error {
	return o.engine.SetPose(o.id, spatialmath.NewPoseFromPoint(o.SpawnPosition()))
}
