package object

import (
	"github.com/edaniels/golog"

	"go.viam.com/graspbench/sim"
)

// KindCylinder is the registered kind of the cylindrical variant.
const KindCylinder = "cylinder"

func init() {
	register(KindCylinder, registration{
		defaults: Config{
			Radius: 0.04,
			Height: 0.8,
			Mass:   0.1,
		},
		constructor: newCylinder,
	})
}

type cylinder struct {
	*baseObject
}

func newCylinder(engine sim.Engine, cfg Config, logger golog.Logger) (Object, error) {
	shape := sim.Shape{
		Type:   sim.ShapeCylinder,
		Radius: cfg.Radius,
		Length: cfg.Height,
		Mass:   cfg.Mass,
	}
	base, err := newBaseObject(KindCylinder, engine, shape, cfg, logger)
	if err != nil {
		return nil, err
	}
	return &cylinder{baseObject: base}, nil
}
