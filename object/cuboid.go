package object

import (
	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"

	"go.viam.com/graspbench/sim"
)

// KindCuboid is the registered kind of the rectangular box variant.
const KindCuboid = "cuboid"

func init() {
	register(KindCuboid, registration{
		defaults: Config{
			Width:  0.05,
			Depth:  0.05,
			Height: 0.8,
			Mass:   0.1,
		},
		constructor: newCuboid,
	})
}

type cuboid struct {
	*baseObject
}

func newCuboid(engine sim.Engine, cfg Config, logger golog.Logger) (Object, error) {
	shape := sim.Shape{
		Type: sim.ShapeBox,
		HalfExtents: r3.Vector{
			X: cfg.Width / 2,
			Y: cfg.Depth / 2,
			Z: cfg.Height / 2,
		},
		Mass: cfg.Mass,
	}
	base, err := newBaseObject(KindCuboid, engine, shape, cfg, logger)
	if err != nil {
		return nil, err
	}
	return &cuboid{baseObject: base}, nil
}
