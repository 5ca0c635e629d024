package spatialmath

import (
	"math/rand"

	"github.com/golang/geo/r3"
)

// Bounds is a closed interval from which values may be sampled uniformly.
type Bounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// NewBounds returns a Bounds spanning [min, max].
func NewBounds(min, max float64) Bounds {
	return Bounds{Min: min, Max: max}
}

// Sample draws a uniform value from the interval.
func (b Bounds) Sample(r *rand.Rand) float64 {
	if b.Max <= b.Min {
		return b.Min
	}
	return b.Min + r.Float64()*(b.Max-b.Min)
}

// Contains reports whether v lies within the interval.
func (b Bounds) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// PoseBounds describes per-axis uniform perturbation intervals for a pose.
type PoseBounds struct {
	X     Bounds `json:"x"`
	Y     Bounds `json:"y"`
	Z     Bounds `json:"z"`
	Roll  Bounds `json:"roll"`
	Pitch Bounds `json:"pitch"`
	Yaw   Bounds `json:"yaw"`
}

// SamplePose draws a pose uniformly from the per-axis intervals.
func (pb PoseBounds) SamplePose(r *rand.Rand) Pose {
	return NewPose(
		r3.Vector{X: pb.X.Sample(r), Y: pb.Y.Sample(r), Z: pb.Z.Sample(r)},
		&EulerAngles{
			Roll:  pb.Roll.Sample(r),
			Pitch: pb.Pitch.Sample(r),
			Yaw:   pb.Yaw.Sample(r),
		},
	)
}
