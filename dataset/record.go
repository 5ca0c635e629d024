// Package dataset defines the labeled grasp records the harness produces and
// their flat-file persistence. One CSV per gripper/object combination,
// append-only during generation.
package dataset

import (
	"fmt"

	"go.viam.com/graspbench/spatialmath"
)

// GraspRecord is one labeled grasp attempt. Immutable once written.
type GraspRecord struct {
	PosX     float64 `csv:"Position X"`
	PosY     float64 `csv:"Position Y"`
	PosZ     float64 `csv:"Position Z"`
	Roll     float64 `csv:"Orientation Roll"`
	Pitch    float64 `csv:"Orientation Pitch"`
	Yaw      float64 `csv:"Orientation Yaw"`
	InitialZ float64 `csv:"Initial Z"`
	FinalZ   float64 `csv:"Final Z"`
	DeltaZ   float64 `csv:"Delta Z"`
	Success  int     `csv:"Success"`
}

// PredictionRecord is a GraspRecord augmented with a model's prediction.
// Derived, never mutated; written to a separate output table.
type PredictionRecord struct {
	GraspRecord
	Predicted int `csv:"Predicted Success"`
}

// NewGraspRecord builds a record from a grasp pose and the measured heights.
func NewGraspRecord(pose spatialmath.Pose, initialZ, finalZ float64, success bool) GraspRecord {
	label := 0
	if success {
		label = 1
	}
	o := pose.Orientation
	if o == nil {
		o = spatialmath.NewEulerAngles()
	}
	return GraspRecord{
		PosX:     pose.Point.X,
		PosY:     pose.Point.Y,
		PosZ:     pose.Point.Z,
		Roll:     o.Roll,
		Pitch:    o.Pitch,
		Yaw:      o.Yaw,
		InitialZ: initialZ,
		FinalZ:   finalZ,
		DeltaZ:   finalZ - initialZ,
		Success:  label,
	}
}

// FeatureColumns is the ordered feature schema models are trained on: the six
// pose columns. Height columns are measurements of the outcome, not inputs.
func FeatureColumns() []string {
	return []string{
		"Position X", "Position Y", "Position Z",
		"Orientation Roll", "Orientation Pitch", "Orientation Yaw",
	}
}

// Features returns the record's feature vector in FeatureColumns order.
func (r GraspRecord) Features() []float64 {
	return []float64{r.PosX, r.PosY, r.PosZ, r.Roll, r.Pitch, r.Yaw}
}

// LabelCounts tallies records per label.
func LabelCounts(records []GraspRecord) (successes, failures int) {
	for _, r := range records {
		if r.Success != 0 {
			successes++
		} else {
			failures++
		}
	}
	return successes, failures
}

// FileName is the canonical dataset file name for a combination.
func FileName(gripperKind, objectKind string) string {
	return fmt.Sprintf("grasp_data_%s_%s.csv", gripperKind, objectKind)
}

// PredictionFileName is the canonical output file name for evaluated
// predictions; distinct from FileName so the source is never overwritten.
func PredictionFileName(gripperKind, objectKind string) string {
	return fmt.Sprintf("grasp_predictions_%s_%s.csv", gripperKind, objectKind)
}
