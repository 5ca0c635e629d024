// Package ml trains and applies the grasp success classifier: a random forest
// over the pose features, with quartile-binned inputs and a persisted feature
// schema so train- and predict-time columns always line up.
package ml

import (
	"fmt"
	"strconv"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"github.com/sjwhitworth/golearn/base"
)

// classLabels in dictionary order; must be stable across save/load.
var classLabels = []string{"0", "1"}

// Schema records everything needed to rebuild the model's input encoding:
// the ordered feature columns, the per-feature bin edges, and the forest
// shape. Persisted alongside the model artifact.
type Schema struct {
	Features    []string    `json:"features"`
	BinEdges    [][]float64 `json:"bin_edges"`
	Trees       int         `json:"trees"`
	SubsetSize  int         `json:"features_per_tree"`
	GripperKind string      `json:"gripper_kind,omitempty"`
	ObjectKind  string      `json:"object_kind,omitempty"`
}

// buildSchema derives quartile bin edges for each feature column from the
// training rows. Trees split on the resulting categorical bins.
func buildSchema(features []string, rows [][]float64) Schema {
	edges := make([][]float64, len(features))
	for col := range features {
		values := make([]float64, len(rows))
		for i, row := range rows {
			values[i] = row[col]
		}
		q, err := stats.Quartile(values)
		if err != nil {
			// too few samples to bin; the feature becomes a single bin
			edges[col] = nil
			continue
		}
		edges[col] = []float64{q.Q1, q.Q2, q.Q3}
	}
	return Schema{Features: features, BinEdges: edges}
}

// binLabel maps a raw value to its bin name for one feature column.
func (s Schema) binLabel(col int, v float64) string {
	bin := 0
	for _, edge := range s.BinEdges[col] {
		if v >= edge {
			bin++
		}
	}
	return fmt.Sprintf("b%d", bin)
}

func (s Schema) binCount(col int) int {
	return len(s.BinEdges[col]) + 1
}

// newInstances packs feature rows (and labels, if given) into a golearn data
// grid. Every categorical value dictionary is pre-populated in a fixed order
// so the encoding is identical at train and predict time.
func (s Schema) newInstances(rows [][]float64, labels []int) (*base.DenseInstances, error) {
	data := base.NewDenseInstances()
	specs := make([]base.AttributeSpec, 0, len(s.Features)+1)
	for col, name := range s.Features {
		attr := base.NewCategoricalAttribute()
		attr.SetName(name)
		for b := 0; b < s.binCount(col); b++ {
			attr.GetSysValFromString(fmt.Sprintf("b%d", b))
		}
		specs = append(specs, data.AddAttribute(attr))
	}

	classAttr := base.NewCategoricalAttribute()
	classAttr.SetName("Success")
	for _, label := range classLabels {
		classAttr.GetSysValFromString(label)
	}
	classSpec := data.AddAttribute(classAttr)
	specs = append(specs, classSpec)
	if err := data.AddClassAttribute(classAttr); err != nil {
		return nil, errors.Wrap(err, "cannot set class attribute")
	}

	if err := data.Extend(len(rows)); err != nil {
		return nil, errors.Wrap(err, "cannot size data grid")
	}
	for r, row := range rows {
		if len(row) != len(s.Features) {
			return nil, errors.Errorf("row %d has %d features, schema has %d", r, len(row), len(s.Features))
		}
		for col, v := range row {
			attr := specs[col].GetAttribute()
			data.Set(specs[col], r, attr.GetSysValFromString(s.binLabel(col, v)))
		}
		label := classLabels[0]
		if labels != nil && labels[r] != 0 {
			label = classLabels[1]
		}
		data.Set(classSpec, r, classAttr.GetSysValFromString(label))
	}
	return data, nil
}

// labelsFrom reads predicted class labels back out of a result grid.
func labelsFrom(res base.FixedDataGrid, n int) ([]int, error) {
	out := make([]int, n)
	for i := 0; i < n; i++ {
		label, err := strconv.Atoi(base.GetClass(res, i))
		if err != nil {
			return nil, errors.Wrapf(err, "unexpected class label at row %d", i)
		}
		out[i] = label
	}
	return out, nil
}
