package ml

import (
	"github.com/pkg/errors"
	"github.com/sjwhitworth/golearn/ensemble"

	"go.viam.com/graspbench/dataset"
)

const (
	defaultTrees      = 100
	defaultSubsetSize = 4
)

// A TrainOption adjusts training configuration.
type TrainOption func(*Schema)

// WithTrees sets the forest size.
func WithTrees(n int) TrainOption {
	return func(s *Schema) { s.Trees = n }
}

// WithCombination tags the model with the combination it was trained for.
func WithCombination(gripperKind, objectKind string) TrainOption {
	return func(s *Schema) {
		s.GripperKind = gripperKind
		s.ObjectKind = objectKind
	}
}

// Train fits a random forest over the pose features of the given records to
// predict the success label. The dataset must contain at least one record of
// each class.
func Train(records []dataset.GraspRecord, opts ...TrainOption) (*Model, error) {
	if len(records) == 0 {
		return nil, &InsufficientDataError{Records: 0}
	}
	successes, failures := dataset.LabelCounts(records)
	if successes == 0 || failures == 0 {
		return nil, &InsufficientDataError{Records: len(records), Classes: 1}
	}

	rows := make([][]float64, len(records))
	labels := make([]int, len(records))
	for i, r := range records {
		rows[i] = r.Features()
		labels[i] = r.Success
	}

	schema := buildSchema(dataset.FeatureColumns(), rows)
	schema.Trees = defaultTrees
	schema.SubsetSize = defaultSubsetSize
	for _, opt := range opts {
		opt(&schema)
	}
	if schema.SubsetSize > len(schema.Features) {
		schema.SubsetSize = len(schema.Features)
	}

	inst, err := schema.newInstances(rows, labels)
	if err != nil {
		return nil, err
	}
	forest := ensemble.NewRandomForest(schema.Trees, schema.SubsetSize)
	if err := forest.Fit(inst); err != nil {
		return nil, errors.Wrap(err, "cannot fit forest")
	}
	return &Model{forest: forest, schema: schema}, nil
}
