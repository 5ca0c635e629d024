package ml

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sjwhitworth/golearn/ensemble"
	"go.uber.org/multierr"

	"go.viam.com/graspbench/dataset"
)

const schemaSuffix = ".schema.json"

// Model is a trained grasp success classifier plus the feature schema it was
// trained with.
type Model struct {
	forest *ensemble.RandomForest
	schema Schema
}

// Schema returns the model's feature schema.
func (m *Model) Schema() Schema {
	return m.schema
}

// ArtifactName is the canonical model file name for a combination.
func ArtifactName(gripperKind, objectKind string) string {
	return fmt.Sprintf("grasp_model_%s_%s.bin", gripperKind, objectKind)
}

// CheckSchema validates a dataset's columns against the model's feature
// schema: same columns, same order.
func (m *Model) CheckSchema(columns []string) error {
	if len(columns) < len(m.schema.Features) {
		return &SchemaMismatchError{Want: m.schema.Features, Got: columns}
	}
	for i, want := range m.schema.Features {
		if columns[i] != want {
			return &SchemaMismatchError{Want: m.schema.Features, Got: columns[:len(m.schema.Features)]}
		}
	}
	return nil
}

// Predict classifies a single record, returning the predicted label.
func (m *Model) Predict(rec dataset.GraspRecord) (int, error) {
	labels, err := m.predictBatch([]dataset.GraspRecord{rec})
	if err != nil {
		return 0, err
	}
	return labels[0], nil
}

func (m *Model) predictBatch(records []dataset.GraspRecord) ([]int, error) {
	rows := make([][]float64, len(records))
	for i, r := range records {
		rows[i] = r.Features()
	}
	inst, err := m.schema.newInstances(rows, nil)
	if err != nil {
		return nil, err
	}
	res, err := m.forest.Predict(inst)
	if err != nil {
		return nil, errors.Wrap(err, "prediction failed")
	}
	return labelsFrom(res, len(records))
}

// Save persists the model artifact and its schema sidecar. Both files are
// staged fully before either is renamed into place, and the model artifact is
// renamed last, so a model file that exists is always loadable.
func (m *Model) Save(path string) (err error) {
	dir := filepath.Dir(path)

	tmpModel, err := os.CreateTemp(dir, ".model-*")
	if err != nil {
		return errors.Wrap(err, "cannot create temp model file")
	}
	tmpName := tmpModel.Name()
	if err = tmpModel.Close(); err != nil {
		return err
	}
	tmpSchema := filepath.Join(dir, filepath.Base(path)+schemaSuffix+".tmp")
	defer func() {
		if err != nil {
			err = multierr.Combine(err, os.RemoveAll(tmpName), os.RemoveAll(tmpSchema))
		}
	}()

	if err = m.forest.Save(tmpName); err != nil {
		return errors.Wrap(err, "cannot save forest")
	}
	raw, err := json.MarshalIndent(m.schema, "", "  ")
	if err != nil {
		return errors.Wrap(err, "cannot serialize schema")
	}
	if err = os.WriteFile(tmpSchema, raw, 0o644); err != nil {
		return errors.Wrap(err, "cannot write schema")
	}

	if err = os.Rename(tmpSchema, path+schemaSuffix); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// LoadModel reads a model artifact and its schema sidecar back.
func LoadModel(path string) (*Model, error) {
	raw, err := os.ReadFile(path + schemaSuffix)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read model schema")
	}
	var schema Schema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, errors.Wrap(err, "cannot parse model schema")
	}

	forest := ensemble.NewRandomForest(schema.Trees, schema.SubsetSize)
	if err := forest.Load(path); err != nil {
		return nil, errors.Wrap(err, "cannot load forest")
	}
	return &Model{forest: forest, schema: schema}, nil
}
