package ml

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"go.viam.com/test"

	"go.viam.com/graspbench/dataset"
)

// tenGrasps is a small separable scenario: seven successful grasps close to
// the object, three failures placed well outside reach.
func tenGrasps() []dataset.GraspRecord {
	mk := func(x, y, roll float64, success int) dataset.GraspRecord {
		finalZ := 0.4
		if success != 0 {
			finalZ = 0.9
		}
		return dataset.GraspRecord{
			PosX: x, PosY: y, PosZ: 0.3,
			Roll: roll, Pitch: 0, Yaw: 0,
			InitialZ: 0.4, FinalZ: finalZ, DeltaZ: finalZ - 0.4,
			Success: success,
		}
	}
	return []dataset.GraspRecord{
		mk(0.22, 0.01, 0.1, 1),
		mk(0.24, -0.02, -0.2, 1),
		mk(0.25, 0.00, 0.3, 1),
		mk(0.26, 0.03, -0.1, 1),
		mk(0.27, -0.01, 0.2, 1),
		mk(0.23, 0.02, 0.0, 1),
		mk(0.28, -0.03, -0.3, 1),
		mk(0.61, 0.10, 0.9, 0),
		mk(0.65, -0.12, -0.8, 0),
		mk(0.70, 0.14, 1.0, 0),
	}
}

func TestTrainEmptyDataset(t *testing.T) {
	_, err := Train(nil)
	var insufficient *InsufficientDataError
	test.That(t, errors.As(err, &insufficient), test.ShouldBeTrue)
	test.That(t, insufficient.Records, test.ShouldEqual, 0)
}

func TestTrainSingleClass(t *testing.T) {
	records := tenGrasps()[:7] // successes only
	_, err := Train(records)
	var insufficient *InsufficientDataError
	test.That(t, errors.As(err, &insufficient), test.ShouldBeTrue)
	test.That(t, insufficient.Classes, test.ShouldEqual, 1)
}

func TestSchemaBinning(t *testing.T) {
	rows := [][]float64{{1}, {2}, {3}, {4}, {5}, {6}, {7}, {8}}
	s := buildSchema([]string{"v"}, rows)
	test.That(t, len(s.BinEdges[0]), test.ShouldEqual, 3)
	test.That(t, s.binCount(0), test.ShouldEqual, 4)

	test.That(t, s.binLabel(0, 0.5), test.ShouldEqual, "b0")
	test.That(t, s.binLabel(0, 8.5), test.ShouldEqual, "b3")
	// bin assignment is monotone in the value
	prev := s.binLabel(0, 0)
	for v := 0.5; v <= 9; v += 0.5 {
		cur := s.binLabel(0, v)
		test.That(t, cur >= prev, test.ShouldBeTrue)
		prev = cur
	}
}

func TestTrainEvaluateRoundTrip(t *testing.T) {
	records := tenGrasps()
	model, err := Train(records, WithCombination("two_finger", "cuboid"))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, model.Schema().GripperKind, test.ShouldEqual, "two_finger")

	preds, metrics, err := Evaluate(model, records)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(preds), test.ShouldEqual, 10)
	test.That(t, metrics.Evaluated, test.ShouldEqual, 10)

	// must at least beat the majority-class baseline on separable data
	test.That(t, metrics.Accuracy, test.ShouldBeGreaterThanOrEqualTo, 0.7)
	counted := metrics.TruePositives + metrics.TrueNegatives +
		metrics.FalsePositives + metrics.FalseNegatives
	test.That(t, counted, test.ShouldEqual, 10)

	// prediction records carry the source record untouched
	for i, p := range preds {
		test.That(t, p.GraspRecord, test.ShouldResemble, records[i])
	}
}

func TestModelSaveLoad(t *testing.T) {
	records := tenGrasps()
	model, err := Train(records)
	test.That(t, err, test.ShouldBeNil)

	path := filepath.Join(t.TempDir(), ArtifactName("two_finger", "cuboid"))
	test.That(t, model.Save(path), test.ShouldBeNil)

	loaded, err := LoadModel(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, loaded.Schema().Features, test.ShouldResemble, dataset.FeatureColumns())

	for _, r := range records {
		want, err := model.Predict(r)
		test.That(t, err, test.ShouldBeNil)
		got, err := loaded.Predict(r)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, got, test.ShouldEqual, want)
	}
}

func TestModelSaveLeavesNoPartialArtifacts(t *testing.T) {
	model, err := Train(tenGrasps())
	test.That(t, err, test.ShouldBeNil)

	dir := t.TempDir()
	path := filepath.Join(dir, ArtifactName("two_finger", "cuboid"))
	test.That(t, model.Save(path), test.ShouldBeNil)

	// exactly the artifact and its sidecar; no staging leftovers
	entries, err := os.ReadDir(dir)
	test.That(t, err, test.ShouldBeNil)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	test.That(t, names, test.ShouldResemble, []string{
		filepath.Base(path),
		filepath.Base(path) + schemaSuffix,
	})

	// a model without its sidecar is unreadable, which is why the sidecar
	// lands on disk before the artifact does
	test.That(t, os.Remove(path+schemaSuffix), test.ShouldBeNil)
	_, err = LoadModel(path)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestCheckSchema(t *testing.T) {
	model, err := Train(tenGrasps())
	test.That(t, err, test.ShouldBeNil)

	good := append(dataset.FeatureColumns(), "Initial Z", "Final Z", "Delta Z", "Success")
	test.That(t, model.CheckSchema(good), test.ShouldBeNil)

	var mismatch *SchemaMismatchError
	err = model.CheckSchema([]string{"Position X", "Position Y"})
	test.That(t, errors.As(err, &mismatch), test.ShouldBeTrue)

	swapped := append([]string{}, good...)
	swapped[0], swapped[1] = swapped[1], swapped[0]
	err = model.CheckSchema(swapped)
	test.That(t, errors.As(err, &mismatch), test.ShouldBeTrue)
}

func TestEvaluateFile(t *testing.T) {
	dir := t.TempDir()
	records := tenGrasps()
	dataPath := filepath.Join(dir, dataset.FileName("two_finger", "cuboid"))
	test.That(t, dataset.Append(dataPath, records), test.ShouldBeNil)

	model, err := Train(records)
	test.That(t, err, test.ShouldBeNil)

	// refusing to overwrite the source, even through a differently spelled
	// path to the same file
	_, err = EvaluateFile(model, dataPath, dataPath)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = EvaluateFile(model, dataPath, dir+"/./"+filepath.Base(dataPath))
	test.That(t, err, test.ShouldNotBeNil)

	outPath := filepath.Join(dir, dataset.PredictionFileName("two_finger", "cuboid"))
	metrics, err := EvaluateFile(model, dataPath, outPath)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, metrics.Accuracy, test.ShouldBeGreaterThanOrEqualTo, 0.7)

	preds, err := dataset.LoadPredictions(outPath)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(preds), test.ShouldEqual, 10)
}
