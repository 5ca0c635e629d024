package ml

import (
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sjwhitworth/golearn/evaluation"

	"go.viam.com/graspbench/dataset"
)

// Metrics summarizes a model's performance over a labeled dataset.
type Metrics struct {
	Evaluated      int     `json:"evaluated"`
	Accuracy       float64 `json:"accuracy"`
	Precision      float64 `json:"precision"`
	Recall         float64 `json:"recall"`
	TruePositives  int     `json:"true_positives"`
	TrueNegatives  int     `json:"true_negatives"`
	FalsePositives int     `json:"false_positives"`
	FalseNegatives int     `json:"false_negatives"`
}

// Evaluate applies a trained model to every record, returning derived
// prediction records and aggregate metrics. The input records are never
// modified.
func Evaluate(model *Model, records []dataset.GraspRecord) ([]dataset.PredictionRecord, Metrics, error) {
	var metrics Metrics
	if len(records) == 0 {
		return nil, metrics, errors.New("nothing to evaluate")
	}

	rows := make([][]float64, len(records))
	labels := make([]int, len(records))
	for i, r := range records {
		rows[i] = r.Features()
		labels[i] = r.Success
	}

	ref, err := model.schema.newInstances(rows, labels)
	if err != nil {
		return nil, metrics, err
	}
	res, err := model.forest.Predict(ref)
	if err != nil {
		return nil, metrics, errors.Wrap(err, "prediction failed")
	}
	predicted, err := labelsFrom(res, len(records))
	if err != nil {
		return nil, metrics, err
	}

	preds := make([]dataset.PredictionRecord, len(records))
	for i, r := range records {
		preds[i] = dataset.PredictionRecord{GraspRecord: r, Predicted: predicted[i]}
	}

	cm, err := evaluation.GetConfusionMatrix(ref, res)
	if err != nil {
		return nil, metrics, errors.Wrap(err, "cannot compute confusion matrix")
	}
	metrics = Metrics{
		Evaluated:      len(records),
		Accuracy:       evaluation.GetAccuracy(cm),
		Precision:      evaluation.GetPrecision("1", cm),
		Recall:         evaluation.GetRecall("1", cm),
		TruePositives:  int(evaluation.GetTruePositives("1", cm)),
		TrueNegatives:  int(evaluation.GetTrueNegatives("1", cm)),
		FalsePositives: int(evaluation.GetFalsePositives("1", cm)),
		FalseNegatives: int(evaluation.GetFalseNegatives("1", cm)),
	}
	return preds, metrics, nil
}

// EvaluateFile is the file-level evaluate operation: it validates the
// dataset's columns against the model schema, predicts every record, writes
// the augmented table to outPath, and returns the metrics. The source file is
// never touched; outPath must be distinct.
func EvaluateFile(model *Model, dataPath, outPath string) (Metrics, error) {
	var metrics Metrics
	if samePath(dataPath, outPath) {
		return metrics, errors.New("prediction output path must differ from the source dataset")
	}

	columns, err := dataset.Columns(dataPath)
	if err != nil {
		return metrics, err
	}
	if err := model.CheckSchema(columns); err != nil {
		return metrics, err
	}

	records, err := dataset.Load(dataPath)
	if err != nil {
		return metrics, err
	}
	preds, metrics, err := Evaluate(model, records)
	if err != nil {
		return metrics, err
	}
	if err := dataset.WritePredictions(outPath, preds); err != nil {
		return metrics, err
	}
	return metrics, nil
}

// samePath reports whether two paths name the same file once cleaned and made
// absolute, so "./data/x.csv" does not slip past a check against "data/x.csv".
func samePath(a, b string) bool {
	absA, err := filepath.Abs(a)
	if err != nil {
		return a == b
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return a == b
	}
	return absA == absB
}
