package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"go.viam.com/graspbench/dataset"
	"go.viam.com/graspbench/grasp"
	"go.viam.com/graspbench/gripper"
	"go.viam.com/graspbench/ml"
	"go.viam.com/graspbench/object"
	"go.viam.com/graspbench/sim/fake"
	"go.viam.com/graspbench/visualize"
)

func newLogger(c *cli.Context) golog.Logger {
	if c.Bool("debug") {
		return golog.NewDebugLogger("graspbench")
	}
	return golog.NewLogger("graspbench")
}

// combo resolves the gripper/object pair named on the command line into
// canonical kinds.
func combo(c *cli.Context) (string, string, error) {
	gripperKind := c.String("gripper")
	objectKind := c.String("object")
	if gripperKind == "" || objectKind == "" {
		return "", "", errors.New("both --gripper and --object are required")
	}
	return gripper.CanonicalKind(gripperKind), objectKind, nil
}

func dataPathFor(c *cli.Context, gripperKind, objectKind string) string {
	if path := c.String("data"); path != "" {
		return path
	}
	return filepath.Join(c.String("data-dir"), dataset.FileName(gripperKind, objectKind))
}

// GenerateAction runs simulated grasp trials for one combination, or for all
// of them with --all, appending the outcomes to per-combination datasets.
func GenerateAction(c *cli.Context) error {
	logger := newLogger(c)

	var combos [][2]string
	if c.Bool("all") {
		for _, g := range gripper.RegisteredKinds() {
			for _, o := range object.RegisteredKinds() {
				combos = append(combos, [2]string{g, o})
			}
		}
	} else {
		gripperKind, objectKind, err := combo(c)
		if err != nil {
			return err
		}
		combos = append(combos, [2]string{gripperKind, objectKind})
	}

	dataDir := c.String("data-dir")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	for _, pair := range combos {
		if err := generateOne(c, pair[0], pair[1], dataDir, logger); err != nil {
			return errors.Wrapf(err, "combination %s/%s", pair[0], pair[1])
		}
	}
	return nil
}

func generateOne(c *cli.Context, gripperKind, objectKind, dataDir string, logger golog.Logger) error {
	engine := fake.NewEngine(fake.Config{
		AttachRadius: c.Float64("attach-radius"),
		SlipRate:     c.Float64("slip-rate"),
		Seed:         c.Int64("seed"),
	}, logger)

	grip, err := gripper.New(c.Context, engine, gripperKind, logger)
	if err != nil {
		return err
	}
	obj, err := object.New(c.Context, engine, objectKind, logger)
	if err != nil {
		return err
	}

	params := grasp.DefaultParams()
	threshold := c.Float64("threshold")
	params.SuccessThreshold = &threshold
	params.Seed = c.Int64("seed")
	runner, err := grasp.NewRunner(engine, grip, obj, params, logger)
	if err != nil {
		return err
	}

	path := filepath.Join(dataDir, dataset.FileName(grip.Kind(), obj.Kind()))
	builder := grasp.NewBuilder(runner, path, logger)
	_, err = builder.Run(c.Context, c.Int("grasps"))
	return err
}

// TrainAction fits a grasp success classifier on a dataset and saves the
// model artifact.
func TrainAction(c *cli.Context) error {
	logger := newLogger(c)
	gripperKind, objectKind, err := combo(c)
	if err != nil {
		return err
	}

	dataPath := dataPathFor(c, gripperKind, objectKind)
	records, err := dataset.Load(dataPath)
	if err != nil {
		return err
	}

	model, err := ml.Train(records,
		ml.WithTrees(c.Int("trees")),
		ml.WithCombination(gripperKind, objectKind),
	)
	if err != nil {
		return err
	}

	outPath := c.String("out")
	if outPath == "" {
		outPath = filepath.Join(c.String("data-dir"), ml.ArtifactName(gripperKind, objectKind))
	}
	if err := model.Save(outPath); err != nil {
		return err
	}
	successes, failures := dataset.LabelCounts(records)
	logger.Infow("model trained",
		"records", len(records),
		"successes", successes,
		"failures", failures,
		"model", outPath,
	)
	return nil
}

// EvaluateAction scores a dataset with a trained model, writes a predictions
// file, and logs the metrics.
func EvaluateAction(c *cli.Context) error {
	logger := newLogger(c)
	gripperKind, objectKind, err := combo(c)
	if err != nil {
		return err
	}

	modelPath := c.String("model")
	if modelPath == "" {
		modelPath = filepath.Join(c.String("data-dir"), ml.ArtifactName(gripperKind, objectKind))
	}
	model, err := ml.LoadModel(modelPath)
	if err != nil {
		return err
	}

	dataPath := dataPathFor(c, gripperKind, objectKind)
	outPath := c.String("out")
	if outPath == "" {
		outPath = filepath.Join(filepath.Dir(dataPath), dataset.PredictionFileName(gripperKind, objectKind))
	}

	metrics, err := ml.EvaluateFile(model, dataPath, outPath)
	if err != nil {
		return err
	}
	visualize.LogMetrics(logger, metrics)
	logger.Infow("predictions written", "path", outPath)
	return nil
}

// VisualizeAction renders the success rate and feature distribution plots for
// a dataset.
func VisualizeAction(c *cli.Context) error {
	logger := newLogger(c)
	gripperKind, objectKind, err := combo(c)
	if err != nil {
		return err
	}

	records, err := dataset.Load(dataPathFor(c, gripperKind, objectKind))
	if err != nil {
		return err
	}

	outDir := c.String("out-dir")
	if outDir == "" {
		outDir = c.String("data-dir")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	ratePath := filepath.Join(outDir, fmt.Sprintf("success_rate_%s_%s.png", gripperKind, objectKind))
	if err := visualize.SuccessVsDelta(records, c.Float64("threshold"), ratePath); err != nil {
		return err
	}
	histPaths, err := visualize.FeatureHistograms(records, outDir)
	if err != nil {
		return err
	}
	logger.Infow("plots written", "rate", ratePath, "histograms", len(histPaths))
	return nil
}

// CombosAction lists the registered gripper and object kinds.
func CombosAction(c *cli.Context) error {
	fmt.Fprintln(c.App.Writer, "grippers:")
	for _, k := range gripper.RegisteredKinds() {
		fmt.Fprintf(c.App.Writer, "\t%s\n", k)
	}
	fmt.Fprintln(c.App.Writer, "objects:")
	for _, k := range object.RegisteredKinds() {
		fmt.Fprintf(c.App.Writer, "\t%s\n", k)
	}
	return nil
}
