// Package cli implements the graspbench command line interface.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"
)

var app = &cli.App{
	Name:            "graspbench",
	Usage:           "simulated grasp experiments, dataset building, and grasp classifiers",
	HideHelpCommand: true,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "data-dir",
			Value: "data",
			Usage: "directory for datasets, models, and plots",
		},
		&cli.BoolFlag{
			Name:    "debug",
			Aliases: []string{"vvv"},
			Usage:   "enable debug logging",
		},
	},
	Commands: []*cli.Command{
		{
			Name:            "generate",
			Usage:           "run simulated grasp trials and append them to a dataset",
			HideHelpCommand: true,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "gripper",
					Aliases: []string{"g"},
					Usage:   "gripper kind (see combos)",
				},
				&cli.StringFlag{
					Name:    "object",
					Aliases: []string{"o"},
					Usage:   "object kind (see combos)",
				},
				&cli.BoolFlag{
					Name:  "all",
					Usage: "run every registered gripper/object combination",
				},
				&cli.IntFlag{
					Name:    "grasps",
					Aliases: []string{"n"},
					Value:   500,
					Usage:   "number of trials per combination",
				},
				&cli.Int64Flag{
					Name:  "seed",
					Usage: "random seed; 0 picks a time-based seed",
				},
				&cli.Float64Flag{
					Name:  "slip-rate",
					Value: 0.3,
					Usage: "probability that an in-reach grasp still slips",
				},
				&cli.Float64Flag{
					Name:  "attach-radius",
					Value: 0.45,
					Usage: "maximum hand-to-object distance for a grasp to hold",
				},
				&cli.Float64Flag{
					Name:  "threshold",
					Value: 0.1,
					Usage: "minimum height gain counted as success",
				},
			},
			Action: GenerateAction,
		},
		{
			Name:            "train",
			Usage:           "train a grasp success classifier from a dataset",
			HideHelpCommand: true,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "gripper",
					Aliases: []string{"g"},
					Usage:   "gripper kind the dataset was generated with",
				},
				&cli.StringFlag{
					Name:    "object",
					Aliases: []string{"o"},
					Usage:   "object kind the dataset was generated with",
				},
				&cli.StringFlag{
					Name:  "data",
					Usage: "dataset path; defaults to the combination's file under data-dir",
				},
				&cli.StringFlag{
					Name:  "out",
					Usage: "model output path; defaults to the combination's artifact under data-dir",
				},
				&cli.IntFlag{
					Name:  "trees",
					Value: 100,
					Usage: "forest size",
				},
			},
			Action: TrainAction,
		},
		{
			Name:            "evaluate",
			Usage:           "score a dataset with a trained model and write predictions",
			HideHelpCommand: true,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "gripper",
					Aliases: []string{"g"},
					Usage:   "gripper kind, used to locate default paths",
				},
				&cli.StringFlag{
					Name:    "object",
					Aliases: []string{"o"},
					Usage:   "object kind, used to locate default paths",
				},
				&cli.StringFlag{
					Name:  "model",
					Usage: "model path; defaults to the combination's artifact under data-dir",
				},
				&cli.StringFlag{
					Name:  "data",
					Usage: "dataset path; defaults to the combination's file under data-dir",
				},
				&cli.StringFlag{
					Name:  "out",
					Usage: "predictions output path; defaults next to the dataset",
				},
			},
			Action: EvaluateAction,
		},
		{
			Name:            "visualize",
			Usage:           "render dataset plots",
			HideHelpCommand: true,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "gripper",
					Aliases: []string{"g"},
					Usage:   "gripper kind, used to locate the default dataset",
				},
				&cli.StringFlag{
					Name:    "object",
					Aliases: []string{"o"},
					Usage:   "object kind, used to locate the default dataset",
				},
				&cli.StringFlag{
					Name:  "data",
					Usage: "dataset path; defaults to the combination's file under data-dir",
				},
				&cli.StringFlag{
					Name:  "out-dir",
					Usage: "plot output directory; defaults to data-dir",
				},
				&cli.Float64Flag{
					Name:  "threshold",
					Value: 0.1,
					Usage: "threshold line drawn on the success rate plot",
				},
			},
			Action: VisualizeAction,
		},
		{
			Name:   "combos",
			Usage:  "list registered gripper and object kinds",
			Action: CombosAction,
		},
	},
}

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	app.Writer = out
	app.ErrWriter = errOut
	return app
}
