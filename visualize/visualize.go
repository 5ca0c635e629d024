// Package visualize renders comparison plots from grasp datasets and
// evaluation metrics. Strictly a read-only consumer; nothing here feeds back
// into the pipeline.
package visualize

import (
	"fmt"
	"image/color"
	"path/filepath"
	"strings"

	"github.com/edaniels/golog"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"go.viam.com/graspbench/dataset"
	"go.viam.com/graspbench/ml"
)

var (
	successColor = color.RGBA{R: 0x2c, G: 0x7f, B: 0xb8, A: 0xff}
	failureColor = color.RGBA{R: 0xd9, G: 0x53, B: 0x50, A: 0xff}
)

// SuccessVsDelta plots the success rate across binned height deltas, with the
// configured threshold drawn as a vertical line.
func SuccessVsDelta(records []dataset.GraspRecord, threshold float64, path string) error {
	if len(records) == 0 {
		return errors.New("no records to plot")
	}

	deltas := make([]float64, len(records))
	for i, r := range records {
		deltas[i] = r.DeltaZ
	}
	min, err := stats.Min(deltas)
	if err != nil {
		return err
	}
	max, err := stats.Max(deltas)
	if err != nil {
		return err
	}
	if max == min {
		max = min + 1e-6
	}

	const bins = 10
	width := (max - min) / bins
	total := make([]int, bins)
	succ := make([]int, bins)
	for _, r := range records {
		b := int((r.DeltaZ - min) / width)
		if b >= bins {
			b = bins - 1
		}
		total[b]++
		if r.Success != 0 {
			succ[b]++
		}
	}

	var rate plotter.XYs
	for b := 0; b < bins; b++ {
		if total[b] == 0 {
			continue
		}
		rate = append(rate, plotter.XY{
			X: min + (float64(b)+0.5)*width,
			Y: float64(succ[b]) / float64(total[b]),
		})
	}

	p := plot.New()
	p.Title.Text = "Success rate vs height delta"
	p.X.Label.Text = "Delta Z (m)"
	p.Y.Label.Text = "Success rate"
	p.Y.Min, p.Y.Max = -0.05, 1.05

	line, points, err := plotter.NewLinePoints(rate)
	if err != nil {
		return errors.Wrap(err, "cannot build rate plot")
	}
	line.Color = successColor
	points.Color = successColor
	p.Add(line, points)

	seg := plotter.XYs{{X: threshold, Y: 0}, {X: threshold, Y: 1}}
	cut, err := plotter.NewLine(seg)
	if err != nil {
		return errors.Wrap(err, "cannot build threshold line")
	}
	cut.Color = failureColor
	cut.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	p.Add(cut)
	p.Legend.Add("success rate", line)
	p.Legend.Add("threshold", cut)

	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}

// FeatureHistograms renders one plot per feature column, overlaying the value
// distributions of successful and failed grasps. Returns the written paths.
func FeatureHistograms(records []dataset.GraspRecord, dir string) ([]string, error) {
	if len(records) == 0 {
		return nil, errors.New("no records to plot")
	}

	var paths []string
	for col, name := range dataset.FeatureColumns() {
		var succ, fail plotter.Values
		for _, r := range records {
			v := r.Features()[col]
			if r.Success != 0 {
				succ = append(succ, v)
			} else {
				fail = append(fail, v)
			}
		}

		p := plot.New()
		p.Title.Text = name + " by grasp outcome"
		p.X.Label.Text = name
		p.Y.Label.Text = "Count"

		if len(succ) > 0 {
			h, err := plotter.NewHist(succ, 12)
			if err != nil {
				return nil, errors.Wrapf(err, "cannot build histogram for %s", name)
			}
			h.FillColor = withAlpha(successColor, 0x80)
			p.Add(h)
			p.Legend.Add("success", h)
		}
		if len(fail) > 0 {
			h, err := plotter.NewHist(fail, 12)
			if err != nil {
				return nil, errors.Wrapf(err, "cannot build histogram for %s", name)
			}
			h.FillColor = withAlpha(failureColor, 0x80)
			p.Add(h)
			p.Legend.Add("failure", h)
		}

		path := filepath.Join(dir, fmt.Sprintf("feature_%s.png", slug(name)))
		if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// LogMetrics writes an evaluation summary to the log.
func LogMetrics(logger golog.Logger, metrics ml.Metrics) {
	logger.Infow("evaluation metrics",
		"evaluated", metrics.Evaluated,
		"accuracy", fmt.Sprintf("%.3f", metrics.Accuracy),
		"precision", fmt.Sprintf("%.3f", metrics.Precision),
		"recall", fmt.Sprintf("%.3f", metrics.Recall),
		"tp", metrics.TruePositives,
		"tn", metrics.TrueNegatives,
		"fp", metrics.FalsePositives,
		"fn", metrics.FalseNegatives,
	)
}

func withAlpha(c color.RGBA, a uint8) color.RGBA {
	c.A = a
	return c
}

func slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}
