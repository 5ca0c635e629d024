package grasp

import (
	"context"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"go.viam.com/graspbench/dataset"
)

// Summary describes one dataset generation run.
type Summary struct {
	Requested int
	Collected int
	Skipped   int
	Successes int
	Failures  int
}

// Builder drives N trials for one (gripper, object) pair and persists the
// resulting records as one table, in trial-execution order.
type Builder struct {
	runner *Runner
	path   string
	logger golog.Logger
}

// NewBuilder returns a builder that appends to the dataset file at path.
func NewBuilder(runner *Runner, path string, logger golog.Logger) *Builder {
	return &Builder{runner: runner, path: path, logger: logger}
}

// Run executes n trials sequentially. Trials that fail with a SimulationError
// are logged and skipped; both successful and failed grasps are kept as
// labeled data. Records are persisted in one append once all trials are done,
// so an aborted run leaves the file as it was.
func (b *Builder) Run(ctx context.Context, n int) (Summary, error) {
	summary := Summary{Requested: n}
	records := make([]dataset.GraspRecord, 0, n)

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		rec, err := b.runner.RunTrial(ctx)
		if err != nil {
			var simErr *SimulationError
			if errors.As(err, &simErr) {
				summary.Skipped++
				b.logger.Warnw("skipping failed trial", "trial", i, "error", err)
				continue
			}
			return summary, err
		}
		records = append(records, rec)
		if rec.Success != 0 {
			summary.Successes++
		} else {
			summary.Failures++
		}
	}
	summary.Collected = len(records)

	if err := dataset.Append(b.path, records); err != nil {
		return summary, err
	}
	b.logger.Infow("dataset generation finished",
		"path", b.path,
		"requested", summary.Requested,
		"collected", summary.Collected,
		"skipped", summary.Skipped,
		"successes", summary.Successes,
	)
	return summary, nil
}
