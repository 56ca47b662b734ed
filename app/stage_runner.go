package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"gosigtest/adapters/tracefile"
	"gosigtest/domain/results"
	"gosigtest/domain/system"
	"gosigtest/internal/errors"
)

// SystemRun names one system output file to resample.
type SystemRun struct {
	System system.Descriptor
	Guess  string
}

// Experiment is a full comparison: every system is scored against the same
// gold file under one shared schedule.
type Experiment struct {
	Gold       string
	Systems    []SystemRun
	Iterations int
	Seed       *int64
}

// ExperimentResult holds the traces and the stored comparison of a run.
type ExperimentResult struct {
	Traces     []*tracefile.Record
	Comparison *results.ComparisonRecord
}

// StageRunner executes the schedule, resample and compare stages of an
// experiment, resampling up to parallel systems at once.
type StageRunner struct {
	svc      *SignificanceService
	parallel int
}

// NewStageRunner creates a stage runner. parallel < 1 means one at a time.
func NewStageRunner(svc *SignificanceService, parallel int) *StageRunner {
	if parallel < 1 {
		parallel = 1
	}
	return &StageRunner{svc: svc, parallel: parallel}
}

// Run executes the experiment. The first failing system cancels the others.
func (r *StageRunner) Run(ctx context.Context, exp Experiment) (*ExperimentResult, error) {
	if len(exp.Systems) == 0 {
		return nil, errors.InvalidInput("experiment has no systems")
	}
	sched, err := r.svc.CreateSchedule(ctx, exp.Gold, exp.Iterations, exp.Seed)
	if err != nil {
		return nil, err
	}

	traces := make([]*tracefile.Record, len(exp.Systems))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallel)
	for i, run := range exp.Systems {
		g.Go(func() error {
			rec, err := r.svc.ResampleSystem(gctx, run.System, exp.Gold, run.Guess, sched)
			if err != nil {
				return err
			}
			traces[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	cmp, err := r.svc.CompareTraces(ctx, traces)
	if err != nil {
		return nil, fmt.Errorf("compare stage: %w", err)
	}
	return &ExperimentResult{Traces: traces, Comparison: cmp}, nil
}
