package app_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gosigtest/app"
	"gosigtest/domain/results"
	"gosigtest/domain/system"
	"gosigtest/internal/errors"
	"gosigtest/internal/testkit"
)

func experiment(f *fixture, iterations int) app.Experiment {
	seed := int64(11)
	exp := app.Experiment{Gold: f.corpus.Gold, Iterations: iterations, Seed: &seed}
	for i, d := range f.systems {
		exp.Systems = append(exp.Systems, app.SystemRun{System: d, Guess: f.corpus.Guesses[i]})
	}
	return exp
}

func TestStageRunnerRun(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := app.NewStageRunner(f.svc, 3).Run(ctx, experiment(f, 20))
	require.NoError(t, err)
	require.Len(t, res.Traces, 3)
	for i, tr := range res.Traces {
		assert.Equal(t, f.systems[i], tr.System)
		assert.Equal(t, res.Traces[0].ScheduleHash, tr.ScheduleHash)
	}
	assert.Equal(t, 3, res.Comparison.Matrix.Systems())

	latest, err := f.store.LatestComparison(ctx)
	require.NoError(t, err)
	assert.Equal(t, res.Comparison.ID, latest.ID)
}

func TestStageRunnerMatchesSequential(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	par, err := app.NewStageRunner(f.svc, 3).Run(ctx, experiment(f, 15))
	require.NoError(t, err)
	seq, err := app.NewStageRunner(f.svc, 0).Run(ctx, experiment(f, 15))
	require.NoError(t, err)
	assert.Equal(t, par.Comparison.Matrix, seq.Comparison.Matrix)
	assert.Equal(t, par.Comparison.OrigScores, seq.Comparison.OrigScores)
}

func TestStageRunnerFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := app.NewStageRunner(f.svc, 2).Run(ctx, app.Experiment{Gold: f.corpus.Gold, Iterations: 5})
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	failing := &testkit.FailingScorer{Inner: testkit.NewKeyAccuracyScorer(), After: 4}
	svc := app.NewSignificanceService(testkit.NewTestKit().RNGAdapter(), failing, f.store)
	_, err = app.NewStageRunner(svc, 2).Run(ctx, experiment(f, 5))
	require.Error(t, err)
	assert.Equal(t, errors.CodeScorerError, errors.GetCode(err))
}

func TestSweepComparison(t *testing.T) {
	scores := []float64{0.70, 0.80, 0.90}
	rec := results.NewComparisonRecord(
		testkit.MatrixFromPValues(scores, [][]float64{{0.02, 0.001}, {0.2}, {}}),
		scores,
		[]system.Descriptor{{Nick: "a"}, {Nick: "b"}, {Nick: "c"}},
	)

	points, err := app.SweepComparison(rec, []float64{0, 0.01, 0.05, 0.5})
	require.NoError(t, err)
	require.Len(t, points, 4)

	assert.Equal(t, 0, points[0].Significant)
	assert.Equal(t, 1, points[0].Letters)

	assert.Equal(t, 1, points[1].Significant)
	assert.Equal(t, 2, points[1].Letters)

	assert.Equal(t, 2, points[2].Significant)
	assert.Equal(t, 2, points[2].HasseEdges)
	assert.Equal(t, 2, points[2].Letters)

	assert.Equal(t, 3, points[3].Significant)
	assert.Equal(t, 2, points[3].HasseEdges)
	assert.Equal(t, 3, points[3].Letters)
	assert.True(t, points[3].Acyclic)

	_, err = app.SweepComparison(rec, []float64{-1})
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}
