package pairwise_test

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"gosigtest/domain/bootstrap"
	"gosigtest/domain/core"
	"gosigtest/domain/pairwise"
	"gosigtest/internal/testkit"
)

// TestCompare_IdentityResample covers a single identity resample where both
// systems reproduce their original scores.
func TestCompare_IdentityResample(t *testing.T) {
	v, err := pairwise.Compare(0.80, 0.90, []float64{0.80}, []float64{0.90})
	require.NoError(t, err)
	assert.True(t, v.BBigger)
	assert.Equal(t, 0.0, v.PValue)
	assert.True(t, v.Significant(0.05))
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name        string
		origA       float64
		origB       float64
		distA       []float64
		distB       []float64
		wantBBigger bool
		wantP       float64
	}{
		{
			name:  "a bigger orients differences towards a",
			origA: 0.9, origB: 0.8,
			distA: []float64{0.9, 1.2}, distB: []float64{0.8, 0.8},
			wantBBigger: false, wantP: 0.5,
		},
		{
			name:  "equal originals keep b bigger",
			origA: 0.5, origB: 0.5,
			distA: []float64{0.5, 0.4}, distB: []float64{0.5, 0.6},
			wantBBigger: true, wantP: 0.5,
		},
		{
			name:  "every resample exceeds twice the gap",
			origA: 0.1, origB: 0.2,
			distA: []float64{0.0, 0.0, 0.0}, distB: []float64{0.5, 0.5, 0.5},
			wantBBigger: true, wantP: 1.0,
		},
		{
			name:  "strict comparison at exactly twice the gap",
			origA: 0.0, origB: 0.25,
			distA: []float64{0.0, 0.0}, distB: []float64{0.5, 0.75},
			wantBBigger: true, wantP: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := pairwise.Compare(tt.origA, tt.origB, tt.distA, tt.distB)
			require.NoError(t, err)
			assert.Equal(t, tt.wantBBigger, v.BBigger)
			assert.InDelta(t, tt.wantP, v.PValue, 1e-12)
		})
	}
}

func TestCompare_ContractViolations(t *testing.T) {
	_, err := pairwise.Compare(0, 1, nil, nil)
	assert.ErrorIs(t, err, core.ErrEmptyDistribution)

	_, err = pairwise.Compare(0, 1, []float64{1, 2}, []float64{1})
	assert.ErrorIs(t, err, core.ErrLengthMismatch)
}

func randomTraces(r *rand.Rand, n, iterations int) []bootstrap.ScoreTrace {
	traces := make([]bootstrap.ScoreTrace, n)
	for i := range traces {
		dist := make([]float64, iterations)
		for k := range dist {
			dist[k] = r.Float64()
		}
		traces[i] = bootstrap.ScoreTrace{Original: r.Float64(), Resampled: dist}
	}
	return traces
}

func TestMatrixBuilder_Shape(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 12).Draw(rt, "n")
		iterations := rapid.IntRange(1, 30).Draw(rt, "iterations")
		seed := rapid.Int64().Draw(rt, "seed")

		traces := randomTraces(rand.New(rand.NewSource(seed)), n, iterations)
		m, err := pairwise.NewMatrixBuilder().Build(context.Background(), traces)
		require.NoError(rt, err)

		require.Equal(rt, n, m.Systems())
		require.Equal(rt, n*(n-1)/2, m.Pairs())
		require.NoError(rt, m.Validate())

		m.Each(func(i, j int, v pairwise.Verdict) {
			if i >= j {
				rt.Fatalf("self or reversed pair (%d, %d)", i, j)
			}
			if v.PValue < 0 || v.PValue > 1 {
				rt.Fatalf("p-value %v out of range", v.PValue)
			}
			want, err := pairwise.Compare(traces[i].Original, traces[j].Original, traces[i].Resampled, traces[j].Resampled)
			require.NoError(rt, err)
			got, ok := m.At(i, j)
			require.True(rt, ok)
			require.Equal(rt, want, got)
		})
	})
}

func TestMatrixBuilder_ParallelMatchesSequential(t *testing.T) {
	traces := randomTraces(rand.New(rand.NewSource(7)), 15, 200)
	ctx := context.Background()

	seq, err := pairwise.NewMatrixBuilder().Build(ctx, traces)
	require.NoError(t, err)

	for _, workers := range []int{2, 4, 0} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			par, err := pairwise.NewMatrixBuilder(pairwise.WithWorkers(workers)).Build(ctx, traces)
			require.NoError(t, err)
			assert.Equal(t, seq, par)
		})
	}
}

func TestMatrixBuilder_ReportsProgress(t *testing.T) {
	traces := testkit.ConstantTraces([]float64{0.1, 0.2, 0.3, 0.4, 0.5}, 3)

	var calls, lastDone, lastTotal int
	b := pairwise.NewMatrixBuilder(
		pairwise.WithWorkers(3),
		pairwise.WithProgress(func(done, total int) {
			calls++
			lastDone, lastTotal = done, total
		}),
	)
	_, err := b.Build(context.Background(), traces)
	require.NoError(t, err)

	assert.Equal(t, 10, calls)
	assert.Equal(t, 10, lastDone)
	assert.Equal(t, 10, lastTotal)
}

func TestMatrixBuilder_RejectsMismatchedTraces(t *testing.T) {
	traces := []bootstrap.ScoreTrace{
		{Original: 0.5, Resampled: []float64{0.5, 0.5}},
		{Original: 0.6, Resampled: []float64{0.6}},
	}
	_, err := pairwise.NewMatrixBuilder().Build(context.Background(), traces)
	assert.ErrorIs(t, err, core.ErrLengthMismatch)

	traces[1].Resampled = nil
	_, err = pairwise.NewMatrixBuilder().Build(context.Background(), traces)
	assert.ErrorIs(t, err, core.ErrEmptyDistribution)
}

func TestMatrixBuilder_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	traces := testkit.ConstantTraces([]float64{0.1, 0.2, 0.3}, 2)

	_, err := pairwise.NewMatrixBuilder().Build(ctx, traces)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = pairwise.NewMatrixBuilder(pairwise.WithWorkers(2)).Build(ctx, traces)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMatrix_AtAndValidate(t *testing.T) {
	m := testkit.MatrixFromPValues([]float64{0.7, 0.9, 0.8}, [][]float64{{0.2, 0.01}, {0.3}, {}})

	v, ok := m.At(0, 2)
	require.True(t, ok)
	assert.Equal(t, 0.01, v.PValue)
	assert.True(t, v.BBigger)

	v, ok = m.At(1, 2)
	require.True(t, ok)
	assert.False(t, v.BBigger)

	_, ok = m.At(2, 1)
	assert.False(t, ok)
	_, ok = m.At(0, 3)
	assert.False(t, ok)

	assert.NoError(t, m.Validate())

	bad := pairwise.Matrix{{{PValue: 1.5}}, {}}
	assert.ErrorIs(t, bad.Validate(), core.ErrInvalidMatrix)
	ragged := pairwise.Matrix{{}, {}}
	assert.ErrorIs(t, ragged.Validate(), core.ErrInvalidMatrix)
}
