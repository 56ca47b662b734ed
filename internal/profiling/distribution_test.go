package profiling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeDistribution_Uniform(t *testing.T) {
	data := make([]float64, 100)
	for i := range data {
		data[i] = float64(100 - i) // descending, must not be mutated
	}

	s, err := SummarizeDistribution(data, DefaultConfidence)
	require.NoError(t, err)
	assert.Equal(t, 100, s.N)
	assert.InDelta(t, 50.5, s.Mean, 1e-9)
	assert.InDelta(t, 50.5, s.Median, 1e-9)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 100.0, s.Max)
	assert.GreaterOrEqual(t, s.CILow, 2.0)
	assert.LessOrEqual(t, s.CILow, 3.0)
	assert.GreaterOrEqual(t, s.CIHigh, 97.0)
	assert.LessOrEqual(t, s.CIHigh, 98.0)
	assert.InDelta(t, 0, s.Skewness, 1e-9)
	assert.True(t, s.IsNormal)
	assert.Zero(t, s.Outliers)
	assert.Equal(t, 100.0, data[0])
}

func TestSummarizeDistribution_Constant(t *testing.T) {
	s, err := SummarizeDistribution([]float64{0.8, 0.8, 0.8, 0.8}, DefaultConfidence)
	require.NoError(t, err)
	assert.Equal(t, 0.0, s.StdDev)
	assert.Equal(t, 0.8, s.CILow)
	assert.Equal(t, 0.8, s.CIHigh)
	assert.Equal(t, 0.0, s.Skewness)
}

func TestSummarizeDistribution_SkewedWithOutlier(t *testing.T) {
	data := []float64{0.50, 0.51, 0.50, 0.52, 0.49, 0.51, 0.50, 0.50, 0.51, 0.95}
	s, err := SummarizeDistribution(data, DefaultConfidence)
	require.NoError(t, err)
	assert.Greater(t, s.Skewness, 1.0)
	assert.Equal(t, 1, s.Outliers)
}

func TestSummarizeDistribution_Errors(t *testing.T) {
	_, err := SummarizeDistribution(nil, DefaultConfidence)
	assert.Error(t, err)
	_, err = SummarizeDistribution([]float64{1}, 1.0)
	assert.Error(t, err)
}
