// Package profiling summarizes resampled score distributions.
package profiling

import (
	"fmt"
	"math"
	"slices"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultConfidence is the coverage of the percentile interval.
const DefaultConfidence = 0.95

// Summary describes one bootstrap score distribution.
type Summary struct {
	N        int     `json:"n"`
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Median   float64 `json:"median"`
	Q25      float64 `json:"q25"`
	Q75      float64 `json:"q75"`
	Skewness float64 `json:"skewness"`
	Outliers int     `json:"outliers"`

	// Percentile interval at Confidence coverage.
	Confidence float64 `json:"confidence"`
	CILow      float64 `json:"ci_low"`
	CIHigh     float64 `json:"ci_high"`

	// Rough normality check from skewness; informational only.
	IsNormal bool    `json:"is_normal"`
	NormalP  float64 `json:"normal_p"`
}

// SummarizeDistribution computes summary statistics and a percentile
// interval for a resampled distribution. The input is not modified.
func SummarizeDistribution(data []float64, confidence float64) (Summary, error) {
	out := Summary{N: len(data), Confidence: confidence}
	if len(data) == 0 {
		return out, fmt.Errorf("cannot summarize an empty distribution")
	}
	if confidence <= 0 || confidence >= 1 {
		return out, fmt.Errorf("confidence must lie in (0, 1), got %v", confidence)
	}

	var err error
	if out.Mean, err = stats.Mean(data); err != nil {
		return out, err
	}
	if out.StdDev, err = stats.StandardDeviation(data); err != nil {
		return out, err
	}
	if out.Min, err = stats.Min(data); err != nil {
		return out, err
	}
	if out.Max, err = stats.Max(data); err != nil {
		return out, err
	}
	if out.Median, err = stats.Median(data); err != nil {
		return out, err
	}

	// quantiles come from the empirical CDF so short distributions work too
	sorted := slices.Clone(data)
	slices.Sort(sorted)
	out.Q25 = stat.Quantile(0.25, stat.Empirical, sorted, nil)
	out.Q75 = stat.Quantile(0.75, stat.Empirical, sorted, nil)
	alpha := (1 - confidence) / 2
	out.CILow = stat.Quantile(alpha, stat.Empirical, sorted, nil)
	out.CIHigh = stat.Quantile(1-alpha, stat.Empirical, sorted, nil)

	out.Skewness = calculateSkewness(data, out.Mean, out.StdDev)
	out.Outliers = detectOutliers(data, out.Q25, out.Q75)
	out.IsNormal, out.NormalP = testSymmetry(len(data), out.Skewness)
	return out, nil
}

// calculateSkewness computes sample skewness using the adjusted Fisher-Pearson coefficient
func calculateSkewness(data []float64, mean, stdDev float64) float64 {
	if len(data) < 3 || stdDev == 0 {
		return 0
	}

	n := float64(len(data))
	sumCubedDeviations := 0.0
	for _, x := range data {
		deviation := (x - mean) / stdDev
		sumCubedDeviations += deviation * deviation * deviation
	}

	skewness := sumCubedDeviations / n
	return skewness * math.Sqrt(n*(n-1)) / (n-2)
}

// testSymmetry compares skewness against its standard error under
// normality; the squared z score is approximately chi-squared with one
// degree of freedom.
func testSymmetry(n int, skewness float64) (bool, float64) {
	if n < 3 {
		return false, 1.0
	}
	fn := float64(n)
	se := math.Sqrt(6 * fn * (fn - 1) / ((fn - 2) * (fn + 1) * (fn + 3)))
	z := skewness / se
	p := 1 - distuv.ChiSquared{K: 1}.CDF(z*z)
	return p > 0.05, p
}

// detectOutliers identifies outliers using IQR method
func detectOutliers(data []float64, q25, q75 float64) int {
	iqr := q75 - q25
	lowerBound := q25 - 1.5*iqr
	upperBound := q75 + 1.5*iqr

	outlierCount := 0
	for _, x := range data {
		if x < lowerBound || x > upperBound {
			outlierCount++
		}
	}
	return outlierCount
}
