// Package pairwise implements the paired bootstrap shift test and the
// all-pairs comparison matrix built from it.
package pairwise

import (
	"gosigtest/domain/core"
)

// Verdict is the outcome of testing one unordered pair {a, b}.
type Verdict struct {
	// BBigger is true when b's original score is at least a's.
	BBigger bool    `json:"b_bigger"`
	PValue  float64 `json:"p_value"`
}

// Significant reports whether the difference is significant at threshold.
func (v Verdict) Significant(threshold float64) bool {
	return v.PValue <= threshold
}

// Compare runs the paired-resampling shift test for systems a and b.
//
// The observed difference d = |origB - origA| is compared against the
// resampled differences oriented the same way; the p-value is the share of
// iterations whose resampled difference exceeds 2d. distA and distB must
// come from the same schedule and have equal, non-zero length.
func Compare(origA, origB float64, distA, distB []float64) (Verdict, error) {
	if len(distA) == 0 || len(distB) == 0 {
		return Verdict{}, core.ErrEmptyDistribution
	}
	if len(distA) != len(distB) {
		return Verdict{}, core.NewLengthMismatchError("resampled distributions", len(distA), len(distB))
	}

	sampleDiff := origB - origA
	bBigger := true
	if sampleDiff < 0 {
		sampleDiff = -sampleDiff
		bBigger = false
	}

	count := 0
	for k := range distA {
		var resampledDiff float64
		if bBigger {
			resampledDiff = distB[k] - distA[k]
		} else {
			resampledDiff = distA[k] - distB[k]
		}
		if resampledDiff > 2*sampleDiff {
			count++
		}
	}
	return Verdict{
		BBigger: bBigger,
		PValue:  float64(count) / float64(len(distA)),
	}, nil
}
