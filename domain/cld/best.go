package cld

import (
	"fmt"
	"math"
	"slices"

	"gosigtest/domain/core"
	"gosigtest/domain/siggraph"
)

// DefaultMargin is the near-best score margin used when none is given.
const DefaultMargin = 0.01

// NearBest returns the systems whose score is within margin of the maximum
// (score + margin > max, strictly) and that set expanded by the direct
// neighbours of its members in the equivalence graph g. Expansion is a
// single hop; neighbours of neighbours are not added. Both results are
// sorted ascending and best is a subset of expanded.
func NearBest(scores []float64, g *siggraph.Graph, margin float64) (best, expanded []int, err error) {
	if len(scores) == 0 {
		return nil, nil, core.NewSizeError("systems", 0)
	}
	if g.N() != len(scores) {
		return nil, nil, core.NewLengthMismatchError("scores vs graph nodes", g.N(), len(scores))
	}
	// with a strict comparison a zero margin would select nothing
	if math.IsNaN(margin) || margin <= 0 {
		return nil, nil, fmt.Errorf("margin must be positive, got %v", margin)
	}

	top := slices.Max(scores)
	for i, s := range scores {
		if s+margin > top {
			best = append(best, i)
		}
	}

	in := make([]bool, len(scores))
	for _, b := range best {
		in[b] = true
		for _, nb := range g.Neighbors(b) {
			in[nb] = true
		}
	}
	for i, ok := range in {
		if ok {
			expanded = append(expanded, i)
		}
	}
	return best, expanded, nil
}
