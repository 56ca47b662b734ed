package app

import (
	"context"

	"gosigtest/domain/cld"
	"gosigtest/domain/core"
	"gosigtest/domain/results"
	"gosigtest/domain/siggraph"
	"gosigtest/internal/errors"
)

// SweepPoint summarizes a comparison at one significance threshold.
type SweepPoint struct {
	Threshold   float64 `json:"threshold"`
	Significant int     `json:"significant"`
	HasseEdges  int     `json:"hasse_edges"`
	Letters     int     `json:"letters"`
	Acyclic     bool    `json:"acyclic"`
}

// SweepThresholds evaluates a stored comparison at each threshold.
func (s *SignificanceService) SweepThresholds(ctx context.Context, id core.ComparisonID, thresholds []float64) ([]SweepPoint, error) {
	rec, err := s.Comparison(ctx, id)
	if err != nil {
		return nil, err
	}
	return SweepComparison(rec, thresholds)
}

// SweepComparison is SweepThresholds for a comparison already in hand.
func SweepComparison(rec *results.ComparisonRecord, thresholds []float64) ([]SweepPoint, error) {
	points := make([]SweepPoint, 0, len(thresholds))
	for _, t := range thresholds {
		dg, err := siggraph.BuildDigraph(rec.Matrix, t)
		if err != nil {
			return nil, errors.WithCode(errors.CodeInvalidInput, err)
		}
		eq, err := siggraph.BuildEquivalenceGraph(rec.Matrix, t)
		if err != nil {
			return nil, errors.WithCode(errors.CodeInvalidInput, err)
		}
		red := siggraph.TransitiveReduce(dg)
		points = append(points, SweepPoint{
			Threshold:   t,
			Significant: dg.EdgeCount(),
			HasseEdges:  red.Graph.EdgeCount(),
			Letters:     len(cld.Build(eq).Cliques),
			Acyclic:     red.Acyclic(),
		})
	}
	return points, nil
}
