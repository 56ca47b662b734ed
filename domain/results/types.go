// Package results holds the documents persisted after each analysis step.
package results

import (
	"fmt"

	"gosigtest/domain/core"
	"gosigtest/domain/pairwise"
	"gosigtest/domain/system"
)

// ComparisonRecord is the outcome of comparing n systems: the triangular
// verdict matrix plus the original scores and descriptors in system order.
type ComparisonRecord struct {
	ID           core.ComparisonID   `json:"id"`
	Kind         core.RecordKind     `json:"kind"`
	CreatedAt    core.Timestamp      `json:"created_at"`
	ScheduleHash core.ScheduleHash   `json:"schedule_hash,omitempty"`
	Iterations   int                 `json:"iterations"`
	Matrix       pairwise.Matrix     `json:"matrix"`
	OrigScores   []float64           `json:"orig_scores"`
	Systems      []system.Descriptor `json:"systems"`
}

// NewComparisonRecord stamps a fresh record.
func NewComparisonRecord(m pairwise.Matrix, scores []float64, systems []system.Descriptor) *ComparisonRecord {
	return &ComparisonRecord{
		ID:         core.NewComparisonID(),
		Kind:       core.RecordComparison,
		CreatedAt:  core.Now(),
		Matrix:     m,
		OrigScores: scores,
		Systems:    systems,
	}
}

// Validate checks that matrix, scores and descriptors agree on n.
func (r *ComparisonRecord) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("comparison record has no id")
	}
	if err := r.Matrix.Validate(); err != nil {
		return err
	}
	n := r.Matrix.Systems()
	if len(r.OrigScores) != n {
		return core.NewLengthMismatchError("original scores", n, len(r.OrigScores))
	}
	if len(r.Systems) != n {
		return core.NewLengthMismatchError("system descriptors", n, len(r.Systems))
	}
	return nil
}

// Labels returns the display label of every system.
func (r *ComparisonRecord) Labels() []string {
	out := make([]string, len(r.Systems))
	for i, d := range r.Systems {
		out[i] = d.Label()
	}
	return out
}

// LabelingRecord is a compact letter display computed from a comparison at
// one threshold.
type LabelingRecord struct {
	ID           core.RecordID       `json:"id"`
	Kind         core.RecordKind     `json:"kind"`
	CreatedAt    core.Timestamp      `json:"created_at"`
	ComparisonID core.ComparisonID   `json:"comparison_id"`
	Threshold    float64             `json:"threshold"`
	Letters      [][]string          `json:"letters"`
	OrigScores   []float64           `json:"orig_scores"`
	Systems      []system.Descriptor `json:"systems"`
}

// HighlightRecord is the best and near-best set of one comparison.
type HighlightRecord struct {
	ID           core.RecordID       `json:"id"`
	Kind         core.RecordKind     `json:"kind"`
	CreatedAt    core.Timestamp      `json:"created_at"`
	ComparisonID core.ComparisonID   `json:"comparison_id"`
	Threshold    float64             `json:"threshold"`
	Margin       float64             `json:"margin"`
	Best         []system.Descriptor `json:"best"`
	Expanded     []system.Descriptor `json:"expanded"`
}
