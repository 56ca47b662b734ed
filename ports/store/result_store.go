// Package store defines the persistence port for comparison results.
package store

import (
	"context"

	"gosigtest/domain/core"
	"gosigtest/domain/results"
)

// ResultStore persists comparison, letter display and highlight documents.
type ResultStore interface {
	SaveComparison(ctx context.Context, rec *results.ComparisonRecord) error
	GetComparison(ctx context.Context, id core.ComparisonID) (*results.ComparisonRecord, error)
	// LatestComparison returns the most recently created comparison.
	LatestComparison(ctx context.Context) (*results.ComparisonRecord, error)

	SaveLabeling(ctx context.Context, rec *results.LabelingRecord) error
	ListLabelings(ctx context.Context, id core.ComparisonID) ([]*results.LabelingRecord, error)

	SaveHighlight(ctx context.Context, rec *results.HighlightRecord) error
	ListHighlights(ctx context.Context) ([]*results.HighlightRecord, error)

	Close() error
}
