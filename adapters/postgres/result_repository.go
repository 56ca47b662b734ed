package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"gosigtest/domain/core"
	"gosigtest/domain/results"
	"gosigtest/ports/store"
)

// ResultRepository stores result documents in the sigtest_* tables with
// the structured parts in JSONB columns.
type ResultRepository struct {
	db *sqlx.DB
}

// NewResultRepository creates a new result repository
func NewResultRepository(db *sqlx.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// Connect opens a Postgres connection pool for url.
func Connect(ctx context.Context, url string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

var _ store.ResultStore = (*ResultRepository)(nil)

type comparisonRow struct {
	ID           string         `db:"id"`
	Kind         string         `db:"kind"`
	ScheduleHash sql.NullString `db:"schedule_hash"`
	Iterations   int            `db:"iterations"`
	Matrix       []byte         `db:"matrix"`
	OrigScores   []byte         `db:"orig_scores"`
	Systems      []byte         `db:"systems"`
	CreatedAt    time.Time      `db:"created_at"`
}

func (row comparisonRow) record() (*results.ComparisonRecord, error) {
	rec := &results.ComparisonRecord{
		ID:           core.ComparisonID(row.ID),
		Kind:         core.RecordKind(row.Kind),
		CreatedAt:    core.NewTimestamp(row.CreatedAt.UTC()),
		ScheduleHash: core.ScheduleHash(row.ScheduleHash.String),
		Iterations:   row.Iterations,
	}
	if err := unmarshalAll(
		row.Matrix, &rec.Matrix,
		row.OrigScores, &rec.OrigScores,
		row.Systems, &rec.Systems,
	); err != nil {
		return nil, fmt.Errorf("failed to decode comparison %s: %w", row.ID, err)
	}
	return rec, nil
}

// unmarshalAll decodes (data, target) pairs.
func unmarshalAll(pairs ...any) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if err := json.Unmarshal(pairs[i].([]byte), pairs[i+1]); err != nil {
			return err
		}
	}
	return nil
}

func marshalAll(values ...any) ([][]byte, error) {
	out := make([][]byte, len(values))
	for i, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		out[i] = data
	}
	return out, nil
}

// SaveComparison inserts a comparison record
func (r *ResultRepository) SaveComparison(ctx context.Context, rec *results.ComparisonRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	docs, err := marshalAll(rec.Matrix, rec.OrigScores, rec.Systems)
	if err != nil {
		return fmt.Errorf("failed to marshal comparison: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO sigtest_comparisons (id, kind, schedule_hash, iterations, matrix, orig_scores, systems, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID.String(), string(rec.Kind), rec.ScheduleHash.String(), rec.Iterations,
		docs[0], docs[1], docs[2], rec.CreatedAt.Time(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert comparison: %w", err)
	}
	return nil
}

const selectComparison = `
	SELECT id, kind, schedule_hash, iterations, matrix, orig_scores, systems, created_at
	FROM sigtest_comparisons`

// GetComparison loads one comparison by id
func (r *ResultRepository) GetComparison(ctx context.Context, id core.ComparisonID) (*results.ComparisonRecord, error) {
	var row comparisonRow
	err := r.db.GetContext(ctx, &row, selectComparison+` WHERE id = $1`, id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", core.ErrComparisonNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comparison: %w", err)
	}
	return row.record()
}

// LatestComparison loads the most recently created comparison
func (r *ResultRepository) LatestComparison(ctx context.Context) (*results.ComparisonRecord, error) {
	var row comparisonRow
	err := r.db.GetContext(ctx, &row, selectComparison+` ORDER BY created_at DESC, id DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrComparisonNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest comparison: %w", err)
	}
	return row.record()
}

// SaveLabeling inserts a letter display record
func (r *ResultRepository) SaveLabeling(ctx context.Context, rec *results.LabelingRecord) error {
	docs, err := marshalAll(rec.Letters, rec.OrigScores, rec.Systems)
	if err != nil {
		return fmt.Errorf("failed to marshal labeling: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO sigtest_labelings (id, comparison_id, threshold, letters, orig_scores, systems, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID.String(), rec.ComparisonID.String(), rec.Threshold,
		docs[0], docs[1], docs[2], rec.CreatedAt.Time(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert labeling: %w", err)
	}
	return nil
}

type labelingRow struct {
	ID           string    `db:"id"`
	ComparisonID string    `db:"comparison_id"`
	Threshold    float64   `db:"threshold"`
	Letters      []byte    `db:"letters"`
	OrigScores   []byte    `db:"orig_scores"`
	Systems      []byte    `db:"systems"`
	CreatedAt    time.Time `db:"created_at"`
}

// ListLabelings returns the letter displays of one comparison, oldest first
func (r *ResultRepository) ListLabelings(ctx context.Context, id core.ComparisonID) ([]*results.LabelingRecord, error) {
	var rows []labelingRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, comparison_id, threshold, letters, orig_scores, systems, created_at
		FROM sigtest_labelings
		WHERE comparison_id = $1
		ORDER BY created_at, id`, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list labelings: %w", err)
	}

	out := make([]*results.LabelingRecord, 0, len(rows))
	for _, row := range rows {
		rec := &results.LabelingRecord{
			ID:           core.RecordID(row.ID),
			Kind:         core.RecordLabeling,
			CreatedAt:    core.NewTimestamp(row.CreatedAt.UTC()),
			ComparisonID: core.ComparisonID(row.ComparisonID),
			Threshold:    row.Threshold,
		}
		if err := unmarshalAll(row.Letters, &rec.Letters, row.OrigScores, &rec.OrigScores, row.Systems, &rec.Systems); err != nil {
			return nil, fmt.Errorf("failed to decode labeling %s: %w", row.ID, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// SaveHighlight inserts a near-best record
func (r *ResultRepository) SaveHighlight(ctx context.Context, rec *results.HighlightRecord) error {
	docs, err := marshalAll(rec.Best, rec.Expanded)
	if err != nil {
		return fmt.Errorf("failed to marshal highlight: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO sigtest_highlights (id, comparison_id, threshold, margin, best, expanded, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID.String(), rec.ComparisonID.String(), rec.Threshold, rec.Margin,
		docs[0], docs[1], rec.CreatedAt.Time(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert highlight: %w", err)
	}
	return nil
}

type highlightRow struct {
	ID           string    `db:"id"`
	ComparisonID string    `db:"comparison_id"`
	Threshold    float64   `db:"threshold"`
	Margin       float64   `db:"margin"`
	Best         []byte    `db:"best"`
	Expanded     []byte    `db:"expanded"`
	CreatedAt    time.Time `db:"created_at"`
}

// ListHighlights returns every near-best record, oldest first
func (r *ResultRepository) ListHighlights(ctx context.Context) ([]*results.HighlightRecord, error) {
	var rows []highlightRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, comparison_id, threshold, margin, best, expanded, created_at
		FROM sigtest_highlights
		ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list highlights: %w", err)
	}

	out := make([]*results.HighlightRecord, 0, len(rows))
	for _, row := range rows {
		rec := &results.HighlightRecord{
			ID:           core.RecordID(row.ID),
			Kind:         core.RecordHighlight,
			CreatedAt:    core.NewTimestamp(row.CreatedAt.UTC()),
			ComparisonID: core.ComparisonID(row.ComparisonID),
			Threshold:    row.Threshold,
			Margin:       row.Margin,
		}
		if err := unmarshalAll(row.Best, &rec.Best, row.Expanded, &rec.Expanded); err != nil {
			return nil, fmt.Errorf("failed to decode highlight %s: %w", row.ID, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// Close closes the connection pool.
func (r *ResultRepository) Close() error {
	return r.db.Close()
}
