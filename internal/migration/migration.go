package migration

import (
	"context"

	"gosigtest/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Statements returns the DDL in execution order.
func (r *MigrationRunner) Statements() []string {
	return []string{createComparisons, createLabelings, createHighlights, createIndexes}
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	names := []string{"sigtest_comparisons table", "sigtest_labelings table", "sigtest_highlights table", "indexes"}
	for i, stmt := range r.Statements() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrapf(err, "failed to create %s", names[i])
		}
	}
	return nil
}

const createComparisons = `
	CREATE TABLE IF NOT EXISTS sigtest_comparisons (
		id TEXT PRIMARY KEY,
		kind VARCHAR(32) NOT NULL DEFAULT 'compared',
		schedule_hash TEXT,
		iterations INTEGER NOT NULL DEFAULT 0,
		matrix JSONB NOT NULL,
		orig_scores JSONB NOT NULL,
		systems JSONB NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`

const createLabelings = `
	CREATE TABLE IF NOT EXISTS sigtest_labelings (
		id TEXT PRIMARY KEY,
		comparison_id TEXT NOT NULL REFERENCES sigtest_comparisons(id) ON DELETE CASCADE,
		threshold DOUBLE PRECISION NOT NULL,
		letters JSONB NOT NULL,
		orig_scores JSONB NOT NULL,
		systems JSONB NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`

const createHighlights = `
	CREATE TABLE IF NOT EXISTS sigtest_highlights (
		id TEXT PRIMARY KEY,
		comparison_id TEXT NOT NULL,
		threshold DOUBLE PRECISION NOT NULL,
		margin DOUBLE PRECISION NOT NULL,
		best JSONB NOT NULL,
		expanded JSONB NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`

const createIndexes = `
	CREATE INDEX IF NOT EXISTS idx_sigtest_comparisons_created_at ON sigtest_comparisons(created_at);
	CREATE INDEX IF NOT EXISTS idx_sigtest_labelings_comparison ON sigtest_labelings(comparison_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_sigtest_highlights_created_at ON sigtest_highlights(created_at)`
