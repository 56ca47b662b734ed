package pairwise

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"gosigtest/domain/bootstrap"
	"gosigtest/domain/core"
)

// Matrix is the upper triangle of all pairwise verdicts over n systems.
// Row i holds the verdicts for j = i+1 .. n-1, so row n-1 is empty.
type Matrix [][]Verdict

// Systems returns n, the number of systems the matrix covers.
func (m Matrix) Systems() int { return len(m) }

// Pairs returns the number of verdicts, n(n-1)/2 for a well-formed matrix.
func (m Matrix) Pairs() int {
	total := 0
	for _, row := range m {
		total += len(row)
	}
	return total
}

// At returns the verdict for the pair (i, j), i < j.
func (m Matrix) At(i, j int) (Verdict, bool) {
	if i < 0 || j <= i || j >= len(m) {
		return Verdict{}, false
	}
	return m[i][j-i-1], true
}

// Each visits every verdict in canonical order (row-major over i < j).
func (m Matrix) Each(fn func(i, j int, v Verdict)) {
	for i, row := range m {
		for off, v := range row {
			fn(i, i+off+1, v)
		}
	}
}

// Validate checks the triangular shape and p-value range.
func (m Matrix) Validate() error {
	n := len(m)
	for i, row := range m {
		if len(row) != n-i-1 {
			return fmt.Errorf("%w: row %d has %d verdicts, want %d", core.ErrInvalidMatrix, i, len(row), n-i-1)
		}
		for off, v := range row {
			if v.PValue < 0 || v.PValue > 1 {
				return fmt.Errorf("%w: p-value %v for pair (%d, %d)", core.ErrInvalidMatrix, v.PValue, i, i+off+1)
			}
		}
	}
	return nil
}

// ProgressFunc is called after each completed pair with the number of
// pairs done and the total. Calls are serialized.
type ProgressFunc func(done, total int)

// BuilderOptions configures MatrixBuilder behavior.
type BuilderOptions struct {
	// Workers bounds how many rows are compared concurrently. 1 runs
	// everything on the calling goroutine.
	Workers int

	// Progress is called periodically with build progress. May be nil.
	Progress ProgressFunc
}

// DefaultBuilderOptions returns single-threaded options without progress.
func DefaultBuilderOptions() BuilderOptions {
	return BuilderOptions{Workers: 1}
}

// BuilderOption is a functional option for configuring MatrixBuilder.
type BuilderOption func(*BuilderOptions)

// WithWorkers sets the number of concurrent row workers. n <= 0 selects
// runtime.NumCPU().
func WithWorkers(n int) BuilderOption {
	return func(o *BuilderOptions) {
		if n <= 0 {
			n = runtime.NumCPU()
		}
		o.Workers = n
	}
}

// WithProgress sets the progress callback.
func WithProgress(fn ProgressFunc) BuilderOption {
	return func(o *BuilderOptions) {
		o.Progress = fn
	}
}

// MatrixBuilder drives Compare over every unordered pair of systems.
type MatrixBuilder struct {
	opts BuilderOptions
}

// NewMatrixBuilder creates a matrix builder
func NewMatrixBuilder(opts ...BuilderOption) *MatrixBuilder {
	o := DefaultBuilderOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &MatrixBuilder{opts: o}
}

// Build compares all pairs (i, j), i < j, of traces in input order. Rows
// are independent; with several workers they are computed concurrently and
// each is written to its own slot, so the result does not depend on
// scheduling.
func (b *MatrixBuilder) Build(ctx context.Context, traces []bootstrap.ScoreTrace) (Matrix, error) {
	if err := validateTraces(traces); err != nil {
		return nil, err
	}

	n := len(traces)
	total := n * (n - 1) / 2
	matrix := make(Matrix, n)

	var (
		mu   sync.Mutex
		done int
	)
	report := func() {
		if b.opts.Progress == nil {
			return
		}
		mu.Lock()
		done++
		b.opts.Progress(done, total)
		mu.Unlock()
	}

	compareRow := func(ctx context.Context, i int) error {
		row := make([]Verdict, 0, n-i-1)
		for j := i + 1; j < n; j++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			v, err := Compare(traces[i].Original, traces[j].Original, traces[i].Resampled, traces[j].Resampled)
			if err != nil {
				return fmt.Errorf("compare systems %d and %d: %w", i, j, err)
			}
			row = append(row, v)
			report()
		}
		matrix[i] = row
		return nil
	}

	if b.opts.Workers <= 1 {
		for i := 0; i < n; i++ {
			if err := compareRow(ctx, i); err != nil {
				return nil, err
			}
		}
		return matrix, nil
	}

	sem := semaphore.NewWeighted(int64(b.opts.Workers))
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			return compareRow(gctx, i)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return matrix, nil
}

func validateTraces(traces []bootstrap.ScoreTrace) error {
	if len(traces) == 0 {
		return nil
	}
	want := traces[0].Len()
	for i, t := range traces {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("trace %d: %w", i, err)
		}
		if t.Len() != want {
			return core.NewLengthMismatchError(fmt.Sprintf("trace %d", i), want, t.Len())
		}
	}
	return nil
}
