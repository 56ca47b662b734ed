// Package bootstrap replays a resampling schedule against one system's
// output to obtain its resampled score distribution.
package bootstrap

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"gosigtest/domain/core"
	"gosigtest/domain/schedule"
	"gosigtest/ports"
)

// ScoreTrace is the scoring material of one system: its unperturbed score
// and one score per resample, in schedule order.
type ScoreTrace struct {
	Original  float64   `json:"original"`
	Resampled []float64 `json:"resampled"`
}

// Len returns the number of resampled scores.
func (t ScoreTrace) Len() int { return len(t.Resampled) }

// Validate checks that the trace carries at least one resampled score.
func (t ScoreTrace) Validate() error {
	if len(t.Resampled) == 0 {
		return core.ErrEmptyDistribution
	}
	return nil
}

// Bootstrapper builds score traces by scoring resampled copies of a
// hypothesis file with the external scorer.
type Bootstrapper struct {
	scorer     ports.Scorer
	scratchDir string
}

// Option configures a Bootstrapper.
type Option func(*Bootstrapper)

// WithScratchDir places the scratch file in dir (for example a tmpfs such
// as /dev/shm). The default is os.TempDir().
func WithScratchDir(dir string) Option {
	return func(b *Bootstrapper) {
		b.scratchDir = dir
	}
}

// NewBootstrapper creates a bootstrapper around the given scorer
func NewBootstrapper(scorer ports.Scorer, opts ...Option) *Bootstrapper {
	b := &Bootstrapper{scorer: scorer}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Resample returns the unperturbed score of guess against gold together
// with its resampled distribution under sched. guess must have exactly
// one line per corpus instance of sched.
func (b *Bootstrapper) Resample(ctx context.Context, gold, guess string, sched schedule.Schedule) (ScoreTrace, error) {
	lines, err := guessLines(guess, sched)
	if err != nil {
		return ScoreTrace{}, err
	}
	orig, err := b.scorer.ScoreOne(ctx, gold, guess)
	if err != nil {
		return ScoreTrace{}, core.NewScorerError(guess, err)
	}
	dist, err := b.scoreLines(ctx, gold, guess, lines, sched)
	if err != nil {
		return ScoreTrace{}, err
	}
	return ScoreTrace{Original: orig, Resampled: dist}, nil
}

// ScoreDist scores one resampled copy of guess per schedule entry. Each
// copy concatenates the guess lines selected by the resample, repeats
// included, in resample order. A single scratch file is truncated and
// rewritten for every iteration and removed afterwards.
func (b *Bootstrapper) ScoreDist(ctx context.Context, gold, guess string, sched schedule.Schedule) ([]float64, error) {
	lines, err := guessLines(guess, sched)
	if err != nil {
		return nil, err
	}
	return b.scoreLines(ctx, gold, guess, lines, sched)
}

// guessLines reads guess and checks its line count against the schedule.
func guessLines(guess string, sched schedule.Schedule) ([]string, error) {
	if len(sched) == 0 {
		return nil, core.ErrEmptySchedule
	}
	lines, err := ReadLines(guess)
	if err != nil {
		return nil, err
	}
	if len(lines) != sched.CorpusSize() {
		return nil, core.NewLengthMismatchError("lines of "+guess, sched.CorpusSize(), len(lines))
	}
	return lines, nil
}

func (b *Bootstrapper) scoreLines(ctx context.Context, gold, guess string, lines []string, sched schedule.Schedule) ([]float64, error) {
	scratch, err := os.CreateTemp(b.scratchDir, "sigtest-resample-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch file: %w", err)
	}
	defer os.Remove(scratch.Name())
	defer scratch.Close()

	w := bufio.NewWriter(scratch)
	dist := make([]float64, 0, len(sched))
	for it, resample := range sched {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := rewind(scratch); err != nil {
			return nil, err
		}
		w.Reset(scratch)
		for _, idx := range resample {
			if idx < 0 || idx >= len(lines) {
				return nil, fmt.Errorf("%w: resample %d selects line %d of %d in %s",
					core.ErrIndexOutOfRange, it, idx, len(lines), guess)
			}
			if _, err := w.WriteString(lines[idx]); err != nil {
				return nil, fmt.Errorf("failed to write scratch file: %w", err)
			}
		}
		if err := w.Flush(); err != nil {
			return nil, fmt.Errorf("failed to flush scratch file: %w", err)
		}

		score, err := b.scorer.ScoreOne(ctx, gold, scratch.Name())
		if err != nil {
			return nil, core.NewScorerError(fmt.Sprintf("%s (resample %d)", guess, it), err)
		}
		dist = append(dist, score)
	}
	return dist, nil
}

func rewind(f *os.File) error {
	if err := f.Truncate(0); err != nil {
		return fmt.Errorf("failed to truncate scratch file: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind scratch file: %w", err)
	}
	return nil
}

// ReadLines returns the lines of path, each terminated by "\n". A final
// line without a terminator gets one so resampled copies never merge lines.
func ReadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	r := bufio.NewReader(f)
	for {
		line, err := r.ReadString('\n')
		if len(line) > 0 {
			if line[len(line)-1] != '\n' {
				line += "\n"
			}
			lines = append(lines, line)
		}
		if err == io.EOF {
			return lines, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	}
}

// CorpusSize counts the instances (lines) of the reference file.
func CorpusSize(goldPath string) (int, error) {
	lines, err := ReadLines(goldPath)
	if err != nil {
		return 0, err
	}
	if len(lines) == 0 {
		return 0, core.NewSizeError("corpus size", 0)
	}
	return len(lines), nil
}
