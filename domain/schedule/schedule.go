// Package schedule draws the bootstrap resampling schedule shared by every
// system in a comparison. The pairing of the test depends on all systems
// being replayed against the identical schedule, so a schedule is generated
// once, persisted, and read back for each system.
package schedule

import (
	"context"
	"fmt"
	"math/rand"

	"gosigtest/domain/core"
	"gosigtest/ports"
)

// DefaultIterations is the number of resamples drawn when none is configured.
const DefaultIterations = 1000

// Resample is one bootstrap draw: corpus-size indices sampled uniformly
// with replacement from [0, corpus size).
type Resample []int

// Schedule is the ordered list of resamples.
type Schedule []Resample

// Len returns the number of resamples.
func (s Schedule) Len() int { return len(s) }

// CorpusSize returns the resample length, or 0 for an empty schedule.
func (s Schedule) CorpusSize() int {
	if len(s) == 0 {
		return 0
	}
	return len(s[0])
}

// Hash fingerprints the schedule.
func (s Schedule) Hash() core.ScheduleHash {
	raw := make([][]int, len(s))
	for i, r := range s {
		raw[i] = r
	}
	return core.ComputeScheduleHash(raw)
}

// Validate checks that the schedule is non-empty, rectangular and in range.
func (s Schedule) Validate() error {
	if len(s) == 0 {
		return core.ErrEmptySchedule
	}
	size := len(s[0])
	if size == 0 {
		return core.NewSizeError("corpus size", 0)
	}
	for i, r := range s {
		if len(r) != size {
			return core.NewLengthMismatchError(fmt.Sprintf("resample %d", i), size, len(r))
		}
		for _, idx := range r {
			if idx < 0 || idx >= size {
				return fmt.Errorf("%w: resample %d holds %d, corpus size %d", core.ErrIndexOutOfRange, i, idx, size)
			}
		}
	}
	return nil
}

// Generator draws schedules from an injected random source.
type Generator struct {
	rng ports.RNGPort
}

// NewGenerator creates a schedule generator
func NewGenerator(rng ports.RNGPort) *Generator {
	return &Generator{rng: rng}
}

// Create draws iterations resamples of length corpusSize. A non-nil seed
// makes the result exactly reproducible for the same (corpusSize,
// iterations, seed).
func (g *Generator) Create(ctx context.Context, corpusSize, iterations int, seed *int64) (Schedule, error) {
	if corpusSize <= 0 {
		return nil, core.NewSizeError("corpus size", corpusSize)
	}
	if iterations <= 0 {
		return nil, core.NewSizeError("iterations", iterations)
	}

	var (
		r   *rand.Rand
		err error
	)
	if seed != nil {
		r, err = g.rng.SeededStream(ctx, "bootstrap-schedule", *seed)
	} else {
		r, err = g.rng.Stream(ctx, "bootstrap-schedule")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open random stream: %w", err)
	}

	sched := make(Schedule, iterations)
	for it := range sched {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		resample := make(Resample, corpusSize)
		for i := range resample {
			resample[i] = r.Intn(corpusSize)
		}
		sched[it] = resample
	}
	return sched, nil
}
