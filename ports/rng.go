package ports

import (
	"context"
	"math/rand"
)

// RNGPort provides the random sources used to draw resampling schedules.
// Nothing in the module reads the global math/rand generator.
type RNGPort interface {
	// SeededStream creates a deterministic random number generator for a named operation
	SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error)

	// Stream creates a non-reproducible generator for callers that did not ask for a seed
	Stream(ctx context.Context, name string) (*rand.Rand, error)
}
