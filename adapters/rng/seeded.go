// Package rng adapts math/rand to ports.RNGPort.
package rng

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// Adapter hands out independent *rand.Rand streams.
type Adapter struct{}

// NewAdapter creates an RNG adapter
func NewAdapter() *Adapter {
	return &Adapter{}
}

// SeededStream creates a deterministic random number generator for a named operation.
// The name does not influence the sequence: equal seeds give equal streams.
func (a *Adapter) SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error) {
	return rand.New(rand.NewSource(seed)), nil
}

// Stream creates a generator seeded from the operating system entropy source.
func (a *Adapter) Stream(ctx context.Context, name string) (*rand.Rand, error) {
	seed, err := EntropySeed()
	if err != nil {
		return nil, fmt.Errorf("seed stream %s: %w", name, err)
	}
	return rand.New(rand.NewSource(seed)), nil
}

// EntropySeed reads a seed from crypto/rand.
func EntropySeed() (int64, error) {
	var buf [8]byte
	if _, err := crand.Read(buf[:]); err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(buf[:])), nil
}
