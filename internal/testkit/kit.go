package testkit

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"gosigtest/adapters/rng"
	"gosigtest/domain/bootstrap"
	"gosigtest/domain/pairwise"
	"gosigtest/ports"
)

// TestKit provides testing utilities and fixtures
type TestKit struct {
	rng *rng.Adapter
}

// NewTestKit creates a new test kit instance
func NewTestKit() *TestKit {
	return &TestKit{rng: rng.NewAdapter()}
}

// RNGAdapter returns an RNG adapter
func (t *TestKit) RNGAdapter() ports.RNGPort {
	return t.rng
}

// KeyAccuracyScorer scores a guess key file by the fraction of its lines
// whose label matches the gold label of the same instance id. Repeated
// lines in a resampled guess count repeatedly.
type KeyAccuracyScorer struct {
	mu    sync.Mutex
	gold  map[string]map[string]string
	calls atomic.Int64
}

// NewKeyAccuracyScorer creates a scorer with an empty gold cache
func NewKeyAccuracyScorer() *KeyAccuracyScorer {
	return &KeyAccuracyScorer{gold: make(map[string]map[string]string)}
}

// Calls returns how many times ScoreOne has run.
func (s *KeyAccuracyScorer) Calls() int64 {
	return s.calls.Load()
}

func (s *KeyAccuracyScorer) ScoreOne(ctx context.Context, goldPath, guessPath string) (float64, error) {
	s.calls.Add(1)
	gold, err := s.goldKeys(goldPath)
	if err != nil {
		return 0, err
	}
	guess, err := readKeyLines(guessPath)
	if err != nil {
		return 0, err
	}
	if len(guess) == 0 {
		return 0, nil
	}
	correct := 0
	for _, kv := range guess {
		if gold[kv[0]] == kv[1] {
			correct++
		}
	}
	return float64(correct) / float64(len(guess)), nil
}

func (s *KeyAccuracyScorer) goldKeys(path string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.gold[path]; ok {
		return m, nil
	}
	lines, err := readKeyLines(path)
	if err != nil {
		return nil, err
	}
	m := make(map[string]string, len(lines))
	for _, kv := range lines {
		m[kv[0]] = kv[1]
	}
	s.gold[path] = m
	return m, nil
}

func readKeyLines(path string) ([][2]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out [][2]string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		out = append(out, [2]string{fields[0], fields[1]})
	}
	return out, sc.Err()
}

// FailingScorer succeeds for the first After calls and fails afterwards.
type FailingScorer struct {
	Inner ports.Scorer
	After int64
	calls atomic.Int64
}

func (s *FailingScorer) ScoreOne(ctx context.Context, goldPath, guessPath string) (float64, error) {
	if n := s.calls.Add(1); n > s.After {
		return 0, fmt.Errorf("scorer crashed on call %d", n)
	}
	return s.Inner.ScoreOne(ctx, goldPath, guessPath)
}

// ConstantTraces builds traces whose resampled scores all equal the original.
func ConstantTraces(scores []float64, iterations int) []bootstrap.ScoreTrace {
	traces := make([]bootstrap.ScoreTrace, len(scores))
	for i, s := range scores {
		dist := make([]float64, iterations)
		for k := range dist {
			dist[k] = s
		}
		traces[i] = bootstrap.ScoreTrace{Original: s, Resampled: dist}
	}
	return traces
}

// MatrixFromPValues builds a comparison matrix from an upper-triangular
// p-value table; pvals[i][j-i-1] is the p-value of pair (i, j). Direction
// follows scores: BBigger is set when scores[j] >= scores[i].
func MatrixFromPValues(scores []float64, pvals [][]float64) pairwise.Matrix {
	m := make(pairwise.Matrix, len(scores))
	for i := range scores {
		row := make([]pairwise.Verdict, 0, len(scores)-i-1)
		for j := i + 1; j < len(scores); j++ {
			row = append(row, pairwise.Verdict{
				BBigger: scores[j] >= scores[i],
				PValue:  pvals[i][j-i-1],
			})
		}
		m[i] = row
	}
	return m
}
