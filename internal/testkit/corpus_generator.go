package testkit

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
)

// CorpusGeneratorConfig configures the synthetic key-file generator
type CorpusGeneratorConfig struct {
	Instances  int       `json:"instances"`
	Labels     int       `json:"labels"`
	Accuracies []float64 `json:"accuracies"` // one synthetic system per entry
	Seed       int64     `json:"seed"`
}

// DefaultCorpusConfig returns a small corpus with three clearly ordered systems
func DefaultCorpusConfig() CorpusGeneratorConfig {
	return CorpusGeneratorConfig{
		Instances:  200,
		Labels:     5,
		Accuracies: []float64{0.55, 0.70, 0.90},
		Seed:       42,
	}
}

// Corpus is a generated gold file and one guess file per system.
type Corpus struct {
	Gold    string
	Guesses []string
	// Correct[i] is the number of instances system i labels correctly.
	Correct []int
}

// CorpusGenerator writes key files in the "instance-id label" format
// understood by KeyAccuracyScorer.
type CorpusGenerator struct {
	config CorpusGeneratorConfig
	rng    *rand.Rand
}

// NewCorpusGenerator creates a new corpus generator
func NewCorpusGenerator(config CorpusGeneratorConfig) *CorpusGenerator {
	return &CorpusGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate writes gold.key and sys<i>.key under dir.
func (g *CorpusGenerator) Generate(dir string) (*Corpus, error) {
	if g.config.Instances <= 0 || g.config.Labels < 2 {
		return nil, fmt.Errorf("corpus needs instances > 0 and labels >= 2")
	}

	gold := make([]int, g.config.Instances)
	var b strings.Builder
	for i := range gold {
		gold[i] = g.rng.Intn(g.config.Labels)
		fmt.Fprintf(&b, "inst-%04d L%d\n", i, gold[i])
	}
	corpus := &Corpus{Gold: filepath.Join(dir, "gold.key")}
	if err := os.WriteFile(corpus.Gold, []byte(b.String()), 0o644); err != nil {
		return nil, err
	}

	for s, acc := range g.config.Accuracies {
		b.Reset()
		correct := 0
		for i, label := range gold {
			guess := label
			if g.rng.Float64() >= acc {
				guess = (label + 1 + g.rng.Intn(g.config.Labels-1)) % g.config.Labels
			} else {
				correct++
			}
			fmt.Fprintf(&b, "inst-%04d L%d\n", i, guess)
		}
		path := filepath.Join(dir, fmt.Sprintf("sys%d.key", s))
		if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
			return nil, err
		}
		corpus.Guesses = append(corpus.Guesses, path)
		corpus.Correct = append(corpus.Correct, correct)
	}
	return corpus, nil
}

// WriteLines writes lines (each followed by "\n") to dir/name and returns the path.
func WriteLines(dir, name string, lines []string) (string, error) {
	path := filepath.Join(dir, name)
	content := ""
	if len(lines) > 0 {
		content = strings.Join(lines, "\n") + "\n"
	}
	return path, os.WriteFile(path, []byte(content), 0o644)
}
