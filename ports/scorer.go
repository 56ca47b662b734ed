package ports

import "context"

// Scorer is the external scoring collaborator: it compares a hypothesis
// output file against the reference file and returns a single number.
type Scorer interface {
	ScoreOne(ctx context.Context, goldPath, guessPath string) (float64, error)
}
