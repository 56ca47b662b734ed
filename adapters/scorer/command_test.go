package scorer

import (
	"context"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gosigtest/domain/core"
	"gosigtest/internal/testkit"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestParseMeasures(t *testing.T) {
	out := "Scoring results\nP=\t 70.0%\nR= 0.65\nF1 = 0.675\nnot a measure\nsome text = here\n"
	m, err := ParseMeasures(out)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"P": 70.0, "R": 0.65, "F1": 0.675}, m)

	_, err = ParseMeasures("F1= lots\n")
	assert.Error(t, err)
}

func TestCommandScorer(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()
	gold, err := testkit.WriteLines(dir, "gold.key", []string{"a 1", "b 2"})
	require.NoError(t, err)
	guess, err := testkit.WriteLines(dir, "guess.key", []string{"a 1", "b 1", "c 1"})
	require.NoError(t, err)

	// prints the line count of the guess file as F1
	script := `test -f "$1" || exit 3; printf 'P= 0.5\nF1= %s\n' "$(wc -l < "$2" | tr -d ' ')"`
	s, err := NewCommandScorer([]string{"sh", "-c", script, "scorer"}, "F1")
	require.NoError(t, err)

	score, err := s.ScoreOne(context.Background(), gold, guess)
	require.NoError(t, err)
	assert.Equal(t, 3.0, score)

	all, err := s.Measures(context.Background(), gold, guess)
	require.NoError(t, err)
	assert.Equal(t, 0.5, all["P"])
}

func TestCommandScorerFailures(t *testing.T) {
	requireShell(t)
	ctx := context.Background()
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.key")

	s, err := NewCommandScorer([]string{"sh", "-c", `test -f "$1" || exit 3; echo 'F1= 1'`, "scorer"}, "F1")
	require.NoError(t, err)
	_, err = s.ScoreOne(ctx, missing, missing)
	assert.ErrorIs(t, err, core.ErrScorerFailed)

	s, err = NewCommandScorer([]string{"sh", "-c", `echo 'P= 1'`, "scorer"}, "F1")
	require.NoError(t, err)
	_, err = s.ScoreOne(ctx, missing, missing)
	assert.ErrorIs(t, err, core.ErrScorerFailed)

	_, err = NewCommandScorer(nil, "F1")
	assert.Error(t, err)
	_, err = NewCommandScorer([]string{"java", "Scorer"}, "")
	assert.Error(t, err)
}

func TestFuncScorer(t *testing.T) {
	var f FuncScorer = func(ctx context.Context, gold, guess string) (float64, error) {
		return float64(len(gold) + len(guess)), nil
	}
	v, err := f.ScoreOne(context.Background(), "ab", "c")
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)
}
