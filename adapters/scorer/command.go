// Package scorer adapts external scoring programs to ports.Scorer.
package scorer

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"gosigtest/domain/core"
	"gosigtest/internal"
)

// CommandScorer runs an external program as `<command...> gold guess` and
// reads measures from its standard output. Lines of the form "NAME= value"
// (or "NAME = value") are collected; Measure selects the one returned.
type CommandScorer struct {
	command []string
	measure string
	logger  *internal.Logger
}

// NewCommandScorer creates a scorer for command returning the named measure.
func NewCommandScorer(command []string, measure string) (*CommandScorer, error) {
	if len(command) == 0 {
		return nil, fmt.Errorf("scorer command is empty")
	}
	if measure == "" {
		return nil, fmt.Errorf("scorer measure is empty")
	}
	return &CommandScorer{
		command: append([]string(nil), command...),
		measure: measure,
		logger:  internal.DefaultLogger.WithPrefix("scorer"),
	}, nil
}

// ScoreOne implements ports.Scorer.
func (s *CommandScorer) ScoreOne(ctx context.Context, goldPath, guessPath string) (float64, error) {
	measures, err := s.Measures(ctx, goldPath, guessPath)
	if err != nil {
		return 0, err
	}
	v, ok := measures[s.measure]
	if !ok {
		return 0, fmt.Errorf("%w: measure %q not in scorer output", core.ErrScorerFailed, s.measure)
	}
	return v, nil
}

// Measures runs the command once and returns every measure it printed.
func (s *CommandScorer) Measures(ctx context.Context, goldPath, guessPath string) (map[string]float64, error) {
	args := append(append([]string(nil), s.command[1:]...), goldPath, guessPath)
	cmd := exec.CommandContext(ctx, s.command[0], args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	s.logger.Trace("running %s %s", s.command[0], strings.Join(args, " "))
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v: %s", core.ErrScorerFailed, s.command[0], err, strings.TrimSpace(stderr.String()))
	}
	measures, err := ParseMeasures(stdout.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrScorerFailed, err)
	}
	return measures, nil
}

// ParseMeasures extracts "NAME= value" pairs. Other lines are ignored; a
// recognised name with an unparsable value is an error.
func ParseMeasures(out string) (map[string]float64, error) {
	measures := make(map[string]float64)
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		name, value, ok := strings.Cut(sc.Text(), "=")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if name == "" || strings.ContainsAny(name, " \t") {
			continue
		}
		// drop a trailing percent sign
		value = strings.TrimSuffix(value, "%")
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("measure %s has non-numeric value %q", name, value)
		}
		measures[name] = f
	}
	return measures, sc.Err()
}

// FuncScorer adapts a plain function to ports.Scorer.
type FuncScorer func(ctx context.Context, goldPath, guessPath string) (float64, error)

// ScoreOne implements ports.Scorer.
func (f FuncScorer) ScoreOne(ctx context.Context, goldPath, guessPath string) (float64, error) {
	return f(ctx, goldPath, guessPath)
}
