package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound           = errors.New("resource not found")
	ErrComparisonNotFound = fmt.Errorf("%w: comparison", ErrNotFound)
	ErrHighlightNotFound  = fmt.Errorf("%w: highlight", ErrNotFound)

	// Input contract violations
	ErrInvalidSize       = errors.New("invalid size")
	ErrEmptySchedule     = errors.New("schedule has no resamples")
	ErrEmptyDistribution = errors.New("resampled distribution is empty")
	ErrLengthMismatch    = errors.New("length mismatch")
	ErrIndexOutOfRange   = errors.New("resample index out of range")
	ErrInvalidThreshold  = errors.New("threshold must lie in [0, 1]")
	ErrInvalidMatrix     = errors.New("malformed comparison matrix")
	ErrScheduleMismatch  = errors.New("traces were drawn from different schedules")

	// Collaborator failures
	ErrScorerFailed = errors.New("scorer failed")

	// Graph anomalies
	ErrCycleDetected = errors.New("significance digraph contains a cycle")
)

// NewSizeError reports a non-positive size parameter.
func NewSizeError(field string, got int) error {
	return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidSize, field, got)
}

// NewLengthMismatchError reports two sequences that must have equal length.
func NewLengthMismatchError(what string, want, got int) error {
	return fmt.Errorf("%w: %s: want %d, got %d", ErrLengthMismatch, what, want, got)
}

// NewScorerError wraps a failure of the external scorer for one system.
func NewScorerError(system string, err error) error {
	return fmt.Errorf("%w for %s: %v", ErrScorerFailed, system, err)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsContractError reports whether err is an input contract violation.
func IsContractError(err error) bool {
	return errors.Is(err, ErrInvalidSize) ||
		errors.Is(err, ErrEmptySchedule) ||
		errors.Is(err, ErrEmptyDistribution) ||
		errors.Is(err, ErrLengthMismatch) ||
		errors.Is(err, ErrIndexOutOfRange) ||
		errors.Is(err, ErrInvalidThreshold) ||
		errors.Is(err, ErrInvalidMatrix) ||
		errors.Is(err, ErrScheduleMismatch)
}

func IsScorerError(err error) bool {
	return errors.Is(err, ErrScorerFailed)
}

func IsCycleWarning(err error) bool {
	return errors.Is(err, ErrCycleDetected)
}
