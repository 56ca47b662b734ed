// Package tracefile stores one system's bootstrap score trace as JSON.
package tracefile

import (
	"encoding/json"
	"fmt"
	"os"

	"gosigtest/domain/bootstrap"
	"gosigtest/domain/core"
	"gosigtest/domain/system"
	"gosigtest/internal/profiling"
)

// Kind marks trace documents.
const Kind = "resampled"

// Record is the content of a trace file.
type Record struct {
	Kind         string             `json:"type"`
	System       system.Descriptor  `json:"system"`
	ScheduleHash core.ScheduleHash  `json:"schedule_hash"`
	CreatedAt    core.Timestamp     `json:"created_at"`
	Original     float64            `json:"original"`
	Resampled    []float64          `json:"resampled"`
	Summary      *profiling.Summary `json:"summary,omitempty"`
}

// NewRecord wraps a trace with its system and schedule and attaches a
// distribution summary.
func NewRecord(d system.Descriptor, hash core.ScheduleHash, trace bootstrap.ScoreTrace) (*Record, error) {
	if err := trace.Validate(); err != nil {
		return nil, err
	}
	summary, err := profiling.SummarizeDistribution(trace.Resampled, profiling.DefaultConfidence)
	if err != nil {
		return nil, err
	}
	return &Record{
		Kind:         Kind,
		System:       d,
		ScheduleHash: hash,
		CreatedAt:    core.Now(),
		Original:     trace.Original,
		Resampled:    trace.Resampled,
		Summary:      &summary,
	}, nil
}

// Trace returns the score trace held by the record.
func (r *Record) Trace() bootstrap.ScoreTrace {
	return bootstrap.ScoreTrace{Original: r.Original, Resampled: r.Resampled}
}

// Write stores rec at path.
func Write(path string, rec *Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// Read loads and checks the trace file at path.
func Read(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse trace %s: %w", path, err)
	}
	if rec.Kind != Kind {
		return nil, fmt.Errorf("%s is not a trace file (type %q)", path, rec.Kind)
	}
	if err := rec.Trace().Validate(); err != nil {
		return nil, fmt.Errorf("trace %s: %w", path, err)
	}
	return &rec, nil
}

// ReadAll loads several trace files in order.
func ReadAll(paths []string) ([]*Record, error) {
	out := make([]*Record, 0, len(paths))
	for _, p := range paths {
		rec, err := Read(p)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
