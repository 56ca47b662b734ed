package tracefile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gosigtest/domain/bootstrap"
	"gosigtest/domain/core"
	"gosigtest/domain/system"
)

func TestWriteRead(t *testing.T) {
	d := system.Descriptor{Path: []string{"wsd", "crf"}, Nick: "crf", TestCorpus: "semcor"}
	trace := bootstrap.ScoreTrace{Original: 0.7, Resampled: []float64{0.68, 0.71, 0.70, 0.72}}
	hash := core.ComputeScheduleHash([][]int{{0, 1}})

	rec, err := NewRecord(d, hash, trace)
	require.NoError(t, err)
	require.NotNil(t, rec.Summary)
	assert.InDelta(t, 0.7025, rec.Summary.Mean, 1e-9)

	path := filepath.Join(t.TempDir(), "crf.trace.json")
	require.NoError(t, Write(path, rec))

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, d, got.System)
	assert.Equal(t, hash, got.ScheduleHash)
	assert.Equal(t, trace, got.Trace())

	all, err := ReadAll([]string{path, path})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestNewRecordRejectsEmptyTrace(t *testing.T) {
	_, err := NewRecord(system.Descriptor{Nick: "x"}, "", bootstrap.ScoreTrace{Original: 1})
	assert.ErrorIs(t, err, core.ErrEmptyDistribution)
}

func TestReadRejectsForeignFiles(t *testing.T) {
	dir := t.TempDir()
	other := filepath.Join(dir, "other.json")
	require.NoError(t, os.WriteFile(other, []byte(`{"type":"compared"}`), 0o644))
	_, err := Read(other)
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`{"type":"resampled","original":0.5}`), 0o644))
	_, err = Read(empty)
	assert.ErrorIs(t, err, core.ErrEmptyDistribution)
}
