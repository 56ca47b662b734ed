package schedulefile

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gosigtest/adapters/rng"
	"gosigtest/domain/core"
	"gosigtest/domain/schedule"
)

func TestWriterProducesOneLinePerResample(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteAll(schedule.Schedule{{0, 1, 2}, {2, 2, 0}}))
	require.NoError(t, w.Flush())

	assert.Equal(t, "[0,1,2]\n[2,2,0]\n", buf.String())
	assert.Equal(t, 2, w.Count())
}

func TestReaderStreamsUntilEOF(t *testing.T) {
	r := NewReader(strings.NewReader("[0,1]\n[1,1]\n"))

	first, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, schedule.Resample{0, 1}, first)
	second, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, schedule.Resample{1, 1}, second)
	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReaderRejectsGarbage(t *testing.T) {
	_, err := NewReader(strings.NewReader("[0,1]\n{oops\n")).ReadAll()
	require.Error(t, err)
	assert.NotErrorIs(t, err, io.EOF)
}

func TestSaveLoadRoundTripKeepsHash(t *testing.T) {
	seed := int64(42)
	sched, err := schedule.NewGenerator(rng.NewAdapter()).Create(context.Background(), 30, 25, &seed)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "schedule.ndjson")
	require.NoError(t, Save(path, sched))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, sched, loaded)
	assert.Equal(t, sched.Hash(), loaded.Hash())
}

func TestLoadValidates(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err := Load(empty)
	assert.ErrorIs(t, err, core.ErrEmptySchedule)

	ragged := filepath.Join(dir, "ragged")
	require.NoError(t, os.WriteFile(ragged, []byte("[0,1]\n[0]\n"), 0o644))
	_, err = Load(ragged)
	assert.ErrorIs(t, err, core.ErrLengthMismatch)
}
