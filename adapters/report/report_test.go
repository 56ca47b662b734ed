package report

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"gosigtest/domain/results"
	"gosigtest/domain/siggraph"
	"gosigtest/domain/system"
)

func labeling() *results.LabelingRecord {
	return &results.LabelingRecord{
		Letters:    [][]string{{"a"}, {"a", "b"}, {"b"}},
		OrigScores: []float64{0.7, 0.8, 0.9},
		Systems: []system.Descriptor{
			{Nick: "crf", Disp: "CRF"},
			{Nick: "svm"},
			{Nick: "bert"},
		},
	}
}

func TestWriteHasseDOT(t *testing.T) {
	g, err := siggraph.NewDigraph(3, []siggraph.Edge{{From: 0, To: 1}, {From: 1, To: 2}})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteHasseDOT(&buf, g, []Node{{"a", 0.1}, {"b", 0.2}, {"c", 0.3}}))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "digraph hasse {"))
	assert.Contains(t, out, `n0 [label="a\n0.1000"];`)
	assert.Contains(t, out, "n0 -> n1;")
	assert.Contains(t, out, "n1 -> n2;")
	assert.NotContains(t, out, "n0 -> n2;")

	assert.Error(t, WriteHasseDOT(&buf, g, nil))
}

func TestWriteLabelingXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cld.xlsx")
	require.NoError(t, WriteLabelingXLSX(path, labeling()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"System", "Score", "Letters"}, rows[0])
	assert.Equal(t, "CRF", rows[1][0])
	assert.Equal(t, "ab", rows[2][2])
}

func TestLabelingHTML(t *testing.T) {
	md, err := LabelingMarkdown(labeling())
	require.NoError(t, err)
	assert.Contains(t, md, "| svm | 0.8000 | ab |")

	out, err := LabelingHTML(labeling())
	require.NoError(t, err)
	s := string(out)
	assert.Contains(t, s, "<table>")
	assert.Contains(t, s, "<td>bert</td>")
	assert.Contains(t, s, "<td>ab</td>")
}

func TestLabelingRowsRejectsMismatch(t *testing.T) {
	rec := labeling()
	rec.OrigScores = rec.OrigScores[:2]
	_, err := LabelingMarkdown(rec)
	assert.Error(t, err)
}
