package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/xuri/excelize/v2"

	"gosigtest/domain/results"
)

var labelingHeaders = []string{"System", "Score", "Letters"}

func labelingRows(rec *results.LabelingRecord) ([][]string, error) {
	n := len(rec.Letters)
	if len(rec.OrigScores) != n || len(rec.Systems) != n {
		return nil, fmt.Errorf("labeling has %d letter sets, %d scores and %d systems", n, len(rec.OrigScores), len(rec.Systems))
	}
	rows := make([][]string, n)
	for i := range rows {
		rows[i] = []string{
			rec.Systems[i].Label(),
			strconv.FormatFloat(rec.OrigScores[i], 'f', 4, 64),
			strings.Join(rec.Letters[i], ""),
		}
	}
	return rows, nil
}

// WriteLabelingXLSX saves the letter display as a one-sheet workbook.
func WriteLabelingXLSX(path string, rec *results.LabelingRecord) error {
	rows, err := labelingRows(rec)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sheet1"
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx == -1 {
		idx, err := f.NewSheet(sheet)
		if err != nil {
			return err
		}
		f.SetActiveSheet(idx)
	}

	// Header row
	for i, h := range labelingHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	for r, row := range rows {
		rowIdx := r + 2
		values := []any{row[0], rec.OrigScores[r], row[2]}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, rowIdx)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	return f.SaveAs(path)
}

// LabelingMarkdown renders the letter display as a Markdown table.
func LabelingMarkdown(rec *results.LabelingRecord) (string, error) {
	rows, err := labelingRows(rec)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "| %s |\n", strings.Join(labelingHeaders, " | "))
	b.WriteString("|---|---:|---|\n")
	for _, row := range rows {
		fmt.Fprintf(&b, "| %s |\n", strings.Join(escapeCells(row), " | "))
	}
	return b.String(), nil
}

// LabelingHTML renders the Markdown table to an HTML fragment.
func LabelingHTML(rec *results.LabelingRecord) ([]byte, error) {
	md, err := LabelingMarkdown(rec)
	if err != nil {
		return nil, err
	}
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML([]byte(md), p, renderer), nil
}

func escapeCells(row []string) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = strings.ReplaceAll(c, "|", `\|`)
	}
	return out
}
