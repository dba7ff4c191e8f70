package cli

import (
	"bufio"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/tOgg1/plasmid-browser/internal/models"
)

const (
	tablePadding = 2
	maxCellWidth = 40
)

// column is a table heading plus the widest a cell may render. Max 0 leaves
// the column unbounded.
type column struct {
	Header string
	Max    int
}

// table renders rows of plain text aligned by display width. Cells are
// flattened onto one line and cut to their column's Max.
type table struct {
	cols []column
	rows [][]string
}

func newTable(cols ...column) *table {
	return &table{cols: cols}
}

// resultColumns mirrors the browser's columns, ending with member and sheet.
func resultColumns() []column {
	cols := make([]column, 0, len(models.Columns)+1)
	for _, col := range models.Columns {
		cols = append(cols, column{Header: strings.ToUpper(col.Label), Max: maxCellWidth})
	}
	return append(cols, column{Header: "MEMBER / SHEET", Max: maxCellWidth})
}

// Append adds a row. Missing cells render empty; extra cells are dropped.
func (t *table) Append(cells ...string) {
	row := make([]string, len(t.cols))
	for i := range row {
		if i < len(cells) {
			row[i] = cellText(cells[i], t.cols[i].Max)
		}
	}
	t.rows = append(t.rows, row)
}

// Render writes the header and rows. The last column is not padded.
func (t *table) Render(out io.Writer) error {
	if len(t.cols) == 0 {
		return nil
	}
	widths := make([]int, len(t.cols))
	header := make([]string, len(t.cols))
	for i, col := range t.cols {
		header[i] = cellText(col.Header, col.Max)
		widths[i] = runewidth.StringWidth(header[i])
	}
	for _, row := range t.rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	w := bufio.NewWriter(out)
	for _, row := range append([][]string{header}, t.rows...) {
		var line strings.Builder
		for i, cell := range row {
			if i == len(row)-1 {
				line.WriteString(cell)
				break
			}
			line.WriteString(runewidth.FillRight(cell, widths[i]+tablePadding))
		}
		if _, err := w.WriteString(strings.TrimRight(line.String(), " ") + "\n"); err != nil {
			return err
		}
	}
	return w.Flush()
}

// cellText collapses whitespace runs (sheet cells often hold newlines) and
// truncates to limit display columns.
func cellText(value string, limit int) string {
	value = strings.Join(strings.Fields(value), " ")
	if limit <= 0 {
		return value
	}
	return runewidth.Truncate(value, limit, "…")
}
