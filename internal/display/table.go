package display

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// RowStyle selects how a table row is drawn.
type RowStyle int

const (
	RowNormal RowStyle = iota
	// RowActive marks the prayer currently in progress.
	RowActive
	// RowPast marks prayers whose window has closed.
	RowPast
)

// Table renders an aligned text table with optional color support.
type Table struct {
	headers []string
	rows    [][]string
	styles  []RowStyle
}

// NewTable creates a new table with the given column headers.
func NewTable(headers []string) *Table {
	return &Table{headers: headers}
}

// AddRow appends a row of values. The number of values should match the number of headers.
func (t *Table) AddRow(values []string) {
	t.AddStyledRow(values, RowNormal)
}

// AddStyledRow appends a row drawn with style.
func (t *Table) AddStyledRow(values []string, style RowStyle) {
	t.rows = append(t.rows, values)
	t.styles = append(t.styles, style)
}

// Render produces the formatted table string with leading indent.
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if n := utf8.RuneCountInString(cell); i < len(widths) && n > widths[i] {
				widths[i] = n
			}
		}
	}

	var sb strings.Builder

	sb.WriteString("  " + Bold(formatRow(t.headers, widths)) + "\n")

	sepParts := make([]string, len(widths))
	for i, w := range widths {
		sepParts[i] = strings.Repeat("─", w)
	}
	sb.WriteString(Dim("  "+strings.Join(sepParts, "  ")) + "\n")

	for i, row := range t.rows {
		line := formatRow(row, widths)
		switch t.styles[i] {
		case RowActive:
			line = Accent(line)
		case RowPast:
			line = Dim(line)
		}
		sb.WriteString("  " + line + "\n")
	}

	return sb.String()
}

// formatRow pads each cell to its column width, counting runes.
func formatRow(cells []string, widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		pad := w - utf8.RuneCountInString(cell)
		if pad < 0 {
			pad = 0
		}
		parts[i] = cell + strings.Repeat(" ", pad)
	}
	return strings.Join(parts, "  ")
}

// KeyValue renders label/value pairs with labels right-padded to align.
func KeyValue(pairs [][2]string) string {
	width := 0
	for _, p := range pairs {
		if n := utf8.RuneCountInString(p[0]); n > width {
			width = n
		}
	}
	var sb strings.Builder
	for _, p := range pairs {
		fmt.Fprintf(&sb, "  %s  %s\n", Bold(p[0]+strings.Repeat(" ", width-utf8.RuneCountInString(p[0]))), p[1])
	}
	return sb.String()
}
