package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Column describes one table column. Numeric columns render right-aligned
// so scores and counts line up; Max caps the rendered width (0 = uncapped).
type Column struct {
	Title   string
	Numeric bool
	Max     int
}

// Table lays out string rows under fixed columns. Widths are measured in
// display cells via lipgloss so em dashes and styled text don't skew
// alignment the way byte lengths would.
type Table struct {
	cols []Column
	rows [][]string
}

// NewTable creates a table with the given column layout.
func NewTable(cols ...Column) *Table {
	return &Table{cols: cols}
}

// AddRow appends one row. Missing cells render empty; extras are dropped.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.cols))
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
		}
	}
	t.rows = append(t.rows, row)
}

func (t *Table) widths() []int {
	w := make([]int, len(t.cols))
	for i, c := range t.cols {
		w[i] = lipgloss.Width(c.Title)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if cw := lipgloss.Width(cell); cw > w[i] {
				w[i] = cw
			}
		}
	}
	for i, c := range t.cols {
		if c.Max > 0 && w[i] > c.Max {
			w[i] = c.Max
		}
	}
	return w
}

// Render formats the table: a styled header row, a rule beneath it, then
// the data rows with over-wide cells clipped to their column.
func (t *Table) Render() string {
	if len(t.cols) == 0 {
		return ""
	}

	w := t.widths()
	head := lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)

	var sb strings.Builder
	line := make([]string, len(t.cols))

	for i, c := range t.cols {
		line[i] = head.Render(pad(c.Title, w[i], false))
	}
	sb.WriteString("  " + strings.Join(line, "  ") + "\n")

	for i := range t.cols {
		line[i] = StyleSubtle.Render(strings.Repeat("─", w[i]))
	}
	sb.WriteString("  " + strings.Join(line, "  ") + "\n")

	for _, row := range t.rows {
		for i, c := range t.cols {
			line[i] = pad(clip(row[i], w[i]), w[i], c.Numeric)
		}
		sb.WriteString("  " + strings.Join(line, "  ") + "\n")
	}

	return sb.String()
}

// clip cuts a cell down to width display cells, marking the cut with an
// ellipsis.
func clip(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > width {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}

// pad fills a cell with spaces to the given width, right-aligning when
// asked. Cells already at or over width pass through untouched.
func pad(s string, width int, right bool) string {
	gap := width - lipgloss.Width(s)
	if gap <= 0 {
		return s
	}
	fill := strings.Repeat(" ", gap)
	if right {
		return fill + s
	}
	return s + fill
}
