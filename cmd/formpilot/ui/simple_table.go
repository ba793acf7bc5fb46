package ui

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
)

// SimpleTable renders static tabular data (history rows, fill logs).
type SimpleTable struct {
	Headers []string
	Rows    [][]string
}

// NewSimpleTable creates a table with the given headers.
func NewSimpleTable(headers ...string) *SimpleTable {
	return &SimpleTable{Headers: headers}
}

// AddRow appends one row. Short rows are padded with empty cells.
func (t *SimpleTable) AddRow(cells ...string) {
	for len(cells) < len(t.Headers) {
		cells = append(cells, "")
	}
	t.Rows = append(t.Rows, cells)
}

// View renders the table, or "" when there are no rows.
func (t *SimpleTable) View(styles Styles) string {
	if len(t.Rows) == 0 {
		return ""
	}

	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	var sb strings.Builder
	writeRow := func(cells []string, style lipgloss.Style) {
		for i, cell := range cells {
			if i >= len(widths) {
				break
			}
			sb.WriteString(style.Width(widths[i] + 2).Render(cell))
		}
		sb.WriteString("\n")
	}

	writeRow(t.Headers, styles.Bold)
	total := 0
	for _, w := range widths {
		total += w + 2
	}
	sb.WriteString(styles.RenderDivider(total))
	sb.WriteString("\n")
	for _, row := range t.Rows {
		writeRow(row, styles.Body)
	}
	return sb.String()
}

// truncate shortens s to at most l runes with an ellipsis.
func truncate(s string, l int) string {
	if utf8.RuneCountInString(s) <= l {
		return s
	}
	runes := []rune(s)
	if l <= 3 {
		return string(runes[:l])
	}
	return string(runes[:l-3]) + "..."
}
