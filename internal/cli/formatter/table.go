package formatter

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const colGap = 2

// RenderTable renders an aligned table with a header separator line.
// Columns are padded to the widest visible cell, ANSI styling excluded.
func RenderTable(headers []string, rows [][]string) string {
	return RenderTableWithFooter(headers, rows, nil)
}

// RenderTableWithFooter renders the table and then footer in the total style,
// below a second separator. A nil footer is omitted.
func RenderTableWithFooter(headers []string, rows [][]string, footer []string) string {
	if len(headers) == 0 {
		return ""
	}

	cols := len(headers)
	widths := make([]int, cols)
	measure := func(row []string) {
		for i := 0; i < cols && i < len(row); i++ {
			if w := lipgloss.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}
	measure(headers)
	for _, row := range rows {
		measure(row)
	}
	measure(footer)

	var b strings.Builder
	writeRow(&b, headers, widths, StyleHeader)
	writeSeparator(&b, widths)
	for _, row := range rows {
		writeRow(&b, row, widths, lipgloss.NewStyle())
	}
	if footer != nil {
		writeSeparator(&b, widths)
		writeRow(&b, footer, widths, StyleTotal)
	}
	return b.String()
}

func writeRow(b *strings.Builder, row []string, widths []int, style lipgloss.Style) {
	cols := len(widths)
	for i := 0; i < cols; i++ {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		pad := widths[i] - lipgloss.Width(cell)
		if pad < 0 {
			pad = 0
		}
		b.WriteString(style.Render(cell))
		if i < cols-1 {
			b.WriteString(strings.Repeat(" ", pad+colGap))
		}
	}
	b.WriteString("\n")
}

func writeSeparator(b *strings.Builder, widths []int) {
	for i, w := range widths {
		b.WriteString(StyleDim.Render(strings.Repeat("─", w)))
		if i < len(widths)-1 {
			b.WriteString(strings.Repeat(" ", colGap))
		}
	}
	b.WriteString("\n")
}
