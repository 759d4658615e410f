package report

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/JohnDeved/dfmon/internal/disk"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	totalStyle   = lipgloss.NewStyle().Faint(true)
)

// barColumn is rendered as is; its cell already carries colors.
const barColumn = 6

// Table writes mounts as an aligned text table.
func Table(w io.Writer, mounts []disk.Mount, opts Options) error {
	_, err := io.WriteString(w, TableString(mounts, opts))
	return err
}

// TableString renders the table with a trailing newline.
func TableString(mounts []disk.Mount, opts Options) string {
	header, lines := Lines(mounts, opts)
	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteString("\n")
	for _, l := range lines {
		sb.WriteString(l)
		sb.WriteString("\n")
	}
	return sb.String()
}

// Lines renders the heading and one line per mount (plus the total row).
// Widths are measured on visible cells so colored bars stay aligned.
func Lines(mounts []disk.Mount, opts Options) (string, []string) {
	return HighlightedLines(mounts, opts, -1, lipgloss.NewStyle())
}

// HighlightedLines is Lines with the row at index selected rendered in
// style. The bar cell keeps its own colors.
func HighlightedLines(mounts []disk.Mount, opts Options, selected int, style lipgloss.Style) (string, []string) {
	header := row(opts.headings())
	rows := opts.rows(mounts)

	widths := make([]int, len(header))
	for _, r := range append([]row{header}, rows...) {
		for i, cell := range r {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	lines := make([]string, 0, len(rows))
	for i, r := range rows {
		switch {
		case i == selected:
			lines = append(lines, formatRow(r, widths, style, style.Render(" ")))
		case opts.Total && i == len(rows)-1:
			lines = append(lines, formatRow(r, widths, totalStyle, " "))
		default:
			lines = append(lines, formatRow(r, widths, lipgloss.NewStyle(), " "))
		}
	}
	return formatRow(header, widths, headingStyle, " "), lines
}

func formatRow(r row, widths []int, style lipgloss.Style, sep string) string {
	cells := make([]string, 0, len(r))
	for i, cell := range r {
		if i == len(r)-1 {
			// No trailing padding on the last column.
			cells = append(cells, style.Render(cell))
			continue
		}
		pad := strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
		switch {
		case i == barColumn:
			cells = append(cells, cell+pad)
		case rightAligned[i]:
			cells = append(cells, style.Render(pad+cell))
		default:
			cells = append(cells, style.Render(cell+pad))
		}
	}
	return strings.Join(cells, sep)
}
