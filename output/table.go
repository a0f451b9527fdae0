// Package output renders computed statements as plain-text tables for the
// terminal.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/finstmt/finstmt/aggspec"
	"github.com/finstmt/finstmt/report"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#5FAFFF", Dark: "#5FAFFF"})
	totalStyle  = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

const (
	columnGap     = "  "
	minLabelWidth = 12
)

// TableRenderer writes statements as aligned text tables.
type TableRenderer struct {
	// Width caps the rendered table width; 0 autodetects the terminal, with
	// no cap when stdout is not a terminal.
	Width int
}

// NewTableRenderer creates a renderer sized to the current terminal.
func NewTableRenderer() *TableRenderer {
	width := 0
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
	}
	return &TableRenderer{Width: width}
}

// Render writes the statement as a table: a title line, column headers, and
// one line per layout row.
func (r *TableRenderer) Render(w io.Writer, statement *report.Statement) error {
	keys := statement.Metadata.PeriodKeys
	variance := statement.Metadata.LTMLabel == ""

	headers := []string{""}
	for _, key := range keys {
		headers = append(headers, columnHeader(key))
	}
	if variance {
		headers = append(headers, "Variance", "Var %")
	}

	cells := make([][]string, 0, len(statement.Rows)+1)
	cells = append(cells, headers)
	for _, row := range statement.Rows {
		cells = append(cells, rowCells(row, keys, variance))
	}

	widths := columnWidths(cells)
	r.fitLabelColumn(widths)

	title := statement.Metadata.ReportName
	if title == "" {
		title = statement.Metadata.ReportID
	}
	if statement.Metadata.LTMLabel != "" {
		title += " " + statement.Metadata.LTMLabel
	}
	if _, err := fmt.Fprintln(w, titleStyle.Render(title)); err != nil {
		return err
	}
	if availability := statement.Metadata.Availability; availability != nil && !availability.Complete {
		if _, err := fmt.Fprintln(w, dimStyle.Render(availability.Message)); err != nil {
			return err
		}
	}

	if err := writeLine(w, headers, widths, headerStyle); err != nil {
		return err
	}

	for i, row := range statement.Rows {
		if row.Type == report.LayoutSpacer {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
			continue
		}

		style := lipgloss.NewStyle()
		switch {
		case row.Type == report.LayoutHeader:
			style = headerStyle
		case row.Style == "total" || row.Style == "subtotal" || row.Style == "bold":
			style = totalStyle
		}

		if err := writeLine(w, cells[i+1], widths, style); err != nil {
			return err
		}
	}

	return nil
}

// rowCells builds the display cells for one row: indented label first, then
// one formatted amount per period key.
func rowCells(row report.Row, keys []string, variance bool) []string {
	cells := make([]string, 0, len(keys)+3)
	cells = append(cells, strings.Repeat("  ", row.Indent)+row.Label)

	if !row.Type.HasAmounts() {
		for range keys {
			cells = append(cells, "")
		}
		if variance {
			cells = append(cells, "", "")
		}
		return cells
	}

	for _, key := range keys {
		cells = append(cells, row.Formatted[key])
	}
	if variance {
		cells = append(cells,
			row.Formatted[aggspec.VarianceAmountColumn],
			row.Formatted[aggspec.VariancePercentColumn])
	}
	return cells
}

// columnHeader derives a short header from an amount column key.
func columnHeader(key string) string {
	if year, ok := strings.CutPrefix(key, "amount_"); ok {
		return year
	}
	if month, ok := strings.CutPrefix(key, "month_"); ok {
		return "M" + month
	}
	if key == aggspec.TotalColumn {
		return "LTM"
	}
	return key
}

func columnWidths(cells [][]string) []int {
	widths := make([]int, len(cells[0]))
	for _, line := range cells {
		for i, cell := range line {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	return widths
}

// fitLabelColumn shrinks the label column when the table exceeds the
// configured width. Amount columns keep their widths; truncated labels are
// still readable, truncated amounts are not.
func (r *TableRenderer) fitLabelColumn(widths []int) {
	if r.Width <= 0 {
		return
	}

	total := runewidth.StringWidth(columnGap) * (len(widths) - 1)
	for _, w := range widths {
		total += w
	}

	if overflow := total - r.Width; overflow > 0 {
		widths[0] = max(widths[0]-overflow, minLabelWidth)
	}
}

func writeLine(w io.Writer, cells []string, widths []int, style lipgloss.Style) error {
	parts := make([]string, len(widths))
	for i := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		if i == 0 {
			parts[i] = runewidth.FillRight(runewidth.Truncate(cell, widths[i], "…"), widths[i])
		} else {
			parts[i] = runewidth.FillLeft(cell, widths[i])
		}
	}

	line := strings.TrimRight(strings.Join(parts, columnGap), " ")
	_, err := fmt.Fprintln(w, style.Render(line))
	return err
}
