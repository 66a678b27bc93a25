package report

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/coolbeans/becas/pkg/types"
)

// FormatComparisons renders the comparisons as aligned terminal tables.
func FormatComparisons(report *types.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Documents: %d | Valid: %d | Invalid: %d\n", report.Total, report.ValidCount, report.InvalidCount)
	if report.Current != nil {
		fmt.Fprintf(&b, "Current: %s (%s)\n", report.Current.FileName, orDash(report.Current.Year()))
	}
	if len(report.Comparisons) == 0 {
		b.WriteString("\nNo comparisons: fewer than two records share a tracked field.\n")
		return b.String()
	}

	for _, c := range report.Comparisons {
		rows := [][]string{{"Curso", "Archivo", "Importe", "Diferencia"}}
		for _, p := range c.Points {
			rows = append(rows, []string{orDash(p.Year), p.FileName, p.Value, orDash(p.Delta)})
		}
		b.WriteString("\n" + c.Label + "\n")
		writeTable(&b, rows)
	}
	return b.String()
}

func writeTable(b *strings.Builder, rows [][]string) {
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	total := 0
	for i, row := range rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = runewidth.FillRight(cell, widths[j])
		}
		line := strings.TrimRight(strings.Join(cells, "  "), " ")
		b.WriteString(line + "\n")
		if i == 0 {
			for _, w := range widths {
				total += w
			}
			total += 2 * (len(widths) - 1)
			b.WriteString(strings.Repeat("─", total) + "\n")
		}
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
