package cli

import (
	"fmt"
	"strings"

	"github.com/Veraticus/notecheck/internal/engine"
	"github.com/Veraticus/notecheck/internal/model"
	"github.com/charmbracelet/lipgloss"
)

// MissingCounts returns, per catalogue entry, how many clients have it NO.
func MissingCounts(m model.Matrix) []int {
	counts := make([]int, len(m.Catalogue))
	for _, row := range m.Rows {
		for i := range m.Catalogue {
			if row.Status(i) == model.StatusMissing {
				counts[i]++
			}
		}
	}
	return counts
}

// RenderSummary describes a finished run: totals, per-case-type client
// counts and the documents most often missing.
func RenderSummary(result *engine.Result, outputs []string) string {
	var b strings.Builder

	caseCounts := make(map[model.CaseType]int)
	for _, row := range result.Matrix.Rows {
		caseCounts[row.CaseType]++
	}

	fmt.Fprintf(&b, "%s %d records, %d clients (%d MCR, %d CS)\n",
		ChartIcon,
		result.Stats.Records,
		result.Stats.Clients,
		caseCounts[model.CaseTypeMCR],
		caseCounts[model.CaseTypeCS])

	if result.Stats.Skipped > 0 {
		fmt.Fprintln(&b, SubtleStyle.Render(fmt.Sprintf("%d records skipped (not MCR or CS)", result.Stats.Skipped)))
	}
	if result.Stats.Uncatalogued > 0 {
		fmt.Fprintln(&b, SubtleStyle.Render(fmt.Sprintf("%d records with unlisted document names", result.Stats.Uncatalogued)))
	}

	counts := MissingCounts(result.Matrix)
	var lines []string
	for i, d := range result.Matrix.Catalogue {
		if counts[i] == 0 {
			continue
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top,
			TableCellStyle.Render(StatusStyle(model.StatusMissing).Render(fmt.Sprintf("%3d", counts[i]))),
			d.Name))
	}
	if len(lines) > 0 {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, BoldStyle.Render("Missing documents"))
		for _, line := range lines {
			fmt.Fprintln(&b, line)
		}
	}

	if len(outputs) > 0 {
		fmt.Fprintln(&b)
		for _, out := range outputs {
			fmt.Fprintln(&b, FormatSuccess("Written to "+out))
		}
	}

	return RenderBox("Report Summary", strings.TrimRight(b.String(), "\n"))
}
