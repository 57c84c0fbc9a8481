// ABOUTME: Markdown rendering of a resolved schedule grid.
// ABOUTME: Produces a table with one row per half-hour slot and one column per weekday.
package schedule

import (
	"fmt"
	"strings"
)

// Markdown renders the grid as a Markdown table. Empty cells are blank and
// unplaced workouts are listed after the table.
func (g *Grid) Markdown() string {
	var sb strings.Builder

	sb.WriteString("| Time |")
	for _, d := range Days {
		sb.WriteString(fmt.Sprintf(" %s |", d.String()[:3]))
	}
	sb.WriteString("\n|------|")
	for range Days {
		sb.WriteString("-----|")
	}
	sb.WriteString("\n")

	for row, minute := range Slots {
		sb.WriteString(fmt.Sprintf("| %s |", FormatMinute(minute)))
		for col := range Days {
			w := g.Cells[row][col]
			if w == nil {
				sb.WriteString("  |")
				continue
			}
			sb.WriteString(fmt.Sprintf(" %s (%s-%s) |", escapeCell(w.Title), w.StartTime, w.EndTime))
		}
		sb.WriteString("\n")
	}

	if len(g.Unplaced) > 0 {
		sb.WriteString("\n## Unplaced\n\n")
		for _, w := range g.Unplaced {
			sb.WriteString(fmt.Sprintf("- %s: %s %s-%s\n", escapeCell(w.Title), w.Day, w.StartTime, w.EndTime))
		}
	}

	return sb.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
