// ABOUTME: CLI command that draws the weekly schedule grid.
// ABOUTME: Cells are colored with the workout's color; --markdown prints a table instead.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/gym/internal/schedule"
	"github.com/spf13/cobra"
)

var scheduleMarkdown bool

const cellWidth = 12

var scheduleCmd = &cobra.Command{
	Use:     "schedule",
	Aliases: []string{"week"},
	Short:   "Show the weekly schedule grid",
	Long: `Show booked workouts on a Monday to Friday grid of half-hour slots
from 08:00 to 17:00. A workout appears in the slot where it starts.

Workouts on other days or at other times are listed under the grid.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := requireUser(); err != nil {
			return err
		}

		grid, err := manager.Schedule(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to build schedule: %w", err)
		}

		out := cmd.OutOrStdout()
		if scheduleMarkdown {
			fmt.Fprint(out, grid.Markdown())
			return nil
		}

		bold := color.New(color.Bold)
		faint := color.New(color.Faint)

		fmt.Fprint(out, padRight("", 6))
		for _, d := range schedule.Days {
			fmt.Fprint(out, bold.Sprint(padRight(d.String()[:3], cellWidth)))
		}
		fmt.Fprintln(out)

		for row, minute := range schedule.Slots {
			fmt.Fprint(out, faint.Sprint(padRight(schedule.FormatMinute(minute), 6)))
			for col := range schedule.Days {
				w := grid.Cells[row][col]
				if w == nil {
					fmt.Fprint(out, faint.Sprint(padRight("·", cellWidth)))
					continue
				}
				label := padRight(truncate(w.Title, cellWidth-1), cellWidth)
				r, g, b, ok := parseHexColor(w.Color)
				if !ok {
					fmt.Fprint(out, label)
					continue
				}
				fmt.Fprint(out, color.BgRGB(r, g, b).Sprint(label))
			}
			fmt.Fprintln(out)
		}

		if len(grid.Unplaced) > 0 {
			fmt.Fprintln(out)
			fmt.Fprintln(out, faint.Sprint("Not on the grid:"))
			for _, w := range grid.Unplaced {
				fmt.Fprintf(out, "  %s %s %s-%s\n", w.Title, w.Day, w.StartTime, w.EndTime)
			}
		}
		return nil
	},
}

func init() {
	scheduleCmd.Flags().BoolVar(&scheduleMarkdown, "markdown", false, "print a Markdown table")
	rootCmd.AddCommand(scheduleCmd)
}
