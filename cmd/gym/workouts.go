// ABOUTME: CLI commands for listing and cancelling booked workouts.
// ABOUTME: Each workout is shown with its color swatch and numeric ID.
package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/harperreed/gym/internal/models"
	"github.com/spf13/cobra"
)

var workoutsCmd = &cobra.Command{
	Use:     "workouts",
	Aliases: []string{"ls"},
	Short:   "List booked workouts",
	Long: `List the logged-in member's booked workouts.

OUTPUT FORMAT:

  Each line shows: ID  COLOR  TITLE  DAY  START-END

  Use the ID with 'gym drop' to cancel a booking.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := requireUser(); err != nil {
			return err
		}

		workouts, err := manager.ListWorkouts(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list workouts: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(workouts) == 0 {
			fmt.Fprintln(out, "No workouts booked.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, w := range workouts {
			fmt.Fprintf(out, "%s %s %s %s %s-%s\n",
				faint.Sprint(padRight(strconv.FormatInt(w.ID, 10), 4)),
				swatch(w.Color),
				padRight(w.Title, 12),
				padRight(w.Day, 4),
				w.StartTime,
				w.EndTime)
		}
		return nil
	},
}

var dropCmd = &cobra.Command{
	Use:     "drop <id>",
	Aliases: []string{"cancel", "rm"},
	Short:   "Cancel a booked workout",
	Long: `Cancel one of your booked workouts by the ID shown in 'gym workouts'.

CAUTION:

  This permanently deletes the booking. There is no undo.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := requireUser(); err != nil {
			return err
		}

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid workout id: %s", args[0])
		}

		workouts, err := manager.ListWorkouts(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list workouts: %w", err)
		}

		var target *models.Workout
		for _, w := range workouts {
			if w.ID == id {
				target = w
				break
			}
		}
		if target == nil {
			return fmt.Errorf("workout not found: %d", id)
		}

		if err := manager.DeleteWorkout(cmd.Context(), target); err != nil {
			return fmt.Errorf("failed to delete workout: %w", err)
		}

		color.Yellow("✗ Cancelled %s", target.Title)
		fmt.Printf("  %s %s %s-%s\n",
			color.New(color.Faint).Sprint(target.ID),
			target.Day, target.StartTime, target.EndTime)
		return nil
	},
}

// swatch renders a two-cell block in the workout's "#RRGGBB" color.
func swatch(hex string) string {
	r, g, b, ok := parseHexColor(hex)
	if !ok {
		return "  "
	}
	return color.BgRGB(r, g, b).Sprint("  ")
}

func parseHexColor(hex string) (r, g, b int, ok bool) {
	if len(hex) != 7 || hex[0] != '#' {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return int(v >> 16 & 0xFF), int(v >> 8 & 0xFF), int(v & 0xFF), true
}

func init() {
	rootCmd.AddCommand(workoutsCmd)
	rootCmd.AddCommand(dropCmd)
}
