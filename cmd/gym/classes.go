// ABOUTME: CLI commands for the class catalog and booking.
// ABOUTME: join books a catalog class; book reserves an arbitrary slot.
package main

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/harperreed/gym/internal/session"
	"github.com/spf13/cobra"
)

var classesCmd = &cobra.Command{
	Use:     "classes",
	Aliases: []string{"catalog"},
	Short:   "List the classes the gym offers",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		faint := color.New(color.Faint)
		bold := color.New(color.Bold)

		for _, c := range manager.Classes.Get() {
			fmt.Fprintf(out, "%s %s %s\n",
				bold.Sprint(padRight(c.Title, 10)),
				padRight(c.Schedule, 22),
				faint.Sprintf("with %s", c.Trainer))
			fmt.Fprintf(out, "  %s\n", faint.Sprint(truncate(c.Description, 76)))
		}
		return nil
	},
}

var joinCmd = &cobra.Command{
	Use:   "join <class>",
	Short: "Book a class from the catalog",
	Long: `Book a class from the catalog by name (case-insensitive).

Booking the same class twice is reported and nothing changes.

EXAMPLES:

  gym join yoga
  gym join Boxing`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := requireUser()
		if err != nil {
			return err
		}

		outcome, err := manager.JoinCatalogClass(cmd.Context(), u.ID, args[0])
		if err != nil {
			if errors.Is(err, session.ErrUnknownClass) {
				return fmt.Errorf("unknown class: %s (see 'gym classes')", args[0])
			}
			return fmt.Errorf("failed to join class: %w", err)
		}

		reportOutcome(outcome, args[0])
		return nil
	},
}

var bookCmd = &cobra.Command{
	Use:   "book <title> <day> <start> <end>",
	Short: "Book an arbitrary workout slot",
	Long: `Book a workout in any slot.

Days are written Mon..Fri and times HH:MM. Workouts outside Monday to
Friday 08:00-17:00 are stored but do not appear on the schedule grid.

EXAMPLES:

  gym book "Open Gym" Tue 08:30 09:30
  gym book Swim Thu 16:00 17:00`,
	Args: cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := requireUser()
		if err != nil {
			return err
		}

		outcome, err := manager.JoinClass(cmd.Context(), u.ID, args[0], args[1], args[2], args[3])
		if err != nil {
			return fmt.Errorf("failed to book: %w", err)
		}

		reportOutcome(outcome, args[0])
		return nil
	},
}

func reportOutcome(outcome session.Outcome, title string) {
	if outcome == session.OutcomeDuplicate {
		color.Yellow("! Already booked: %s", title)
		return
	}
	color.Green("✓ Joined %s", title)
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

// padRight pads s with spaces to length columns, counting runes.
func padRight(s string, length int) string {
	n := utf8.RuneCountInString(s)
	if n >= length {
		return s
	}
	return s + strings.Repeat(" ", length-n)
}

func init() {
	rootCmd.AddCommand(classesCmd)
	rootCmd.AddCommand(joinCmd)
	rootCmd.AddCommand(bookCmd)
}
