// ABOUTME: CLI command for the notification feed.
// ABOUTME: Prints each notification with its relative timestamp.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"inbox"},
	Short:   "Show notifications",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		faint := color.New(color.Faint)
		bold := color.New(color.Bold)

		for _, n := range manager.Notifications() {
			fmt.Fprintf(out, "%s %s\n", bold.Sprint(n.Title), faint.Sprintf("(%s)", n.Timestamp))
			fmt.Fprintf(out, "  %s\n", n.Description)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(notificationsCmd)
}
