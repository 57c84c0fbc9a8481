// ABOUTME: CLI command for deleting the logged-in account.
// ABOUTME: Removes the member and every booking, then logs out.
package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/gym/internal/config"
	"github.com/spf13/cobra"
)

var deleteAccountYes bool

var deleteAccountCmd = &cobra.Command{
	Use:   "delete-account",
	Short: "Delete your account and all bookings",
	Long: `Delete the logged-in account together with all of its booked workouts.

CAUTION:

  This is permanent. There is no undo.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := requireUser()
		if err != nil {
			return err
		}

		if !deleteAccountYes {
			answer, err := readLine(cmd.InOrStdin(), fmt.Sprintf("Delete account %s and all bookings? [y/N] ", u.Username))
			if err != nil {
				return err
			}
			answer = strings.ToLower(strings.TrimSpace(answer))
			if answer != "y" && answer != "yes" {
				fmt.Println("Canceled.")
				return nil
			}
		}

		if err := manager.DeleteAccount(cmd.Context()); err != nil {
			return fmt.Errorf("failed to delete account: %w", err)
		}
		if err := config.ClearSession(); err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}

		color.Yellow("✗ Deleted account %s", u.Username)
		return nil
	},
}

func init() {
	deleteAccountCmd.Flags().BoolVarP(&deleteAccountYes, "yes", "y", false, "skip confirmation prompt")
	rootCmd.AddCommand(deleteAccountCmd)
}
