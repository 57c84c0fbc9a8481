// ABOUTME: CLI commands for signup, login, logout, and whoami.
// ABOUTME: A successful login is remembered in the session file between runs.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/gym/internal/config"
	"github.com/harperreed/gym/internal/models"
	"github.com/harperreed/gym/internal/session"
	"github.com/spf13/cobra"
)

var (
	signupPassword string
	signupName     string
	signupSurname  string
	loginPassword  string
)

var signupCmd = &cobra.Command{
	Use:   "signup <username> <email>",
	Short: "Register a new member",
	Long: `Register a new gym member. Usernames are unique.

If --password is not given, the password is read from stdin.

EXAMPLES:

  gym signup alice alice@example.com --password s3cret
  gym signup bob bob@example.com --name Bob --surname Jones`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		password := signupPassword
		if password == "" {
			var err error
			password, err = readLine(cmd.InOrStdin(), "Password: ")
			if err != nil {
				return err
			}
		}

		candidate := models.NewUser(args[0], args[1]).WithName(signupName, signupSurname)
		u, err := manager.Signup(cmd.Context(), candidate, password)
		if err != nil {
			if errors.Is(err, session.ErrUsernameTaken) {
				return fmt.Errorf("username %q is already taken", args[0])
			}
			return fmt.Errorf("signup failed: %w", err)
		}

		color.Green("✓ Registered %s", u.Username)
		fmt.Printf("  %s\n", color.New(color.Faint).Sprintf("id %d", u.ID))
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Log in",
	Long: `Log in as a member. The login is remembered until 'gym logout'.

If --password is not given, the password is read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password := loginPassword
		if password == "" {
			var err error
			password, err = readLine(cmd.InOrStdin(), "Password: ")
			if err != nil {
				return err
			}
		}

		u, err := manager.Login(cmd.Context(), args[0], password)
		if err != nil {
			_ = config.ClearSession()
			if errors.Is(err, session.ErrInvalidCredentials) {
				return fmt.Errorf("invalid username or password")
			}
			return fmt.Errorf("login failed: %w", err)
		}

		err = config.SaveSession(&config.Session{
			UserID:     u.ID,
			SessionID:  manager.SessionID(),
			LoggedInAt: manager.LoggedInAt(),
		})
		if err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}

		color.Green("✓ Logged in as %s", u.Username)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		manager.Logout()
		if err := config.ClearSession(); err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}
		color.Yellow("✗ Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in member",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := requireUser()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", u.Username, color.New(color.Faint).Sprintf("(id %d)", u.ID))
		return nil
	},
}

// readLine prompts on stdout and reads one line from in.
func readLine(in io.Reader, prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func init() {
	signupCmd.Flags().StringVarP(&signupPassword, "password", "p", "", "password (prompted if omitted)")
	signupCmd.Flags().StringVar(&signupName, "name", "", "first name")
	signupCmd.Flags().StringVar(&signupSurname, "surname", "", "surname")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "password (prompted if omitted)")

	rootCmd.AddCommand(signupCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}
