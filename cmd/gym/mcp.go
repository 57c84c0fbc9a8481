// ABOUTME: CLI command for starting MCP server.
// ABOUTME: Runs stdio-based MCP server for Claude integration.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/harperreed/gym/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

MCP allows AI assistants like Claude to book classes and read your schedule
through a standardized protocol. The server communicates via stdin/stdout.
If you are logged in with 'gym login', the server starts logged in as you.

CLAUDE DESKTOP CONFIGURATION:

  Add this to your Claude Desktop config (claude_desktop_config.json):

  {
    "mcpServers": {
      "gym": {
        "command": "gym",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  signup              Register a new member
  login / logout      Start or end a session
  list_classes        The class catalog
  join_class          Book a catalog class or an explicit slot
  list_workouts       Booked workouts
  delete_workout      Cancel a booking
  get_schedule        Weekly grid as Markdown
  update_profile      Edit profile fields
  list_notifications  Notification feed

AVAILABLE RESOURCES:

  gym://classes        Class catalog
  gym://schedule       Weekly schedule of the logged-in member
  gym://notifications  Notification feed`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(manager, logger)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if u := manager.User.Get(); u != nil {
			if err := manager.LoadWorkouts(ctx, u.ID); err != nil {
				logger.Warn("could not follow workouts", "user_id", u.ID, "err", err)
			}
		}

		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
