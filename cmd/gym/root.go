// ABOUTME: Root Cobra command for gym CLI.
// ABOUTME: Opens config, logger, store and session manager via PersistentPre/PostRunE.
package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/harperreed/gym/internal/config"
	"github.com/harperreed/gym/internal/logging"
	"github.com/harperreed/gym/internal/models"
	"github.com/harperreed/gym/internal/session"
	"github.com/harperreed/gym/internal/storage"
	"github.com/spf13/cobra"
)

var (
	cfg     *config.Config
	logger  *log.Logger
	db      *storage.DB
	manager *session.Manager
)

// noStoreCommands run without opening the database.
var noStoreCommands = map[string]bool{
	"help":          true,
	"completion":    true,
	"install-skill": true,
}

// sharedStoreCommands keep the process-wide store for their whole run.
var sharedStoreCommands = map[string]bool{
	"mcp": true,
}

var rootCmd = &cobra.Command{
	Use:   "gym",
	Short: "Local gym class booking",
	Long: `Gym is a CLI for booking fitness classes and keeping a weekly workout schedule.

QUICK START:

  $ gym signup alice alice@example.com --password s3cret
  $ gym login alice --password s3cret
  $ gym classes                          # See what the gym offers
  $ gym join yoga                        # Book a class from the catalog
  $ gym book "Open Gym" Tue 08:30 09:30  # Book any slot
  $ gym schedule                         # Weekly grid, Mon-Fri 08:00-17:00
  $ gym workouts                         # List bookings with their IDs
  $ gym drop 3                           # Cancel a booking

PROFILE:

  $ gym profile show
  $ gym profile set --name Alice --height 170 --likes "yoga,running"

MCP INTEGRATION:

  Run 'gym mcp' to start the Model Context Protocol server for use with
  Claude Desktop or other MCP-compatible AI assistants. Add to your Claude
  config:

  {
    "mcpServers": {
      "gym": { "command": "gym", "args": ["mcp"] }
    }
  }

DATA STORAGE:

  Data lives in a SQLite database at ~/.local/share/gym/gym.db.
  Override with data_dir in ~/.config/gym/config.json or GYM_DATA_DIR.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if noStoreCommands[cmd.Name()] {
			return nil
		}
		return openSession(cmd.Context(), sharedStoreCommands[cmd.Name()])
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeSession()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func openSession(ctx context.Context, shared bool) error {
	// A previous command that failed skips PostRunE.
	if err := closeSession(); err != nil {
		return err
	}

	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger = logging.New(cfg)

	if shared {
		db, err = cfg.SharedStorage(storage.WithLogger(logger))
	} else {
		db, err = cfg.OpenStorage(storage.WithLogger(logger))
	}
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	manager = session.New(db, session.WithLogger(logger))

	return resumeSession(ctx)
}

// resumeSession restores the persisted login, dropping it if the user is gone.
func resumeSession(ctx context.Context) error {
	saved, err := config.LoadSession()
	if err != nil {
		logger.Warn("ignoring unreadable session file", "path", config.SessionPath(), "err", err)
		return nil
	}
	if saved == nil {
		return nil
	}

	if _, err := manager.Resume(ctx, saved.UserID, saved.SessionID, saved.LoggedInAt); err != nil {
		if errors.Is(err, session.ErrNotLoggedIn) {
			logger.Warn("saved session refers to a missing user", "user_id", saved.UserID)
			return config.ClearSession()
		}
		return err
	}
	return nil
}

func closeSession() error {
	if manager != nil {
		manager.Close()
		manager = nil
	}
	if db != nil {
		err := db.Close()
		db = nil
		return err
	}
	return nil
}

// requireUser returns the logged-in user or a hint to log in.
func requireUser() (*models.User, error) {
	u, err := manager.CurrentUser()
	if err != nil {
		return nil, fmt.Errorf("not logged in - run 'gym login <username>'")
	}
	return u, nil
}
