// ABOUTME: CLI commands for exporting and importing gym data.
// ABOUTME: Supports JSON, YAML, and Markdown export formats.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/gym/internal/storage"
	"github.com/spf13/cobra"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export gym data",
	Long: `Export gym data in various formats.

FORMATS:

  json       Full JSON export of all members and bookings (backup/restore)
  yaml       YAML export, bookings nested under each member, no password hashes
  markdown   Your weekly schedule and bookings as Markdown (requires login)

OPTIONS:

  --output, -o   Write to file instead of stdout

EXAMPLES:

  gym export json -o backup.json
  gym export yaml
  gym export markdown > week.md`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"json", "yaml", "markdown"},
	RunE: func(cmd *cobra.Command, args []string) error {
		format := args[0]

		var data []byte
		var err error

		switch format {
		case "json":
			data, err = db.ExportJSON(cmd.Context())
		case "yaml":
			data, err = db.ExportYAML(cmd.Context())
		case "markdown":
			var md string
			md, err = exportMarkdown(cmd)
			data = []byte(md)
		default:
			return fmt.Errorf("unknown format: %s (use json, yaml, or markdown)", format)
		}

		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, data, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			color.Green("✓ Exported to %s", exportOutput)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
		}

		return nil
	},
}

func exportMarkdown(cmd *cobra.Command) (string, error) {
	u, err := requireUser()
	if err != nil {
		return "", err
	}

	workouts, err := manager.ListWorkouts(cmd.Context())
	if err != nil {
		return "", err
	}
	grid, err := manager.Schedule(cmd.Context())
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	now := time.Now()

	sb.WriteString(fmt.Sprintf("# Gym Export - %s\n\n", now.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", now.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("## Schedule for %s\n\n", u.Username))
	sb.WriteString(grid.Markdown())

	sb.WriteString("\n## Bookings\n\n")
	if len(workouts) == 0 {
		sb.WriteString("No workouts booked.\n")
		return sb.String(), nil
	}
	sb.WriteString("| ID | Title | Day | Time | Color |\n")
	sb.WriteString("|----|-------|-----|------|-------|\n")
	for _, w := range workouts {
		sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s-%s | %s |\n",
			w.ID, w.Title, w.Day, w.StartTime, w.EndTime, w.Color))
	}
	return sb.String(), nil
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import gym data from JSON",
	Long: `Import gym data from a JSON backup file.

This imports members and bookings from a previously exported JSON file.
Rows with the same ID are replaced. If any row fails, nothing is imported.

EXAMPLES:

  gym import backup.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]

		data, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		exportData, err := storage.DecodeJSON(data)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}
		if err := manager.Import(cmd.Context(), exportData); err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		color.Green("✓ Imported from %s", filename)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
