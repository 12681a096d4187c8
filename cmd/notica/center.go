package main

import (
	"github.com/spf13/cobra"

	"github.com/ludolib/notica/internal/config"
	"github.com/ludolib/notica/internal/tui"
)

var centerCmd = &cobra.Command{
	Use:   "center",
	Short: "Launch the interactive notification center",
	Long: `Launch the terminal notification center for a profile.

The center provides:
  - Scrollable list of notifications with unread markers
  - Search/filter functionality
  - Detail view with full notification content
  - Mark read, delete and clear actions
  - Copy to clipboard as text, JSON or YAML
  - Real-time updates when other processes send notifications

Key bindings:
  j/k, ↑/↓    Navigate list
  enter       View details (marks read)
  m / M       Mark read / mark all read
  D / X       Delete / clear all
  u           Toggle unread only
  /           Search notifications
  ?           Show help
  q           Quit`,
	RunE: runCenter,
}

func init() {
	rootCmd.AddCommand(centerCmd)
}

func runCenter(cmd *cobra.Command, args []string) error {
	historyPath := globalOpts.historyFile
	if historyPath == "" {
		var err error
		historyPath, err = config.HistoryPath()
		if err != nil {
			logger.Warn("failed to resolve history path", "error", err)
			historyPath = ""
		}
	}

	return tui.Run(tui.RunOptions{
		Config:      cfg,
		Store:       historyStore,
		ProfileID:   globalOpts.profile,
		HistoryPath: historyPath,
	})
}
