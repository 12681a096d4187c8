package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var readOpts struct {
	all bool
}

var readCmd = &cobra.Command{
	Use:   "read [id]",
	Short: "Mark notifications as read",
	Long: `Mark one notification, or every notification of a profile, as read.

Examples:
  # Mark a single notification read
  notica read 01J8X2K3V4W5Y6Z7A8B9C0D1E2

  # Mark everything in the work profile read
  notica read --all --profile work`,
	RunE: runRead,
}

func init() {
	rootCmd.AddCommand(readCmd)

	readCmd.Flags().BoolVarP(&readOpts.all, "all", "a", false,
		"Mark all of the profile's notifications read")
}

func runRead(cmd *cobra.Command, args []string) error {
	if readOpts.all {
		if err := historyStore.MarkAllRead(globalOpts.profile); err != nil {
			return fmt.Errorf("failed to mark all read: %w", err)
		}
		return nil
	}

	if len(args) != 1 {
		return fmt.Errorf("expected a notification id or --all")
	}

	if historyStore.Get(args[0]) == nil {
		return fmt.Errorf("unknown notification id %q", args[0])
	}
	if err := historyStore.MarkRead(args[0]); err != nil {
		return fmt.Errorf("failed to mark read: %w", err)
	}
	return nil
}
