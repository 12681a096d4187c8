package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clearOpts struct {
	yes bool
}

var clearCmd = &cobra.Command{
	Use:   "clear [id]",
	Short: "Delete notifications",
	Long: `Delete one notification by id, or every notification of a profile.

Examples:
  # Delete a single notification
  notica clear 01J8X2K3V4W5Y6Z7A8B9C0D1E2

  # Wipe the default profile's history
  notica clear --yes`,
	RunE: runClear,
}

func init() {
	rootCmd.AddCommand(clearCmd)

	clearCmd.Flags().BoolVarP(&clearOpts.yes, "yes", "y", false,
		"Confirm clearing the whole profile")
}

func runClear(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		if err := historyStore.Delete(args[0]); err != nil {
			return fmt.Errorf("failed to delete notification: %w", err)
		}
		return nil
	}

	if !clearOpts.yes {
		return fmt.Errorf("clearing profile %q removes its whole history; pass --yes to confirm",
			globalOpts.profile)
	}
	if err := historyStore.ClearAll(globalOpts.profile); err != nil {
		return fmt.Errorf("failed to clear notifications: %w", err)
	}
	return nil
}
