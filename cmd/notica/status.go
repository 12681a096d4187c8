package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ludolib/notica/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show notification counts for a profile",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	notifications := historyStore.List(globalOpts.profile, store.FilterOptions{})
	unread := historyStore.UnreadCount(globalOpts.profile)

	fmt.Printf("Profile:  %s\n", globalOpts.profile)
	fmt.Printf("Total:    %s\n", humanize.Comma(int64(len(notifications))))
	fmt.Printf("Unread:   %s\n", humanize.Comma(int64(unread)))

	byType := make(map[string]int)
	for _, n := range notifications {
		byType[string(n.Type)]++
	}
	if len(byType) > 0 {
		fmt.Println("By type:")
		for typ, count := range byType {
			fmt.Printf("  %-10s %d\n", typ, count)
		}
	}
	return nil
}
