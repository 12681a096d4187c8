package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ludolib/notica/internal/model"
	"github.com/ludolib/notica/internal/store"
)

var listOpts struct {
	typ        string
	priority   string
	unreadOnly bool
	since      string
	limit      int
	format     string
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List a profile's notifications",
	Long: `List a profile's notifications, newest first.

Examples:
  # All notifications for the default profile
  notica list

  # Unread game notifications from the last day
  notica list --type game --unread --since 24h

  # Export as JSON
  notica list --format json`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&listOpts.typ, "type", "t", "",
		"Filter by notification type")
	listCmd.Flags().StringVar(&listOpts.priority, "priority", "",
		"Filter by priority (low, normal, high, urgent)")
	listCmd.Flags().BoolVarP(&listOpts.unreadOnly, "unread", "u", false,
		"Only unread notifications")
	listCmd.Flags().StringVar(&listOpts.since, "since", "",
		"Show notifications from the last duration (e.g. 1h, 24h)")
	listCmd.Flags().IntVarP(&listOpts.limit, "limit", "n", 0,
		"Maximum number of notifications to show (0=unlimited)")
	listCmd.Flags().StringVarP(&listOpts.format, "format", "f", "plain",
		"Output format (plain, json, yaml)")
}

func runList(cmd *cobra.Command, args []string) error {
	opts := store.FilterOptions{
		Type:       model.Type(listOpts.typ),
		UnreadOnly: listOpts.unreadOnly,
		Limit:      listOpts.limit,
	}

	if listOpts.priority != "" {
		p := model.ParsePriority(listOpts.priority)
		opts.Priority = &p
	}
	if listOpts.since != "" {
		d, err := time.ParseDuration(listOpts.since)
		if err != nil {
			return fmt.Errorf("invalid --since duration: %w", err)
		}
		opts.Since = d
	}

	notifications := historyStore.List(globalOpts.profile, opts)

	switch listOpts.format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(notifications)

	case "yaml":
		return yaml.NewEncoder(os.Stdout).Encode(notifications)

	case "plain":
		for _, n := range notifications {
			marker := " "
			if !n.IsRead() {
				marker = "●"
			}
			fmt.Printf("%s %s  [%s/%s]  %s  %s\n",
				marker, n.ID, n.Type, n.Priority.String(),
				humanize.Time(time.Unix(n.CreatedAt, 0)), n.Title)
		}
		return nil

	default:
		return fmt.Errorf("unknown format %q (plain, json, yaml)", listOpts.format)
	}
}
