package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ludolib/notica/internal/model"
)

var sendOpts struct {
	typ      string
	priority string
	message  string
	icon     string
	action   string
	source   string
	category string
	tags     []string
}

var sendCmd = &cobra.Command{
	Use:   "send <title>",
	Short: "Send a notification to a profile",
	Long: `Send a notification to a profile's history.

A running notification center picks it up through the history file and
refreshes its list.

Examples:
  # Simple notification
  notica send "Download complete" --message "Hollow Knight is ready to play"

  # Urgent security notification
  notica send "New login detected" --type security --priority urgent

  # Game notification with tags
  notica send "Cloud save conflict" --type game --tags sync,steam`,
	Args: cobra.ExactArgs(1),
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().StringVarP(&sendOpts.typ, "type", "t", "system",
		"Notification type (system, profile, security, update, game, store, custom)")
	sendCmd.Flags().StringVar(&sendOpts.priority, "priority", "normal",
		"Priority (low, normal, high, urgent)")
	sendCmd.Flags().StringVarP(&sendOpts.message, "message", "m", "",
		"Notification message body")
	sendCmd.Flags().StringVar(&sendOpts.icon, "icon", "",
		"Icon name or path")
	sendCmd.Flags().StringVar(&sendOpts.action, "action", "",
		"URL opened when the notification is activated")
	sendCmd.Flags().StringVar(&sendOpts.source, "source", "cli",
		"Originating component")
	sendCmd.Flags().StringVar(&sendOpts.category, "category", "",
		"Free-form category")
	sendCmd.Flags().StringSliceVar(&sendOpts.tags, "tags", nil,
		"Comma-separated tags")
}

func runSend(cmd *cobra.Command, args []string) error {
	title := strings.TrimSpace(args[0])

	n, err := model.New(
		globalOpts.profile,
		model.Type(sendOpts.typ),
		model.ParsePriority(sendOpts.priority),
		title,
		sendOpts.message,
	)
	if err != nil {
		return err
	}
	n.Icon = sendOpts.icon
	n.ActionURL = sendOpts.action
	n.Source = sendOpts.source
	n.Category = sendOpts.category
	n.Tags = sendOpts.tags

	if err := historyStore.Add(*n); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}

	fmt.Println(n.ID)
	return nil
}
