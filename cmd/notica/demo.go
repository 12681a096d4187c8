package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ludolib/notica/internal/audio"
	"github.com/ludolib/notica/internal/geometry"
	"github.com/ludolib/notica/internal/model"
	"github.com/ludolib/notica/internal/surface"
	"github.com/ludolib/notica/internal/toast"
	"github.com/ludolib/notica/internal/tui"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a scripted toast coordination demo",
	Long: `Run a scripted demo of the toast coordinator: sends a burst of
notifications, opens a blocking modal so non-urgent toasts queue up, then
closes it to drain the queue. Placement decisions are printed as they
happen.`,
	RunE: runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

func runDemo(cmd *cobra.Command, args []string) error {
	registry := surface.NewRegistry()
	registry.SetViewport(geometry.Viewport{Width: 1920, Height: 1080})

	cues := audio.NewManager(cfg.Audio, logger)
	defer cues.Close()

	coordinator := toast.NewCoordinator(cfg, registry, logger,
		toast.WithFilter(prefsManager),
		toast.WithSounder(cues),
		toast.WithRenderFunc(func(n *model.Notification, p geometry.Placement) {
			fmt.Printf("  show at (%d,%d):\n%s\n", p.X, p.Y, tui.RenderToast(n, p, 40))
		}),
		toast.WithDismissFunc(func(id string, reason toast.DismissReason) {
			fmt.Printf("  dismiss %s (%s)\n", id, reason)
		}),
	)
	coordinator.Start()
	defer coordinator.Stop()

	send := func(title string, typ model.Type, priority model.Priority) {
		n, err := model.New(globalOpts.profile, typ, priority, title, "demo notification")
		if err != nil {
			logger.Warn("failed to build demo notification", "error", err)
			return
		}
		if err := coordinator.Notify(n); err != nil {
			fmt.Printf("  rejected %s: %v\n", title, err)
		}
	}

	fmt.Printf("Placement transitions animate over %s\n\n", coordinator.AnimationDuration())

	fmt.Println("Sending a burst of notifications:")
	send("Download complete", model.TypeGame, model.PriorityNormal)
	send("Friend request", model.TypeProfile, model.PriorityLow)
	send("Update available", model.TypeUpdate, model.PriorityHigh)
	time.Sleep(200 * time.Millisecond)
	fmt.Printf("Visible: %d, queued: %d\n\n",
		len(coordinator.VisibleToasts()), coordinator.QueuedCount())

	fmt.Println("Opening a modal; non-urgent notifications defer:")
	modal := registry.Open(surface.Surface{
		Kind:   surface.KindModal,
		Rect:   geometry.Rect{X: 560, Y: 240, Width: 800, Height: 600},
		ZIndex: 100,
	})
	time.Sleep(200 * time.Millisecond)

	send("Sale started", model.TypeStore, model.PriorityNormal)
	send("Achievement unlocked", model.TypeGame, model.PriorityLow)
	fmt.Printf("Visible: %d, queued: %d\n\n",
		len(coordinator.VisibleToasts()), coordinator.QueuedCount())

	fmt.Println("Urgent bypasses the modal:")
	send("New login detected", model.TypeSecurity, model.PriorityUrgent)
	time.Sleep(200 * time.Millisecond)

	fmt.Println("\nClosing the modal; the queue drains:")
	registry.Close(modal)
	time.Sleep(time.Second)

	stats := coordinator.Stats()
	fmt.Printf("\nFinal state: visible=%d hidden=%d queued=%d pending_dismissals=%d\n",
		stats.Stack.Visible, stats.Stack.Hidden, stats.Queued, stats.PendingDismissals)
	return nil
}
