// Package main provides the CLI entrypoint for notica.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ludolib/notica/internal/config"
	"github.com/ludolib/notica/internal/prefs"
	"github.com/ludolib/notica/internal/store"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// Global configuration and state
var (
	cfg        *config.Config
	globalOpts struct {
		verbose     bool
		profile     string
		historyFile string
		configPath  string
	}
	logger *slog.Logger

	historyStore *store.Store
	prefsManager *prefs.Manager
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "notica",
	Short: "In-app notification center for game library profiles",
	Long: `notica manages in-app notifications for a game library manager.

It keeps a per-profile notification history, shows toasts positioned
around open dialogs and menus, and defers non-urgent notifications while
a blocking surface is on screen.

Running notica without a subcommand launches the notification center.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogger()

		var err error
		cfg, err = config.Load(globalOpts.configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// debug_mode in the config forces debug diagnostics without -v
		if cfg.DebugMode && !globalOpts.verbose {
			applyLogLevel(cfg.LogLevel())
		}

		if err := config.EnsureDataDir(); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}

		historyPath := globalOpts.historyFile
		if historyPath == "" {
			historyPath, err = config.HistoryPath()
			if err != nil {
				return fmt.Errorf("failed to resolve history path: %w", err)
			}
		}

		persistence, err := store.NewJSONLPersistence(historyPath)
		if err != nil {
			return fmt.Errorf("failed to initialize persistence: %w", err)
		}

		historyStore = store.NewStore(persistence, cfg.Store.HistoryLength)
		if err := historyStore.Hydrate(); err != nil {
			logger.Warn("failed to hydrate store from disk", "error", err)
		}

		prefsManager, err = prefs.NewManager(prefsPath())
		if err != nil {
			logger.Warn("failed to load preferences", "error", err)
			prefsManager, _ = prefs.NewManager("")
		}

		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if historyStore != nil {
			return historyStore.Close()
		}
		return nil
	},
	// Default to the notification center when no subcommand is provided
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCenter(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&globalOpts.profile, "profile", "p", "default",
		"Profile to operate on")
	rootCmd.PersistentFlags().StringVar(&globalOpts.historyFile, "history-file", "",
		"Path to history file (default: ~/.local/share/notica/history.jsonl)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: ~/.config/notica/notica.toml)")
}

// setupLogger configures the global slog logger from the command flags.
func setupLogger() {
	level := slog.LevelWarn
	if globalOpts.verbose {
		level = slog.LevelDebug
	}
	applyLogLevel(level)
}

func applyLogLevel(level slog.Level) {
	opts := &slog.HandlerOptions{
		Level: level,
	}

	// Log to stderr so stdout is clean for output
	handler := slog.NewTextHandler(os.Stderr, opts)
	logger = slog.New(handler)
	slog.SetDefault(logger)
}

// prefsPath returns the path to the per-profile preferences file.
func prefsPath() string {
	path, err := config.Path()
	if err != nil {
		return ""
	}
	return filepath.Join(filepath.Dir(path), "prefs.toml")
}
