// Package cmd provides the CLI commands for the Focus application.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/calegria/focus-cli/internal/adapters/httpapi"
	"github.com/calegria/focus-cli/internal/adapters/notification"
	"github.com/calegria/focus-cli/internal/adapters/snapshot"
	"github.com/calegria/focus-cli/internal/adapters/tui"
	"github.com/calegria/focus-cli/internal/config"
	"github.com/calegria/focus-cli/internal/domain"
	"github.com/calegria/focus-cli/internal/ports"
	"github.com/calegria/focus-cli/internal/services"
)

var (
	// Version info (set at build time via ldflags)
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"

	// Global flags
	serverURL  string
	jsonOutput bool

	// Global dependencies
	appConfig    *config.Config
	backend      *httpapi.Client
	snapshots    ports.SnapshotStore
	timerService *services.TimerService
	notifier     *notification.Notifier
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "focus",
	Short: "Focus - a personal focus-session timer",
	Long: `Focus is a terminal focus timer. Sessions are recorded on a small
local server so history and day totals survive client restarts.

Run "focus" with no arguments to open the interactive timer.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeServices()
	},
	RunE: runShell,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Backend base URL (default: from ~/.focus/config.toml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output results in JSON format")

	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("Focus CLI\nVersion: {{.Version}}\n")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(shutdownCmd)
	rootCmd.AddCommand(mcpCmd)
}

// initializeServices sets up the client-side services and adapters.
func initializeServices() error {
	var err error
	appConfig, err = config.Load()
	if err != nil {
		// If config loading fails, use defaults
		appConfig = config.DefaultConfig()
	}

	notifier = notification.New(&appConfig.Notifications)

	baseURL := appConfig.Server.BaseURL()
	if serverURL != "" {
		baseURL = serverURL
	}
	backend = httpapi.New(baseURL)

	snapshots, err = snapshot.NewFileStore(config.GetSnapshotPath(appConfig))
	if err != nil {
		return fmt.Errorf("failed to initialize snapshot store: %w", err)
	}

	timerService = services.NewTimerService(backend, snapshots)
	return nil
}

// setupSignalHandler sets up a context that cancels on interrupt signals.
func setupSignalHandler() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		cancel()
	}()

	return ctx
}

// resumedSnapshot loads the persisted timer snapshot, if one exists.
func resumedSnapshot() (*domain.TimerSnapshot, error) {
	snap, err := timerService.Resume()
	if errors.Is(err, ports.ErrNoSnapshot) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read timer snapshot: %w", err)
	}
	return &snap, nil
}

// runShell launches the interactive shell TUI for the bare "focus" command.
func runShell(cmd *cobra.Command, args []string) error {
	resumed, err := resumedSnapshot()
	if err != nil {
		return err
	}
	return tui.Run(timerService, notifier, appConfig.Theme, resumed)
}
