package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/calegria/focus-cli/internal/adapters/tui"
	"github.com/calegria/focus-cli/internal/domain"
)

var startMinutes float64

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start [title]",
	Short: "Start a focus session",
	Long: `Start a focus session without going through the form, then attach
the timer view. The title is taken from the arguments.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		title := strings.Join(args, " ")

		running, err := timerService.HasRunningTimer()
		if err != nil {
			return fmt.Errorf("failed to read timer state: %w", err)
		}
		if running {
			return fmt.Errorf("a session is already running; run \"focus\" to attach to it")
		}

		minutes := startMinutes
		if minutes == 0 {
			minutes = appConfig.Timer.DefaultMinutes
		}
		if minutes <= 0 || minutes > domain.MaxDurationMinutes {
			return fmt.Errorf("minutes must be in (0, %d]", domain.MaxDurationMinutes)
		}

		snap, err := timerService.Start(ctx, title, minutes)
		if err != nil {
			return err
		}

		return tui.Run(timerService, notifier, appConfig.Theme, &snap)
	},
}

func init() {
	startCmd.Flags().Float64VarP(&startMinutes, "minutes", "m", 0, "Planned duration in minutes (default: from config)")
}
