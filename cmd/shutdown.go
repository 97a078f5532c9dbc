package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// shutdownCmd represents the shutdown command
var shutdownCmd = &cobra.Command{
	Use:   "shutdown",
	Short: "Stop the session backend server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := timerService.ShutdownServer(context.Background()); err != nil {
			return fmt.Errorf("failed to stop server: %w", err)
		}
		fmt.Println("Server shutdown requested.")
		return nil
	},
}
