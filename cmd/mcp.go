package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/calegria/focus-cli/internal/adapters/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server over stdio",
	Long: `Expose the focus timer as MCP (Model Context Protocol) tools so
assistants can start, complete and browse sessions. The server speaks
the protocol on stdin/stdout until the client disconnects.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := setupSignalHandler()

		srv := mcp.NewServer(timerService)
		defer srv.Stop()

		if err := srv.Start(ctx); err != nil {
			return fmt.Errorf("mcp server error: %w", err)
		}
		return nil
	},
}
