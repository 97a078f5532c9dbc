package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/calegria/focus-cli/internal/adapters/storage"
	"github.com/calegria/focus-cli/internal/config"
	"github.com/calegria/focus-cli/internal/server"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the session backend server",
	Long: `Run the HTTP server that stores sessions and serves history.
The server keeps running until "focus shutdown", a quit from the TUI,
or an interrupt signal.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := appConfig.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}
		if addr == "" {
			addr = config.DefaultServerAddr
		}

		dbPath := config.GetDBPath(appConfig)
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}

		store, err := storage.New(dbPath)
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}

		logger, err := server.NewProductionLogger()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer logger.Sync()

		return server.New(addr, store, logger).Run()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: from config, "+config.DefaultServerAddr+")")
}
