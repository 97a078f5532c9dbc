package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/calegria/focus-cli/internal/domain"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the running timer, if any",
	Long:  `Print the state of the local timer snapshot without entering the TUI.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		resumed, err := resumedSnapshot()
		if err != nil {
			return err
		}

		if jsonOutput {
			data := map[string]interface{}{"running": resumed != nil}
			if resumed != nil {
				now := time.Now()
				data["session_id"] = resumed.ID
				data["title"] = resumed.Title
				data["end_time"] = resumed.EndTime.Format(time.RFC3339)
				data["remaining"] = domain.FormatRemaining(resumed.Remaining(now))
				data["overdue"] = resumed.Expired(now)
			}
			jsonData, err := json.MarshalIndent(data, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal status: %w", err)
			}
			fmt.Println(string(jsonData))
			return nil
		}

		if resumed == nil {
			fmt.Println("No timer running.")
			return nil
		}

		now := time.Now()
		if resumed.Expired(now) {
			fmt.Printf("⏰ \"%s\" is overdue — run \"focus\" to complete it.\n", resumed.Title)
			return nil
		}

		fmt.Printf("⏱ \"%s\" — %s remaining (ends %s)\n",
			resumed.Title,
			domain.FormatRemaining(resumed.Remaining(now)),
			resumed.EndTime.Local().Format("15:04"))
		return nil
	},
}
