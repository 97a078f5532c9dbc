package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/calegria/focus-cli/internal/domain"
)

var listDate string

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded sessions",
	Long:  `List the sessions recorded on a day (default: today).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		date := listDate
		if date == "" {
			date = time.Now().Format(domain.DateLayout)
		}
		if _, err := time.Parse(domain.DateLayout, date); err != nil {
			return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
		}

		sessions, err := timerService.SessionsByDate(ctx, date)
		if err != nil {
			return fmt.Errorf("failed to list sessions: %w", err)
		}

		if jsonOutput {
			data := map[string]interface{}{
				"date":     date,
				"sessions": sessions,
				"count":    len(sessions),
			}
			jsonData, err := json.MarshalIndent(data, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal sessions: %w", err)
			}
			fmt.Println(string(jsonData))
			return nil
		}

		if len(sessions) == 0 {
			fmt.Printf("No sessions on %s.\n", date)
			return nil
		}

		fmt.Printf("📋 Sessions on %s (%d):\n\n", date, len(sessions))

		titleWidth := listTitleWidth()
		var total float64
		for _, session := range sessions {
			rating := " —"
			if session.Rating != nil {
				rating = fmt.Sprintf("%2d", *session.Rating)
			}
			status := "open"
			if session.IsCompleted() {
				status = domain.FormatTotalMinutes(session.DurationMinutes)
				total += session.DurationMinutes
			}
			fmt.Printf("%s  %-*s %6s  %s\n",
				session.StartTime.Local().Format("15:04"),
				titleWidth, truncateTitle(session.Title, titleWidth),
				status, rating)
		}

		fmt.Printf("\nTotal: %s\n", domain.FormatTotalMinutes(total))
		return nil
	},
}

func init() {
	listCmd.Flags().StringVarP(&listDate, "date", "d", "", "Day to list, formatted as YYYY-MM-DD (default: today)")
}

// listTitleWidth sizes the title column to the terminal, leaving room for
// the time, duration and rating columns.
func listTitleWidth() int {
	w, _, err := term.GetSize(os.Stdout.Fd())
	if err != nil || w <= 0 {
		w = 80
	}
	width := w - 20
	if width < 20 {
		width = 20
	}
	if width > 60 {
		width = 60
	}
	return width
}

func truncateTitle(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
