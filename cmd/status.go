package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/focushive/hivetimer/internal/domain"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session and today's stats",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		client := api()

		snap, err := client.Current(ctx)
		if err != nil {
			return fmt.Errorf("failed to get current session: %w", err)
		}

		stats, err := client.DailyStats(ctx, "")
		if err != nil {
			return fmt.Errorf("failed to get today's stats: %w", err)
		}

		if jsonOutput {
			return printJSON(map[string]any{
				"session": snap,
				"today":   stats,
			})
		}

		if snap == nil {
			fmt.Println("No active session.")
		} else {
			printSession(snap)
		}

		fmt.Println("\nToday:")
		fmt.Printf("   Sessions: %d started, %d completed\n", stats.SessionsStarted, stats.SessionsCompleted)
		fmt.Printf("   Focus time: %dm\n", stats.TotalFocusMinutes)
		if stats.TotalBreakMinutes > 0 {
			fmt.Printf("   Break time: %dm\n", stats.TotalBreakMinutes)
			fmt.Printf("   Focus ratio: %.0f%%\n", stats.FocusRatio*100)
		}
		return nil
	},
}

func printSession(snap *domain.SessionSnapshot) {
	label := string(snap.Type)
	if snap.Title != "" {
		label = fmt.Sprintf("%s (%s)", snap.Title, snap.Type)
	}
	fmt.Printf("Active session: %s\n", label)
	fmt.Printf("   Status: %s\n", snap.Status)
	fmt.Printf("   Remaining: %dm of %dm\n", snap.RemainingMinutes, snap.PlannedMinutes)
	if snap.Interruptions > 0 {
		fmt.Printf("   Interruptions: %d (%dm paused)\n", snap.Interruptions, snap.TotalPausedMinutes)
	}
	if snap.HiveID != nil {
		fmt.Printf("   Hive: %s\n", *snap.HiveID)
	}
}

// printJSON writes the value to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
