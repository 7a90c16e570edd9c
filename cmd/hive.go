package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// hiveCmd represents the hive command
var hiveCmd = &cobra.Command{
	Use:   "hive <hive-id>",
	Short: "Show who is focusing in a hive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		hiveID := args[0]

		items, err := api().HiveSessions(ctx, hiveID)
		if err != nil {
			return fmt.Errorf("failed to fetch hive sessions: %w", err)
		}

		if jsonOutput {
			return printJSON(items)
		}

		if len(items) == 0 {
			fmt.Printf("Nobody is focusing in %s right now.\n", hiveID)
			return nil
		}

		fmt.Printf("%d focusing in %s:\n", len(items), hiveID)
		for _, snap := range items {
			label := string(snap.Type)
			if snap.Title != "" {
				label = snap.Title
			}
			fmt.Printf("   %-20s %s, %dm remaining (%s)\n", snap.UserID, label, snap.RemainingMinutes, snap.Status)
		}
		return nil
	},
}
