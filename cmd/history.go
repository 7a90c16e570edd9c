package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	historyPage int
	historySize int
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past sessions, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		items, err := api().History(ctx, historyPage, historySize)
		if err != nil {
			return fmt.Errorf("failed to fetch history: %w", err)
		}

		if jsonOutput {
			return printJSON(items)
		}

		if len(items) == 0 {
			fmt.Println("No sessions on this page.")
			return nil
		}

		for _, snap := range items {
			line := fmt.Sprintf("%s  %-9s %-9s %3dm", snap.StartedAt.Local().Format("2006-01-02 15:04"), snap.Type, snap.Status, snap.PlannedMinutes)
			if snap.ProductivityScore != nil {
				line += fmt.Sprintf("  score %d", *snap.ProductivityScore)
			}
			if snap.Title != "" {
				line += "  " + snap.Title
			}
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyPage, "page", 0, "Zero-based page number")
	historyCmd.Flags().IntVar(&historySize, "size", 20, "Sessions per page")
}
