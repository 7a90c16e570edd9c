package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/focushive/hivetimer/internal/domain"
)

var (
	statsDate  string
	statsWeek  string
	statsMonth string
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show productivity stats and streaks",
	Long: `Show productivity stats. By default today's aggregate and your streak
are shown; --week and --month show day-by-day tables.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		client := api()

		if cmd.Flags().Changed("week") {
			days, err := client.WeeklyStats(ctx, strings.TrimSpace(statsWeek))
			if err != nil {
				return fmt.Errorf("failed to fetch weekly stats: %w", err)
			}
			return printDays(days)
		}

		if cmd.Flags().Changed("month") {
			days, err := client.MonthlyStats(ctx, strings.TrimSpace(statsMonth))
			if err != nil {
				return fmt.Errorf("failed to fetch monthly stats: %w", err)
			}
			return printDays(days)
		}

		daily, err := client.DailyStats(ctx, statsDate)
		if err != nil {
			return fmt.Errorf("failed to fetch daily stats: %w", err)
		}
		streak, err := client.Streak(ctx)
		if err != nil {
			return fmt.Errorf("failed to fetch streak: %w", err)
		}

		if jsonOutput {
			return printJSON(map[string]any{"daily": daily, "streak": streak})
		}

		fmt.Printf("%s:\n", daily.Date.Format("2006-01-02"))
		fmt.Printf("   Sessions: %d started, %d completed\n", daily.SessionsStarted, daily.SessionsCompleted)
		fmt.Printf("   Focus time: %dm\n", daily.TotalFocusMinutes)
		if daily.TotalBreakMinutes > 0 {
			fmt.Printf("   Break time: %dm (focus ratio %.0f%%)\n", daily.TotalBreakMinutes, daily.FocusRatio*100)
		}
		fmt.Printf("\nStreak: %d days (longest %d)\n", streak.CurrentStreak, streak.LongestStreak)
		fmt.Printf("Trend: %s\n", streak.Trend)
		return nil
	},
}

func printDays(days []domain.ProductivityStats) error {
	if jsonOutput {
		return printJSON(days)
	}
	if len(days) == 0 {
		fmt.Println("No activity in this range.")
		return nil
	}
	for _, d := range days {
		fmt.Printf("%s  %2d completed  %4dm focus", d.Date.Format("2006-01-02"), d.SessionsCompleted, d.TotalFocusMinutes)
		if d.TotalBreakMinutes > 0 {
			fmt.Printf("  %3dm break", d.TotalBreakMinutes)
		}
		fmt.Println()
	}
	return nil
}

func init() {
	statsCmd.Flags().StringVar(&statsDate, "date", "", "Day to show (YYYY-MM-DD, default today)")
	statsCmd.Flags().StringVar(&statsWeek, "week", "", "Show the week starting at this date (YYYY-MM-DD, default today)")
	statsCmd.Flags().Lookup("week").NoOptDefVal = " "
	statsCmd.Flags().StringVar(&statsMonth, "month", "", "Show this month day by day (YYYY-MM, default current)")
	statsCmd.Flags().Lookup("month").NoOptDefVal = " "
}
