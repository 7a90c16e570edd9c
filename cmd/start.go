package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/focushive/hivetimer/internal/adapters/gitinfo"
	"github.com/focushive/hivetimer/internal/domain"
)

var (
	startType    string
	startMinutes int
	startHive    string
	startTitle   string
	startNotes   string
	startRemind  int
	startWatch   bool
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a focus session",
	Long: `Start a new focus session. The duration defaults to your configured
work duration. If the current directory is a git repository and no title
is given, the repository and branch become the session title.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		client := api()

		minutes := startMinutes
		if minutes <= 0 {
			minutes = 25
			if settings, err := client.Settings(ctx); err == nil {
				minutes = settings.WorkDurationMinutes
			}
		}

		title := startTitle
		if title == "" {
			if workingDir, err := os.Getwd(); err == nil {
				if info, err := gitinfo.NewDetector().Detect(workingDir); err == nil {
					title = info.Describe()
				}
			}
		}

		req := StartRequest{
			Type:            startType,
			DurationMinutes: minutes,
			Title:           title,
			Notes:           startNotes,
		}
		if startHive != "" {
			req.HiveID = &startHive
		}
		if startRemind > 0 {
			req.ReminderEnabled = true
			req.ReminderMinutes = startRemind
		}

		snap, err := client.StartSession(ctx, req)
		if err != nil {
			return fmt.Errorf("failed to start session: %w", err)
		}

		if jsonOutput {
			return printJSON(snap)
		}

		fmt.Printf("Session started: %s %dm", snap.Type, snap.PlannedMinutes)
		if snap.Title != "" {
			fmt.Printf(" (%s)", snap.Title)
		}
		fmt.Println()
		if snap.HiveID != nil {
			fmt.Printf("   Hive: %s\n", *snap.HiveID)
		}
		fmt.Printf("   ID: %s\n", snap.ID)

		if startWatch {
			return runWatch(ctx, client, snap)
		}
		return nil
	},
}

func init() {
	startCmd.Flags().StringVarP(&startType, "type", "t", "WORK", "Session type: WORK, BREAK, STUDY, FOCUS")
	startCmd.Flags().IntVarP(&startMinutes, "minutes", "m", 0, "Planned duration in minutes (default: configured work duration)")
	startCmd.Flags().StringVar(&startHive, "hive", "", "Hive to broadcast this session to")
	startCmd.Flags().StringVar(&startTitle, "title", "", "Session title (default: git repository and branch)")
	startCmd.Flags().StringVar(&startNotes, "notes", "", "Session notes")
	startCmd.Flags().IntVar(&startRemind, "remind", 0, "Remind this many minutes before the planned end")
	startCmd.Flags().BoolVarP(&startWatch, "watch", "w", false, "Watch the session live after starting")
}

// currentOrErr resolves the user's active session for commands that
// operate on "the" session.
func currentOrErr(ctx context.Context, client *Client) (*domain.SessionSnapshot, error) {
	snap, err := client.Current(ctx)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, fmt.Errorf("no active session")
	}
	return snap, nil
}
