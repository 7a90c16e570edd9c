package cmd

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/focushive/hivetimer/internal/adapters/notification"
	"github.com/focushive/hivetimer/internal/adapters/watchtui"
	"github.com/focushive/hivetimer/internal/domain"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the current session with a live countdown",
	Long: `Watch the current session with a live countdown. Keys control the
session: p pauses or resumes, f completes, x cancels. A desktop
notification fires when the session ends.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		client := api()

		snap, err := client.Current(ctx)
		if err != nil {
			return fmt.Errorf("failed to get current session: %w", err)
		}
		return runWatch(ctx, client, snap)
	},
}

// runWatch drives the watch TUI against the server.
func runWatch(ctx context.Context, client *Client, initial *domain.SessionSnapshot) error {
	notifier := notification.New(&appConfig.Notifications)

	fetch := func() (*domain.SessionSnapshot, error) {
		return client.Current(ctx)
	}

	command := func(cmd watchtui.Command) error {
		current, err := client.Current(ctx)
		if err != nil {
			return err
		}
		if current == nil {
			return fmt.Errorf("no active session")
		}
		switch cmd {
		case watchtui.CmdPause:
			_, err = client.Pause(ctx, current.ID)
		case watchtui.CmdResume:
			_, err = client.Resume(ctx, current.ID)
		case watchtui.CmdComplete:
			_, err = client.Complete(ctx, current.ID)
		case watchtui.CmdCancel:
			_, err = client.Cancel(ctx, current.ID)
		}
		return err
	}

	onDone := func(snap *domain.SessionSnapshot) {
		if snap == nil || snap.Status == domain.SessionStatusCancelled {
			return
		}
		actual := 0
		if snap.ActualMinutes != nil {
			actual = *snap.ActualMinutes
		}
		if err := notifier.NotifySessionComplete(snap.Type, time.Duration(actual)*time.Minute); err != nil {
			logger.Debug("notification failed", "error", err)
		}
	}

	model := watchtui.NewModel(initial, fetch, command, onDone)
	if _, err := tea.NewProgram(model).Run(); err != nil {
		return fmt.Errorf("watch error: %w", err)
	}
	return nil
}
