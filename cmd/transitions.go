package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/focushive/hivetimer/internal/domain"
)

// pauseCmd represents the pause command
var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause the running session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return transition("pause", func(ctx context.Context, client *Client, id string) (*domain.SessionSnapshot, error) {
			return client.Pause(ctx, id)
		})
	},
}

// resumeCmd represents the resume command
var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume the paused session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return transition("resume", func(ctx context.Context, client *Client, id string) (*domain.SessionSnapshot, error) {
			return client.Resume(ctx, id)
		})
	},
}

// completeCmd represents the complete command
var completeCmd = &cobra.Command{
	Use:   "complete",
	Short: "Complete the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return transition("complete", func(ctx context.Context, client *Client, id string) (*domain.SessionSnapshot, error) {
			return client.Complete(ctx, id)
		})
	},
}

// cancelCmd represents the cancel command
var cancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Cancel the current session without recording it",
	RunE: func(cmd *cobra.Command, args []string) error {
		return transition("cancel", func(ctx context.Context, client *Client, id string) (*domain.SessionSnapshot, error) {
			return client.Cancel(ctx, id)
		})
	},
}

func transition(verb string, fn func(context.Context, *Client, string) (*domain.SessionSnapshot, error)) error {
	ctx := context.Background()
	client := api()

	current, err := currentOrErr(ctx, client)
	if err != nil {
		return err
	}

	snap, err := fn(ctx, client, current.ID)
	if err != nil {
		return fmt.Errorf("failed to %s session: %w", verb, err)
	}

	if jsonOutput {
		return printJSON(snap)
	}

	switch snap.Status {
	case domain.SessionStatusPaused:
		fmt.Printf("Session paused with %dm remaining.\n", snap.RemainingMinutes)
	case domain.SessionStatusActive:
		fmt.Printf("Session resumed, %dm remaining.\n", snap.RemainingMinutes)
	case domain.SessionStatusCompleted:
		fmt.Print("Session complete!")
		if snap.ActualMinutes != nil {
			fmt.Printf(" %dm focused", *snap.ActualMinutes)
		}
		if snap.ProductivityScore != nil {
			fmt.Printf(", productivity %d/100", *snap.ProductivityScore)
		}
		fmt.Println()
	case domain.SessionStatusCancelled:
		fmt.Println("Session cancelled.")
	}
	return nil
}
