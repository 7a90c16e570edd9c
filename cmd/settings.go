package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	settingsWork       int
	settingsShortBreak int
	settingsLongBreak  int
	settingsCycle      int
	settingsAutoBreaks bool
	settingsAutoWork   bool
	settingsNotify     bool
	settingsSound      bool
)

// settingsCmd represents the settings command
var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change timer settings",
	Long: `Show the timer settings stored on the server. Passing any flag
updates that setting; the rest keep their stored values.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		client := api()

		settings, err := client.Settings(ctx)
		if err != nil {
			return fmt.Errorf("failed to fetch settings: %w", err)
		}

		changed := false
		apply := func(name string, fn func()) {
			if cmd.Flags().Changed(name) {
				fn()
				changed = true
			}
		}
		apply("work", func() { settings.WorkDurationMinutes = settingsWork })
		apply("short-break", func() { settings.ShortBreakMinutes = settingsShortBreak })
		apply("long-break", func() { settings.LongBreakMinutes = settingsLongBreak })
		apply("cycle", func() { settings.SessionsUntilLongBreak = settingsCycle })
		apply("auto-breaks", func() { settings.AutoStartBreaks = settingsAutoBreaks })
		apply("auto-work", func() { settings.AutoStartWork = settingsAutoWork })
		apply("notifications", func() { settings.NotificationEnabled = settingsNotify })
		apply("sound", func() { settings.SoundEnabled = settingsSound })

		if changed {
			settings, err = client.SaveSettings(ctx, *settings)
			if err != nil {
				return fmt.Errorf("failed to save settings: %w", err)
			}
		}

		if jsonOutput {
			return printJSON(settings)
		}

		fmt.Printf("Work duration: %dm\n", settings.WorkDurationMinutes)
		fmt.Printf("Short break: %dm\n", settings.ShortBreakMinutes)
		fmt.Printf("Long break: %dm (every %d sessions)\n", settings.LongBreakMinutes, settings.SessionsUntilLongBreak)
		fmt.Printf("Auto-start breaks: %v\n", settings.AutoStartBreaks)
		fmt.Printf("Auto-start work: %v\n", settings.AutoStartWork)
		fmt.Printf("Notifications: %v (sound %v)\n", settings.NotificationEnabled, settings.SoundEnabled)
		return nil
	},
}

func init() {
	settingsCmd.Flags().IntVar(&settingsWork, "work", 0, "Work duration in minutes")
	settingsCmd.Flags().IntVar(&settingsShortBreak, "short-break", 0, "Short break in minutes")
	settingsCmd.Flags().IntVar(&settingsLongBreak, "long-break", 0, "Long break in minutes")
	settingsCmd.Flags().IntVar(&settingsCycle, "cycle", 0, "Sessions until a long break")
	settingsCmd.Flags().BoolVar(&settingsAutoBreaks, "auto-breaks", false, "Start breaks automatically")
	settingsCmd.Flags().BoolVar(&settingsAutoWork, "auto-work", false, "Start work automatically after breaks")
	settingsCmd.Flags().BoolVar(&settingsNotify, "notifications", false, "Enable notifications")
	settingsCmd.Flags().BoolVar(&settingsSound, "sound", false, "Enable notification sound")
}
