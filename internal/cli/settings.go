package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vytor/flashstudy/internal/models"
)

func (a *app) settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show the study settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printSettings(cmd, a.svc.Settings(cmd.Context()))
			return nil
		},
	}
	cmd.AddCommand(a.settingsSetCmd())
	return cmd
}

func (a *app) settingsSetCmd() *cobra.Command {
	var (
		dailyLimit int
		newLimit   int
		reminder   string
		userName   string
	)
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change study settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var update models.SettingsUpdate
			f := cmd.Flags()
			if f.Changed("daily-limit") {
				update.DailyCardLimit = &dailyLimit
			}
			if f.Changed("new-limit") {
				update.NewCardLimit = &newLimit
			}
			if f.Changed("reminder") {
				update.ReminderTime = &reminder
			}
			if f.Changed("name") {
				update.UserName = &userName
			}
			s, err := a.svc.UpdateSettings(cmd.Context(), update)
			if err != nil {
				return err
			}
			printSettings(cmd, s)
			return nil
		},
	}
	cmd.Flags().IntVar(&dailyLimit, "daily-limit", 0, "cards per review session")
	cmd.Flags().IntVar(&newLimit, "new-limit", 0, "new cards per day")
	cmd.Flags().StringVar(&reminder, "reminder", "", "reminder time as HH:MM")
	cmd.Flags().StringVar(&userName, "name", "", "your name")
	return cmd
}

func printSettings(cmd *cobra.Command, s models.Settings) {
	w := out(cmd)
	fmt.Fprintf(w, "Name:             %s\n", s.UserName)
	fmt.Fprintf(w, "Daily card limit: %d\n", s.DailyCardLimit)
	fmt.Fprintf(w, "New card limit:   %d\n", s.NewCardLimit)
	fmt.Fprintf(w, "Reminder:         %s\n", s.ReminderTime)
}
