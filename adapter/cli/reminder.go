package cli

import (
	"fmt"

	"github.com/felixgeelhaar/discipline/internal/training/application/queries"
	"github.com/felixgeelhaar/discipline/internal/training/domain"
	"github.com/spf13/cobra"
)

var reminderCmd = &cobra.Command{
	Use:   "reminder",
	Short: "Manage the daily check-in reminder",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := RequireStore()
		if err != nil {
			return err
		}
		return printReminder(cmd, app)
	},
}

var reminderSetCmd = &cobra.Command{
	Use:   "set <HH:MM>",
	Short: "Enable the daily reminder at a time",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := RequireStore()
		if err != nil {
			return err
		}
		settings, err := queries.ParseClock(args[0])
		if err != nil {
			return fmt.Errorf("invalid time %q: %w", args[0], err)
		}
		if err := app.Store.UpdateReminder(cmd.Context(), settings); err != nil {
			return err
		}
		return printReminder(cmd, app)
	},
}

var reminderOnCmd = &cobra.Command{
	Use:   "on",
	Short: "Enable the daily reminder at REMINDER_HOUR:REMINDER_MINUTE",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := RequireStore()
		if err != nil {
			return err
		}
		hour, minute := app.DefaultReminder()
		settings := domain.ReminderSettings{Enabled: true, Hour: hour, Minute: minute}
		if err := app.Store.UpdateReminder(cmd.Context(), settings); err != nil {
			return err
		}
		return printReminder(cmd, app)
	},
}

var reminderOffCmd = &cobra.Command{
	Use:   "off",
	Short: "Disable the daily reminder",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := RequireStore()
		if err != nil {
			return err
		}
		settings := app.Store.Reminder()
		settings.Enabled = false
		if err := app.Store.UpdateReminder(cmd.Context(), settings); err != nil {
			return err
		}
		return printReminder(cmd, app)
	},
}

func printReminder(cmd *cobra.Command, app *App) error {
	reminder := queries.ToReminderDTO(app.Store.Reminder())
	out := cmd.OutOrStdout()
	if jsonOutput {
		return PrintJSON(out, reminder)
	}
	if reminder.Enabled {
		fmt.Fprintf(out, "Daily reminder at %s\n", reminder.Time)
	} else {
		fmt.Fprintln(out, "Daily reminder is off")
	}
	return nil
}

func init() {
	reminderCmd.AddCommand(reminderSetCmd)
	reminderCmd.AddCommand(reminderOnCmd)
	reminderCmd.AddCommand(reminderOffCmd)
	rootCmd.AddCommand(reminderCmd)
}
