package cli

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/discipline/internal/training/application/queries"
	"github.com/felixgeelhaar/discipline/internal/training/domain"
	"github.com/spf13/cobra"
)

var (
	onboardName       string
	onboardGoal       string
	onboardDays       int
	onboardExperience string
	onboardReminder   string
)

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Set up your training profile",
	Long: `Set up your training profile. Running it again replaces the profile
without touching your check-ins.

Examples:
  discipline onboard --name Sam --goal "Run a 10k" --days 4
  discipline onboard --experience advanced --reminder 07:30`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := RequireStore()
		if err != nil {
			return err
		}

		experience := domain.Experience(strings.ToLower(strings.TrimSpace(onboardExperience)))
		if !experience.IsValid() {
			return fmt.Errorf("unknown experience %q (use beginner, intermediate or advanced)", onboardExperience)
		}

		var reminder *domain.ReminderSettings
		if onboardReminder != "" {
			settings, err := queries.ParseClock(onboardReminder)
			if err != nil {
				return fmt.Errorf("invalid --reminder %q: %w", onboardReminder, err)
			}
			reminder = &settings
		}

		profile := domain.Profile{
			Name:        strings.TrimSpace(onboardName),
			Goal:        strings.TrimSpace(onboardGoal),
			DaysPerWeek: onboardDays,
			Experience:  experience,
		}
		app.Store.CompleteOnboarding(cmd.Context(), profile)

		if reminder != nil {
			if err := app.Store.UpdateReminder(cmd.Context(), *reminder); err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return PrintJSON(out, queries.Status(app.Store))
		}
		fmt.Fprintf(out, "Welcome, %s! Plan: %d days per week (%s).\n",
			profile.DisplayName(), profile.DaysPerWeek, experience.DisplayName())
		if profile.Goal != "" {
			fmt.Fprintf(out, "Goal: %s\n", profile.Goal)
		}
		if reminder := app.Store.Reminder(); reminder.Enabled {
			fmt.Fprintf(out, "Daily reminder at %s.\n", queries.FormatClock(reminder.Hour, reminder.Minute))
		}
		return nil
	},
}

func init() {
	onboardCmd.Flags().StringVar(&onboardName, "name", "", "your name")
	onboardCmd.Flags().StringVar(&onboardGoal, "goal", "", "what you are training for")
	onboardCmd.Flags().IntVar(&onboardDays, "days", 3, "planned training days per week (2-6)")
	onboardCmd.Flags().StringVar(&onboardExperience, "experience", string(domain.ExperienceBeginner), "beginner, intermediate or advanced")
	onboardCmd.Flags().StringVar(&onboardReminder, "reminder", "", "enable a daily reminder at HH:MM")
	rootCmd.AddCommand(onboardCmd)
}
