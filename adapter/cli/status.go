package cli

import (
	"fmt"

	"github.com/felixgeelhaar/discipline/internal/training/application/queries"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show today's check-in, score and coaching",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := RequireStore()
		if err != nil {
			return err
		}

		status := queries.Status(app.Store)
		out := cmd.OutOrStdout()
		if jsonOutput {
			return PrintJSON(out, status)
		}

		if !status.Onboarded {
			fmt.Fprintln(out, "Not set up yet. Start with: discipline onboard")
		} else if status.Profile != nil {
			fmt.Fprintf(out, "%s, %d days per week\n", status.Profile.DisplayName, status.Profile.DaysPerWeek)
		}

		switch {
		case status.Today == nil:
			fmt.Fprintln(out, "Today: no check-in yet")
		case status.Today.Completed:
			fmt.Fprintln(out, "Today: trained ✓")
		case status.Today.Planned:
			fmt.Fprintln(out, "Today: planned, not done")
		default:
			fmt.Fprintln(out, "Today: rest day")
		}

		fmt.Fprintf(out, "Score: %d  Streak: %d  Best: %d\n", status.Score, status.CurrentStreak, status.LongestStreak)
		fmt.Fprintln(out, status.Message)
		if status.Insight != "" {
			fmt.Fprintln(out, status.Insight)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
