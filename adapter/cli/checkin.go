package cli

import (
	"fmt"

	"github.com/felixgeelhaar/discipline/internal/training/application/queries"
	"github.com/felixgeelhaar/discipline/internal/training/domain"
	"github.com/spf13/cobra"
)

var (
	checkinPlanned   bool
	checkinCompleted bool
	checkinNote      string
)

var checkinCmd = &cobra.Command{
	Use:   "checkin",
	Short: "Log today's check-in",
	Long: `Log whether you planned to train today and whether you did.
Checking in again on the same day updates today's entry.

Examples:
  discipline checkin --completed
  discipline checkin --planned=false
  discipline checkin --completed --note "Intervals, felt strong"`,
	Aliases: []string{"ci"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := RequireStore()
		if err != nil {
			return err
		}

		var note *string
		if cmd.Flags().Changed("note") {
			note = domain.StringPtr(checkinNote)
		}

		result := app.Store.LogCheckIn(cmd.Context(), checkinPlanned, checkinCompleted, note)

		out := cmd.OutOrStdout()
		if jsonOutput {
			return PrintJSON(out, map[string]any{
				"check_in": queries.ToCheckInDTO(result.CheckIn),
				"created":  result.Created,
				"score":    result.Score,
				"streak":   result.Streak,
				"message":  result.Message,
			})
		}

		verb := "Updated"
		if result.Created {
			verb = "Logged"
		}
		fmt.Fprintf(out, "%s check-in for %s.\n", verb, result.CheckIn.Date().Format("Mon Jan 2"))
		fmt.Fprintf(out, "Score: %d  Streak: %d\n", result.Score, result.Streak)
		fmt.Fprintln(out, result.Message)
		return nil
	},
}

func init() {
	checkinCmd.Flags().BoolVar(&checkinPlanned, "planned", true, "you planned to train today")
	checkinCmd.Flags().BoolVar(&checkinCompleted, "completed", false, "you completed your training")
	checkinCmd.Flags().StringVar(&checkinNote, "note", "", "optional note")
	rootCmd.AddCommand(checkinCmd)
}
