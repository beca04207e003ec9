package cli

import (
	"fmt"

	"github.com/felixgeelhaar/discipline/internal/training/application/queries"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:     "history",
	Short:   "List check-ins, newest first",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := RequireStore()
		if err != nil {
			return err
		}

		history := queries.History(app.Store, historyLimit)
		out := cmd.OutOrStdout()
		if jsonOutput {
			return PrintJSON(out, history)
		}
		if len(history) == 0 {
			fmt.Fprintln(out, "No check-ins yet. Log one with: discipline checkin")
			return nil
		}

		for _, c := range history {
			mark := "·"
			switch {
			case c.Completed:
				mark = "✓"
			case c.Planned:
				mark = "✗"
			}
			line := fmt.Sprintf("%s %s  %s", mark, c.Date, c.ID)
			if c.Note != "" {
				line += "  " + c.Note
			}
			fmt.Fprintln(out, line)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "show at most n check-ins")
	rootCmd.AddCommand(historyCmd)
}
