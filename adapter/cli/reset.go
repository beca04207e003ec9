package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetConfirmed bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the profile, all check-ins and settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := RequireStore()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if !resetConfirmed {
			fmt.Fprintln(out, "This deletes all of your data. Run again with --yes to confirm.")
			return nil
		}

		app.Store.ResetAll(cmd.Context())
		fmt.Fprintln(out, "All data deleted.")
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolVar(&resetConfirmed, "yes", false, "confirm deletion")
	rootCmd.AddCommand(resetCmd)
}
