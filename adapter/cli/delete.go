package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <check-in-id>",
	Short: "Delete a check-in",
	Long: `Delete a check-in by ID. Use "discipline history" to find IDs.
Deleting an unknown ID is not an error.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := RequireStore()
		if err != nil {
			return err
		}

		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid check-in id: %w", err)
		}

		app.Store.DeleteCheckIn(cmd.Context(), id)

		if jsonOutput {
			return PrintJSON(cmd.OutOrStdout(), map[string]string{"deleted": id.String()})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted check-in %s\n", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
