package cli

import (
	"fmt"
	"sort"

	"github.com/felixgeelhaar/discipline/pkg/observability"
	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check storage and broker health",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return ErrNotInitialized
		}
		if app.Health == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		}

		report := app.Health.GetOverallHealth(cmd.Context())
		out := cmd.OutOrStdout()
		if jsonOutput {
			if err := PrintJSON(out, report); err != nil {
				return err
			}
		} else {
			fmt.Fprintf(out, "status: %s\n", report.Status)
			names := make([]string, 0, len(report.Checks))
			for name := range report.Checks {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				check := report.Checks[name]
				fmt.Fprintf(out, "  %-16s %-10s %s\n", name, check.Status, check.Message)
			}
		}

		if report.Status == observability.HealthStatusUnhealthy {
			return fmt.Errorf("health check failed")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
