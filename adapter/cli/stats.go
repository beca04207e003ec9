package cli

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/discipline/internal/training/application/queries"
	"github.com/spf13/cobra"
)

var (
	statsDays int
	trendDays int
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show completion statistics",
	Long: `Show completion rate, workouts and streaks over a trailing window.

Examples:
  discipline stats             # Last 30 days
  discipline stats --days 7    # Last week`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := RequireStore()
		if err != nil {
			return err
		}

		if err := queries.CheckWindow(statsDays); err != nil {
			return err
		}

		stats := queries.Stats(app.Store, statsDays)
		out := cmd.OutOrStdout()
		if jsonOutput {
			return PrintJSON(out, stats)
		}

		fmt.Fprintf(out, "Last %d days\n", stats.Days)
		fmt.Fprintf(out, "  Completion rate:   %.0f%%\n", stats.CompletionRate)
		fmt.Fprintf(out, "  Workouts:          %d\n", stats.TotalWorkouts)
		fmt.Fprintf(out, "  Per week:          %.1f\n", stats.AverageWorkoutsPerWeek)
		fmt.Fprintf(out, "  Discipline score:  %d\n", stats.Score)
		fmt.Fprintf(out, "  Current streak:    %d\n", stats.CurrentStreak)
		fmt.Fprintf(out, "  Longest streak:    %d\n", stats.LongestStreak)
		return nil
	},
}

var trendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Show the daily discipline trend",
	Long: `Show one score per day, each computed over the seven days ending that day.

Examples:
  discipline trend
  discipline trend --days 30`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := RequireStore()
		if err != nil {
			return err
		}

		if err := queries.CheckWindow(trendDays); err != nil {
			return err
		}

		points := queries.Trend(app.Store, trendDays)
		out := cmd.OutOrStdout()
		if jsonOutput {
			return PrintJSON(out, points)
		}
		if len(points) == 0 {
			fmt.Fprintln(out, "No trend for an empty window.")
			return nil
		}
		for _, p := range points {
			fmt.Fprintf(out, "%s %3d %s\n", p.Date, p.Score, strings.Repeat("█", p.Score/5))
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().IntVar(&statsDays, "days", queries.DefaultStatsDays, "window size in days")
	trendCmd.Flags().IntVar(&trendDays, "days", queries.DefaultTrendDays, "number of days to show")
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(trendCmd)
}
