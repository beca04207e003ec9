package cli

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/discipline/internal/training/infrastructure/export"
	"github.com/spf13/cobra"
)

var (
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export training history to various formats",
	Long: `Export completed workouts, and the daily reminder when enabled, to ICS
(iCalendar) format for import into Google Calendar, Outlook, Apple Calendar
and other calendar apps.

Examples:
  discipline export --format ics                # Export to stdout
  discipline export --format ics -o train.ics   # Export to file`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := RequireStore()
		if err != nil {
			return err
		}

		switch strings.ToLower(exportFormat) {
		case "ics", "ical":
			return exportICS(cmd, app)
		default:
			return fmt.Errorf("unsupported format: %s (supported: ics)", exportFormat)
		}
	},
}

func exportICS(cmd *cobra.Command, app *App) error {
	opts := export.Options{
		Profile:  app.Store.Profile(),
		CheckIns: app.Store.CheckIns(),
		Reminder: app.Store.Reminder(),
	}
	if app.Now != nil {
		opts.Now = app.Now()
	}
	cal := export.BuildCalendar(opts)

	if exportOutput == "" {
		return export.Encode(cmd.OutOrStdout(), cal)
	}

	path, err := export.WriteFile(exportOutput, cal)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d events to %s\n", len(cal.Children), path)
	return nil
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "ics", "export format (ics)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	rootCmd.AddCommand(exportCmd)
}
