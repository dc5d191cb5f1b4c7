package options

import (
	"github.com/spf13/cobra"

	"tableflip.dev/lifedots/pkg/export"
)

// ExportOptions are the flags of the export command.
type ExportOptions struct {
	Format         string
	Path           string
	Birthdays      bool
	RemindersAlarm bool
}

func AddExportArgs(cmd *cobra.Command, o *ExportOptions) {
	cmd.Flags().StringVarP(&o.Format, "format", "f", string(export.FormatICS),
		"Output format. One of 'ics' or 'json'.")
	cmd.Flags().StringVarP(&o.Path, "out", "o", "",
		"Write to this file instead of stdout.")
	cmd.Flags().BoolVar(&o.Birthdays, "birthdays", true,
		"Include birthday weeks that have nothing written.")
	cmd.Flags().BoolVar(&o.RemindersAlarm, "alarms", false,
		"Add an alarm to weeks with reminders.")
}
