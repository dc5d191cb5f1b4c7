package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/lifedots/pkg/commands/options"
	"tableflip.dev/lifedots/pkg/export"
	runner "tableflip.dev/lifedots/pkg/runner/export"
)

func addExport(topLevel *cobra.Command) {
	eo := &options.ExportOptions{}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export written weeks as an iCalendar feed or JSON.",
		Example: `
lifedots export > life.ics
lifedots export --format json --out weeks.json
lifedots export --alarms --birthdays=false
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			f, err := export.ParseFormat(eo.Format)
			if err != nil {
				return err
			}
			e, err := loadEnv(false)
			if err != nil {
				return err
			}
			defer e.Close()

			x := runner.Export{
				API:            e.api,
				Format:         f,
				Location:       e.location(),
				WeekStart:      e.cfg.WeekStart,
				Birthdays:      eo.Birthdays,
				RemindersAlarm: eo.RemindersAlarm,
				Path:           eo.Path,
				Out:            cmd.OutOrStdout(),
			}
			return x.Do(cmd.Context())
		},
	}

	options.AddExportArgs(cmd, eo)
	topLevel.AddCommand(cmd)
}
