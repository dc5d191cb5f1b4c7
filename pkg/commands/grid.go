package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/lifedots/pkg/lifecal"
	"tableflip.dev/lifedots/pkg/runner/overview"
	"tableflip.dev/lifedots/pkg/week"
)

func addGrid(topLevel *cobra.Command) {
	year := 0
	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Print the life grid, or one year of it.",
		Example: `
lifedots grid
lifedots grid --year 27
lifedots grid --json
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			if year < 0 || year > lifecal.YearsInLife {
				return oo.HandleError(week.NewValidationError("year",
					fmt.Sprintf("year %d out of range [1, %d]", year, lifecal.YearsInLife)))
			}
			e, err := loadEnv(false)
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			o := overview.Overview{
				API:       e.api,
				Location:  e.location(),
				WeekStart: e.cfg.WeekStart,
				Out:       cmd.OutOrStdout(),
				Year:      year,
				JSON:      oo.JSON,
			}
			return oo.HandleError(o.Do(cmd.Context()))
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "Only print this year of life, 1 through 90.")
	base.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}
