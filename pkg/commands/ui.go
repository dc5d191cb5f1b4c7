package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/lifedots/pkg/runner/ui"
)

func addUI(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "open the life grid in the terminal",
		Example: `
lifedots ui
`,
		ValidArgs: []string{},
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(true)
			if err != nil {
				return err
			}
			defer e.Close()

			i := ui.UI{
				API:       e.api,
				Refresh:   e.cfg.Refresh,
				Location:  e.location(),
				WeekStart: e.cfg.WeekStart,
				Log:       e.log.Named("ui"),
			}
			// Only the local store can push changes; remote falls back to
			// the refresh interval.
			if e.local != nil {
				i.Watcher = e.local
			}
			return i.Do(cmd.Context())
		},
	}

	topLevel.AddCommand(cmd)
}
