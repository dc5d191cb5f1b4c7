package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/lifedots/pkg/runner/info"
)

func addInfo(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Details about the configuration and where weeks are stored.",
		Example: `
lifedots info
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv(false)
			if err != nil {
				return err
			}
			defer e.Close()

			s := info.Info{
				Config: e.cfg,
				API:    e.api,
				Out:    cmd.OutOrStdout(),
			}
			err = s.Do(cmd.Context())
			return oo.HandleError(err)
		},
	}

	topLevel.AddCommand(cmd)
}
