package commands

import (
	"bytes"
	"fmt"
	"os/exec"

	"github.com/spf13/cobra"
)

func addUpgrade(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Upgrade lifedots cli.",
		Example: `
lifedots upgrade
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			ex := exec.CommandContext(cmd.Context(), "go", "install", "tableflip.dev/lifedots/cmd/lifedots@latest")
			var out bytes.Buffer
			ex.Stdout = &out
			ex.Stderr = &out
			if err := ex.Run(); err != nil {
				return oo.HandleError(fmt.Errorf("%w: %s", err, out.String()))
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", ex.String())
			return nil
		},
	}

	topLevel.AddCommand(cmd)
}
