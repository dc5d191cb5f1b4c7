package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/lifedots/pkg/api"
	"tableflip.dev/lifedots/pkg/config"
)

func addToken(topLevel *cobra.Command) {
	var (
		user string
		ttl  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the HTTP API.",
		Long: `Sign a token with server.secret. Put it in remote.token on the machine
that talks to "lifedots serve".`,
		Example: `
lifedots token
lifedots token --user alex --ttl 720h
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.Server.Secret == "" {
				return errors.New("server.secret is not set; set LIFEDOTS_SERVER_SECRET or add it to .lifedots.yaml")
			}
			if user == "" {
				user = cfg.User
			}
			tok, err := api.NewTokens(cfg.Server.Secret).Issue(user, ttl)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "User the token acts as. Defaults to the configured user.")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Lifetime of the token. Zero never expires.")

	topLevel.AddCommand(cmd)
}
