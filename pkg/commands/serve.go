package commands

import (
	"fmt"
	"net"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tableflip.dev/lifedots/pkg/runner/serve"
)

func addServe(topLevel *cobra.Command) {
	var (
		addr    string
		mcpAddr string
		mcpPath string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the week store over HTTP, optionally with an MCP endpoint.",
		Long: `Start the HTTP API that "lifedots ui" and the other commands talk to when
remote.url is configured. Requests carry a bearer token minted by
"lifedots token" once server.secret is set; without a secret every request
acts as the configured user.`,
		Example: `
lifedots serve
lifedots serve --addr :8080 --mcp-addr 127.0.0.1:8081
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv(false)
			if err != nil {
				return err
			}
			defer e.Close()

			if addr == "" {
				addr = e.cfg.Server.Addr
			}
			if e.cfg.Server.Secret == "" {
				e.log.Warn("server.secret is not set, every request acts as the configured user",
					zap.String("user", e.cfg.User))
			}

			s := serve.Serve{
				API:       e.api,
				Addr:      addr,
				Secret:    e.cfg.Server.Secret,
				Location:  e.location(),
				WeekStart: e.cfg.WeekStart,
				Log:       e.log,
				MCPAddr:   mcpAddr,
				MCPPath:   mcpPath,
				Version:   version,
				OnListen: func(name string, a net.Addr) {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s listening on %s\n", name, a)
				},
			}
			return s.Do(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address for the API. Defaults to server.addr.")
	cmd.Flags().StringVar(&mcpAddr, "mcp-addr", "", "Also serve MCP over HTTP on this address.")
	cmd.Flags().StringVar(&mcpPath, "mcp-path", "/mcp", "HTTP endpoint path for MCP.")

	topLevel.AddCommand(cmd)
}
