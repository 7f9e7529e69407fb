package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/diagramkit/internal/server"
)

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the parse and layout API over HTTP",
		Long: `Serve the parse and layout API over HTTP.

Routes:
  POST /v1/parse    diagram text or JSON request → diagram and diagnostics
  POST /v1/layout   diagram text or JSON request → diagram and layout
  GET  /healthz     liveness

The listen address defaults to the config file's [server].addr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = c.Config.Server.Addr
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			srv := server.New(runner, c.Logger, server.Options{
				Addr:           addr,
				Layout:         c.Config.Layout,
				MaxDiagnostics: c.Config.Parse.MaxDiagnostics,
			})
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
