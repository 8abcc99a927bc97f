package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/deptree/internal/server"
)

// serveCommand creates the serve command, which runs the HTTP API until the
// process is interrupted.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		noCache   bool
		noMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve analyses over HTTP",
		Long: `Serve dependency analyses over HTTP.

  GET  /v1/packages/<name>?version=&depth=   resolve from the registry
  POST /v1/static?root=&depth=               analyze an uploaded graph
  GET  /healthz                              liveness
  GET  /metrics                              Prometheus metrics

Registry reports are cached like the analyze command's manifests.`,
		Example: `  deptree serve
  deptree serve --addr 127.0.0.1:9000 --no-cache`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if !cmd.Flags().Changed("addr") {
				addr = c.config.ListenAddr
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			var metrics *server.Metrics
			if !noMetrics {
				metrics = server.NewMetrics()
				metrics.Install()
			}

			srv := server.New(runner, c.Logger, metrics, server.Config{
				Addr:     addr,
				Registry: c.config.Registry,
			})
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the manifest and report cache")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "disable the /metrics endpoint")

	return cmd
}
