package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/helmdraw/internal/api"
	"github.com/matzehuels/helmdraw/pkg/document"
	"github.com/matzehuels/helmdraw/pkg/observability"
	"github.com/matzehuels/helmdraw/pkg/pipeline"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		origins []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

Open documents live in memory. With a Redis cache configured their notation
is mirrored into Redis, so a restarted server finds them again.`,
		Example: `  helmdraw serve --addr :8080
  HELMDRAW_CACHE_REDIS_ADDR=localhost:6379 helmdraw serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.Config.Serve
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("allow-origin") {
				cfg.AllowedOrigins = origins
			}

			ch, keyer, err := c.newCache(ctx)
			if err != nil {
				return err
			}
			runner := pipeline.NewRunner(ch, keyer, c.monomers(), c.Logger)
			defer runner.Close()

			docs := document.NewStore(c.monomers(),
				document.WithBacking(ch, keyer),
				document.WithTTL(cfg.DocumentTTL),
				document.WithLogger(c.Logger))

			hooks := observability.NewLogHooks(c.Logger)
			observability.SetPipelineHooks(hooks)
			observability.SetCacheHooks(hooks)
			observability.SetAPIHooks(hooks)
			defer observability.Reset()

			srv := api.New(runner, docs, api.Config{
				Addr:            cfg.Addr,
				AllowedOrigins:  cfg.AllowedOrigins,
				MaxBodyBytes:    cfg.MaxBodyBytes,
				CleanupInterval: cfg.CleanupInterval,
				Logger:          c.Logger,
			})
			printInfo("Serving on %s", StyleHighlight.Render("http://"+displayAddr(cfg.Addr)))
			return srv.Serve(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", api.DefaultAddr, "listen address")
	cmd.Flags().StringSliceVar(&origins, "allow-origin", nil, "allowed CORS origin (repeatable)")
	return cmd
}

// displayAddr fills in the host of a ":port" address.
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
