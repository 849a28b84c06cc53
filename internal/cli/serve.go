package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/archview/internal/api"
	"github.com/matzehuels/archview/internal/config"
	"github.com/matzehuels/archview/internal/metrics"
	"github.com/matzehuels/archview/pkg/buildinfo"
	"github.com/matzehuels/archview/pkg/cache"
	"github.com/matzehuels/archview/pkg/pipeline"
)

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API and rendered diagrams over HTTP",
		Long: `Serve the catalog over HTTP.

Endpoints include /api/systems, /api/connections, /api/journeys,
/api/journeys/all, /api/layout and /api/render.svg. Prometheus metrics are
exported at /metrics and a liveness check at /healthz.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				c.config().Server.Addr = addr
			}
			return c.runServe(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (overrides config)")
	return cmd
}

func (c *CLI) runServe(ctx context.Context) error {
	cfg := c.config()

	m, err := metrics.New(nil)
	if err != nil {
		return err
	}
	m.Install()

	s, err := c.openStore(ctx)
	if err != nil {
		return err
	}

	var ch cache.Cache = cache.NewNullCache()
	if cfg.Cache.Backend != config.CacheNone {
		if ch, err = c.newCache(ctx, false); err != nil {
			s.Close()
			return err
		}
	}

	runner := pipeline.NewRunner(s, nil, ch, cache.NewScopedKeyer(nil, appName+":"), c.Logger)
	runner.Backend = cfg.Store.Backend
	runner.TTL = cfg.Cache.TTL.Duration
	defer runner.Close()

	c.Logger.Info("starting archview",
		"version", buildinfo.Version,
		"store", cfg.Store.Backend,
		"cache", cfg.Cache.Backend)

	srv := api.New(api.Options{
		Runner:         runner,
		Logger:         c.Logger,
		RequestTimeout: cfg.Server.RequestTimeout.Duration,
		Metrics:        m.Handler(),
	})
	return srv.ListenAndServe(ctx, cfg.Server.Addr, cfg.Server.ShutdownTimeout.Duration)
}
