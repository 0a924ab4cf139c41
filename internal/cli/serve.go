package cli

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/craneplan/internal/config"
	"github.com/matzehuels/craneplan/internal/server"
	"github.com/matzehuels/craneplan/pkg/store"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the planning HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}

			runner, err := c.newRunner(ctx, cfg, noCache)
			if err != nil {
				return err
			}
			defer runner.Cache.Close()

			var st store.Store
			switch cfg.Store.Backend {
			case config.StoreMongo:
				ms, err := store.NewMongoStore(ctx, cfg.Store.MongoURI, cfg.Store.Database)
				if err != nil {
					return err
				}
				st = ms
			default:
				st = store.NewMemoryStore()
			}
			defer func() { _ = st.Close(context.Background()) }()

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			server.NewMetrics(reg).Install()

			opts := cfg.PipelineOptions()
			opts.Logger = logger
			srv := server.New(server.Options{
				Runner:         runner,
				Store:          st,
				Defaults:       opts,
				RequestTimeout: cfg.Server.RequestTimeout.Duration,
				Gatherer:       reg,
				Logger:         logger,
			})
			logger.Info("starting server", "cache", cfg.Cache.Backend, "store", cfg.Store.Backend)
			return srv.ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the plan cache")
	return cmd
}
