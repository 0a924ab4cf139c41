// Package cli implements the craneplan command-line interface.
//
// Commands:
//   - balance: plan moves that even out the two halves of the hold
//   - load: plan a load/unload request
//   - show: print a manifest as a grid
//   - replay: verify a saved plan against its inbound manifest
//   - serve: run the HTTP API
//   - cache: manage the local plan cache
//
// All commands accept --verbose (-v) for debug logging and --config to point
// at a TOML settings file.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/craneplan/internal/config"
	"github.com/matzehuels/craneplan/pkg/buildinfo"
	"github.com/matzehuels/craneplan/pkg/cache"
	"github.com/matzehuels/craneplan/pkg/pipeline"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	verbose    bool
	cfg        *config.Config
}

// New creates a new CLI instance writing logs to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           config.AppName,
		Short:         "Craneplan plans crane moves for container ships",
		Long:          `Craneplan computes low-cost crane move sequences that balance a ship's hold or load and unload containers, and writes the outbound manifest.`,
		Version:       buildinfo.Get().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			cmd.SetContext(withLogger(cmd.Context(), commandLogger(c.Logger, cmd.Name())))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/craneplan/config.toml)")

	root.AddCommand(c.balanceCommand())
	root.AddCommand(c.loadCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.replayCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig loads the settings once per process.
func (c *CLI) loadConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, cfg *config.Config, noCache bool) (*pipeline.Runner, error) {
	pc, err := newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if cfg.Cache.Prefix != "" {
		keyer = cache.NewScopedKeyer(nil, cfg.Cache.Prefix)
	}
	r := pipeline.NewRunner(pc, keyer, c.Logger)
	r.TTL = cfg.Cache.TTL.Duration
	return r, nil
}

func newCache(ctx context.Context, cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
	case config.CacheFile:
		if cfg.Cache.Dir == "" {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(cfg.Cache.Dir)
	default:
		return cache.NewNullCache(), nil
	}
}
