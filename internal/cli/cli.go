// Package cli implements the archview command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/archview/internal/config"
	"github.com/matzehuels/archview/pkg/buildinfo"
	"github.com/matzehuels/archview/pkg/cache"
	"github.com/matzehuels/archview/pkg/pipeline"
	"github.com/matzehuels/archview/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "archview"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// ConfigPath is the --config flag. Empty falls back to $ARCHVIEW_CONFIG.
	ConfigPath string

	// DataRoot is the --data flag. It overrides the configured data root.
	DataRoot string

	// Verbose forces debug logging regardless of the configured level.
	Verbose bool

	out io.Writer
	cfg *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), out: os.Stdout}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "archview renders system architecture catalogs",
		Long: `archview serves and renders a catalog of systems, the connections between them
and the user journeys that cross them. Journeys can be viewed one at a time or
consolidated into a single "all journeys" view.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.configure()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.ConfigPath, "config", "c", "", "config file (default $"+config.EnvConfig+")")
	root.PersistentFlags().StringVarP(&c.DataRoot, "data", "d", "", "catalog data root (overrides config)")
	root.PersistentFlags().BoolVarP(&c.Verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.seedCommand())
	root.AddCommand(c.journeysCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// configure loads the configuration and applies the log settings.
func (c *CLI) configure() error {
	cfg, err := config.Load(c.ConfigPath)
	if err != nil {
		return err
	}
	if c.DataRoot != "" {
		cfg.Store.Backend = config.StoreFile
		cfg.Store.DataRoot = c.DataRoot
	}
	c.cfg = cfg

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		c.Logger.Warn("unknown log level, using info", "level", cfg.Log.Level)
		level = log.InfoLevel
	}
	if c.Verbose {
		level = log.DebugLevel
	}
	c.SetLogLevel(level)
	if cfg.Log.Format == "json" {
		c.Logger.SetFormatter(log.JSONFormatter)
	}
	return nil
}

// config returns the loaded configuration, or the defaults when a command
// runs without the root pre-run (tests).
func (c *CLI) config() *config.Config {
	if c.cfg == nil {
		cfg := config.Default()
		if c.DataRoot != "" {
			cfg.Store.DataRoot = c.DataRoot
		}
		c.cfg = &cfg
	}
	return c.cfg
}

// =============================================================================
// Runner Factory
// =============================================================================

// openStore opens the configured entity store.
func (c *CLI) openStore(ctx context.Context) (store.Store, error) {
	cfg := c.config()
	return store.Open(ctx, store.Options{
		Backend:       cfg.Store.Backend,
		DataRoot:      cfg.Store.DataRoot,
		MongoURI:      cfg.Store.MongoURI,
		MongoDatabase: cfg.Store.MongoDatabase,
		Logger:        c.Logger,
	})
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	s, err := c.openStore(ctx)
	if err != nil {
		return nil, err
	}
	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		s.Close()
		return nil, err
	}
	r := pipeline.NewRunner(s, nil, ch, cache.NewScopedKeyer(nil, appName+":"), c.Logger)
	r.Backend = c.config().Store.Backend
	r.TTL = c.config().Cache.TTL.Duration
	return r, nil
}

// newCache opens the configured artifact cache. Unless redis is configured
// the CLI keeps a local file cache; backend "none" only applies to serve.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	cfg := c.config().Cache
	if cfg.Backend == config.CacheRedis {
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		return rc, nil
	}

	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Debug("cache disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return fc, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, or the XDG default
// (~/.cache/archview/).
func (c *CLI) cacheDir() (string, error) {
	if dir := c.config().Cache.Dir; dir != "" {
		return dir, nil
	}
	return defaultCacheDir()
}

func defaultCacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
