// Package cli implements the deptree command-line interface.
//
// # Commands
//
//   - analyze: resolve or load a package's dependency graph, print the
//     tree, install order and load order, and optionally compare with npm
//   - serve: run the HTTP API
//   - cache: inspect or clear the manifest cache
//   - completion: generate shell completion scripts
//
// All commands support --verbose (-v) for debug logging and --config to
// point at a TOML config file.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/deptree/pkg/buildinfo"
	"github.com/matzehuels/deptree/pkg/cache"
	"github.com/matzehuels/deptree/pkg/pipeline"
)

const appName = "deptree"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds state shared by all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	config     Config
}

// New creates a CLI logging to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		config: DefaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
// The config file is loaded before any subcommand runs.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "deptree analyzes npm dependency graphs",
		Long: `deptree resolves a package's transitive dependencies from an npm registry
(or reads them from an adjacency-list file), detects cycles, and derives an
install order and a load order. It can cross-check the load order against
the output of "npm ls".`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(c.configPath, c.Logger)
			if err != nil {
				return err
			}
			c.config = cfg
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate("{{.Name}} " + buildinfo.String() + "\n")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/deptree/config.toml)")

	root.AddCommand(c.analyzeCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(store, nil, c.Logger)
	r.TTL = c.config.CacheTTL.Duration
	return r, nil
}

// newCache picks Redis when redis_url is configured and the file cache
// otherwise. An unreachable Redis or a missing cache directory disables
// caching instead of failing.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if c.config.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, c.config.RedisURL)
		if err != nil {
			c.Logger.Warn("redis unavailable, caching disabled", "url", c.config.RedisURL, "err", err)
			return cache.NewNullCache(), nil
		}
		return rc, nil
	}
	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Debug("caching disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return fc, nil
}

// cacheDir returns cache_dir from the config, or the XDG default.
func (c *CLI) cacheDir() (string, error) {
	if c.config.CacheDir != "" {
		return c.config.CacheDir, nil
	}
	return cache.DefaultDir()
}

// stdout is where command output goes; tests replace it.
var stdout io.Writer = os.Stdout
