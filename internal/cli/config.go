package cli

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/deptree/internal/server"
	deperrors "github.com/matzehuels/deptree/pkg/errors"
	"github.com/matzehuels/deptree/pkg/integrations/npm"
	"github.com/matzehuels/deptree/pkg/pipeline"
)

// Config is the optional config file. Flags override it; it overrides the
// built-in defaults.
//
//	registry    = "https://registry.npmjs.org"
//	max_depth   = 10
//	cache_ttl   = "24h"
//	cache_dir   = "/var/cache/deptree"
//	redis_url   = "redis://localhost:6379/0"
//	npm_binary  = "npm"
//	listen_addr = ":8080"
type Config struct {
	Registry   string   `toml:"registry"`
	MaxDepth   int      `toml:"max_depth"`
	CacheTTL   duration `toml:"cache_ttl"`
	CacheDir   string   `toml:"cache_dir"`
	RedisURL   string   `toml:"redis_url"`
	NpmBinary  string   `toml:"npm_binary"`
	ListenAddr string   `toml:"listen_addr"`
}

// duration decodes TOML strings such as "90m" or "24h".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Registry:   npm.DefaultRegistry,
		MaxDepth:   pipeline.DefaultMaxDepth,
		CacheTTL:   duration{pipeline.DefaultCacheTTL},
		ListenAddr: server.DefaultAddr,
	}
}

// defaultConfigPath returns $XDG_CONFIG_HOME/deptree/config.toml, falling
// back to the platform config directory.
func defaultConfigPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName, "config.toml"), nil
}

// loadConfig reads the config at path on top of the defaults. An empty path
// means the default location, which may be absent; an explicit path must
// exist. Unknown keys are logged and ignored.
func loadConfig(path string, logger *log.Logger) (Config, error) {
	cfg := DefaultConfig()
	explicit := path != ""
	if !explicit {
		p, err := defaultConfigPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(), nil
		}
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, deperrors.Wrap(deperrors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return cfg, deperrors.Wrap(deperrors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	for _, key := range md.Undecoded() {
		logger.Warn("unknown config key", "key", key.String(), "file", path)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	logger.Debug("loaded config", "file", path)
	return cfg, nil
}

func (c Config) validate() error {
	if err := deperrors.ValidateURL(c.Registry); err != nil {
		return deperrors.Wrap(deperrors.ErrCodeInvalidConfig, err, "registry")
	}
	if c.MaxDepth < 0 {
		return deperrors.New(deperrors.ErrCodeInvalidConfig, "max_depth must be >= 0, got %d", c.MaxDepth)
	}
	if c.CacheTTL.Duration <= 0 {
		return deperrors.New(deperrors.ErrCodeInvalidConfig, "cache_ttl must be positive")
	}
	return nil
}
