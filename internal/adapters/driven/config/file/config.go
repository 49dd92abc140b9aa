package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// Environment variables consulted when the config file leaves a value
// unset.
const (
	EnvStorePath = "VCON_STORE_PATH"
	EnvCachePath = "VCON_CACHE_PATH"
	EnvCacheTTL  = "VCON_CACHE_TTL"
)

// DefaultCacheTTLSeconds is the cache entry time-to-live applied when
// neither file nor environment supplies one.
const DefaultCacheTTLSeconds = 3600

// ErrMissingStorePath indicates the store location resolved to
// nothing; the module cannot operate without its store.
var ErrMissingStorePath = errors.New("store path is required")

// Config is the resolved, immutable configuration.
type Config struct {
	// StorePath is the SQLite data directory. Empty in the file and
	// environment resolves to ~/.vconstore/data.
	StorePath string

	// CachePath is the Badger cache directory. Empty disables
	// caching.
	CachePath string

	// CacheTTLSeconds is the uniform cache entry time-to-live.
	CacheTTLSeconds int
}

// fileConfig mirrors the TOML layout:
//
//	[store]
//	path = "/var/lib/vconstore"
//
//	[cache]
//	path = "/var/lib/vconstore/cache"
//	ttl = 3600
type fileConfig struct {
	Store struct {
		Path *string `toml:"path"`
	} `toml:"store"`
	Cache struct {
		Path *string `toml:"path"`
		TTL  *int    `toml:"ttl"`
	} `toml:"cache"`
}

// Load resolves configuration from configDir/config.toml, the
// process environment, and defaults, in that precedence order.
// If configDir is empty, defaults to ~/.vconstore.
// A config file explicitly setting an empty store path is a fatal
// configuration error.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		configDir = filepath.Join(home, ".vconstore")
	}

	var fc fileConfig
	filePath := filepath.Join(configDir, "config.toml")
	data, err := os.ReadFile(filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// No config file yet - environment and defaults apply
	} else if err := toml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg := &Config{
		StorePath:       filepath.Join(configDir, "data"),
		CacheTTLSeconds: DefaultCacheTTLSeconds,
	}

	if env := os.Getenv(EnvStorePath); env != "" {
		cfg.StorePath = env
	}
	if env := os.Getenv(EnvCachePath); env != "" {
		cfg.CachePath = env
	}
	if env := os.Getenv(EnvCacheTTL); env != "" {
		ttl, err := strconv.Atoi(env)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", EnvCacheTTL, err)
		}
		cfg.CacheTTLSeconds = ttl
	}

	// Explicit file values take precedence over the environment.
	if fc.Store.Path != nil {
		cfg.StorePath = *fc.Store.Path
	}
	if fc.Cache.Path != nil {
		cfg.CachePath = *fc.Cache.Path
	}
	if fc.Cache.TTL != nil {
		cfg.CacheTTLSeconds = *fc.Cache.TTL
	}

	if cfg.StorePath == "" {
		return nil, ErrMissingStorePath
	}

	return cfg, nil
}
