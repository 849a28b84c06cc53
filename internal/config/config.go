// Package config loads archview settings from a TOML file and ARCHVIEW_*
// environment variables.
//
// Precedence, lowest first: built-in defaults, the config file, the
// environment. The file is optional; an explicit path that does not exist
// is an error.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/archview/pkg/errors"
)

// Environment variables.
const (
	EnvConfig = "ARCHVIEW_CONFIG"

	// EnvDataRootCompat is honoured when ARCHVIEW_DATA_ROOT is unset.
	EnvDataRootCompat = "DATA_ROOT"
)

// Store backends.
const (
	StoreFile  = "file"
	StoreMongo = "mongo"
)

// Cache backends.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// Config is the complete archview configuration.
type Config struct {
	Server ServerConfig `toml:"server"`
	Store  StoreConfig  `toml:"store"`
	Cache  CacheConfig  `toml:"cache"`
	Log    LogConfig    `toml:"log"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr            string   `toml:"addr"`
	RequestTimeout  Duration `toml:"request_timeout"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
}

// StoreConfig selects where the catalog lives.
type StoreConfig struct {
	Backend       string `toml:"backend"`
	DataRoot      string `toml:"data_root"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// CacheConfig selects the rendered-artifact cache.
type CacheConfig struct {
	Backend       string   `toml:"backend"`
	Dir           string   `toml:"dir"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
	TTL           Duration `toml:"ttl"`
}

// LogConfig controls the logger.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Duration is a time.Duration written as a string ("30s", "5m") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			RequestTimeout:  Duration{30 * time.Second},
			ShutdownTimeout: Duration{10 * time.Second},
		},
		Store: StoreConfig{
			Backend:       StoreFile,
			DataRoot:      "data",
			MongoDatabase: "archview",
		},
		Cache: CacheConfig{
			Backend:   CacheNone,
			RedisAddr: "localhost:6379",
			TTL:       Duration{24 * time.Hour},
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads path (or $ARCHVIEW_CONFIG when path is empty), applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (*Config, error) {
	if path == "" {
		path, _ = lookup(EnvConfig)
	}

	cfg := Default()
	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("parse config: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errs.New(errs.ErrCodeInvalidInput, "unknown config key %q", undecoded[0].String())
		}
	}

	if err := applyEnvOverrides(&cfg, lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}
	dur := func(name string, dst *Duration) error {
		v, ok := lookup(name)
		if !ok || v == "" {
			return nil
		}
		if err := dst.UnmarshalText([]byte(v)); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidInput, err, "%s", name)
		}
		return nil
	}

	str("ARCHVIEW_SERVER_ADDR", &cfg.Server.Addr)
	if err := dur("ARCHVIEW_SERVER_REQUEST_TIMEOUT", &cfg.Server.RequestTimeout); err != nil {
		return err
	}
	if err := dur("ARCHVIEW_SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout); err != nil {
		return err
	}

	str("ARCHVIEW_STORE_BACKEND", &cfg.Store.Backend)
	str(EnvDataRootCompat, &cfg.Store.DataRoot)
	str("ARCHVIEW_DATA_ROOT", &cfg.Store.DataRoot)
	str("ARCHVIEW_MONGO_URI", &cfg.Store.MongoURI)
	str("ARCHVIEW_MONGO_DATABASE", &cfg.Store.MongoDatabase)

	str("ARCHVIEW_CACHE_BACKEND", &cfg.Cache.Backend)
	str("ARCHVIEW_CACHE_DIR", &cfg.Cache.Dir)
	str("ARCHVIEW_REDIS_ADDR", &cfg.Cache.RedisAddr)
	str("ARCHVIEW_REDIS_PASSWORD", &cfg.Cache.RedisPassword)
	if v, ok := lookup("ARCHVIEW_REDIS_DB"); ok && v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return errs.Wrap(errs.ErrCodeInvalidInput, err, "ARCHVIEW_REDIS_DB")
		}
		cfg.Cache.RedisDB = db
	}
	if err := dur("ARCHVIEW_CACHE_TTL", &cfg.Cache.TTL); err != nil {
		return err
	}

	str("ARCHVIEW_LOG_LEVEL", &cfg.Log.Level)
	str("ARCHVIEW_LOG_FORMAT", &cfg.Log.Format)
	return nil
}

// Validate reports settings that cannot be used.
func (c *Config) Validate() error {
	c.Store.Backend = strings.ToLower(c.Store.Backend)
	c.Cache.Backend = strings.ToLower(c.Cache.Backend)

	switch c.Store.Backend {
	case StoreFile:
		if c.Store.DataRoot == "" {
			return errs.New(errs.ErrCodeInvalidInput, "store.data_root is required for the file backend")
		}
	case StoreMongo:
		if c.Store.MongoURI == "" {
			return errs.New(errs.ErrCodeInvalidInput, "store.mongo_uri is required for the mongo backend")
		}
	default:
		return errs.New(errs.ErrCodeInvalidInput, "unknown store backend %q (must be %s or %s)", c.Store.Backend, StoreFile, StoreMongo)
	}

	switch c.Cache.Backend {
	case CacheNone, CacheFile:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return errs.New(errs.ErrCodeInvalidInput, "cache.redis_addr is required for the redis backend")
		}
	default:
		return errs.New(errs.ErrCodeInvalidInput, "unknown cache backend %q (must be %s, %s or %s)", c.Cache.Backend, CacheNone, CacheFile, CacheRedis)
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return errs.New(errs.ErrCodeInvalidInput, "unknown log format %q (must be text or json)", c.Log.Format)
	}

	if c.Server.RequestTimeout.Duration < 0 || c.Server.ShutdownTimeout.Duration < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "server timeouts must not be negative")
	}
	return nil
}
