// Package config loads craneplan settings from a TOML file.
//
// The default location is $XDG_CONFIG_HOME/craneplan/config.toml (falling
// back to ~/.config/craneplan/config.toml). A missing default file is not an
// error; every setting has a default.
//
//	[planner]
//	max_frontier = 5000
//	keep_on_cull = 100
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/craneplan/pkg/errors"
	"github.com/matzehuels/craneplan/pkg/loadunload"
	"github.com/matzehuels/craneplan/pkg/pipeline"
	"github.com/matzehuels/craneplan/pkg/planner"
	"github.com/matzehuels/craneplan/pkg/yard"
)

// AppName names the config and cache directories.
const AppName = "craneplan"

// Cache backends.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreMongo  = "mongo"
)

// Config is the full settings tree.
type Config struct {
	Planner PlannerConfig `toml:"planner"`
	Layout  yard.Layout   `toml:"layout"`
	Cache   CacheConfig   `toml:"cache"`
	Store   StoreConfig   `toml:"store"`
	Server  ServerConfig  `toml:"server"`
}

// PlannerConfig bounds the search.
type PlannerConfig struct {
	MaxFrontier    int `toml:"max_frontier"`
	KeepOnCull     int `toml:"keep_on_cull"`
	MaxAssignments int `toml:"max_assignments"`
	LogEvery       int `toml:"log_every"`
}

// CacheConfig selects the plan cache.
type CacheConfig struct {
	Backend       string   `toml:"backend"`
	Dir           string   `toml:"dir"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
	Prefix        string   `toml:"prefix"`
	TTL           Duration `toml:"ttl"`
}

// StoreConfig selects the plan archive.
type StoreConfig struct {
	Backend  string `toml:"backend"`
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr           string   `toml:"addr"`
	RequestTimeout Duration `toml:"request_timeout"`
}

// Duration is a time.Duration written as a string ("90s", "2h") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Planner: PlannerConfig{
			MaxFrontier:    planner.DefaultMaxFrontier,
			KeepOnCull:     planner.DefaultKeepOnCull,
			MaxAssignments: loadunload.DefaultMaxAssignments,
			LogEvery:       planner.DefaultLogEvery,
		},
		Layout: yard.DefaultLayout,
		Cache: CacheConfig{
			Backend:   CacheFile,
			RedisAddr: "localhost:6379",
			TTL:       Duration{7 * 24 * time.Hour},
		},
		Store: StoreConfig{
			Backend:  StoreMemory,
			MongoURI: "mongodb://localhost:27017",
			Database: "craneplan",
		},
		Server: ServerConfig{
			Addr:           ":8080",
			RequestTimeout: Duration{2 * time.Minute},
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// CacheDir returns the default file cache directory
// ($XDG_CACHE_HOME/craneplan or ~/.cache/craneplan).
func CacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}

// Load reads path on top of the defaults. An empty path loads the default
// location and tolerates its absence; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, cfg)
	if errors.Is(err, fs.ErrNotExist) {
		if explicit {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "config %s", path)
		}
		cfg.fillPaths()
		return cfg, cfg.Validate()
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errs.New(errs.ErrCodeInvalidConfig, "%s: unknown key %q", path, undecoded[0].String())
	}
	cfg.fillPaths()
	return cfg, cfg.Validate()
}

func (c *Config) fillPaths() {
	if c.Cache.Dir == "" && c.Cache.Backend == CacheFile {
		if dir, err := CacheDir(); err == nil {
			c.Cache.Dir = dir
		}
	}
}

// Validate rejects settings the planner or the backends cannot use.
func (c *Config) Validate() error {
	p := c.Planner
	if p.MaxFrontier <= 0 || p.KeepOnCull <= 0 || p.MaxAssignments <= 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "planner limits must be positive")
	}
	if p.KeepOnCull > p.MaxFrontier {
		return errs.New(errs.ErrCodeInvalidConfig, "keep_on_cull (%d) exceeds max_frontier (%d)", p.KeepOnCull, p.MaxFrontier)
	}
	if p.LogEvery < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "log_every cannot be negative; use 0 to disable progress logs")
	}
	if err := c.Layout.Validate(); err != nil {
		return err
	}

	switch c.Cache.Backend {
	case CacheNone, CacheFile:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return errs.New(errs.ErrCodeInvalidConfig, "cache.redis_addr is required for the redis backend")
		}
	default:
		return errs.New(errs.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}

	switch c.Store.Backend {
	case StoreMemory:
	case StoreMongo:
		if c.Store.MongoURI == "" {
			return errs.New(errs.ErrCodeInvalidConfig, "store.mongo_uri is required for the mongo backend")
		}
	default:
		return errs.New(errs.ErrCodeInvalidConfig, "unknown store backend %q", c.Store.Backend)
	}
	return nil
}

// PipelineOptions converts the planner and layout sections into run options.
func (c *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Layout:         c.Layout,
		MaxFrontier:    c.Planner.MaxFrontier,
		KeepOnCull:     c.Planner.KeepOnCull,
		LogEvery:       c.Planner.LogEvery,
		MaxAssignments: c.Planner.MaxAssignments,
	}
}
