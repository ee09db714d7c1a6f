// Package config loads the interestmap configuration file.
//
// The file is TOML and lives at $XDG_CONFIG_HOME/interestmap/config.toml
// (~/.config/interestmap/config.toml when XDG_CONFIG_HOME is unset). A
// missing file is not an error: Load returns Default. Keys the file sets
// override the defaults; unknown keys are rejected.
//
//	[map]
//	width = 1200
//	level_distances = [0, 160, 280, 380]
//	tick_interval = "16ms"
//
//	[simulation]
//	seed = 42
//	ticks = 300
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//
//	[store]
//	backend = "mongo"
//	mongo_uri = "mongodb://localhost:27017"
//
//	[server]
//	addr = "127.0.0.1:8080"
//
//	[log]
//	level = "debug"
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/interestmap/pkg/errors"
	"github.com/matzehuels/interestmap/pkg/interestmap"
	"github.com/matzehuels/interestmap/pkg/pipeline"
)

// AppName names the configuration, cache and data directories.
const AppName = "interestmap"

// Backends.
const (
	BackendNone   = "none"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
	BackendMongo  = "mongo"
)

// CacheBackends and StoreBackends list the accepted backend names.
var (
	CacheBackends = []string{BackendFile, BackendRedis, BackendNone}
	StoreBackends = []string{BackendFile, BackendMongo, BackendMemory}
)

// Config is the whole configuration file.
type Config struct {
	Map        interestmap.Options `toml:"map"`
	Simulation Simulation          `toml:"simulation"`
	Cache      Cache               `toml:"cache"`
	Store      Store               `toml:"store"`
	Server     Server              `toml:"server"`
	Log        Log                 `toml:"log"`

	// Ignored lists keys in the loaded file that no setting reads.
	Ignored []string `toml:"-"`
}

// Simulation configures headless settling.
type Simulation struct {
	Seed  uint64 `toml:"seed"`
	Ticks int    `toml:"ticks"`
}

// Cache configures the layout cache.
type Cache struct {
	Backend   string `toml:"backend"`
	Dir       string `toml:"dir,omitempty"` // file backend; empty means the XDG cache dir
	RedisURL  string `toml:"redis_url,omitempty"`
	Prefix    string `toml:"prefix,omitempty"`    // redis key prefix
	Namespace string `toml:"namespace,omitempty"` // scopes cache keys, for shared caches
}

// Store configures snapshot storage.
type Store struct {
	Backend         string `toml:"backend"`
	Dir             string `toml:"dir,omitempty"` // file backend; empty means the XDG data dir
	MongoURI        string `toml:"mongo_uri,omitempty"`
	MongoDatabase   string `toml:"mongo_database,omitempty"`
	MongoCollection string `toml:"mongo_collection,omitempty"`
}

// Server configures the HTTP API.
type Server struct {
	Addr         string `toml:"addr"`
	MaxBodyBytes int64  `toml:"max_body_bytes,omitempty"`
}

// Log configures logging.
type Log struct {
	Level string `toml:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	var m interestmap.Options
	m.SetDefaults()
	return Config{
		Map:        m,
		Simulation: Simulation{Seed: pipeline.DefaultSeed, Ticks: pipeline.DefaultTicks},
		Cache:      Cache{Backend: BackendFile, Prefix: AppName + ":"},
		Store:      Store{Backend: BackendFile, MongoDatabase: AppName},
		Server:     Server{Addr: "127.0.0.1:8080"},
		Log:        Log{Level: "info"},
	}
}

// Load reads the file at path over Default. A missing file yields Default.
// Unknown keys keep their defaults and are listed in Ignored.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	for _, k := range md.Undecoded() {
		cfg.Ignored = append(cfg.Ignored, k.String())
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", path)
	}
	return cfg, nil
}

// Save writes cfg to path, creating the directory.
func Save(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return f.Close()
}

// Validate checks backend names, the log level and the map options.
func (c Config) Validate() error {
	if !slices.Contains(CacheBackends, c.Cache.Backend) {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend %q (want one of %s)", c.Cache.Backend, strings.Join(CacheBackends, ", "))
	}
	if c.Cache.Backend == BackendRedis && c.Cache.RedisURL == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_url is required for the redis backend")
	}
	if !slices.Contains(StoreBackends, c.Store.Backend) {
		return errors.New(errors.ErrCodeInvalidConfig, "store.backend %q (want one of %s)", c.Store.Backend, strings.Join(StoreBackends, ", "))
	}
	if c.Store.Backend == BackendMongo && c.Store.MongoURI == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "store.mongo_uri is required for the mongo backend")
	}
	if c.Simulation.Ticks < 0 || c.Simulation.Ticks > pipeline.MaxTicks {
		return errors.New(errors.ErrCodeInvalidConfig, "simulation.ticks %d out of range [0, %d]", c.Simulation.Ticks, pipeline.MaxTicks)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "log.level")
	}
	return c.Map.Validate()
}

// LogLevel returns the parsed log level, or info when it does not parse.
func (c Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// CacheDir returns the file cache directory.
func (c Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	return xdgDir("XDG_CACHE_HOME", ".cache")
}

// SnapshotDir returns the file store directory.
func (c Config) SnapshotDir() (string, error) {
	if c.Store.Dir != "" {
		return c.Store.Dir, nil
	}
	dir, err := xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "snapshots"), nil
}

// Path returns the default configuration file path.
func Path() (string, error) {
	dir, err := xdgDir("XDG_CONFIG_HOME", ".config")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// xdgDir returns $env/interestmap, or ~/fallback/interestmap.
func xdgDir(env, fallback string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, AppName), nil
}
