// Package config loads diagramkit settings.
//
// Settings come from three places, later ones winning:
//
//  1. Built-in defaults ([Default])
//  2. A TOML file, by default ~/.config/diagramkit/config.toml
//  3. Environment variables, after loading a .env file from the working
//     directory if one exists
//
// Example file:
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//
//	[layout]
//	row_height = 60
//
//	[server]
//	addr = ":8080"
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/matzehuels/diagramkit/pkg/errors"
	"github.com/matzehuels/diagramkit/pkg/layout/sequence"
)

const appName = "diagramkit"

// Environment variables that override the file.
const (
	EnvCache      = "DIAGRAMKIT_CACHE"
	EnvCacheDir   = "DIAGRAMKIT_CACHE_DIR"
	EnvRedisURL   = "DIAGRAMKIT_REDIS_URL"
	EnvMongoURI   = "DIAGRAMKIT_MONGO_URI"
	EnvAddr       = "DIAGRAMKIT_ADDR"
	EnvMaxWarning = "DIAGRAMKIT_MAX_DIAGNOSTICS"
)

// Cache backends.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendNone   = "none"
)

// Config is the full set of settings.
type Config struct {
	Cache  CacheConfig      `toml:"cache"`
	Layout sequence.Options `toml:"layout"`
	Parse  ParseConfig      `toml:"parse"`
	Server ServerConfig     `toml:"server"`

	// Path is the file the config was read from, empty when none was found.
	Path string `toml:"-"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend string `toml:"backend"`
	// Dir is the file cache directory. Empty uses the XDG cache home.
	Dir string `toml:"dir"`
	// Size is the entry limit of the memory backend.
	Size int `toml:"size"`
	// Namespace prefixes every cache key so several environments can share
	// one backend.
	Namespace string `toml:"namespace"`

	RedisURL    string `toml:"redis_url"`
	RedisPrefix string `toml:"redis_prefix"`

	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// ParseConfig holds parser settings.
type ParseConfig struct {
	MaxDiagnostics int `toml:"max_diagnostics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Cache: CacheConfig{
			Backend:         BackendFile,
			Size:            1024,
			RedisPrefix:     appName + ":",
			MongoDatabase:   appName,
			MongoCollection: "cache",
		},
		Layout: sequence.DefaultOptions(),
		Parse:  ParseConfig{MaxDiagnostics: 256},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// DefaultPath returns ~/.config/diagramkit/config.toml, honouring
// XDG_CONFIG_HOME.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads settings. An empty path reads the default file if it exists;
// an explicit path must exist.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}

	if path != "" {
		switch _, err := os.Stat(path); {
		case err == nil:
			if err := cfg.decodeFile(path); err != nil {
				return nil, err
			}
		case os.IsNotExist(err) && !explicit:
		case os.IsNotExist(err):
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		default:
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decodeFile(path string) error {
	meta, err := toml.DecodeFile(path, c)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s: failed to parse TOML", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	c.Path = path
	return nil
}

// ApplyEnv overrides settings from environment variables looked up with
// lookup. Setting a Redis or Mongo location without a backend selects that
// backend.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	backendSet := false
	if v, ok := get(EnvCache); ok {
		c.Cache.Backend = strings.ToLower(v)
		backendSet = true
	}
	if v, ok := get(EnvCacheDir); ok {
		c.Cache.Dir = v
	}
	if v, ok := get(EnvRedisURL); ok {
		c.Cache.RedisURL = v
		if !backendSet {
			c.Cache.Backend = BackendRedis
		}
	}
	if v, ok := get(EnvMongoURI); ok {
		c.Cache.MongoURI = v
		if !backendSet && c.Cache.Backend != BackendRedis {
			c.Cache.Backend = BackendMongo
		}
	}
	if v, ok := get(EnvAddr); ok {
		c.Server.Addr = v
	}
	if v, ok := get(EnvMaxWarning); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s must be an integer", EnvMaxWarning)
		}
		c.Parse.MaxDiagnostics = n
	}
	return nil
}

// Validate checks that the settings are usable and fills layout defaults.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case BackendFile, BackendMemory, BackendNone:
	case BackendRedis:
		if c.Cache.RedisURL == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "redis cache needs redis_url or %s", EnvRedisURL)
		}
	case BackendMongo:
		if c.Cache.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "mongo cache needs mongo_uri or %s", EnvMongoURI)
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig,
			"unknown cache backend %q (must be one of: file, memory, redis, mongo, none)", c.Cache.Backend)
	}
	if c.Parse.MaxDiagnostics < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "max_diagnostics must not be negative")
	}
	c.Layout = c.Layout.WithDefaults()
	return nil
}
