// Package config loads the service configuration from an optional TOML file
// and the process environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Database drivers selected by the DATABASE_URL scheme.
const (
	DriverMongo    = "mongodb"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Config is the process configuration. It is loaded once at startup.
type Config struct {
	Server   Server   `toml:"server"`
	Database Database `toml:"database"`
	CORS     CORS     `toml:"cors"`
	Cache    Cache    `toml:"cache"`
}

// Server holds HTTP listener settings.
type Server struct {
	Port int `toml:"port"`
	// Env is the deployment environment name, e.g. development or production.
	Env string `toml:"env"`
}

// Database holds the persistence connection settings.
type Database struct {
	// URL selects the store: mongodb://, mongodb+srv://, postgres://,
	// sqlite://<path> or memory://.
	URL   string `toml:"url"`
	Debug bool   `toml:"debug"`
}

// CORS holds the allowed cross-origin sources.
type CORS struct {
	Origins []string `toml:"origins"`
}

// Cache holds the optional Redis read cache settings. An empty URL disables
// the cache.
type Cache struct {
	URL string `toml:"url"`
	// TTLSeconds is how long a cached read stays valid.
	TTLSeconds int `toml:"ttl_seconds"`
}

// TTL returns the cache entry lifetime.
func (c Cache) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// Enabled reports whether a cache URL is configured.
func (c Cache) Enabled() bool {
	return c.URL != ""
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: Server{
			Port: 5000,
			Env:  "development",
		},
		Database: Database{
			URL: "mongodb://localhost:27017/tasks-db",
		},
		CORS: CORS{
			Origins: []string{"http://localhost:5173", "http://localhost:3000"},
		},
		Cache: Cache{
			TTLSeconds: 300,
		},
	}
}

// Load builds the configuration from defaults, the TOML file at path (when
// path is not empty) and environment variables, in that order of precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.Server.Env = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("DB_DEBUG"); v != "" {
		cfg.Database.Debug = v == "true"
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.CORS.Origins = splitList(v)
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Cache.URL = v
	}
	if v := os.Getenv("CACHE_TTL_SECONDS"); v != "" {
		ttl, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid CACHE_TTL_SECONDS %q: %w", v, err)
		}
		cfg.Cache.TTLSeconds = ttl
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks that the configuration can be used to start the service.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	if c.Server.Env == "" {
		return fmt.Errorf("environment name is required")
	}
	if _, err := DatabaseDriver(c.Database.URL); err != nil {
		return err
	}
	if c.Cache.Enabled() && c.Cache.TTLSeconds <= 0 {
		return fmt.Errorf("invalid cache ttl %d", c.Cache.TTLSeconds)
	}
	return nil
}

// IsDevelopment reports whether the service runs in the development environment.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// DatabaseDriver returns the store driver for a database URL.
func DatabaseDriver(databaseURL string) (string, error) {
	if databaseURL == "" {
		return "", fmt.Errorf("database url is required")
	}
	u, err := url.Parse(databaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid database url: %w", err)
	}
	switch u.Scheme {
	case "mongodb", "mongodb+srv":
		return DriverMongo, nil
	case "postgres", "postgresql":
		return DriverPostgres, nil
	case "sqlite":
		return DriverSQLite, nil
	case "memory":
		return DriverMemory, nil
	default:
		return "", fmt.Errorf("unsupported database url scheme %q", u.Scheme)
	}
}
