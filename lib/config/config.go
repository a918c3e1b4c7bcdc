// Package config loads and validates dbpool configuration from TOML files.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	dberrors "github.com/go-i2p/dbpool/lib/errors"
	"github.com/go-i2p/dbpool/lib/pool"
)

// Default configuration values
const (
	DefaultDriver        = "sqlite3"
	DefaultDSN           = "file:dbpool.db?_busy_timeout=5000"
	DefaultRedisAddr     = "127.0.0.1:6379"
	DefaultMetricsListen = "127.0.0.1:9090"
)

// Config holds all configuration for a dbpool deployment.
type Config struct {
	Pool     PoolConfig     `toml:"pool"`
	Database DatabaseConfig `toml:"database"`
	Redis    RedisConfig    `toml:"redis"`
	Metrics  MetricsConfig  `toml:"metrics"`
}

// PoolConfig contains the pool's capacity settings.
type PoolConfig struct {
	// MaxConnections is the ceiling on simultaneously tracked connections
	MaxConnections int `toml:"max_connections"`
	// PendingTimeoutSeconds is how many one-second retries a blocked
	// acquisition performs before failing
	PendingTimeoutSeconds int `toml:"pending_timeout_seconds"`
}

// DatabaseConfig contains SQL database settings.
type DatabaseConfig struct {
	// Driver is the database/sql driver name ("sqlite3" or "mysql")
	Driver string `toml:"driver"`
	// DSN is the driver-specific data source name
	DSN string `toml:"dsn"`
}

// RedisConfig contains Redis settings for the Redis connection adapter.
type RedisConfig struct {
	// Enabled controls whether the Redis adapter is used
	Enabled bool `toml:"enabled"`
	// Addr is the Redis server address (host:port)
	Addr string `toml:"addr"`
	// DB is the Redis database number
	DB int `toml:"db"`
	// Password is the Redis AUTH password, if any
	Password string `toml:"password,omitempty"`
}

// MetricsConfig contains metrics exposition settings.
type MetricsConfig struct {
	// Enabled controls whether the metrics endpoint is served
	Enabled bool `toml:"enabled"`
	// Listen is the address to bind the metrics server to
	Listen string `toml:"listen"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Pool: PoolConfig{
			MaxConnections:        pool.DefaultMaxConnections,
			PendingTimeoutSeconds: pool.DefaultPendingTimeout,
		},
		Database: DatabaseConfig{
			Driver: DefaultDriver,
			DSN:    DefaultDSN,
		},
		Redis: RedisConfig{
			Enabled: false,
			Addr:    DefaultRedisAddr,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Listen:  DefaultMetricsListen,
		},
	}
}

// Load reads configuration from a TOML file.
// If the file doesn't exist, it returns the default configuration.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to a TOML file.
// It creates the parent directory if it doesn't exist.
func Save(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Pool.MaxConnections < 1 {
		return fmt.Errorf("pool.max_connections must be at least 1: %w", dberrors.ErrConfigPoolLimits)
	}
	if c.Pool.PendingTimeoutSeconds < 0 {
		return fmt.Errorf("pool.pending_timeout_seconds must not be negative: %w", dberrors.ErrConfigPoolLimits)
	}
	if c.Database.Driver == "" {
		return fmt.Errorf("database.driver is required: %w", dberrors.ErrConfigDatabase)
	}
	if c.Database.Driver != "sqlite3" && c.Database.Driver != "mysql" {
		return fmt.Errorf("database.driver must be sqlite3 or mysql, got %q: %w", c.Database.Driver, dberrors.ErrConfigDatabase)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required: %w", dberrors.ErrConfigDatabase)
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required when redis is enabled: %w", dberrors.ErrConfiguration)
	}
	if c.Metrics.Enabled && c.Metrics.Listen == "" {
		return fmt.Errorf("metrics.listen is required when metrics are enabled: %w", dberrors.ErrConfiguration)
	}
	return nil
}

// PoolSettings converts the [pool] section into a pool.Config.
func (c *Config) PoolSettings() pool.Config {
	return pool.Config{
		MaxConnections: c.Pool.MaxConnections,
		PendingTimeout: c.Pool.PendingTimeoutSeconds,
	}
}
