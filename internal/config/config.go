package config

import (
	"fmt"
	"os"
	"time"

	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/database"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/storage"
	"github.com/pelletier/go-toml/v2"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvMaldrethEnv             = "MALDRETH_ENV"
	EnvMaldrethConfig          = "MALDRETH_CONFIG"
	EnvMaldrethShutdownTimeout = "MALDRETH_SHUTDOWN_TIMEOUT"
	EnvMaldrethVersion         = "MALDRETH_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "MALDRETH_DB_HOST",
	Port:            "MALDRETH_DB_PORT",
	Name:            "MALDRETH_DB_NAME",
	User:            "MALDRETH_DB_USER",
	Password:        "MALDRETH_DB_PASSWORD",
	SSLMode:         "MALDRETH_DB_SSL_MODE",
	MaxOpenConns:    "MALDRETH_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "MALDRETH_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "MALDRETH_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "MALDRETH_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	Enabled:          "MALDRETH_ARCHIVE_ENABLED",
	ContainerName:    "MALDRETH_ARCHIVE_CONTAINER_NAME",
	ConnectionString: "MALDRETH_ARCHIVE_CONNECTION_STRING",
	MaxListSize:      "MALDRETH_ARCHIVE_MAX_LIST_SIZE",
}

// Config is the root configuration for the discovery service and CLI.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Archive         storage.Config  `toml:"archive"`
	API             APIConfig       `toml:"api"`
	Discovery       DiscoveryConfig `toml:"discovery"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the MALDRETH_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvMaldrethEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config, applies the environment overlay and finalizes
// all values. MALDRETH_CONFIG replaces config.toml as the base path. A
// missing base file is not an error: defaults and environment variables
// then supply everything.
func Load() (*Config, error) {
	return LoadFile(basePath())
}

// LoadFile is Load with an explicit base path.
func LoadFile(path string) (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(path); err == nil {
		loaded, err := load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if overlay := overlayPath(); overlay != "" {
		o, err := load(overlay)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", overlay, err)
		}
		cfg.Merge(o)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Archive.Merge(&overlay.Archive)
	c.API.Merge(&overlay.API)
	c.Discovery.Merge(&overlay.Discovery)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Archive.Finalize(storageEnv); err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Discovery.Finalize(); err != nil {
		return fmt.Errorf("discovery: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvMaldrethShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvMaldrethVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return &cfg, nil
}

func basePath() string {
	if v := os.Getenv(EnvMaldrethConfig); v != "" {
		return v
	}
	return BaseConfigFile
}

func overlayPath() string {
	if env := os.Getenv(EnvMaldrethEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
