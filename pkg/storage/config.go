package storage

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds Azure Blob Storage connection parameters. The archive is
// optional: when Enabled is false the connection string is not required and
// callers skip constructing a System.
type Config struct {
	Enabled          bool   `toml:"enabled"`
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
	MaxListSize      int32  `toml:"max_list_size"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Enabled          string
	ContainerName    string
	ConnectionString string
	MaxListSize      string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay. An overlay can enable the
// archive but not disable one enabled by the base file.
func (c *Config) Merge(overlay *Config) {
	if overlay.Enabled {
		c.Enabled = true
	}
	if overlay.ContainerName != "" {
		c.ContainerName = overlay.ContainerName
	}
	if overlay.ConnectionString != "" {
		c.ConnectionString = overlay.ConnectionString
	}
	if overlay.MaxListSize != 0 {
		c.MaxListSize = overlay.MaxListSize
	}
}

func (c *Config) loadDefaults() {
	if c.ContainerName == "" {
		c.ContainerName = "discovery-runs"
	}
	if c.MaxListSize <= 0 {
		c.MaxListSize = 50
	}
	c.MaxListSize = min(c.MaxListSize, MaxListCap)
}

func (c *Config) loadEnv(env *Env) {
	if v := lookup(env.Enabled); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Enabled = b
		}
	}
	if v := lookup(env.ContainerName); v != "" {
		c.ContainerName = v
	}
	if v := lookup(env.ConnectionString); v != "" {
		c.ConnectionString = v
	}
	if v := lookup(env.MaxListSize); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.MaxListSize = int32(min(n, int(MaxListCap)))
		}
	}
}

func (c *Config) validate() error {
	if !c.Enabled {
		return nil
	}
	if c.ContainerName == "" {
		return fmt.Errorf("container_name required")
	}
	if c.ConnectionString == "" {
		return fmt.Errorf("connection_string required when enabled")
	}
	return nil
}

func lookup(name string) string {
	if name == "" {
		return ""
	}
	return os.Getenv(name)
}
