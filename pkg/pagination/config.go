// Package pagination provides page requests and results for list endpoints.
package pagination

import (
	"fmt"
	"os"
	"strconv"
)

// Config bounds the page sizes clients may request.
type Config struct {
	DefaultPageSize int `toml:"default_page_size"`
	MaxPageSize     int `toml:"max_page_size"`
}

// ConfigEnv names the environment variables read by Finalize.
type ConfigEnv struct {
	DefaultPageSize string
	MaxPageSize     string
}

// Finalize applies defaults, then env overrides, then validates. A nil env
// skips overrides.
func (c *Config) Finalize(env *ConfigEnv) error {
	if c.DefaultPageSize <= 0 {
		c.DefaultPageSize = 20
	}
	if c.MaxPageSize <= 0 {
		c.MaxPageSize = 100
	}

	if env != nil {
		if err := envInt(&c.DefaultPageSize, env.DefaultPageSize); err != nil {
			return err
		}
		if err := envInt(&c.MaxPageSize, env.MaxPageSize); err != nil {
			return err
		}
	}

	switch {
	case c.DefaultPageSize < 1 || c.MaxPageSize < 1:
		return fmt.Errorf("page sizes must be positive: default %d, max %d", c.DefaultPageSize, c.MaxPageSize)
	case c.DefaultPageSize > c.MaxPageSize:
		return fmt.Errorf("default_page_size %d exceeds max_page_size %d", c.DefaultPageSize, c.MaxPageSize)
	}
	return nil
}

// Merge copies positive overlay values.
func (c *Config) Merge(overlay *Config) {
	if overlay.DefaultPageSize > 0 {
		c.DefaultPageSize = overlay.DefaultPageSize
	}
	if overlay.MaxPageSize > 0 {
		c.MaxPageSize = overlay.MaxPageSize
	}
}

// PageSize resolves a requested size: non-positive selects the default and
// anything above the maximum is capped.
func (c Config) PageSize(requested int) int {
	if requested < 1 {
		return c.DefaultPageSize
	}
	return min(requested, c.MaxPageSize)
}

func envInt(dst *int, name string) error {
	if name == "" {
		return nil
	}
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: invalid integer %q", name, v)
	}
	*dst = n
	return nil
}
