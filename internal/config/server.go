package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	EnvServerHost            = "MALDRETH_SERVER_HOST"
	EnvServerPort            = "MALDRETH_SERVER_PORT"
	EnvServerReadTimeout     = "MALDRETH_SERVER_READ_TIMEOUT"
	EnvServerWriteTimeout    = "MALDRETH_SERVER_WRITE_TIMEOUT"
	EnvServerShutdownTimeout = "MALDRETH_SERVER_SHUTDOWN_TIMEOUT"
	EnvServerMetricsPath     = "MALDRETH_SERVER_METRICS_PATH"
)

// ServerConfig holds HTTP listener parameters. MetricsPath is where the
// Prometheus scrape endpoint is mounted; an empty value after finalization
// is impossible, "off" disables it.
type ServerConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	ReadTimeout     string `toml:"read_timeout"`
	WriteTimeout    string `toml:"write_timeout"`
	ShutdownTimeout string `toml:"shutdown_timeout"`
	MetricsPath     string `toml:"metrics_path"`
}

// Addr returns the host:port listen address.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// MetricsEnabled reports whether /metrics should be served.
func (c *ServerConfig) MetricsEnabled() bool {
	return c.MetricsPath != "off"
}

func (c *ServerConfig) ReadTimeoutDuration() time.Duration     { return mustDuration(c.ReadTimeout) }
func (c *ServerConfig) WriteTimeoutDuration() time.Duration    { return mustDuration(c.WriteTimeout) }
func (c *ServerConfig) ShutdownTimeoutDuration() time.Duration { return mustDuration(c.ShutdownTimeout) }

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ServerConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ServerConfig) Merge(overlay *ServerConfig) {
	mergeString(&c.Host, overlay.Host)
	mergeString(&c.ReadTimeout, overlay.ReadTimeout)
	mergeString(&c.WriteTimeout, overlay.WriteTimeout)
	mergeString(&c.ShutdownTimeout, overlay.ShutdownTimeout)
	mergeString(&c.MetricsPath, overlay.MetricsPath)
	if overlay.Port != 0 {
		c.Port = overlay.Port
	}
}

func (c *ServerConfig) loadDefaults() {
	defaultString(&c.Host, "0.0.0.0")
	defaultString(&c.ReadTimeout, "30s")
	defaultString(&c.WriteTimeout, "1m")
	defaultString(&c.ShutdownTimeout, "30s")
	defaultString(&c.MetricsPath, "/metrics")
	if c.Port == 0 {
		c.Port = 8080
	}
}

func (c *ServerConfig) loadEnv() {
	envString(&c.Host, EnvServerHost)
	envString(&c.ReadTimeout, EnvServerReadTimeout)
	envString(&c.WriteTimeout, EnvServerWriteTimeout)
	envString(&c.ShutdownTimeout, EnvServerShutdownTimeout)
	envString(&c.MetricsPath, EnvServerMetricsPath)
	if v := os.Getenv(EnvServerPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
}

func (c *ServerConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.MetricsEnabled() && !strings.HasPrefix(c.MetricsPath, "/") {
		return fmt.Errorf("metrics_path must start with /: %q", c.MetricsPath)
	}
	return validateDurations(map[string]string{
		"read_timeout":     c.ReadTimeout,
		"write_timeout":    c.WriteTimeout,
		"shutdown_timeout": c.ShutdownTimeout,
	})
}
