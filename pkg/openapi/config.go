package openapi

import (
	"fmt"
	"net/url"
	"os"
)

// Config holds the document metadata published in the spec's info object.
type Config struct {
	Title       string `toml:"title"`
	Description string `toml:"description"`
	ContactName string `toml:"contact_name"`
	ContactURL  string `toml:"contact_url"`
	License     string `toml:"license"`
	LicenseURL  string `toml:"license_url"`
}

// ConfigEnv names the environment variables that override Config fields.
// Empty names are not consulted.
type ConfigEnv struct {
	Title       string
	Description string
	ContactName string
	ContactURL  string
	License     string
	LicenseURL  string
}

// Finalize applies defaults, then environment overrides, then validates.
func (c *Config) Finalize(env *ConfigEnv) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	for dst, src := range c.fields(overlay) {
		if *src != "" {
			*dst = *src
		}
	}
}

func (c *Config) fields(o *Config) map[*string]*string {
	return map[*string]*string{
		&c.Title:       &o.Title,
		&c.Description: &o.Description,
		&c.ContactName: &o.ContactName,
		&c.ContactURL:  &o.ContactURL,
		&c.License:     &o.License,
		&c.LicenseURL:  &o.LicenseURL,
	}
}

func (c *Config) loadDefaults() {
	if c.Title == "" {
		c.Title = "MALDRETH Discovery API"
	}
	if c.Description == "" {
		c.Description = "Review queue, source reliability and run control for research tool discovery."
	}
}

func (c *Config) loadEnv(env *ConfigEnv) {
	overrides := map[*string]string{
		&c.Title:       env.Title,
		&c.Description: env.Description,
		&c.ContactName: env.ContactName,
		&c.ContactURL:  env.ContactURL,
		&c.License:     env.License,
		&c.LicenseURL:  env.LicenseURL,
	}
	for dst, name := range overrides {
		if name == "" {
			continue
		}
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
}

func (c *Config) validate() error {
	for field, raw := range map[string]string{"contact_url": c.ContactURL, "license_url": c.LicenseURL} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || !u.IsAbs() || u.Host == "" {
			return fmt.Errorf("%s must be an absolute URL: %q", field, raw)
		}
	}
	if c.LicenseURL != "" && c.License == "" {
		return fmt.Errorf("license_url requires license")
	}
	return nil
}
