package config

import (
	"fmt"
	"os"

	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/middleware"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/openapi"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/pagination"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "MALDRETH_CORS_ENABLED",
	Origins:          "MALDRETH_CORS_ORIGINS",
	AllowedMethods:   "MALDRETH_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "MALDRETH_CORS_ALLOWED_HEADERS",
	AllowCredentials: "MALDRETH_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "MALDRETH_CORS_MAX_AGE",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "MALDRETH_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "MALDRETH_PAGINATION_MAX_PAGE_SIZE",
}

var openAPIEnv = &openapi.ConfigEnv{
	Title:       "MALDRETH_OPENAPI_TITLE",
	Description: "MALDRETH_OPENAPI_DESCRIPTION",
	ContactName: "MALDRETH_OPENAPI_CONTACT_NAME",
	ContactURL:  "MALDRETH_OPENAPI_CONTACT_URL",
	License:     "MALDRETH_OPENAPI_LICENSE",
	LicenseURL:  "MALDRETH_OPENAPI_LICENSE_URL",
}

// APIConfig holds reviewer API routing, CORS, pagination and OpenAPI settings.
type APIConfig struct {
	BasePath   string                `toml:"base_path"`
	CORS       middleware.CORSConfig `toml:"cors"`
	Pagination pagination.Config     `toml:"pagination"`
	OpenAPI    openapi.Config        `toml:"openapi"`
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested configs.
func (c *APIConfig) Finalize() error {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if v := os.Getenv("MALDRETH_API_BASE_PATH"); v != "" {
		c.BasePath = v
	}

	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	if err := c.OpenAPI.Finalize(openAPIEnv); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	mergeString(&c.BasePath, overlay.BasePath)
	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
	c.OpenAPI.Merge(&overlay.OpenAPI)
}
