// Package api assembles the reviewer API module: domain systems, route
// registration and the generated OpenAPI document.
package api

import (
	"net/http"

	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/config"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/middleware"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/module"
)

// NewModule creates the API module mounted at cfg.API.BasePath.
func NewModule(cfg *config.Config, runtime *Runtime, domain *Domain) (*module.Module, error) {
	mux := http.NewServeMux()
	if err := registerRoutes(mux, domain, cfg, runtime); err != nil {
		return nil, err
	}

	m := module.New(cfg.API.BasePath, mux)
	m.Use(
		middleware.Recover(runtime.Logger),
		middleware.CORS(&cfg.API.CORS),
		middleware.Logger(runtime.Logger),
	)

	return m, nil
}
