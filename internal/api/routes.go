package api

import (
	"fmt"
	"net/http"

	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/config"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/coordinator"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/openapi"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/routes"
)

func groups(domain *Domain, runtime *Runtime) []routes.Group {
	gs := []routes.Group{
		domain.Queue.Handler().Routes(),
		domain.Sources.Handler().Routes(),
		domain.Catalog.Handler().Routes(),
		coordinator.NewHandler(domain.Coordinator, runtime.Logger, runtime.Lifecycle.Context()).Routes(),
	}

	if runtime.Archive != nil {
		gs = append(gs, newArchiveHandler(runtime.Archive, runtime.Logger, runtime.MaxListSize).routes())
	}

	return gs
}

func registerRoutes(mux *http.ServeMux, domain *Domain, cfg *config.Config, runtime *Runtime) error {
	gs := groups(domain, runtime)
	routes.Register(mux, gs...)

	spec := openapi.FromConfig(&cfg.API.OpenAPI, cfg.Version)
	spec.AddServer(cfg.API.BasePath)
	routes.Document(spec, "", gs...)

	specBytes, err := openapi.MarshalJSON(spec)
	if err != nil {
		return fmt.Errorf("build openapi document: %w", err)
	}
	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(specBytes))

	return nil
}
