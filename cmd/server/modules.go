package main

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/api"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/config"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/infrastructure"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/module"
)

// Modules holds the mounted modules and the domain they serve.
type Modules struct {
	API    *module.Module
	Domain *api.Domain
}

// NewModules builds the API runtime, domain systems and module.
func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	runtime := api.NewRuntime(cfg, infra)

	domain, err := api.NewDomain(runtime, &cfg.Discovery)
	if err != nil {
		return nil, err
	}

	apiModule, err := api.NewModule(cfg, runtime, domain)
	if err != nil {
		return nil, err
	}

	return &Modules{
		API:    apiModule,
		Domain: domain,
	}, nil
}

// Mount attaches every module to router.
func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
}

func writeStatus(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}

func buildRouter(infra *infrastructure.Infrastructure, cfg *config.ServerConfig) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /healthz", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]string{"status": "ok"})
	}))

	router.HandleNative("GET /readyz", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !infra.Lifecycle.Ready() {
			writeStatus(w, http.StatusServiceUnavailable, map[string]any{
				"status":    "not ready",
				"not_ready": infra.Lifecycle.NotReady(),
			})
			return
		}
		writeStatus(w, http.StatusOK, map[string]string{"status": "ready"})
	}))

	if cfg.MetricsEnabled() {
		router.HandleNative("GET "+cfg.MetricsPath, promhttp.Handler())
	}

	return router
}
