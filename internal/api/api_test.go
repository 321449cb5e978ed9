package api_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/api"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/config"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/infrastructure"
)

func loadConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv(config.EnvMaldrethConfig, "")
	t.Setenv(config.EnvMaldrethEnv, "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return cfg
}

func TestNewWatchers(t *testing.T) {
	t.Run("defaults register every watcher", func(t *testing.T) {
		cfg := loadConfig(t)

		reg, err := api.NewWatchers(&cfg.Discovery, discard())
		if err != nil {
			t.Fatalf("NewWatchers: %v", err)
		}

		var names []string
		for _, w := range reg.List() {
			names = append(names, w.Name())
		}
		want := []string{"github", "literature", "rss_feeds"}
		if len(names) != len(want) {
			t.Fatalf("watchers = %v, want %v", names, want)
		}
		for i := range want {
			if names[i] != want[i] {
				t.Errorf("watchers[%d] = %q, want %q", i, names[i], want[i])
			}
		}
	})

	t.Run("none enabled", func(t *testing.T) {
		cfg := loadConfig(t)
		off := false
		cfg.Discovery.Feeds.Enabled = &off
		cfg.Discovery.GitHub.Enabled = &off
		cfg.Discovery.Literature.Enabled = &off

		if _, err := api.NewWatchers(&cfg.Discovery, discard()); err == nil {
			t.Error("expected error when no watchers are enabled")
		}
	})
}

func TestNewModuleServesOpenAPI(t *testing.T) {
	cfg := loadConfig(t)

	infra, err := infrastructure.New(cfg, infrastructure.Options{Output: io.Discard})
	if err != nil {
		t.Fatalf("infrastructure.New: %v", err)
	}
	t.Cleanup(func() { infra.Database.Close() })

	runtime := api.NewRuntime(cfg, infra)
	domain, err := api.NewDomain(runtime, &cfg.Discovery)
	if err != nil {
		t.Fatalf("NewDomain: %v", err)
	}

	m, err := api.NewModule(cfg, runtime, domain)
	if err != nil {
		t.Fatalf("NewModule: %v", err)
	}
	if m.Prefix() != "/api" {
		t.Errorf("prefix = %q, want /api", m.Prefix())
	}

	req := httptest.NewRequest(http.MethodGet, "/api/openapi.json", nil)
	rec := httptest.NewRecorder()
	m.Serve(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var doc struct {
		Servers []struct {
			URL string `json:"url"`
		} `json:"servers"`
		Paths map[string]json.RawMessage `json:"paths"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if len(doc.Servers) != 1 || doc.Servers[0].URL != "/api" {
		t.Errorf("servers = %+v, want [/api]", doc.Servers)
	}

	for _, path := range []string{
		"/queue",
		"/queue/{id}",
		"/queue/{id}/decision",
		"/sources",
		"/catalog/submissions",
		"/discovery/runs",
		"/discovery/runs/latest",
	} {
		if _, ok := doc.Paths[path]; !ok {
			t.Errorf("document missing path %s", path)
		}
	}
	if _, ok := doc.Paths["/runs"]; ok {
		t.Error("archive routes documented while archive is disabled")
	}
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
