package sources_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/sources"
)

type mockSystem struct {
	listFn       func(ctx context.Context) ([]sources.Source, error)
	findFn       func(ctx context.Context, name string) (*sources.Source, error)
	setEnabledFn func(ctx context.Context, name string, enabled bool) (*sources.Source, error)
}

func (m *mockSystem) Handler() *sources.Handler {
	return sources.NewHandler(m, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func (m *mockSystem) List(ctx context.Context) ([]sources.Source, error) {
	return m.listFn(ctx)
}

func (m *mockSystem) Find(ctx context.Context, name string) (*sources.Source, error) {
	return m.findFn(ctx, name)
}

func (m *mockSystem) RecordRun(context.Context, sources.RunCommand) (*sources.Source, error) {
	panic("not used by handler")
}

func (m *mockSystem) RecordDecision(context.Context, string, bool) (*sources.Source, error) {
	panic("not used by handler")
}

func (m *mockSystem) SetEnabled(ctx context.Context, name string, enabled bool) (*sources.Source, error) {
	return m.setEnabledFn(ctx, name, enabled)
}

func setupMux(h *sources.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	group := h.Routes()
	for _, route := range group.Routes {
		mux.HandleFunc(route.Method+" "+group.Prefix+route.Pattern, route.Handler)
	}
	return mux
}

func TestHandlerList(t *testing.T) {
	sys := &mockSystem{
		listFn: func(context.Context) ([]sources.Source, error) {
			return []sources.Source{
				{Name: "github", SourceType: "github", ReliabilityScore: 0.7, IsEnabled: true},
				{Name: "rss_feeds", SourceType: "rss", ReliabilityScore: 0.4, IsEnabled: false},
			}, nil
		},
	}

	rec := httptest.NewRecorder()
	setupMux(sys.Handler()).ServeHTTP(rec, httptest.NewRequest("GET", "/sources", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var got []map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if _, ok := got[0]["approval_rate"]; !ok {
		t.Error("approval_rate missing from response")
	}
}

func TestHandlerFind(t *testing.T) {
	sys := &mockSystem{
		findFn: func(_ context.Context, name string) (*sources.Source, error) {
			if name == "github" {
				return &sources.Source{Name: "github"}, nil
			}
			return nil, sources.ErrNotFound
		},
	}
	mux := setupMux(sys.Handler())

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/sources/github", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/sources/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandlerSetEnabled(t *testing.T) {
	var gotName string
	var gotEnabled bool

	sys := &mockSystem{
		setEnabledFn: func(_ context.Context, name string, enabled bool) (*sources.Source, error) {
			gotName, gotEnabled = name, enabled
			return &sources.Source{Name: name, IsEnabled: enabled}, nil
		},
	}
	mux := setupMux(sys.Handler())

	t.Run("disables", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("PUT", "/sources/rss_feeds/enabled", strings.NewReader(`{"enabled":false}`))
		gotEnabled = true
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if gotName != "rss_feeds" || gotEnabled {
			t.Errorf("SetEnabled(%q, %v), want (rss_feeds, false)", gotName, gotEnabled)
		}
	})

	t.Run("bad body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("PUT", "/sources/rss_feeds/enabled", strings.NewReader(`{"enabled":"nope"}`))
		mux.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}
