package middleware_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/middleware"
)

func ok(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func tag(name string, order *[]string) middleware.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*order = append(*order, name)
			next.ServeHTTP(w, r)
		})
	}
}

func TestStackApply(t *testing.T) {
	tests := []struct {
		name   string
		build  func(order *[]string) *middleware.Stack
		layers int
		want   []string
	}{
		{
			name:   "empty",
			build:  func(*[]string) *middleware.Stack { return middleware.New() },
			layers: 0,
			want:   []string{"handler"},
		},
		{
			name: "constructor order",
			build: func(order *[]string) *middleware.Stack {
				return middleware.New(tag("first", order), tag("second", order))
			},
			layers: 2,
			want:   []string{"first", "second", "handler"},
		},
		{
			name: "use appends inside",
			build: func(order *[]string) *middleware.Stack {
				s := middleware.New(tag("outer", order))
				s.Use(tag("inner", order))
				return s
			},
			layers: 2,
			want:   []string{"outer", "inner", "handler"},
		},
		{
			name: "nil layers skipped",
			build: func(order *[]string) *middleware.Stack {
				return middleware.New(nil, tag("only", order), nil)
			},
			layers: 1,
			want:   []string{"only", "handler"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var order []string
			s := tt.build(&order)

			if s.Len() != tt.layers {
				t.Errorf("Len = %d, want %d", s.Len(), tt.layers)
			}

			handler := s.Apply(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, "handler")
			}))
			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

			if !slices.Equal(order, tt.want) {
				t.Errorf("order = %v, want %v", order, tt.want)
			}
		})
	}
}

func TestCORS(t *testing.T) {
	enabled := &middleware.CORSConfig{
		Enabled:          true,
		Origins:          []string{"http://review.local"},
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           600,
	}

	tests := []struct {
		name       string
		cfg        *middleware.CORSConfig
		method     string
		origin     string
		wantOrigin string
		wantCode   int
	}{
		{"disabled", &middleware.CORSConfig{Origins: []string{"http://review.local"}}, http.MethodGet, "http://review.local", "", http.StatusOK},
		{"allowed origin", enabled, http.MethodGet, "http://review.local", "http://review.local", http.StatusOK},
		{"disallowed origin", enabled, http.MethodGet, "http://evil.local", "", http.StatusOK},
		{"preflight", enabled, http.MethodOptions, "http://review.local", "http://review.local", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := middleware.CORS(tt.cfg)(http.HandlerFunc(ok))

			req := httptest.NewRequest(tt.method, "/", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("allow-origin = %q, want %q", got, tt.wantOrigin)
			}
			if tt.wantOrigin != "" {
				if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
					t.Errorf("allow-credentials = %q", got)
				}
				if got := rec.Header().Get("Access-Control-Max-Age"); got != "600" {
					t.Errorf("max-age = %q", got)
				}
			}
		})
	}
}

func TestLoggerLevels(t *testing.T) {
	tests := []struct {
		status    int
		wantLevel string
	}{
		{http.StatusOK, "level=INFO"},
		{http.StatusNotFound, "level=WARN"},
		{http.StatusInternalServerError, "level=ERROR"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, nil))

			handler := middleware.Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/queue?page=2", nil))

			out := buf.String()
			if !strings.Contains(out, tt.wantLevel) {
				t.Errorf("log %q missing %s", out, tt.wantLevel)
			}
			if !strings.Contains(out, "uri=\"/queue?page=2\"") && !strings.Contains(out, "uri=/queue?page=2") {
				t.Errorf("log %q missing uri", out)
			}
		})
	}
}

func TestRecover(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	handler := middleware.Recover(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(buf.String(), "handler panic") {
		t.Errorf("panic not logged: %q", buf.String())
	}
}

func TestCORSConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := middleware.CORSConfig{}
		if err := cfg.Finalize(nil); err != nil {
			t.Fatalf("finalize failed: %v", err)
		}
		if len(cfg.AllowedMethods) != 4 || len(cfg.AllowedHeaders) != 2 || cfg.MaxAge != 3600 {
			t.Errorf("unexpected defaults: %+v", cfg)
		}
	})

	t.Run("env", func(t *testing.T) {
		t.Setenv("MALDRETH_TEST_CORS_ENABLED", "true")
		t.Setenv("MALDRETH_TEST_CORS_ORIGINS", "http://a.local, ,http://b.local")

		cfg := middleware.CORSConfig{}
		err := cfg.Finalize(&middleware.CORSEnv{
			Enabled: "MALDRETH_TEST_CORS_ENABLED",
			Origins: "MALDRETH_TEST_CORS_ORIGINS",
		})
		if err != nil {
			t.Fatalf("finalize failed: %v", err)
		}
		if !cfg.Enabled {
			t.Error("enabled should be true")
		}
		if want := []string{"http://a.local", "http://b.local"}; !slices.Equal(cfg.Origins, want) {
			t.Errorf("origins = %v, want %v", cfg.Origins, want)
		}
	})

	t.Run("merge", func(t *testing.T) {
		base := middleware.CORSConfig{Enabled: true, Origins: []string{"http://base.local"}, MaxAge: 3600}
		base.Merge(&middleware.CORSConfig{Origins: []string{"http://overlay.local"}})

		if !base.Enabled {
			t.Error("overlay must not disable")
		}
		if !slices.Equal(base.Origins, []string{"http://overlay.local"}) {
			t.Errorf("origins = %v", base.Origins)
		}
		if base.MaxAge != 3600 {
			t.Errorf("max_age = %d, want 3600", base.MaxAge)
		}
	})
}
