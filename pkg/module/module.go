// Package module mounts self-contained HTTP handlers under single-segment
// path prefixes, each with its own middleware stack.
package module

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/middleware"
)

// Module strips its prefix from incoming requests and hands them to an
// inner router wrapped in the module's middleware.
type Module struct {
	prefix     string
	router     http.Handler
	middleware *middleware.Stack
}

// New creates a Module for a single-level prefix such as "/api". It panics
// on an empty, relative or nested prefix.
func New(prefix string, router http.Handler) *Module {
	if err := validatePrefix(prefix); err != nil {
		panic(err)
	}
	return &Module{
		prefix:     prefix,
		router:     router,
		middleware: middleware.New(),
	}
}

// Prefix returns the module's path prefix.
func (m *Module) Prefix() string {
	return m.prefix
}

// Use appends middleware to the module's stack.
func (m *Module) Use(layers ...middleware.Middleware) {
	m.middleware.Use(layers...)
}

// Handler returns the inner router wrapped with the module's middleware.
func (m *Module) Handler() http.Handler {
	return m.middleware.Apply(m.router)
}

// Serve dispatches req to the inner router with the prefix removed.
func (m *Module) Serve(w http.ResponseWriter, req *http.Request) {
	m.Handler().ServeHTTP(w, stripPrefix(req, m.prefix))
}

func stripPrefix(req *http.Request, prefix string) *http.Request {
	path := strings.TrimPrefix(req.URL.Path, prefix)
	if path == "" {
		path = "/"
	}

	r := req.Clone(req.Context())
	r.URL = new(url.URL)
	*r.URL = *req.URL
	r.URL.Path = path
	r.URL.RawPath = ""
	return r
}

func validatePrefix(prefix string) error {
	switch {
	case prefix == "":
		return fmt.Errorf("module prefix cannot be empty")
	case !strings.HasPrefix(prefix, "/"):
		return fmt.Errorf("module prefix must start with /: %s", prefix)
	case strings.Count(prefix, "/") != 1 || len(prefix) == 1:
		return fmt.Errorf("module prefix must be a single path segment: %s", prefix)
	}
	return nil
}
