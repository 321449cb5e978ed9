package module

import (
	"maps"
	"net/http"
	"slices"
	"strings"
)

// Router dispatches requests to mounted modules by their first path
// segment. Anything else goes to a native ServeMux.
type Router struct {
	modules map[string]*Module
	native  *http.ServeMux
}

// NewRouter creates a Router with no modules and an empty native mux.
func NewRouter() *Router {
	return &Router{
		modules: make(map[string]*Module),
		native:  http.NewServeMux(),
	}
}

// HandleNative registers a handler on the native mux.
func (r *Router) HandleNative(pattern string, handler http.Handler) {
	r.native.Handle(pattern, handler)
}

// Mount registers a module under its prefix, replacing any module already
// mounted there.
func (r *Router) Mount(m *Module) {
	r.modules[m.prefix] = m
}

// Prefixes returns the mounted module prefixes in sorted order.
func (r *Router) Prefixes() []string {
	return slices.Sorted(maps.Keys(r.modules))
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	path := normalizePath(req)

	if m, ok := r.modules[firstSegment(path)]; ok {
		m.Serve(w, req)
		return
	}

	r.native.ServeHTTP(w, req)
}

func firstSegment(path string) string {
	parts := strings.SplitN(path, "/", 3)
	if len(parts) >= 2 {
		return "/" + parts[1]
	}
	return path
}

func normalizePath(req *http.Request) string {
	path := req.URL.Path
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
		req.URL.Path = path
	}
	return path
}
