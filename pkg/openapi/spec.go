package openapi

import (
	"net/http"
	"strings"
)

// Spec represents an OpenAPI 3.1 specification document.
type Spec struct {
	OpenAPI    string               `json:"openapi"`
	Info       *Info                `json:"info"`
	Servers    []*Server            `json:"servers,omitempty"`
	Paths      map[string]*PathItem `json:"paths"`
	Components *Components          `json:"components,omitempty"`
}

// NewSpec creates a Spec with the given title, version, and default components.
func NewSpec(title, version string) *Spec {
	return &Spec{
		OpenAPI: "3.1.0",
		Info: &Info{
			Title:   title,
			Version: version,
		},
		Components: NewComponents(),
		Paths:      make(map[string]*PathItem),
	}
}

// FromConfig creates a Spec whose info object is populated from cfg.
func FromConfig(cfg *Config, version string) *Spec {
	s := NewSpec(cfg.Title, version)
	s.Info.Description = cfg.Description
	if cfg.ContactName != "" || cfg.ContactURL != "" {
		s.Info.Contact = &Contact{Name: cfg.ContactName, URL: cfg.ContactURL}
	}
	if cfg.License != "" {
		s.Info.License = &License{Name: cfg.License, URL: cfg.LicenseURL}
	}
	return s
}

// AddServer appends a server URL to the spec.
func (s *Spec) AddServer(url string) {
	s.Servers = append(s.Servers, &Server{URL: url})
}

// AddOperation sets the operation for method on path. Methods without a
// PathItem slot are ignored.
func (s *Spec) AddOperation(method, path string, op *Operation) {
	item, ok := s.Paths[path]
	if !ok {
		item = &PathItem{}
		s.Paths[path] = item
	}

	switch strings.ToUpper(method) {
	case http.MethodGet:
		item.Get = op
	case http.MethodPost:
		item.Post = op
	case http.MethodPut:
		item.Put = op
	case http.MethodDelete:
		item.Delete = op
	}
}

// PathTemplate converts a ServeMux pattern path to an OpenAPI path template:
// wildcard segments like {key...} become {key} and an empty path becomes "/".
func PathTemplate(pattern string) string {
	if pattern == "" {
		return "/"
	}
	return strings.ReplaceAll(pattern, "...}", "}")
}

// ServeSpec returns a handler that serves pre-serialized JSON spec bytes.
func ServeSpec(specBytes []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(specBytes)
	}
}
