package routes

import (
	"net/http"

	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/openapi"
)

// Group organizes routes under a common prefix. Tags apply to every
// documented route that does not set its own; Schemas are merged into the
// document's components.
type Group struct {
	Prefix   string
	Tags     []string
	Schemas  map[string]*openapi.Schema
	Routes   []Route
	Children []Group
}

// Register adds all routes from the given groups to the mux.
func Register(mux *http.ServeMux, groups ...Group) {
	for _, group := range groups {
		registerGroup(mux, "", group)
	}
}

// Document adds the operations of every route carrying OpenAPI metadata to
// spec, with paths rooted at basePath.
func Document(spec *openapi.Spec, basePath string, groups ...Group) {
	for _, group := range groups {
		documentGroup(spec, basePath, nil, group)
	}
}

func registerGroup(mux *http.ServeMux, parentPrefix string, group Group) {
	fullPrefix := parentPrefix + group.Prefix
	for _, route := range group.Routes {
		mux.HandleFunc(route.Method+" "+fullPrefix+route.Pattern, route.Handler)
	}
	for _, child := range group.Children {
		registerGroup(mux, fullPrefix, child)
	}
}

func documentGroup(spec *openapi.Spec, parentPrefix string, parentTags []string, group Group) {
	fullPrefix := parentPrefix + group.Prefix
	tags := group.Tags
	if len(tags) == 0 {
		tags = parentTags
	}

	if len(group.Schemas) > 0 {
		spec.Components.AddSchemas(group.Schemas)
	}

	for _, route := range group.Routes {
		if route.OpenAPI == nil {
			continue
		}
		op := *route.OpenAPI
		if len(op.Tags) == 0 {
			op.Tags = tags
		}
		spec.AddOperation(route.Method, openapi.PathTemplate(fullPrefix+route.Pattern), &op)
	}

	for _, child := range group.Children {
		documentGroup(spec, fullPrefix, tags, child)
	}
}
