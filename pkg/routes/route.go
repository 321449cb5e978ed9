package routes

import (
	"net/http"

	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/openapi"
)

// Route binds an HTTP method and ServeMux pattern to a handler. A nil
// OpenAPI leaves the route out of the generated document.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
	OpenAPI *openapi.Operation
}
