package openapi

import "maps"

func errorResponse(description string) *Response {
	return &Response{
		Description: description,
		Content: map[string]*MediaType{
			"application/json": {
				Schema: &Schema{
					Type:       "object",
					Properties: map[string]*Schema{"error": {Type: "string"}},
				},
			},
		},
	}
}

// NewComponents creates Components with the shared paging schemas and the
// error responses every domain returns.
func NewComponents() *Components {
	return &Components{
		Schemas: map[string]*Schema{
			"PageRequest": {
				Type: "object",
				Properties: map[string]*Schema{
					"page":      {Type: "integer", Description: "Page number (1-indexed)", Example: 1},
					"page_size": {Type: "integer", Description: "Results per page", Example: 20},
					"search":    {Type: "string", Description: "Case-insensitive substring search"},
					"sort":      {Type: "string", Description: "Comma-separated sort fields, - prefix for descending", Example: "-priority,discovered_at"},
				},
			},
		},
		Responses: map[string]*Response{
			"BadRequest": errorResponse("Invalid request"),
			"NotFound":   errorResponse("Resource not found"),
			"Conflict":   errorResponse("Request conflicts with the current state"),
		},
	}
}

// AddSchemas merges the given schemas into the component schemas.
func (c *Components) AddSchemas(schemas map[string]*Schema) {
	maps.Copy(c.Schemas, schemas)
}

// AddResponses merges the given responses into the component responses.
func (c *Components) AddResponses(responses map[string]*Response) {
	maps.Copy(c.Responses, responses)
}
