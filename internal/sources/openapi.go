package sources

import "github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/openapi"

type spec struct {
	List       *openapi.Operation
	Find       *openapi.Operation
	SetEnabled *openapi.Operation
	Schemas    map[string]*openapi.Schema
}

var nameParam = openapi.StringPathParam("name", "Source name")

// Spec documents the source endpoints.
var Spec = spec{
	List: &openapi.Operation{
		Summary: "List sources",
		Responses: map[int]*openapi.Response{
			200: {
				Description: "All sources ordered by name",
				Content: map[string]*openapi.MediaType{
					"application/json": {Schema: &openapi.Schema{Type: "array", Items: openapi.SchemaRef("Source")}},
				},
			},
		},
	},
	Find: &openapi.Operation{
		Summary:    "Find source",
		Parameters: []*openapi.Parameter{nameParam},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Source", "Source"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	SetEnabled: &openapi.Operation{
		Summary:     "Enable or disable a source",
		Description: "Disabled sources are skipped by subsequent discovery runs.",
		Parameters:  []*openapi.Parameter{nameParam},
		RequestBody: openapi.RequestBodyJSON("SourceEnabledRequest", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Updated source", "Source"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Schemas: map[string]*openapi.Schema{
		"Source": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":                {Type: "string", Format: "uuid"},
				"name":              {Type: "string"},
				"source_type":       {Type: "string"},
				"reliability_score": {Type: "number"},
				"last_run":          {Type: "string", Format: "date-time"},
				"total_discoveries": {Type: "integer"},
				"total_approved":    {Type: "integer"},
				"total_rejected":    {Type: "integer"},
				"approval_rate":     {Type: "number"},
				"is_enabled":        {Type: "boolean"},
				"config":            {Type: "object"},
				"created_at":        {Type: "string", Format: "date-time"},
				"updated_at":        {Type: "string", Format: "date-time"},
			},
		},
		"SourceEnabledRequest": {
			Type:       "object",
			Required:   []string{"enabled"},
			Properties: map[string]*openapi.Schema{"enabled": {Type: "boolean"}},
		},
	},
}
