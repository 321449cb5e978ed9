package queue

import "github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/openapi"

type spec struct {
	List        *openapi.Operation
	Find        *openapi.Operation
	Search      *openapi.Operation
	UpdateNotes *openapi.Operation
	Schemas     map[string]*openapi.Schema
}

// Spec documents the queue endpoints.
var Spec = spec{
	List: &openapi.Operation{
		Summary:     "List queue items",
		Description: "Pages through the discovery queue with optional filters.",
		Parameters: []*openapi.Parameter{
			openapi.QueryParam("page", "integer", "Page number (1-indexed)", false),
			openapi.QueryParam("page_size", "integer", "Results per page", false),
			openapi.QueryParam("search", "string", "Matches tool name, source or dedup key", false),
			openapi.QueryParam("sort", "string", "Comma-separated sort fields, - prefix for descending", false),
			openapi.QueryParam("status", "string", "Filter by status", false),
			openapi.QueryParam("item_type", "string", "Filter by item type", false),
			openapi.QueryParam("source", "string", "Filter by source name", false),
			openapi.QueryParam("tool_name", "string", "Filter by tool name (contains)", false),
			openapi.QueryParam("min_confidence", "number", "Minimum confidence score", false),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Page of queue items", "QueueItemPage"),
		},
	},
	Find: &openapi.Operation{
		Summary:    "Find queue item",
		Parameters: []*openapi.Parameter{openapi.PathParam("id", "Queue item ID")},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Queue item", "QueueItem"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Search: &openapi.Operation{
		Summary:     "Search queue items",
		RequestBody: openapi.RequestBodyJSON("QueueSearchRequest", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Page of queue items", "QueueItemPage"),
			400: openapi.ResponseRef("BadRequest"),
		},
	},
	UpdateNotes: &openapi.Operation{
		Summary:     "Replace reviewer notes",
		Parameters:  []*openapi.Parameter{openapi.PathParam("id", "Queue item ID")},
		RequestBody: openapi.RequestBodyJSON("QueueNotesRequest", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Updated queue item", "QueueItem"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Schemas: map[string]*openapi.Schema{
		"QueueItem": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":               {Type: "string", Format: "uuid"},
				"item_type":        {Type: "string", Enum: []any{"tool", "interaction"}},
				"source":           {Type: "string"},
				"status":           {Type: "string", Enum: statusEnum()},
				"dedup_key":        {Type: "string"},
				"tool_name":        {Type: "string"},
				"tool_url":         {Type: "string"},
				"tool_description": {Type: "string"},
				"source_tool":      {Type: "string"},
				"target_tool":      {Type: "string"},
				"interaction_type": {Type: "string"},
				"raw_data":         {Type: "array", Items: &openapi.Schema{Type: "object"}},
				"enriched_data":    {Type: "object"},
				"confidence_score": {Type: "number"},
				"priority":         {Type: "integer"},
				"discovered_at":    {Type: "string", Format: "date-time"},
				"enriched_at":      {Type: "string", Format: "date-time"},
				"reviewed_at":      {Type: "string", Format: "date-time"},
				"reviewed_by":      {Type: "string"},
				"notes":            {Type: "string"},
				"rejection_reason": {Type: "string"},
				"updated_at":       {Type: "string", Format: "date-time"},
			},
		},
		"QueueItemPage": openapi.PageOf("QueueItem"),
		"QueueSearchRequest": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"page":           {Type: "integer"},
				"page_size":      {Type: "integer"},
				"search":         {Type: "string"},
				"sort":           {Type: "string"},
				"status":         {Type: "string", Enum: statusEnum()},
				"item_type":      {Type: "string"},
				"source":         {Type: "string"},
				"tool_name":      {Type: "string"},
				"min_confidence": {Type: "number"},
			},
		},
		"QueueNotesRequest": {
			Type:       "object",
			Required:   []string{"notes"},
			Properties: map[string]*openapi.Schema{"notes": {Type: "string"}},
		},
	},
}

func statusEnum() []any {
	return []any{
		string(StatusPending),
		string(StatusEnriching),
		string(StatusReviewing),
		string(StatusApproved),
		string(StatusRejected),
	}
}
