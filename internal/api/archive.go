package api

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strconv"

	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/handlers"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/openapi"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/routes"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/storage"
)

// runsPrefix is the key prefix the coordinator archives run payloads under.
const runsPrefix = "runs/"

// archiveHandler serves read access to archived run payloads.
type archiveHandler struct {
	store       storage.System
	logger      *slog.Logger
	maxListSize int32
}

func newArchiveHandler(store storage.System, logger *slog.Logger, maxListSize int32) *archiveHandler {
	return &archiveHandler{
		store:       store,
		logger:      logger.With("handler", "archive"),
		maxListSize: maxListSize,
	}
}

func (h *archiveHandler) routes() routes.Group {
	keyParam := openapi.StringPathParam("key", "Blob key below runs/, e.g. <run-id>/github.json")

	return routes.Group{
		Prefix: "/runs",
		Tags:   []string{"Archive"},
		Schemas: map[string]*openapi.Schema{
			"ArchivedBlob": {
				Type: "object",
				Properties: map[string]*openapi.Schema{
					"key":            {Type: "string"},
					"content_type":   {Type: "string"},
					"content_length": {Type: "integer"},
					"last_modified":  {Type: "string", Format: "date-time"},
				},
			},
			"ArchiveListing": {
				Type: "object",
				Properties: map[string]*openapi.Schema{
					"blobs":       {Type: "array", Items: openapi.SchemaRef("ArchivedBlob")},
					"next_marker": {Type: "string"},
				},
			},
		},
		Routes: []routes.Route{
			{
				Method:  "GET",
				Pattern: "",
				Handler: h.list,
				OpenAPI: &openapi.Operation{
					Summary: "List archived run payloads",
					Parameters: []*openapi.Parameter{
						openapi.QueryParam("run", "string", "Restrict to one run ID", false),
						openapi.QueryParam("marker", "string", "Continuation marker from a previous page", false),
						openapi.QueryParam("max_results", "integer", "Page size", false),
					},
					Responses: map[int]*openapi.Response{
						200: openapi.ResponseJSON("One page of blobs", "ArchiveListing"),
						400: openapi.ResponseRef("BadRequest"),
					},
				},
			},
			{
				Method:  "GET",
				Pattern: "/download/{key...}",
				Handler: h.download,
				OpenAPI: &openapi.Operation{
					Summary:    "Download an archived payload",
					Parameters: []*openapi.Parameter{keyParam},
					Responses: map[int]*openapi.Response{
						200: {Description: "Raw JSON payload"},
						404: openapi.ResponseRef("NotFound"),
					},
				},
			},
			{
				Method:  "GET",
				Pattern: "/{key...}",
				Handler: h.find,
				OpenAPI: &openapi.Operation{
					Summary:    "Archived payload metadata",
					Parameters: []*openapi.Parameter{keyParam},
					Responses: map[int]*openapi.Response{
						200: openapi.ResponseJSON("Blob metadata", "ArchivedBlob"),
						404: openapi.ResponseRef("NotFound"),
					},
				},
			},
		},
	}
}

func (h *archiveHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	maxResults, err := storage.ParseMaxResults(q.Get("max_results"), h.maxListSize)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	prefix := runsPrefix
	if run := q.Get("run"); run != "" {
		prefix += run + "/"
	}

	result, err := h.store.List(r.Context(), prefix, q.Get("marker"), maxResults)
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *archiveHandler) find(w http.ResponseWriter, r *http.Request) {
	meta, err := h.store.Find(r.Context(), runsPrefix+r.PathValue("key"))
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, meta)
}

func (h *archiveHandler) download(w http.ResponseWriter, r *http.Request) {
	key := runsPrefix + r.PathValue("key")

	result, err := h.store.Download(r.Context(), key)
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}
	defer result.Body.Close()

	contentType := result.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	if result.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(result.ContentLength, 10))
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(key)))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, result.Body); err != nil {
		h.logger.Warn("archive download interrupted", "key", key, "error", err)
	}
}
