package catalog

import (
	"log/slog"
	"net/http"

	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/handlers"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/openapi"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/pagination"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/routes"
)

// Handler exposes the submission outbox to the catalog collaborator.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "catalog"),
		pagination: pagination,
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/catalog",
		Tags:   []string{"Catalog"},
		Schemas: map[string]*openapi.Schema{
			"CatalogSubmission":     {Type: "object", Description: "An approved discovery normalized for catalog ingestion."},
			"CatalogSubmissionPage": openapi.PageOf("CatalogSubmission"),
		},
		Routes: []routes.Route{
			{
				Method:  "GET",
				Pattern: "/submissions",
				Handler: h.List,
				OpenAPI: &openapi.Operation{
					Summary: "List catalog submissions",
					Parameters: []*openapi.Parameter{
						openapi.QueryParam("page", "integer", "Page number (1-indexed)", false),
						openapi.QueryParam("page_size", "integer", "Results per page", false),
					},
					Responses: map[int]*openapi.Response{
						200: openapi.ResponseJSON("Page of submissions, newest first", "CatalogSubmissionPage"),
					},
				},
			},
		},
	}
}

// List returns approved records newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)

	result, err := h.sys.List(r.Context(), page)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
