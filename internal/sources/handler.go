package sources

import (
	"log/slog"
	"net/http"

	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/handlers"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/routes"
)

// Handler provides HTTP endpoints for discovery sources.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "sources"),
	}
}

// Routes returns the route group definition for source endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:  "/sources",
		Tags:    []string{"Sources"},
		Schemas: Spec.Schemas,
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List, OpenAPI: Spec.List},
			{Method: "GET", Pattern: "/{name}", Handler: h.Find, OpenAPI: Spec.Find},
			{Method: "PUT", Pattern: "/{name}/enabled", Handler: h.SetEnabled, OpenAPI: Spec.SetEnabled},
		},
	}
}

// List returns every known source ordered by name.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	srcs, err := h.sys.List(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, srcs)
}

// Find returns a single source by name.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	src, err := h.sys.Find(r.Context(), r.PathValue("name"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, src)
}

// SetEnabled enables or disables a source for subsequent runs.
func (h *Handler) SetEnabled(w http.ResponseWriter, r *http.Request) {
	var req EnabledRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	src, err := h.sys.SetEnabled(r.Context(), r.PathValue("name"), req.Enabled)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, src)
}
