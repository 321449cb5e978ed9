package coordinator

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/queue"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/handlers"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/openapi"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/routes"
)

// System is the coordinator contract exposed over HTTP.
type System interface {
	Start(ctx context.Context) (uuid.UUID, error)
	Latest() *RunReport
	ApplyDecision(ctx context.Context, id uuid.UUID, cmd queue.DecideCommand) (*queue.Item, error)
}

// Handler provides HTTP endpoints for runs and reviewer decisions.
type Handler struct {
	sys    System
	logger *slog.Logger
	runCtx context.Context
}

// RunAccepted is the response to a run trigger.
type RunAccepted struct {
	ID uuid.UUID `json:"id"`
}

// NewHandler creates a Handler. Triggered runs are bound to runCtx, normally
// the lifecycle context, so they outlive the triggering request.
func NewHandler(sys System, logger *slog.Logger, runCtx context.Context) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "coordinator"),
		runCtx: runCtx,
	}
}

// Routes returns the route group for discovery runs and decisions.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "",
		Tags:   []string{"Discovery"},
		Schemas: map[string]*openapi.Schema{
			"RunAccepted": {
				Type:       "object",
				Properties: map[string]*openapi.Schema{"id": {Type: "string", Format: "uuid"}},
			},
			"RunReport": {Type: "object", Description: "Counts and per-watcher outcomes of one discovery run."},
			"DecideCommand": {
				Type:     "object",
				Required: []string{"status", "reviewed_by"},
				Properties: map[string]*openapi.Schema{
					"status":           {Type: "string", Enum: []any{"approved", "rejected"}},
					"reviewed_by":      {Type: "string"},
					"notes":            {Type: "string"},
					"rejection_reason": {Type: "string"},
					"edits":            {Type: "object"},
				},
			},
		},
		Routes: []routes.Route{
			{
				Method:  "POST",
				Pattern: "/discovery/runs",
				Handler: h.Trigger,
				OpenAPI: &openapi.Operation{
					Summary: "Start a discovery run",
					Responses: map[int]*openapi.Response{
						202: openapi.ResponseJSON("Run started", "RunAccepted"),
						409: openapi.ResponseRef("Conflict"),
					},
				},
			},
			{
				Method:  "GET",
				Pattern: "/discovery/runs/latest",
				Handler: h.Latest,
				OpenAPI: &openapi.Operation{
					Summary: "Latest run report",
					Responses: map[int]*openapi.Response{
						200: openapi.ResponseJSON("Most recent run", "RunReport"),
						204: {Description: "No run has completed yet"},
					},
				},
			},
			{
				Method:  "POST",
				Pattern: "/queue/{id}/decision",
				Handler: h.Decide,
				OpenAPI: &openapi.Operation{
					Summary:     "Approve or reject a reviewing item",
					Tags:        []string{"Queue"},
					Parameters:  []*openapi.Parameter{openapi.PathParam("id", "Queue item ID")},
					RequestBody: openapi.RequestBodyJSON("DecideCommand", true),
					Responses: map[int]*openapi.Response{
						200: openapi.ResponseJSON("Decided item", "QueueItem"),
						400: openapi.ResponseRef("BadRequest"),
						404: openapi.ResponseRef("NotFound"),
						409: openapi.ResponseRef("Conflict"),
					},
				},
			},
		},
	}
}

// Trigger starts a background run. Responds 409 while a run is active.
func (h *Handler) Trigger(w http.ResponseWriter, r *http.Request) {
	id, err := h.sys.Start(h.runCtx)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusAccepted, RunAccepted{ID: id})
}

// Latest returns the most recent run report, or 204 before the first run.
func (h *Handler) Latest(w http.ResponseWriter, r *http.Request) {
	report := h.sys.Latest()
	if report == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, report)
}

// Decide applies an approve or reject decision to a reviewing item.
func (h *Handler) Decide(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, queue.ErrInvalidRequest)
		return
	}

	var cmd queue.DecideCommand
	if err := handlers.DecodeJSON(r, &cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, queue.ErrInvalidRequest)
		return
	}

	it, err := h.sys.ApplyDecision(r.Context(), id, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, it)
}
