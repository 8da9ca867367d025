// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// RouteDependencies defines the interface for routing operations.
type RouteDependencies interface {
	Route(ctx context.Context, contactID int, question string) (Decision, error)
}

// RouteHandler handles routing requests.
type RouteHandler struct {
	deps RouteDependencies
}

// NewRouteHandler creates a new route handler.
func NewRouteHandler(deps RouteDependencies) *RouteHandler {
	return &RouteHandler{deps: deps}
}

// routeRequest mirrors the schema for POST /route.
type routeRequest struct {
	ContactID *int   `json:"contact_id"`
	Question  string `json:"question"`
}

func (r routeRequest) validate() error {
	switch {
	case r.ContactID == nil:
		return errors.New("missing contact_id")
	case strings.TrimSpace(r.Question) == "":
		return errors.New("missing question")
	}
	return nil
}

// HandlePostRoute handles POST /route requests.
func (h *RouteHandler) HandlePostRoute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req routeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	decision, err := h.deps.Route(r.Context(), *req.ContactID, req.Question)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, decision)
}
