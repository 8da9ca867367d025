// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/relaydesk/agentrouter/internal/domain/model"
)

// RankDependencies defines the interface for rank operations.
type RankDependencies interface {
	RankCandidates(ctx context.Context, contactID int, ictx model.InteractionContext, agentIDs []int) ([]model.RankedCandidate, error)
}

// RankHandler handles rank requests.
type RankHandler struct {
	deps RankDependencies
}

// NewRankHandler creates a new rank handler.
func NewRankHandler(deps RankDependencies) *RankHandler {
	return &RankHandler{deps: deps}
}

// rankRequest mirrors the schema for POST /rank.
type rankRequest struct {
	ContactID *int    `json:"contact_id"`
	Language  string  `json:"language"`
	Sentiment float64 `json:"sentiment"`
	Intent    string  `json:"intent"`
	AgentIDs  []int   `json:"agent_ids"`
}

func (r rankRequest) validate() error {
	switch {
	case r.ContactID == nil:
		return errors.New("missing contact_id")
	case len(r.AgentIDs) == 0:
		return errors.New("missing agent_ids")
	case r.Sentiment < 0 || r.Sentiment > 1:
		return errors.New("sentiment must be in [0, 1]")
	}
	return nil
}

type rankResponse struct {
	Ranked []model.RankedCandidate `json:"ranked"`
}

// HandlePostRank handles POST /rank requests.
func (h *RankHandler) HandlePostRank(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req rankRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	ictx := model.InteractionContext{
		Language:  model.Language(req.Language),
		Sentiment: req.Sentiment,
		Intent:    model.Intent(req.Intent),
	}

	ranked, err := h.deps.RankCandidates(r.Context(), *req.ContactID, ictx, req.AgentIDs)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rankResponse{Ranked: ranked})
}
