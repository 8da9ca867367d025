// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/relaydesk/agentrouter/internal/domain/model"
)

// CandidatesDependencies defines the interface for shortlist generation.
type CandidatesDependencies interface {
	GenerateCandidates(ctx context.Context, lang model.Language, intent model.Intent) ([]model.Candidate, error)
}

// CandidatesHandler handles shortlist requests.
type CandidatesHandler struct {
	deps CandidatesDependencies
}

// NewCandidatesHandler creates a new candidates handler.
func NewCandidatesHandler(deps CandidatesDependencies) *CandidatesHandler {
	return &CandidatesHandler{deps: deps}
}

// candidateEntry is the wire shape of one shortlist entry.
type candidateEntry struct {
	AgentID    int     `json:"agent_id"`
	SkillScore float64 `json:"skill_score"`
}

type candidatesResponse struct {
	Candidates []candidateEntry `json:"candidates"`
}

// HandleGetCandidates handles GET /candidates?language=..&intent=.. requests.
func (h *CandidatesHandler) HandleGetCandidates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	lang := model.Language(r.URL.Query().Get("language"))
	intent := model.Intent(r.URL.Query().Get("intent"))
	if lang == "" || intent == "" {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("missing language or intent"))
		return
	}

	candidates, err := h.deps.GenerateCandidates(r.Context(), lang, intent)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := candidatesResponse{Candidates: make([]candidateEntry, len(candidates))}
	for i, c := range candidates {
		resp.Candidates[i] = candidateEntry{AgentID: c.AgentID, SkillScore: c.SkillScore}
	}
	writeJSON(w, http.StatusOK, resp)
}
