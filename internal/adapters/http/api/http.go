// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/relaydesk/agentrouter/internal/app"
	"github.com/relaydesk/agentrouter/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Route handles one customer question end to end.
	Route(ctx context.Context, contactID int, question string) (Decision, error)

	// GenerateCandidates returns the skill-matched shortlist.
	GenerateCandidates(ctx context.Context, lang model.Language, intent model.Intent) ([]model.Candidate, error)

	// RankCandidates orders agent ids by predicted success.
	RankCandidates(ctx context.Context, contactID int, ictx model.InteractionContext, agentIDs []int) ([]model.RankedCandidate, error)

	// Train rebuilds the ranking model from history.
	Train(ctx context.Context, epochs int) (TrainReport, error)
}

// Decision mirrors the routing result shape returned by the service.
type Decision = service.Decision

// TrainReport mirrors the training summary shape returned by the service.
type TrainReport = service.TrainReport

// Server wires HTTP routes for the routing API.
type Server struct {
	routeHandler      *RouteHandler
	candidatesHandler *CandidatesHandler
	rankHandler       *RankHandler
	trainHandler      *TrainHandler
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		routeHandler:      NewRouteHandler(deps),
		candidatesHandler: NewCandidatesHandler(deps),
		rankHandler:       NewRankHandler(deps),
		trainHandler:      NewTrainHandler(deps),
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(statsProvider),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/route", MetricsMiddleware(s.routeHandler.HandlePostRoute, "route"))
	mux.HandleFunc("/candidates", MetricsMiddleware(s.candidatesHandler.HandleGetCandidates, "candidates"))
	mux.HandleFunc("/rank", MetricsMiddleware(s.rankHandler.HandlePostRank, "rank"))
	mux.HandleFunc("/train", MetricsMiddleware(s.trainHandler.HandlePostTrain, "train"))
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps a service failure to the right status: not-found
// for unknown ids, internal error otherwise.
func writeServiceError(w http.ResponseWriter, err error) {
	if isNotFound(err) {
		writeError(w, http.StatusNotFound, "not_found", err)
		return
	}
	writeError(w, http.StatusInternalServerError, "internal_error", err)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("invalid JSON body"))
		return false
	}
	return true
}
