// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
)

// TrainDependencies defines the interface for training operations.
type TrainDependencies interface {
	Train(ctx context.Context, epochs int) (TrainReport, error)
}

// TrainHandler handles training requests.
type TrainHandler struct {
	deps TrainDependencies
}

// NewTrainHandler creates a new train handler.
func NewTrainHandler(deps TrainDependencies) *TrainHandler {
	return &TrainHandler{deps: deps}
}

// trainRequest mirrors the schema for POST /train. Zero epochs selects the
// service default.
type trainRequest struct {
	Epochs int `json:"epochs"`
}

// HandlePostTrain handles POST /train requests.
func (h *TrainHandler) HandlePostTrain(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	req := trainRequest{}
	if r.ContentLength > 0 {
		if !decodeBody(w, r, &req) {
			return
		}
	}

	report, err := h.deps.Train(r.Context(), req.Epochs)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}
