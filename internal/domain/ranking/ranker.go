package ranking

import (
	"context"
	"sort"

	"github.com/relaydesk/agentrouter/internal/domain/feature"
	"github.com/relaydesk/agentrouter/internal/domain/model"
)

// Predictor scores a batch of feature vectors, preserving input order.
type Predictor interface {
	Predict(batch []feature.Vector) ([]float64, error)
}

// Ranker orders a candidate shortlist by predicted interaction outcome.
type Ranker struct {
	encoder *feature.Encoder
	model   Predictor
}

// NewRanker creates a ranker over the given encoder and model.
func NewRanker(encoder *feature.Encoder, model Predictor) *Ranker {
	return &Ranker{encoder: encoder, model: model}
}

// Rank scores every candidate agent and returns them ordered descending by
// predicted score. The whole shortlist goes through a single Predict call so
// the model's order-preservation contract maps scores back to agents. The
// output has the same length as the input and is a permutation of it.
func (r *Ranker) Rank(ctx context.Context, contact model.Contact, ictx model.InteractionContext, agents []model.Agent) ([]model.RankedCandidate, error) {
	if len(agents) == 0 {
		return nil, nil
	}

	batch := r.encoder.EncodeBatch(ctx, contact, ictx, agents)

	scores, err := r.model.Predict(batch)
	if err != nil {
		return nil, err
	}

	ranked := make([]model.RankedCandidate, len(agents))
	for i, agent := range agents {
		ranked[i] = model.RankedCandidate{AgentID: agent.ID, Score: scores[i]}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	return ranked, nil
}
