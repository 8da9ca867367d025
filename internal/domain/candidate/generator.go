// Package candidate implements rule-based candidate generation: narrowing
// the full agent pool to a short list by raw skill match.
package candidate

import (
	"context"
	"sort"

	"github.com/relaydesk/agentrouter/internal/domain/model"
)

// DefaultMaxCandidates bounds the shortlist handed to the ranker.
const DefaultMaxCandidates = 3

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithMaxCandidates sets the shortlist size limit.
func WithMaxCandidates(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxCandidates = n
		}
	}
}

// Generator filters and orders agents by their skill for one interaction.
type Generator struct {
	maxCandidates int
}

// NewGenerator creates a generator with configuration options.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		maxCandidates: DefaultMaxCandidates,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// MaxCandidates returns the configured shortlist bound.
func (g *Generator) MaxCandidates() int {
	return g.maxCandidates
}

// Generate returns at most maxCandidates agents with positive skill for the
// requested language and intent, ordered by skill score descending. Ties keep
// the agents' store order, which makes the preference among equals
// deterministic. An empty result is a valid outcome meaning no agent can
// take the interaction.
func (g *Generator) Generate(_ context.Context, agents []model.Agent, lang model.Language, intent model.Intent) []model.Candidate {
	weights := matchWeights(lang, intent)

	candidates := make([]model.Candidate, 0, len(agents))
	for _, agent := range agents {
		// Agents with no skill at all for the job are filtered out. In a
		// full deployment availability (logged in, not busy) would be
		// filtered here as well.
		score := agent.Skills.Dot(weights)
		if score > 0 {
			candidates = append(candidates, model.Candidate{AgentID: agent.ID, SkillScore: score})
		}
	}

	// Stable: equal scores keep store order.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].SkillScore > candidates[j].SkillScore
	})

	if len(candidates) > g.maxCandidates {
		candidates = candidates[:g.maxCandidates]
	}

	return candidates
}

// matchWeights builds the four-axis weight vector: 1.0 on the matched
// language and intent slots, 0.0 elsewhere. Unknown values leave the whole
// axis at zero.
func matchWeights(lang model.Language, intent model.Intent) model.Weights {
	var w model.Weights

	switch lang {
	case model.LanguageEnglish:
		w.English = 1.0
	case model.LanguageSpanish:
		w.Spanish = 1.0
	}

	switch intent {
	case model.IntentSales:
		w.Sales = 1.0
	case model.IntentSupport:
		w.Support = 1.0
	}

	return w
}
