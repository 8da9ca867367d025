// Package feature builds the fixed-dimension numeric input consumed by the
// ranking model from contact, interaction and agent data.
package feature

import (
	"context"

	"github.com/relaydesk/agentrouter/internal/domain/model"
)

// Dim is the feature vector dimensionality. The ranking model is trained
// against exactly this layout:
//
//	[contact_id, age, lat, lng, lang_onehot(2), sentiment, intent_onehot(2), agent_id, language_skill]
//
// Changing the layout invalidates every persisted parameter artifact, which
// is why LayoutVersion participates in the artifact compatibility hash.
const Dim = 11

// LayoutVersion identifies the feature layout above. Bump on any reordering
// or dimensionality change.
const LayoutVersion = "v1"

// Vector is one encoded sample. Always exactly Dim values.
type Vector []float64

// CoordinateSource resolves a contact's approximate location. Implementations
// must never fail outward; unresolvable contacts yield (0,0).
type CoordinateSource interface {
	Coordinates(ctx context.Context, contact model.Contact) model.Coordinates
}

// Encoder assembles feature vectors.
type Encoder struct {
	coords CoordinateSource
}

// NewEncoder creates an encoder backed by the given coordinate source.
func NewEncoder(coords CoordinateSource) *Encoder {
	return &Encoder{coords: coords}
}

// Encode builds the feature vector for one (contact, interaction, agent)
// triple. Unknown language or intent values one-hot to the zero vector;
// they never produce an error.
func (e *Encoder) Encode(ctx context.Context, contact model.Contact, ictx model.InteractionContext, agent model.Agent) Vector {
	loc := e.coords.Coordinates(ctx, contact)
	lang := languageOneHot(ictx.Language)
	intent := intentOneHot(ictx.Intent)

	v := make(Vector, 0, Dim)
	v = append(v, float64(contact.ID), float64(contact.Age))
	v = append(v, loc.Lat, loc.Lng)
	v = append(v, lang[0], lang[1])
	v = append(v, ictx.Sentiment)
	v = append(v, intent[0], intent[1])
	v = append(v, float64(agent.ID), agent.Skills.LanguageSkill(ictx.Language))

	return v
}

// EncodeBatch encodes one vector per agent, preserving agent order.
func (e *Encoder) EncodeBatch(ctx context.Context, contact model.Contact, ictx model.InteractionContext, agents []model.Agent) []Vector {
	batch := make([]Vector, len(agents))
	for i, agent := range agents {
		batch[i] = e.Encode(ctx, contact, ictx, agent)
	}
	return batch
}

// languageOneHot maps a language through a closed lookup. The vectors are
// small and hand-authored; with more languages a hashing vectorizer would
// replace this.
func languageOneHot(lang model.Language) [2]float64 {
	switch lang {
	case model.LanguageEnglish:
		return [2]float64{0, 1}
	case model.LanguageSpanish:
		return [2]float64{1, 0}
	default:
		return [2]float64{0, 0}
	}
}

// intentOneHot maps an intent category through a closed lookup.
func intentOneHot(intent model.Intent) [2]float64 {
	switch intent {
	case model.IntentSales:
		return [2]float64{0, 1}
	case model.IntentSupport:
		return [2]float64{1, 0}
	default:
		return [2]float64{0, 0}
	}
}
