// Package model contains domain models passed between layers.
package model

// Language is an ISO-639-1 code of an interaction language.
// Only English and Spanish are routed; everything else is unknown.
type Language string

// Supported languages.
const (
	LanguageEnglish Language = "en"
	LanguageSpanish Language = "es"
	LanguageUnknown Language = ""
)

// Intent is the detected purpose of an interaction.
type Intent string

// Known intents. IntentOther means the intent could not be resolved
// with enough confidence.
const (
	IntentSales   Intent = "sales"
	IntentSupport Intent = "support"
	IntentOther   Intent = "other"
)

// SkillVector holds an agent's proficiency in [0,1] for each
// language and intent-category axis.
type SkillVector struct {
	English float64 `json:"en"`
	Spanish float64 `json:"es"`
	Sales   float64 `json:"sales"`
	Support float64 `json:"support"`
}

// Weights is the per-axis weighting applied when matching an agent
// against an interaction.
type Weights struct {
	English float64
	Spanish float64
	Sales   float64
	Support float64
}

// Dot returns the weighted skill total for the given weights.
func (s SkillVector) Dot(w Weights) float64 {
	return w.English*s.English + w.Spanish*s.Spanish + w.Sales*s.Sales + w.Support*s.Support
}

// LanguageSkill returns the proficiency for the requested language,
// 0.0 when the language is unknown.
func (s SkillVector) LanguageSkill(lang Language) float64 {
	switch lang {
	case LanguageEnglish:
		return s.English
	case LanguageSpanish:
		return s.Spanish
	default:
		return 0.0
	}
}

// Agent is a human contact-center agent. Immutable reference data
// owned by the agent store.
type Agent struct {
	ID     int
	Name   string
	Skills SkillVector
}

// Coordinates is an approximate geographic location.
type Coordinates struct {
	Lat float64
	Lng float64
}

// Contact is a customer record owned by the contact store. Coordinates
// are not part of the record; they are resolved and cached separately.
type Contact struct {
	ID         int
	Name       string
	Age        int
	PostalCode string
}

// InteractionContext carries what text analytics extracted from the
// customer's message. Sentiment ranges from 0 (negative) to 1 (positive).
type InteractionContext struct {
	Language  Language
	Sentiment float64
	Intent    Intent
}

// HistoricalInteraction is one past agent/customer pairing with its
// observed outcome, the training label source. Immutable once recorded.
type HistoricalInteraction struct {
	ContactID int
	AgentID   int
	Language  Language
	Sentiment float64
	Intent    Intent
	// OutcomeScore in [0,1] grades how successful the pairing was.
	OutcomeScore float64
}

// Candidate is an agent with a positive skill match, before learned ranking.
// Request-local; produced by the candidate generator.
type Candidate struct {
	AgentID    int
	SkillScore float64
}

// RankedCandidate is a candidate with its predicted outcome score.
// Request-local; produced by the ranker, ordered descending by score.
type RankedCandidate struct {
	AgentID int     `json:"agent_id"`
	Score   float64 `json:"score"`
}
