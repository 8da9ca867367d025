package textanalytics

import (
	"context"
	"strings"

	"github.com/relaydesk/agentrouter/internal/domain/model"
)

// Keyword is a self-contained analytics service built on word lists. It is
// the default when no external analytics endpoints are configured, good
// enough to exercise the full routing pipeline.
type Keyword struct{}

// NewKeyword creates the keyword-based service.
func NewKeyword() Keyword { return Keyword{} }

var spanishMarkers = []string{
	"hola", "gracias", "por favor", "necesito", "quiero", "ayuda",
	"comprar", "problema", "tengo", "buenos", "buenas", "cuánto", "cuanto",
}

var negativeMarkers = []string{
	"angry", "broken", "terrible", "useless", "refund", "cancel", "complaint",
	"enfadado", "roto", "terrible", "inútil", "reembolso", "cancelar", "queja",
}

var positiveMarkers = []string{
	"great", "thanks", "thank", "love", "perfect", "happy",
	"genial", "gracias", "encanta", "perfecto", "contento",
}

var salesMarkers = []string{
	"buy", "purchase", "price", "order", "upgrade", "plan",
	"comprar", "compra", "precio", "pedido", "contratar",
}

var supportMarkers = []string{
	"help", "support", "issue", "problem", "error", "fix", "working",
	"ayuda", "soporte", "problema", "error", "arreglar", "funciona",
}

// DetectLanguage counts Spanish marker words; a single match is enough.
func (Keyword) DetectLanguage(_ context.Context, text string) model.Language {
	lowered := strings.ToLower(text)
	for _, marker := range spanishMarkers {
		if strings.Contains(lowered, marker) {
			return model.LanguageSpanish
		}
	}
	return model.LanguageEnglish
}

// DetectSentiment nudges the neutral midpoint by marker hits in either
// direction, clamped to [0, 1].
func (Keyword) DetectSentiment(_ context.Context, text string, _ model.Language) float64 {
	lowered := strings.ToLower(text)
	score := neutralSentiment
	for _, marker := range negativeMarkers {
		if strings.Contains(lowered, marker) {
			score -= 0.2
		}
	}
	for _, marker := range positiveMarkers {
		if strings.Contains(lowered, marker) {
			score += 0.2
		}
	}
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// DetectIntent picks the intent with more marker hits, "other" on a tie or
// no hits.
func (Keyword) DetectIntent(_ context.Context, text string, _ model.Language) model.Intent {
	lowered := strings.ToLower(text)

	var sales, support int
	for _, marker := range salesMarkers {
		if strings.Contains(lowered, marker) {
			sales++
		}
	}
	for _, marker := range supportMarkers {
		if strings.Contains(lowered, marker) {
			support++
		}
	}

	switch {
	case sales > support:
		return model.IntentSales
	case support > sales:
		return model.IntentSupport
	default:
		return model.IntentOther
	}
}
