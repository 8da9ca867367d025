// Package textanalytics extracts language, sentiment and intent from free
// text.
//
// Every detector is best-effort and never propagates an error: language
// falls back to English, sentiment to the 0.5 neutral midpoint and intent
// to "other", so a degraded analytics backend degrades routing quality but
// never availability.
package textanalytics

import (
	"context"

	"github.com/relaydesk/agentrouter/internal/domain/model"
)

const (
	// neutralSentiment is the midpoint of the [0, 1] sentiment scale.
	neutralSentiment = 0.5

	// minIntentConfidence is the score below which a detected intent is
	// discarded as "other".
	minIntentConfidence = 0.4
)

// Service analyses incoming messages.
type Service interface {
	// DetectLanguage guesses the message language, en or es.
	DetectLanguage(ctx context.Context, text string) model.Language

	// DetectSentiment scores the message from 0 (negative) to 1 (positive).
	DetectSentiment(ctx context.Context, text string, lang model.Language) float64

	// DetectIntent classifies the message as sales, support or other.
	DetectIntent(ctx context.Context, text string, lang model.Language) model.Intent
}

// normalizeLanguage collapses detected ISO 639-1 codes onto the two
// supported languages. Catalan is close enough to route as Spanish; every
// other language defaults to English.
func normalizeLanguage(code string) model.Language {
	switch code {
	case "es", "ca":
		return model.LanguageSpanish
	default:
		return model.LanguageEnglish
	}
}
