package simulator

import (
	"context"
	"crypto/rand"
	"math/big"

	"github.com/relaydesk/agentrouter/pkg/logger"
)

// Seeded contact identifiers known to the demo dataset.
var contactIDs = []int{0, 1, 2}

// Phrase pools per language and intent. Sales and support phrases carry the
// markers the intent detectors recognize; the "other" phrases deliberately
// match nothing so a share of requests exercises the fallback path.
var (
	englishSalesPhrases = []string{
		"I want to buy a new dishwasher",
		"What is the price of the premium plan",
		"Can I order two more licenses",
		"I'd like to purchase an upgrade",
		"How much does the extended warranty cost",
	}
	englishSupportPhrases = []string{
		"My router stopped working, please help",
		"I have an error when logging in",
		"The machine is broken and will not start",
		"I need help with my installation",
		"Something failed during the update",
	}
	englishOtherPhrases = []string{
		"The weather is nice today",
		"Blue is my favourite colour",
		"Did you watch the match yesterday",
	}
	spanishSalesPhrases = []string{
		"Quiero comprar un frigorífico nuevo",
		"Cuál es el precio del plan premium",
		"Me gustaría contratar una licencia más",
		"Cuánto cuesta la garantía extendida",
	}
	spanishSupportPhrases = []string{
		"Necesito ayuda con mi instalación",
		"Tengo un error al iniciar sesión",
		"La máquina está rota y no arranca",
		"Algo falló durante la actualización",
	}
	spanishOtherPhrases = []string{
		"Hoy hace un día estupendo",
		"El azul es mi color favorito",
	}
)

var phrasePools = [][]string{
	englishSalesPhrases,
	englishSupportPhrases,
	englishOtherPhrases,
	spanishSalesPhrases,
	spanishSupportPhrases,
	spanishOtherPhrases,
}

// randomIndex returns a random int in [0, n) using crypto/rand.
func randomIndex(n int) int {
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

// generateQuestions creates the requested number of synthetic questions,
// spread across the phrase pools and the demo contacts.
func generateQuestions(ctx context.Context, config *Config, stats *Stats) []Question {
	logger.Get().Info(ctx, "generating questions", logger.Int("numRequests", config.NumRequests))

	questions := make([]Question, config.NumRequests)
	for i := range questions {
		pool := phrasePools[randomIndex(len(phrasePools))]
		questions[i] = Question{
			ContactID: contactIDs[randomIndex(len(contactIDs))],
			Text:      pool[randomIndex(len(pool))],
		}
	}

	stats.RequestsGenerated = len(questions)
	logger.Get().Info(ctx, "generated questions", logger.Int("count", len(questions)))
	return questions
}
