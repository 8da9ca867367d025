package service

import (
	"fmt"

	"github.com/relaydesk/agentrouter/internal/domain/model"
)

// The user-visible catalog. Every routing outcome resolves to one of these
// messages in the interaction's language; anything that is not Spanish gets
// English.

func noUnderstandMessage(lang model.Language, contactName string) string {
	if lang == model.LanguageSpanish {
		return fmt.Sprintf("Perdona %s, pero no te entiendo...", contactName)
	}
	return fmt.Sprintf("Sorry %s, I couldn't understand your message...", contactName)
}

func allBusyMessage(lang model.Language) string {
	if lang == model.LanguageSpanish {
		return "Todos los agentes humanos están ocupados en este momento. Por favor espera, tu pregunta será respondida lo más rápido posible."
	}
	return "All human agents are busy at this moment. Please wait, your question will be answered as soon as possible."
}

func transferMessage(lang model.Language, agentName string, intent model.Intent) string {
	if lang == model.LanguageSpanish {
		department := "soporte"
		if intent == model.IntentSales {
			department = "ventas"
		}
		return fmt.Sprintf("Transfiriendo a %s, del departamento de %s. ¡Encantado de hablar contigo!", agentName, department)
	}
	return fmt.Sprintf("Directing to %s, from %s department. Nice talking to you!", agentName, intent)
}
