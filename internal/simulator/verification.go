package simulator

import (
	"fmt"
	"strings"
)

// Expected message prefixes per language and outcome. The service localizes
// every outgoing message, so a decision whose message does not match the
// prefix for its own language is a defect.
var messagePrefixes = map[string]map[string]string{
	"en": {
		outcomeRouted:   "Directing to ",
		outcomeNoIntent: "Sorry ",
		outcomeAllBusy:  "All human agents are busy",
	},
	"es": {
		outcomeRouted:   "Transfiriendo a ",
		outcomeNoIntent: "Perdona ",
		outcomeAllBusy:  "Todos los agentes humanos están ocupados",
	},
}

// verifyDecision checks a routing decision for internal consistency.
func verifyDecision(d *Decision) error {
	if d.Message == "" {
		return fmt.Errorf("empty message")
	}
	if d.DecisionID == "" {
		return fmt.Errorf("empty decision id")
	}

	prefixes, ok := messagePrefixes[d.Language]
	if !ok {
		return fmt.Errorf("unexpected language %q", d.Language)
	}
	prefix, ok := prefixes[d.Outcome]
	if !ok {
		return fmt.Errorf("unexpected outcome %q", d.Outcome)
	}
	if !strings.HasPrefix(d.Message, prefix) {
		return fmt.Errorf("message %q does not match %s/%s prefix %q", d.Message, d.Language, d.Outcome, prefix)
	}

	switch d.Outcome {
	case outcomeRouted:
		if d.AgentID == nil || d.AgentName == "" {
			return fmt.Errorf("routed decision without an agent")
		}
		if !strings.Contains(d.Message, d.AgentName) {
			return fmt.Errorf("transfer message does not name agent %q", d.AgentName)
		}
	case outcomeNoIntent, outcomeAllBusy:
		if d.AgentID != nil {
			return fmt.Errorf("%s decision carries agent %d", d.Outcome, *d.AgentID)
		}
	}

	if d.Sentiment < 0 || d.Sentiment > 1 {
		return fmt.Errorf("sentiment %f out of range", d.Sentiment)
	}

	return nil
}
