package intake

import (
	"strings"

	"github.com/TesslaRay/claudio-aleph-2025/internal/domain/casefile"
)

// Prompt layout markers. The intake system prompt references these headers
// verbatim, so they are part of the model contract, not presentation.
const (
	promptDivider      = "---"
	factsHeader        = "=== Información recopilada ==="
	newMessageHeader   = "=== Nuevo mensaje del usuario ==="
	emptyAgentResponse = "(sin respuesta)"
)

// BuildTurnPrompt assembles the user-side prompt for one intake turn: the
// transcript so far, the last known fact snapshot, and the incoming message.
// With no history the message goes through bare.
func BuildTurnPrompt(history []casefile.Turn, message string) string {
	if len(history) == 0 {
		return message
	}

	var b strings.Builder
	for i, turn := range history {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("User: ")
		b.WriteString(turn.UserMessage)
		b.WriteString("\nClaudio: ")
		if turn.AgentMessage != "" {
			b.WriteString(turn.AgentMessage)
		} else {
			b.WriteString(emptyAgentResponse)
		}
	}

	// Only the latest snapshot: each turn's ucs already accumulates the
	// facts known up to that point.
	last := casefile.LastTurn(history)
	if last != nil && len(last.Facts) > 0 {
		b.WriteString("\n\n")
		b.WriteString(promptDivider)
		b.WriteString("\n\n")
		b.WriteString(factsHeader)
		for _, fact := range last.Facts {
			b.WriteString("\n- ")
			b.WriteString(fact)
		}
	}

	b.WriteString("\n\n")
	b.WriteString(promptDivider)
	b.WriteString("\n\n")
	b.WriteString(newMessageHeader)
	b.WriteString("\n")
	b.WriteString(message)

	return b.String()
}

// BuildDrafterPrompt assembles the contract-drafter prompt from the final
// fact snapshot of a completed intake conversation.
func BuildDrafterPrompt(facts []string) string {
	var b strings.Builder
	b.WriteString(factsHeader)
	for _, fact := range facts {
		b.WriteString("\n- ")
		b.WriteString(fact)
	}
	return b.String()
}
