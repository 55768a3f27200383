package intake

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/TesslaRay/claudio-aleph-2025/internal/domain/casefile"
)

func TestBuildTurnPromptEmptyHistory(t *testing.T) {
	got := BuildTurnPrompt(nil, "hola, me despidieron")
	assert.Equal(t, "hola, me despidieron", got)
}

func TestBuildTurnPromptWithHistory(t *testing.T) {
	history := []casefile.Turn{
		{UserMessage: "me despidieron ayer", AgentMessage: "Lamento escuchar eso. ¿Donde trabajabas?"},
		{UserMessage: "en una farmacia", AgentMessage: "¿Hace cuanto tiempo?", Facts: []string{"Trabajaba en una farmacia"}},
	}

	got := BuildTurnPrompt(history, "tres años")

	want := "User: me despidieron ayer\n" +
		"Claudio: Lamento escuchar eso. ¿Donde trabajabas?\n\n" +
		"User: en una farmacia\n" +
		"Claudio: ¿Hace cuanto tiempo?\n\n" +
		"---\n\n" +
		"=== Información recopilada ===\n" +
		"- Trabajaba en una farmacia\n\n" +
		"---\n\n" +
		"=== Nuevo mensaje del usuario ===\n" +
		"tres años"
	assert.Equal(t, want, got)
}

func TestBuildTurnPromptEmptyAgentReply(t *testing.T) {
	history := []casefile.Turn{
		{UserMessage: "hola", AgentMessage: ""},
	}

	got := BuildTurnPrompt(history, "sigo aqui")

	assert.Contains(t, got, "Claudio: (sin respuesta)")
}

func TestBuildTurnPromptOnlyLastSnapshot(t *testing.T) {
	history := []casefile.Turn{
		{UserMessage: "a", AgentMessage: "b", Facts: []string{"hecho viejo"}},
		{UserMessage: "c", AgentMessage: "d", Facts: []string{"hecho nuevo uno", "hecho nuevo dos"}},
	}

	got := BuildTurnPrompt(history, "e")

	assert.NotContains(t, got, "hecho viejo")
	assert.Contains(t, got, "- hecho nuevo uno")
	assert.Contains(t, got, "- hecho nuevo dos")
}

func TestBuildTurnPromptNoFactsSkipsSection(t *testing.T) {
	history := []casefile.Turn{
		{UserMessage: "hola", AgentMessage: "hola, cuentame"},
	}

	got := BuildTurnPrompt(history, "ok")

	assert.NotContains(t, got, "=== Información recopilada ===")
	assert.Equal(t, 1, strings.Count(got, "---"))
}

func TestBuildDrafterPrompt(t *testing.T) {
	got := BuildDrafterPrompt([]string{"Empleador: ACME", "Sueldo: 500000"})

	want := "=== Información recopilada ===\n" +
		"- Empleador: ACME\n" +
		"- Sueldo: 500000"
	assert.Equal(t, want, got)
}
