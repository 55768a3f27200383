package promptstore

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Prompt file names looked up under the configured directory.
const (
	intakeFile  = "intake.md"
	drafterFile = "contract-drafter.md"
)

// Compiled-in prompts used when no override files are present. Deployments
// mount the real prompt pack over PROMPT_DIR; the defaults keep the service
// functional without it.
const (
	defaultIntakePrompt = `Eres Claudio, un asistente legal especializado en derecho laboral para LATAM.
Tu trabajo es entrevistar al cliente sobre su situación laboral, recopilar hechos
y evaluar cuándo la información es suficiente para redactar un contrato.

Responde SIEMPRE con un único objeto JSON con esta forma exacta:
{"message": "<tu siguiente respuesta al cliente>", "ucs": ["<hecho 1>", "<hecho 2>"], "score": <0.0-1.0>, "metadata": {"employer_address": "<0x...>", "coworker_address": "<0x...>"}}

- "ucs" es la lista COMPLETA de hechos conocidos hasta ahora, no solo los nuevos.
- "score" refleja qué tan completa está la información para redactar el contrato.
- incluye las addresses en "metadata" solo cuando el cliente las haya dado.`

	defaultDrafterPrompt = `Eres un abogado laboral. A partir de los hechos recopilados redacta un
contrato de trabajo completo y profesional en español, listo para la firma de
ambas partes. Devuelve únicamente el texto del contrato.`
)

// Store supplies the system prompts for both LLM processes. Files are read
// once at startup; a missing or unreadable file falls back to the compiled-in
// default.
type Store struct {
	intake  string
	drafter string
}

// New loads prompts from dir. An empty dir selects the defaults outright.
func New(dir string, log zerolog.Logger) *Store {
	log = log.With().Str("component", "prompt-store").Logger()
	return &Store{
		intake:  load(dir, intakeFile, defaultIntakePrompt, log),
		drafter: load(dir, drafterFile, defaultDrafterPrompt, log),
	}
}

func load(dir, name, fallback string, log zerolog.Logger) string {
	if dir == "" {
		return fallback
	}
	path := filepath.Join(dir, name)
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("prompt file unavailable, using default")
		return fallback
	}
	text := strings.TrimSpace(string(raw))
	if text == "" {
		log.Warn().Str("path", path).Msg("prompt file empty, using default")
		return fallback
	}
	return text
}

// IntakePrompt returns the system prompt for the intake conversation.
func (s *Store) IntakePrompt() string { return s.intake }

// DrafterPrompt returns the system prompt for contract drafting.
func (s *Store) DrafterPrompt() string { return s.drafter }
