package handlers

import (
	"github.com/rs/zerolog"

	"github.com/TesslaRay/claudio-aleph-2025/internal/domain/casefile"
	"github.com/TesslaRay/claudio-aleph-2025/internal/domain/intake"
)

// Provider wires all HTTP handlers for dependency injection.
type Provider struct {
	Claudio      *ClaudioHandler
	Case         *CaseHandler
	Conversation *ConversationHandler
}

// NewProvider constructs the handler provider with domain services.
func NewProvider(intakeService *intake.Service, caseService *casefile.Service, log zerolog.Logger) *Provider {
	return &Provider{
		Claudio:      NewClaudioHandler(intakeService, log),
		Case:         NewCaseHandler(caseService, log),
		Conversation: NewConversationHandler(caseService, log),
	}
}
