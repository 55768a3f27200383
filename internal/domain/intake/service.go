package intake

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/TesslaRay/claudio-aleph-2025/internal/domain/casefile"
	"github.com/TesslaRay/claudio-aleph-2025/internal/domain/chain"
	"github.com/TesslaRay/claudio-aleph-2025/internal/domain/contract"
	"github.com/TesslaRay/claudio-aleph-2025/internal/domain/llm"
)

// Default models per process. Intake aims for latency, drafting for quality.
const (
	DefaultIntakeModel  = "gemini-2.5-flash"
	DefaultDrafterModel = "gemini-2.5-pro"
)

// Fixed response for messages that arrive without a user identity. Not an
// error: the agent asks the user to connect before a case can exist.
const (
	anonymousReply = "Hola, soy Claudio. Para poder crear tu caso y ayudarte con tu situación laboral necesito que conectes tu wallet primero. Una vez conectada, cuéntame qué pasó."
	anonymousFact  = "El cliente no proporciono su address"
)

const maxTitleLength = 80

// PromptSource supplies the system prompts for the two LLM processes.
type PromptSource interface {
	IntakePrompt() string
	DrafterPrompt() string
}

// ErrCaseBusy is returned by CaseLocker implementations when another turn
// already holds the case lease. Callers surface it as a busy condition, not
// an infrastructure failure.
var ErrCaseBusy = errors.New("case lock held")

// CaseLocker serializes turn handling per case. Acquire fails with an error
// wrapping ErrCaseBusy when another turn for the same case is in flight; the
// returned release function must always be called.
type CaseLocker interface {
	Acquire(ctx context.Context, caseID string) (release func(), err error)
}

// TurnInput is one inbound user message. CaseID and UserAddress are
// optional; Message is not.
type TurnInput struct {
	CaseID      string
	UserAddress string
	Message     string
}

// TurnOutput is the terminal result of a handled turn. Extraction is
// diagnostic only and stays off the wire.
type TurnOutput struct {
	Success    bool           `json:"success"`
	CaseID     string         `json:"caseId,omitempty"`
	Message    string         `json:"message"`
	Facts      []string       `json:"ucs"`
	Score      float64        `json:"score"`
	Extraction ExtractionMode `json:"-"`
}

// ContractOutput is the result of a successful contract generation.
type ContractOutput struct {
	CaseID          string  `json:"caseId"`
	Document        string  `json:"document"`
	EmployerAddress string  `json:"employerAddress"`
	CoworkerAddress string  `json:"coworkerAddress"`
	TxHash          string  `json:"txHash,omitempty"`
	Score           float64 `json:"score"`
}

// Service is the intake orchestrator: it runs the turn protocol and the
// contract-generation protocol over the storage, LLM and chain
// collaborators.
type Service struct {
	cases     casefile.Repository
	contracts contract.Repository
	llm       llm.Provider
	chain     chain.Registrar
	prompts   PromptSource
	locker    CaseLocker
	extractor *Extractor
	gate      *Gate
	log       zerolog.Logger

	intakeModel  string
	drafterModel string

	now       func() time.Time
	newCaseID func(userAddress string) string
}

// Params collects the collaborators and tunables of the orchestrator. Zero
// model names and a zero threshold select the defaults.
type Params struct {
	Cases          casefile.Repository
	Contracts      contract.Repository
	LLM            llm.Provider
	Chain          chain.Registrar
	Prompts        PromptSource
	Locker         CaseLocker
	IntakeModel    string
	DrafterModel   string
	ScoreThreshold float64
}

// NewService wires the orchestrator.
func NewService(p Params, log zerolog.Logger) *Service {
	if p.IntakeModel == "" {
		p.IntakeModel = DefaultIntakeModel
	}
	if p.DrafterModel == "" {
		p.DrafterModel = DefaultDrafterModel
	}
	return &Service{
		cases:        p.Cases,
		contracts:    p.Contracts,
		llm:          p.LLM,
		chain:        p.Chain,
		prompts:      p.Prompts,
		locker:       p.Locker,
		extractor:    NewExtractor(),
		gate:         NewGate(p.ScoreThreshold),
		log:          log.With().Str("component", "intake-service").Logger(),
		intakeModel:  p.IntakeModel,
		drafterModel: p.DrafterModel,
		now:          time.Now,
		newCaseID:    defaultCaseID,
	}
}

func defaultCaseID(userAddress string) string {
	return fmt.Sprintf("case-%s-%s", userAddress, uuid.NewString())
}

// HandleTurn runs one inbound message through the turn protocol and returns
// the terminal result. All persistence for the turn happens here; on any
// collaborator failure nothing is appended.
func (s *Service) HandleTurn(ctx context.Context, in TurnInput) (*TurnOutput, error) {
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return nil, NewValidationError("message is required", FieldError{
			Field:  "message",
			Reason: "must be a non-empty string",
		})
	}

	address := strings.ToLower(strings.TrimSpace(in.UserAddress))
	if address == "" || address == "anonymous" {
		s.log.Info().Msg("anonymous message, no case created")
		return &TurnOutput{
			Success: true,
			Message: anonymousReply,
			Facts:   []string{anonymousFact},
			Score:   0,
		}, nil
	}

	caseID, err := s.resolveCase(ctx, in.CaseID, address, message)
	if err != nil {
		return nil, err
	}

	release, err := s.locker.Acquire(ctx, caseID)
	if err != nil {
		if errors.Is(err, ErrCaseBusy) {
			return nil, NewCaseBusyError(caseID)
		}
		return nil, NewCollaboratorError("could not acquire case lock", err)
	}
	defer release()

	history, err := s.cases.ListTurns(ctx, caseID)
	if err != nil {
		return nil, NewCollaboratorError("could not load conversation history", err)
	}

	completion, err := s.llm.Complete(ctx, llm.CompletionParams{
		Prompt:       BuildTurnPrompt(history, message),
		SystemPrompt: s.prompts.IntakePrompt(),
		Model:        s.intakeModel,
		Tags:         map[string]string{"process": "intake-claudio"},
	})
	if err != nil {
		return nil, NewCollaboratorError("completion request failed", err)
	}

	extracted := s.extractor.Extract(completion.Text)

	turn := &casefile.Turn{
		CaseID:       caseID,
		UserAddress:  address,
		UserMessage:  message,
		AgentMessage: extracted.Message,
		Facts:        extracted.Facts,
		Score:        extracted.Score,
		Metadata:     extracted.Metadata,
		Timestamp:    s.now().UTC(),
	}
	if err := s.cases.AppendTurn(ctx, turn); err != nil {
		return nil, NewCollaboratorError("could not persist conversation turn", err)
	}

	s.log.Info().
		Str("case_id", caseID).
		Int("turn_count", len(history)+1).
		Float64("score", extracted.Score).
		Msg("turn handled")

	return &TurnOutput{
		Success:    true,
		CaseID:     caseID,
		Message:    extracted.Message,
		Facts:      extracted.Facts,
		Score:      extracted.Score,
		Extraction: extracted.Mode,
	}, nil
}

// resolveCase returns the caseId the turn belongs to, creating the Case
// record when the message starts a new conversation. A caseId the storage
// layer does not know is treated as a fresh conversation rather than
// rejected.
func (s *Service) resolveCase(ctx context.Context, caseID, address, message string) (string, error) {
	if caseID == "" {
		caseID = s.newCaseID(address)
		if err := s.createCase(ctx, caseID, address, message); err != nil {
			return "", err
		}
		return caseID, nil
	}

	_, err := s.cases.FindCase(ctx, caseID)
	switch {
	case err == nil:
		return caseID, nil
	case casefile.IsNotFound(err):
		if err := s.createCase(ctx, caseID, address, message); err != nil {
			return "", err
		}
		return caseID, nil
	default:
		return "", NewCollaboratorError("could not resolve case", err)
	}
}

func (s *Service) createCase(ctx context.Context, caseID, address, message string) error {
	now := s.now().UTC()
	c := &casefile.Case{
		CaseID:         caseID,
		UserAddress:    address,
		Title:          caseTitle(message),
		Agent:          casefile.AgentName,
		Status:         casefile.StatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
		LastActivityAt: now,
	}
	if err := s.cases.CreateCase(ctx, c); err != nil {
		return NewCollaboratorError("could not create case", err)
	}
	s.log.Info().Str("case_id", caseID).Str("user_address", address).Msg("case created")
	return nil
}

// artifactURL is the service-local retrieval path stored with the contract
// record.
func artifactURL(caseID string) string {
	return "/v1/claudio/contract/" + caseID
}

func caseTitle(message string) string {
	runes := []rune(message)
	if len(runes) <= maxTitleLength {
		return message
	}
	return string(runes[:maxTitleLength]) + "..."
}

// GenerateContract runs the contract-generation protocol for a case: verify
// no contract exists yet, re-check readiness server side, draft the document,
// anchor the agreement on chain, persist the artifact and complete the case.
func (s *Service) GenerateContract(ctx context.Context, caseID string) (*ContractOutput, error) {
	caseID = strings.TrimSpace(caseID)
	if caseID == "" {
		return nil, NewValidationError("caseId is required", FieldError{
			Field:  "caseId",
			Reason: "must be a non-empty string",
		})
	}

	exists, err := s.contracts.ExistsByCaseID(ctx, caseID)
	if err != nil {
		return nil, NewCollaboratorError("could not check existing contract", err)
	}
	if exists {
		return nil, NewContractExistsError(caseID)
	}

	history, err := s.cases.ListTurns(ctx, caseID)
	if err != nil {
		return nil, NewCollaboratorError("could not load conversation history", err)
	}
	if len(history) == 0 {
		return nil, NewCaseNotFoundError(caseID)
	}

	gated := s.gate.Evaluate(history)
	switch gated.Decision {
	case DecisionInsufficient:
		return nil, NewScoreInsufficientError(gated.Score, s.gate.threshold)
	case DecisionMissingData:
		return nil, NewMissingIdentityError(gated.MissingFields)
	}

	onchain, err := s.chain.AgreementExists(ctx, caseID)
	if err != nil {
		return nil, NewCollaboratorError("could not query agreement registry", err)
	}
	if onchain {
		return nil, NewContractExistsError(caseID)
	}

	last := casefile.LastTurn(history)
	completion, err := s.llm.Complete(ctx, llm.CompletionParams{
		Prompt:       BuildDrafterPrompt(last.Facts),
		SystemPrompt: s.prompts.DrafterPrompt(),
		Model:        s.drafterModel,
		Tags:         map[string]string{"process": "contract-drafter"},
	})
	if err != nil {
		return nil, NewCollaboratorError("contract drafting failed", err)
	}

	tx, err := s.chain.CreateAgreement(ctx, caseID, gated.Employer, gated.Coworker)
	if err != nil {
		return nil, NewCollaboratorError("agreement registration failed", err)
	}
	if !tx.Success {
		return nil, NewCollaboratorError("agreement registration failed", errors.New(tx.Error))
	}

	now := s.now().UTC()
	record := &contract.Contract{
		CaseID:          caseID,
		EmployerAddress: gated.Employer,
		CoworkerAddress: gated.Coworker,
		Document:        completion.Text,
		ArtifactURL:     artifactURL(caseID),
		TxHash:          tx.TxHash,
		CreatedAt:       now,
	}
	if err := s.contracts.Create(ctx, record); err != nil {
		return nil, NewCollaboratorError("could not persist contract", err)
	}

	if err := s.cases.MarkCompleted(ctx, caseID, now); err != nil {
		// The contract is generated and anchored; a failed status flip is
		// logged but does not fail the request.
		s.log.Error().Err(err).Str("case_id", caseID).Msg("could not mark case completed")
	}

	s.log.Info().
		Str("case_id", caseID).
		Str("tx_hash", tx.TxHash).
		Float64("score", gated.Score).
		Msg("contract generated")

	return &ContractOutput{
		CaseID:          caseID,
		Document:        completion.Text,
		EmployerAddress: gated.Employer,
		CoworkerAddress: gated.Coworker,
		TxHash:          tx.TxHash,
		Score:           gated.Score,
	}, nil
}

// Contract returns the stored contract artifact for a case.
func (s *Service) Contract(ctx context.Context, caseID string) (*contract.Contract, error) {
	c, err := s.contracts.FindByCaseID(ctx, caseID)
	if err != nil {
		return nil, NewCollaboratorError("could not load contract", err)
	}
	if c == nil {
		return nil, NewCaseNotFoundError(caseID)
	}
	return c, nil
}

// Agreement returns the live on-chain agreement state for a case.
func (s *Service) Agreement(ctx context.Context, caseID string) (*chain.Agreement, error) {
	ag, err := s.chain.GetAgreement(ctx, caseID)
	if err != nil {
		return nil, NewCollaboratorError("could not query agreement registry", err)
	}
	if !ag.Exists {
		return nil, NewCaseNotFoundError(caseID)
	}
	return ag, nil
}
