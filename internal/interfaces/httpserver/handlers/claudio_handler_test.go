package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TesslaRay/claudio-aleph-2025/internal/domain/casefile"
	"github.com/TesslaRay/claudio-aleph-2025/internal/domain/chain"
	"github.com/TesslaRay/claudio-aleph-2025/internal/domain/contract"
	"github.com/TesslaRay/claudio-aleph-2025/internal/domain/intake"
	"github.com/TesslaRay/claudio-aleph-2025/internal/domain/llm"
	"github.com/TesslaRay/claudio-aleph-2025/internal/interfaces/httpserver/handlers"
)

// memCaseRepo is an in-memory casefile.Repository for handler tests.
type memCaseRepo struct {
	cases map[string]*casefile.Case
	turns map[string][]casefile.Turn
}

func newMemCaseRepo() *memCaseRepo {
	return &memCaseRepo{
		cases: make(map[string]*casefile.Case),
		turns: make(map[string][]casefile.Turn),
	}
}

func (m *memCaseRepo) CreateCase(ctx context.Context, c *casefile.Case) error {
	m.cases[c.CaseID] = c
	return nil
}

func (m *memCaseRepo) FindCase(ctx context.Context, caseID string) (*casefile.Case, error) {
	if c, ok := m.cases[caseID]; ok {
		return c, nil
	}
	return nil, casefile.NewNotFoundError(caseID)
}

func (m *memCaseRepo) ListCasesByUser(ctx context.Context, userAddress string) ([]*casefile.Case, error) {
	var out []*casefile.Case
	for _, c := range m.cases {
		if c.UserAddress == userAddress {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memCaseRepo) LastActiveCase(ctx context.Context, userAddress string) (*casefile.Case, error) {
	var last *casefile.Case
	for _, c := range m.cases {
		if c.UserAddress != userAddress || c.Status != casefile.StatusActive {
			continue
		}
		if last == nil || c.LastActivityAt.After(last.LastActivityAt) {
			last = c
		}
	}
	return last, nil
}

func (m *memCaseRepo) DeleteCase(ctx context.Context, caseID string) error {
	if _, ok := m.cases[caseID]; !ok {
		return casefile.NewNotFoundError(caseID)
	}
	delete(m.cases, caseID)
	delete(m.turns, caseID)
	return nil
}

func (m *memCaseRepo) MarkCompleted(ctx context.Context, caseID string, at time.Time) error {
	c, ok := m.cases[caseID]
	if !ok {
		return casefile.NewNotFoundError(caseID)
	}
	c.Status = casefile.StatusCompleted
	c.CompletedAt = &at
	return nil
}

func (m *memCaseRepo) ListTurns(ctx context.Context, caseID string) ([]casefile.Turn, error) {
	return m.turns[caseID], nil
}

func (m *memCaseRepo) AppendTurn(ctx context.Context, turn *casefile.Turn) error {
	m.turns[turn.CaseID] = append(m.turns[turn.CaseID], *turn)
	return nil
}

type memContractRepo struct {
	byCase map[string]*contract.Contract
}

func newMemContractRepo() *memContractRepo {
	return &memContractRepo{byCase: make(map[string]*contract.Contract)}
}

func (m *memContractRepo) Create(ctx context.Context, c *contract.Contract) error {
	m.byCase[c.CaseID] = c
	return nil
}

func (m *memContractRepo) ExistsByCaseID(ctx context.Context, caseID string) (bool, error) {
	_, ok := m.byCase[caseID]
	return ok, nil
}

func (m *memContractRepo) FindByCaseID(ctx context.Context, caseID string) (*contract.Contract, error) {
	return m.byCase[caseID], nil
}

// stubProvider returns a fixed completion text.
type stubProvider struct {
	text string
}

func (s *stubProvider) Complete(ctx context.Context, p llm.CompletionParams) (*llm.Completion, error) {
	return &llm.Completion{Text: s.text}, nil
}

type stubRegistrar struct{}

func (stubRegistrar) CreateAgreement(ctx context.Context, caseID, employer, coworker string) (*chain.TxResult, error) {
	return &chain.TxResult{Success: true, TxHash: "0xtx"}, nil
}

func (stubRegistrar) AgreementExists(ctx context.Context, caseID string) (bool, error) {
	return false, nil
}

func (stubRegistrar) GetAgreement(ctx context.Context, caseID string) (*chain.Agreement, error) {
	return &chain.Agreement{Exists: true, Employer: "0xemp"}, nil
}

func (stubRegistrar) IsFullySigned(ctx context.Context, caseID string) (bool, error) {
	return false, nil
}

type stubPrompts struct{}

func (stubPrompts) IntakePrompt() string  { return "intake" }
func (stubPrompts) DrafterPrompt() string { return "drafter" }

type freeLocker struct{}

func (freeLocker) Acquire(ctx context.Context, caseID string) (func(), error) {
	return func() {}, nil
}

type heldLocker struct{}

func (heldLocker) Acquire(ctx context.Context, caseID string) (func(), error) {
	return nil, fmt.Errorf("case %s: %w", caseID, intake.ErrCaseBusy)
}

func newTestRouter(completionText string) (*gin.Engine, *memCaseRepo) {
	gin.SetMode(gin.TestMode)

	repo := newMemCaseRepo()
	svc := intake.NewService(intake.Params{
		Cases:     repo,
		Contracts: newMemContractRepo(),
		LLM:       &stubProvider{text: completionText},
		Chain:     stubRegistrar{},
		Prompts:   stubPrompts{},
		Locker:    freeLocker{},
	}, zerolog.Nop())

	handler := handlers.NewClaudioHandler(svc, zerolog.Nop())
	engine := gin.New()
	engine.POST("/v1/claudio/chat", handler.Chat)
	engine.POST("/v1/claudio/generate-contract-for-case", handler.GenerateContract)
	return engine, repo
}

func postJSON(t *testing.T, engine *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestChatRejectsMissingMessage(t *testing.T) {
	engine, _ := newTestRouter("{}")

	rec := postJSON(t, engine, "/v1/claudio/chat", map[string]string{"userAddress": "0xabc"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatAnonymousMessage(t *testing.T) {
	engine, repo := newTestRouter("{}")

	rec := postJSON(t, engine, "/v1/claudio/chat", map[string]string{"message": "Hola"})

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Success bool     `json:"success"`
		CaseID  string   `json:"caseId"`
		UCS     []string `json:"ucs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Empty(t, body.CaseID)
	assert.Equal(t, []string{"El cliente no proporciono su address"}, body.UCS)
	assert.Empty(t, repo.cases)
}

func TestChatFullTurn(t *testing.T) {
	engine, repo := newTestRouter(`{"message": "cuentame mas", "ucs": ["Despido"], "score": 0.3, "metadata": {}}`)

	rec := postJSON(t, engine, "/v1/claudio/chat", map[string]string{
		"message":     "me despidieron",
		"userAddress": "0xABC",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Success bool     `json:"success"`
		CaseID  string   `json:"caseId"`
		Message string   `json:"message"`
		UCS     []string `json:"ucs"`
		Score   float64  `json:"score"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.NotEmpty(t, body.CaseID)
	assert.Equal(t, "cuentame mas", body.Message)
	assert.Equal(t, []string{"Despido"}, body.UCS)
	assert.Equal(t, 0.3, body.Score)

	require.Len(t, repo.turns[body.CaseID], 1)
}

func TestChatConcurrentTurnConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := intake.NewService(intake.Params{
		Cases:     newMemCaseRepo(),
		Contracts: newMemContractRepo(),
		LLM:       &stubProvider{text: "{}"},
		Chain:     stubRegistrar{},
		Prompts:   stubPrompts{},
		Locker:    heldLocker{},
	}, zerolog.Nop())
	handler := handlers.NewClaudioHandler(svc, zerolog.Nop())
	engine := gin.New()
	engine.POST("/v1/claudio/chat", handler.Chat)

	rec := postJSON(t, engine, "/v1/claudio/chat", map[string]string{
		"message":     "sigo aqui",
		"userAddress": "0xabc",
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "CASE_BUSY", body.Code)
}

func TestGenerateContractMissingIdentity(t *testing.T) {
	engine, repo := newTestRouter("{}")
	repo.cases["case-1"] = &casefile.Case{CaseID: "case-1", Status: casefile.StatusActive}
	repo.turns["case-1"] = []casefile.Turn{{
		CaseID:   "case-1",
		Score:    0.95,
		Metadata: map[string]any{"employer_address": "0x1111111111111111111111111111111111111111"},
	}}

	rec := postJSON(t, engine, "/v1/claudio/generate-contract-for-case", map[string]string{"caseId": "case-1"})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body struct {
		Code   string `json:"code"`
		Fields []struct {
			Field string `json:"field"`
		} `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "MISSING_IDENTITY_FIELDS", body.Code)
	require.Len(t, body.Fields, 1)
	assert.Equal(t, "coworker_address", body.Fields[0].Field)
}

func TestGenerateContractUnknownCase(t *testing.T) {
	engine, _ := newTestRouter("{}")

	rec := postJSON(t, engine, "/v1/claudio/generate-contract-for-case", map[string]string{"caseId": "case-missing"})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGenerateContractSuccessEnvelope(t *testing.T) {
	engine, repo := newTestRouter("CONTRATO ...")
	repo.cases["case-1"] = &casefile.Case{CaseID: "case-1", Status: casefile.StatusActive}
	repo.turns["case-1"] = []casefile.Turn{{
		CaseID: "case-1",
		Score:  0.9,
		Facts:  []string{"Empleador: ACME"},
		Metadata: map[string]any{
			"employer_address": "0x1111111111111111111111111111111111111111",
			"coworker_address": "0x2222222222222222222222222222222222222222",
		},
	}}

	rec := postJSON(t, engine, "/v1/claudio/generate-contract-for-case", map[string]string{"caseId": "case-1"})

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Status   string `json:"status"`
		Contract struct {
			CaseID   string `json:"caseId"`
			Document string `json:"document"`
			TxHash   string `json:"txHash"`
		} `json:"contract"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "success", body.Status)
	assert.Equal(t, "case-1", body.Contract.CaseID)
	assert.Equal(t, "CONTRATO ...", body.Contract.Document)
	assert.Equal(t, "0xtx", body.Contract.TxHash)

	assert.Equal(t, casefile.StatusCompleted, repo.cases["case-1"].Status)
}
