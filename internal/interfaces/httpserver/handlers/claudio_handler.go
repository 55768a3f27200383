package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/TesslaRay/claudio-aleph-2025/internal/domain/intake"
	"github.com/TesslaRay/claudio-aleph-2025/internal/infrastructure/metrics"
	"github.com/TesslaRay/claudio-aleph-2025/internal/interfaces/httpserver/dto"
	"github.com/TesslaRay/claudio-aleph-2025/internal/interfaces/httpserver/responses"
)

// ClaudioHandler serves the intake conversation and contract endpoints.
type ClaudioHandler struct {
	service *intake.Service
	log     zerolog.Logger
}

// NewClaudioHandler builds the claudio handler.
func NewClaudioHandler(service *intake.Service, log zerolog.Logger) *ClaudioHandler {
	return &ClaudioHandler{
		service: service,
		log:     log.With().Str("component", "claudio-handler").Logger(),
	}
}

// Chat handles POST /v1/claudio/chat.
func (h *ClaudioHandler) Chat(c *gin.Context) {
	var req dto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.RecordTurn("rejected")
		responses.BadRequest(c, "message is required")
		return
	}

	out, err := h.service.HandleTurn(c.Request.Context(), intake.TurnInput{
		CaseID:      req.CaseID,
		UserAddress: req.UserAddress,
		Message:     req.Message,
	})
	if err != nil {
		metrics.RecordTurn("failed")
		h.log.Error().Err(err).Str("case_id", req.CaseID).Msg("turn failed")
		responses.HandleError(c, err, "could not handle message")
		return
	}

	if out.CaseID == "" {
		metrics.RecordTurn("anonymous")
	} else {
		metrics.RecordTurn("handled")
		metrics.RecordExtraction(string(out.Extraction))
	}
	c.JSON(http.StatusOK, out)
}

// GenerateContract handles POST /v1/claudio/generate-contract-for-case.
func (h *ClaudioHandler) GenerateContract(c *gin.Context) {
	var req dto.GenerateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.BadRequest(c, "caseId is required")
		return
	}

	out, err := h.service.GenerateContract(c.Request.Context(), req.CaseID)
	if err != nil {
		metrics.RecordContractGeneration("refused")
		h.log.Error().Err(err).Str("case_id", req.CaseID).Msg("contract generation failed")
		responses.HandleError(c, err, "could not generate contract")
		return
	}

	metrics.RecordContractGeneration("generated")
	c.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"contract": out,
	})
}

// GetContract handles GET /v1/claudio/contract/:caseId.
func (h *ClaudioHandler) GetContract(c *gin.Context) {
	caseID := c.Param("caseId")

	contract, err := h.service.Contract(c.Request.Context(), caseID)
	if err != nil {
		responses.HandleError(c, err, "could not load contract")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"contract": contract,
	})
}

// GetAgreement handles GET /v1/claudio/agreement/:caseId.
func (h *ClaudioHandler) GetAgreement(c *gin.Context) {
	caseID := c.Param("caseId")

	agreement, err := h.service.Agreement(c.Request.Context(), caseID)
	if err != nil {
		responses.HandleError(c, err, "could not load agreement")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "success",
		"caseId":    caseID,
		"agreement": agreement,
	})
}
