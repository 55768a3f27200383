package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/TesslaRay/claudio-aleph-2025/internal/domain/casefile"
	"github.com/TesslaRay/claudio-aleph-2025/internal/interfaces/httpserver/dto"
	"github.com/TesslaRay/claudio-aleph-2025/internal/interfaces/httpserver/responses"
)

// CaseHandler serves case lifecycle endpoints.
type CaseHandler struct {
	service *casefile.Service
	log     zerolog.Logger
}

// NewCaseHandler builds the case handler.
func NewCaseHandler(service *casefile.Service, log zerolog.Logger) *CaseHandler {
	return &CaseHandler{
		service: service,
		log:     log.With().Str("component", "case-handler").Logger(),
	}
}

// Create handles POST /v1/cases.
func (h *CaseHandler) Create(c *gin.Context) {
	var req dto.CreateCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.BadRequest(c, "caseId, userAddress and title are required")
		return
	}

	created, err := h.service.CreateCase(c.Request.Context(), req.CaseID, req.UserAddress, req.Title)
	if err != nil {
		h.log.Error().Err(err).Str("case_id", req.CaseID).Msg("create case failed")
		responses.HandleError(c, err, "could not create case")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "success",
		"message":   "Case created successfully",
		"caseId":    created.CaseID,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// ListByUser handles GET /v1/cases?userAddress=.
func (h *CaseHandler) ListByUser(c *gin.Context) {
	userAddress := strings.TrimSpace(c.Query("userAddress"))
	if userAddress == "" {
		responses.BadRequest(c, "userAddress query parameter is required")
		return
	}

	cases, err := h.service.UserCases(c.Request.Context(), userAddress)
	if err != nil {
		h.log.Error().Err(err).Str("user_address", userAddress).Msg("list cases failed")
		responses.HandleError(c, err, "could not list cases")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "success",
		"userAddress": userAddress,
		"cases":       cases,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Delete handles DELETE /v1/cases/:caseId.
func (h *CaseHandler) Delete(c *gin.Context) {
	caseID := c.Param("caseId")

	if err := h.service.DeleteCase(c.Request.Context(), caseID); err != nil {
		h.log.Error().Err(err).Str("case_id", caseID).Msg("delete case failed")
		responses.HandleError(c, err, "could not delete case")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Case and conversation history deleted",
		"caseId":  caseID,
	})
}
