package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/TesslaRay/claudio-aleph-2025/internal/domain/casefile"
	"github.com/TesslaRay/claudio-aleph-2025/internal/interfaces/httpserver/responses"
)

// ConversationHandler serves conversation read endpoints.
type ConversationHandler struct {
	service *casefile.Service
	log     zerolog.Logger
}

// NewConversationHandler builds the conversation handler.
func NewConversationHandler(service *casefile.Service, log zerolog.Logger) *ConversationHandler {
	return &ConversationHandler{
		service: service,
		log:     log.With().Str("component", "conversation-handler").Logger(),
	}
}

// History handles GET /v1/conversation?caseId=.
func (h *ConversationHandler) History(c *gin.Context) {
	caseID := strings.TrimSpace(c.Query("caseId"))
	if caseID == "" {
		responses.BadRequest(c, "caseId query parameter is required")
		return
	}

	view, err := h.service.History(c.Request.Context(), caseID)
	if err != nil {
		h.log.Error().Err(err).Str("case_id", caseID).Msg("load history failed")
		responses.HandleError(c, err, "could not load conversation history")
		return
	}

	if len(view.Turns) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"status":       "success",
			"message":      "No conversation history found for this caseId.",
			"caseId":       caseID,
			"conversation": []casefile.Turn{},
			"ucs":          []string{},
			"isCompleted":  false,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       "success",
		"caseId":       view.CaseID,
		"conversation": view.Turns,
		"ucs":          view.LastFacts,
		"score":        view.LastScore,
		"isCompleted":  view.IsCompleted,
	})
}

// LastActive handles GET /v1/conversation/last-active?userAddress=.
func (h *ConversationHandler) LastActive(c *gin.Context) {
	userAddress := strings.TrimSpace(c.Query("userAddress"))
	if userAddress == "" {
		responses.BadRequest(c, "userAddress query parameter is required")
		return
	}

	view, err := h.service.LastActiveHistory(c.Request.Context(), userAddress)
	if err != nil {
		h.log.Error().Err(err).Str("user_address", userAddress).Msg("load last active failed")
		responses.HandleError(c, err, "could not load last active conversation")
		return
	}

	if view == nil {
		c.JSON(http.StatusOK, gin.H{
			"status":       "success",
			"message":      "No cases found for this user.",
			"caseId":       nil,
			"conversation": []casefile.Turn{},
			"ucs":          []string{},
			"timestamp":    time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       "success",
		"caseId":       view.CaseID,
		"conversation": view.Turns,
		"ucs":          view.LastFacts,
		"score":        view.LastScore,
		"isCompleted":  view.IsCompleted,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	})
}
